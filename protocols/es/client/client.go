// Copyright (c) 2024 TigerDB Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 		http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package client 搜索引擎客户端：词向量探测、索引统计和搜索执行
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/spellcheck"
)

// Config 客户端配置
type Config struct {
	URLs        []string      `yaml:"urls"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	Sniff       bool          `yaml:"sniff"`
	HealthCheck bool          `yaml:"health_check"`
	Timeout     time.Duration `yaml:"timeout"`
	// DocType 旧版本集群的文档类型，7.x 留空
	DocType string `yaml:"doc_type"`
}

// DefaultConfig 返回默认客户端配置
func DefaultConfig() Config {
	return Config{
		URLs:    []string{elastic.DefaultURL},
		Timeout: 10 * time.Second,
	}
}

// Validate 验证客户端配置
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return fmt.Errorf("engine urls cannot be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("engine timeout cannot be negative")
	}
	return nil
}

// Client 搜索引擎客户端
type Client struct {
	es      *elastic.Client
	docType string
}

var _ spellcheck.TermVectorsProvider = (*Client)(nil)

// New 创建客户端，额外选项追加在配置生成的选项之后
func New(cfg Config, opts ...elastic.ClientOptionFunc) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := []elastic.ClientOptionFunc{
		elastic.SetURL(cfg.URLs...),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(cfg.HealthCheck),
	}
	if cfg.Username != "" {
		options = append(options, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}
	if cfg.Timeout > 0 {
		options = append(options, elastic.SetHttpClient(&http.Client{Timeout: cfg.Timeout}))
	}
	options = append(options, opts...)

	es, err := elastic.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client: %w", err)
	}
	logger.Info("Engine client created for %v", cfg.URLs)
	return &Client{es: es, docType: cfg.DocType}, nil
}

// TermVectors 以 {field: text} 构造临时文档，返回子字段的词统计
func (c *Client) TermVectors(ctx context.Context, index, field, text string, subFields []string) (map[string][]spellcheck.TermStat, error) {
	svc := c.es.TermVectors(index).
		Doc(map[string]interface{}{field: text}).
		Fields(subFields...).
		TermStatistics(true).
		FieldStatistics(false).
		Offsets(true).
		Positions(false)
	if c.docType != "" {
		svc = svc.Type(c.docType)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("term vectors on [%s]: %w", index, err)
	}

	out := make(map[string][]spellcheck.TermStat, len(resp.TermVectors))
	for subField, info := range resp.TermVectors {
		stats := make([]spellcheck.TermStat, 0, len(info.Terms))
		for term, ti := range info.Terms {
			for _, tok := range ti.Tokens {
				stats = append(stats, spellcheck.TermStat{
					Term:        term,
					DocFreq:     ti.DocFreq,
					StartOffset: int(tok.StartOffset),
					EndOffset:   int(tok.EndOffset),
				})
			}
		}
		out[subField] = stats
	}
	return out, nil
}

// DocCount 返回索引（或别名）的文档总数
func (c *Client) DocCount(ctx context.Context, index string) (int64, error) {
	resp, err := c.es.IndexStats(index).Metric("docs").Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("index stats on [%s]: %w", index, err)
	}
	if resp.All != nil && resp.All.Total != nil && resp.All.Total.Docs != nil {
		return resp.All.Total.Docs.Count, nil
	}
	var total int64
	for _, stats := range resp.Indices {
		if stats != nil && stats.Total != nil && stats.Total.Docs != nil {
			total += stats.Total.Docs.Count
		}
	}
	return total, nil
}

// Search 执行编译后的搜索请求
func (c *Client) Search(ctx context.Context, index string, body interface{}) (*elastic.SearchResult, error) {
	res, err := c.es.Search(index).Source(body).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search on [%s]: %w", index, err)
	}
	return res, nil
}

// Stop 停止客户端后台任务（嗅探、健康检查）
func (c *Client) Stop() {
	c.es.Stop()
}
