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

// Package search 搜索流程：拼写检查 -> 同义词改写 -> 请求组装 -> 执行
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/olivere/elastic/v7"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/metrics"
	"github.com/lscgzwd/tigersuite/protocols/es/search/dsl"
	"github.com/lscgzwd/tigersuite/search/request"
	"github.com/lscgzwd/tigersuite/spellcheck"
)

// Searcher 执行编译后的请求
type Searcher interface {
	Search(ctx context.Context, index string, body interface{}) (*elastic.SearchResult, error)
}

// Config 搜索流程配置
type Config struct {
	// SpellcheckEnabled 关闭时全文查询直接使用Fallback
	SpellcheckEnabled bool
	// Fallback 拼写检查失败或关闭时使用的拼写类型
	Fallback request.SpellingType
}

// DefaultConfig 返回默认流程配置
func DefaultConfig() Config {
	return Config{SpellcheckEnabled: true, Fallback: request.SpellingTypeFuzzy}
}

// Engine 搜索流程
type Engine struct {
	cfg          Config
	containers   dsl.ContainerResolver
	spellchecker *spellcheck.Spellchecker
	assembler    *dsl.RequestAssembler
	searcher     Searcher
}

// NewEngine 创建搜索流程，spellchecker 和 searcher 可以为nil
func NewEngine(cfg Config, containers dsl.ContainerResolver, spellchecker *spellcheck.Spellchecker, assembler *dsl.RequestAssembler, searcher Searcher) *Engine {
	if cfg.Fallback == 0 {
		cfg.Fallback = request.SpellingTypeFuzzy
	}
	return &Engine{
		cfg:          cfg,
		containers:   containers,
		spellchecker: spellchecker,
		assembler:    assembler,
		searcher:     searcher,
	}
}

// Prepare 解析拼写类型并组装请求
// 拼写检查失败时记录告警并降级为Fallback
func (e *Engine) Prepare(ctx context.Context, req *request.SearchRequest) (*dsl.Document, error) {
	if req == nil {
		return nil, fmt.Errorf("search request cannot be nil")
	}
	resolved := *req
	if resolved.HasFulltext() && resolved.SpellingType == 0 {
		st, err := e.resolveSpellingType(ctx, &resolved)
		if err != nil {
			metrics.ObserveCompile(err)
			return nil, err
		}
		resolved.SpellingType = st
	}

	doc, err := e.assembler.Assemble(ctx, &resolved)
	metrics.ObserveCompile(err)
	return doc, err
}

func (e *Engine) resolveSpellingType(ctx context.Context, req *request.SearchRequest) (request.SpellingType, error) {
	if !e.cfg.SpellcheckEnabled || e.spellchecker == nil {
		return e.cfg.Fallback, nil
	}
	container, err := e.containers.Container(req.Container)
	if err != nil {
		return 0, err
	}

	st, err := e.spellchecker.GetSpellingType(ctx, spellcheck.Request{
		Index:           indexOf(req, container),
		Text:            req.JoinedText(),
		SpellingField:   container.SpellingField,
		CutoffFrequency: container.Relevance.CutoffFrequency,
	})
	if err != nil {
		metrics.SpellcheckFallbackTotal.Inc()
		logger.WithField("container", container.Name).
			Warn("Spellcheck failed, falling back to %s: %v", e.cfg.Fallback, err)
		return e.cfg.Fallback, nil
	}
	return st, nil
}

// Spellcheck 对容器执行拼写检查并返回统计明细
func (e *Engine) Spellcheck(ctx context.Context, containerName, text string) (*spellcheck.Result, error) {
	if e.spellchecker == nil {
		return nil, fmt.Errorf("spellcheck is not configured")
	}
	container, err := e.containers.Container(containerName)
	if err != nil {
		return nil, err
	}
	return e.spellchecker.Check(ctx, spellcheck.Request{
		Index:           container.Index,
		Text:            text,
		SpellingField:   container.SpellingField,
		CutoffFrequency: container.Relevance.CutoffFrequency,
	})
}

// Search 组装并执行请求
func (e *Engine) Search(ctx context.Context, req *request.SearchRequest) (*elastic.SearchResult, error) {
	if e.searcher == nil {
		return nil, fmt.Errorf("search execution is not configured")
	}
	doc, err := e.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	index := req.Index
	if index == "" {
		container, err := e.containers.Container(req.Container)
		if err != nil {
			return nil, err
		}
		index = container.Index
	}

	res, err := e.searcher.Search(ctx, index, doc)
	if err != nil {
		if IsRequestError(err) {
			return nil, err
		}
		return nil, &spellcheck.SearchEngineUnavailableError{Op: "search", Err: err}
	}
	return res, nil
}

// IsRequestError 引擎以4xx拒绝请求（如buckets_path引用错误），重试不会成功
// 连接失败和5xx视为引擎不可用
func IsRequestError(err error) bool {
	var esErr *elastic.Error
	if !errors.As(err, &esErr) {
		return false
	}
	return esErr.Status >= http.StatusBadRequest && esErr.Status < http.StatusInternalServerError
}

func indexOf(req *request.SearchRequest, container *request.ContainerConfig) string {
	if req.Index != "" {
		return req.Index
	}
	return container.Index
}
