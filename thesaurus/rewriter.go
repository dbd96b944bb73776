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

// Package thesaurus 基于同义词词典的查询改写
package thesaurus

import (
	"context"
	"fmt"
	"strings"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/metrics"
	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
)

// Dictionary 同义词词典
type Dictionary interface {
	// SynonymRewrites 返回文本的同义改写（双向同义词）
	SynonymRewrites(ctx context.Context, storeID int, text string) ([]string, error)
	// ExpansionRewrites 返回文本的扩展改写（单向扩展词）
	ExpansionRewrites(ctx context.Context, storeID int, text string) ([]string, error)
}

// QueryBuilder 把查询文本构建为查询树
type QueryBuilder interface {
	Create(container *request.ContainerConfig, texts []string, spellingType request.SpellingType, boost float64) (query.Query, error)
}

// Rewriter 同义词改写器
// 输出为 bool.should[基础查询, 改写1, 改写2, ...]，改写查询权重为 boost / divider
type Rewriter struct {
	dict        Dictionary
	builder     QueryBuilder
	failOnError bool
}

// Option 改写器选项
type Option func(*Rewriter)

// WithFailOnError 词典查询失败时中止请求，默认降级为无改写
func WithFailOnError(fail bool) Option {
	return func(r *Rewriter) { r.failOnError = fail }
}

// NewRewriter 创建改写器，dict可以为nil（不做改写）
func NewRewriter(dict Dictionary, builder QueryBuilder, opts ...Option) *Rewriter {
	r := &Rewriter{dict: dict, builder: builder}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rewrite 构建带同义词改写的全文查询
// 相同 (容器, 店铺, 文本) 在同一个cache内只构建一次
func (r *Rewriter) Rewrite(ctx context.Context, cache *Cache, container *request.ContainerConfig, texts []string, spellingType request.SpellingType, boost float64) (query.Query, error) {
	if container == nil {
		return nil, fmt.Errorf("thesaurus rewrite requires a container config")
	}
	if cache == nil {
		cache = NewCache()
	}

	key := NewCacheKey(container.Name, container.StoreID, texts, spellingType, boost)
	if q, ok := cache.Get(key); ok {
		metrics.ObserveCache(true)
		return q, nil
	}
	metrics.ObserveCache(false)

	q, err := r.build(ctx, container, texts, spellingType, boost)
	if err != nil {
		return nil, err
	}
	return cache.Put(key, q), nil
}

func (r *Rewriter) build(ctx context.Context, container *request.ContainerConfig, texts []string, spellingType request.SpellingType, boost float64) (query.Query, error) {
	base, err := r.builder.Create(container, texts, spellingType, boost)
	if err != nil {
		return nil, err
	}
	if base == nil || r.dict == nil || !container.Thesaurus.Enabled() {
		return base, nil
	}

	rewrites, err := r.collectRewrites(ctx, container, texts, boost)
	if err != nil {
		return nil, err
	}
	if len(rewrites) == 0 {
		return base, nil
	}

	should := make([]query.Query, 0, len(rewrites)+1)
	should = append(should, base)
	for _, rw := range rewrites {
		q, err := r.builder.Create(container, []string{rw.text}, request.SpellingTypeExact, rw.boost)
		if err != nil {
			return nil, err
		}
		if q != nil {
			should = append(should, q)
		}
	}
	if len(should) == 1 {
		return base, nil
	}
	return &query.BoolQuery{Should: should, MinimumShouldMatch: "1"}, nil
}

type weightedRewrite struct {
	text  string
	boost float64
}

// collectRewrites 按发现顺序收集所有文本的改写，去重并排除与输入相同的文本
func (r *Rewriter) collectRewrites(ctx context.Context, container *request.ContainerConfig, texts []string, boost float64) ([]weightedRewrite, error) {
	cfg := container.Thesaurus
	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		seen[strings.TrimSpace(t)] = struct{}{}
	}

	var out []weightedRewrite
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		perText := 0
		add := func(candidates []string, divider float64) {
			for _, c := range candidates {
				c = strings.TrimSpace(c)
				if c == "" {
					continue
				}
				if cfg.MaxRewrites > 0 && perText >= cfg.MaxRewrites {
					return
				}
				if _, dup := seen[c]; dup {
					continue
				}
				seen[c] = struct{}{}
				out = append(out, weightedRewrite{text: c, boost: boost / divider})
				perText++
			}
		}

		if cfg.SynonymsEnabled {
			candidates, err := r.dict.SynonymRewrites(ctx, container.StoreID, text)
			if err = r.lookupFailed(container, text, err); err != nil {
				return nil, err
			}
			add(candidates, cfg.SynonymWeightDivider)
		}
		if cfg.ExpansionsEnabled {
			candidates, err := r.dict.ExpansionRewrites(ctx, container.StoreID, text)
			if err = r.lookupFailed(container, text, err); err != nil {
				return nil, err
			}
			add(candidates, cfg.ExpansionWeightDivider)
		}
	}
	return out, nil
}

// lookupFailed 处理词典查询错误：failOnError时返回错误，否则记录告警并降级
func (r *Rewriter) lookupFailed(container *request.ContainerConfig, text string, err error) error {
	if err == nil {
		return nil
	}
	metrics.ThesaurusErrorsTotal.Inc()
	if r.failOnError {
		return fmt.Errorf("synonym lookup for %q failed: %w", text, err)
	}
	logger.WithFields(map[string]interface{}{
		"container": container.Name,
		"store":     container.StoreID,
	}).Warn("synonym lookup for %q failed, continuing without rewrites: %v", text, err)
	return nil
}
