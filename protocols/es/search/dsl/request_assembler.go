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

package dsl

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
	"github.com/lscgzwd/tigersuite/thesaurus"
)

// Document 最终的搜索请求体
// 可选键（post_filter、aggregations、collapse）未使用时不输出，而不是输出null
type Document struct {
	Query        map[string]interface{} `json:"query"`
	PostFilter   map[string]interface{} `json:"post_filter,omitempty"`
	Aggregations *OrderedMap            `json:"aggregations,omitempty"`
	Sort         []interface{}          `json:"sort"`
	From         int                    `json:"from"`
	Size         int                    `json:"size"`
	Collapse     *request.Collapse      `json:"collapse,omitempty"`
}

// ContainerResolver 按名称查找容器配置
type ContainerResolver interface {
	Container(name string) (*request.ContainerConfig, error)
}

// RequestAssembler 组装完整的搜索请求
// 组合顺序：全文文本 -> 同义词改写 -> 全文查询构建 -> 查询编译
type RequestAssembler struct {
	queries      *QueryCompiler
	aggregations *AggregationCompiler
	sorts        *SortOrderCompiler
	rewriter     *thesaurus.Rewriter
	containers   ContainerResolver
}

// NewRequestAssembler 创建请求组装器
// rewriter 和 containers 只在请求带全文文本时使用
func NewRequestAssembler(rewriter *thesaurus.Rewriter, containers ContainerResolver) *RequestAssembler {
	queries := NewQueryCompiler()
	return &RequestAssembler{
		queries:      queries,
		aggregations: NewAggregationCompiler(queries),
		sorts:        NewSortOrderCompiler(queries),
		rewriter:     rewriter,
		containers:   containers,
	}
}

// Assemble 组装搜索请求，每次调用使用新的改写缓存
func (a *RequestAssembler) Assemble(ctx context.Context, req *request.SearchRequest) (*Document, error) {
	return a.AssembleWithCache(ctx, thesaurus.NewCache(), req)
}

// AssembleWithCache 在指定的改写缓存下组装请求
func (a *RequestAssembler) AssembleWithCache(ctx context.Context, cache *thesaurus.Cache, req *request.SearchRequest) (*Document, error) {
	if req == nil {
		return nil, fmt.Errorf("search request cannot be nil")
	}

	mainQuery, err := a.mainQuery(ctx, cache, req)
	if err != nil {
		return nil, err
	}
	compiled, err := a.queries.Compile(mainQuery)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(compiled) == 0 {
		compiled = MatchAll()
	}

	doc := &Document{
		Query:    compiled,
		From:     req.From,
		Size:     req.Size,
		Collapse: req.Collapse,
	}

	if req.Filter != nil {
		if doc.PostFilter, err = a.queries.Compile(req.Filter); err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
	}

	if len(req.Buckets) > 0 {
		aggs, err := a.aggregations.Compile(req.Buckets)
		if err != nil {
			return nil, fmt.Errorf("aggregations: %w", err)
		}
		if aggs.Len() > 0 {
			doc.Aggregations = aggs
		}
	}

	if doc.Sort, err = a.sorts.Compile(req.SortOrders); err != nil {
		return nil, err
	}

	if logger.IsDebugEnabled() {
		docJSON, _ := json.MarshalIndent(doc, "", "  ")
		logger.Debug("Assemble - container [%s] compiled request:\n%s", req.Container, string(docJSON))
	}
	return doc, nil
}

// mainQuery 合并结构化查询与改写后的全文查询
func (a *RequestAssembler) mainQuery(ctx context.Context, cache *thesaurus.Cache, req *request.SearchRequest) (query.Query, error) {
	if !req.HasFulltext() {
		return req.Query, nil
	}

	fulltext, err := a.fulltextQuery(ctx, cache, req)
	if err != nil {
		return nil, err
	}
	switch {
	case fulltext == nil:
		return req.Query, nil
	case req.Query == nil:
		return fulltext, nil
	default:
		return &query.BoolQuery{Must: []query.Query{req.Query, fulltext}}, nil
	}
}

func (a *RequestAssembler) fulltextQuery(ctx context.Context, cache *thesaurus.Cache, req *request.SearchRequest) (query.Query, error) {
	if a.rewriter == nil || a.containers == nil {
		return nil, fmt.Errorf("fulltext search requires a thesaurus rewriter and container configs")
	}
	container, err := a.containers.Container(req.Container)
	if err != nil {
		return nil, err
	}
	if req.StoreID != 0 && req.StoreID != container.StoreID {
		scoped := *container
		scoped.StoreID = req.StoreID
		container = &scoped
	}

	spellingType := req.SpellingType
	if spellingType == 0 {
		logger.Debug("Assemble - no spelling type resolved for container [%s], using %s", req.Container, request.SpellingTypeFuzzy)
		spellingType = request.SpellingTypeFuzzy
	}

	q, err := a.rewriter.Rewrite(ctx, cache, container, req.QueryText, spellingType, req.FulltextBoost())
	if err != nil {
		return nil, fmt.Errorf("fulltext: %w", err)
	}
	return q, nil
}
