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
	"fmt"

	"github.com/lscgzwd/tigersuite/search/aggregation"
	"github.com/lscgzwd/tigersuite/search/query"
)

const (
	// MaxBucketSize terms聚合未指定size时使用的桶数上限
	MaxBucketSize = 10000
	// TermRelevanceAgg 按相关度排序terms桶时附加的子聚合名
	TermRelevanceAgg = "termRelevance"
)

// bucketWrapper 按条件对编译后的bucket进行一层包装
type bucketWrapper struct {
	applies func(b *aggregation.BucketBase) bool
	wrap    func(c *AggregationCompiler, b *aggregation.BucketBase, inner interface{}) (interface{}, error)
}

// bucketWrappers 由内向外依次应用：nested过滤、nested、bucket过滤
var bucketWrappers = []bucketWrapper{
	{
		applies: func(b *aggregation.BucketBase) bool { return b.NestedFilter != nil },
		wrap: func(c *AggregationCompiler, b *aggregation.BucketBase, inner interface{}) (interface{}, error) {
			filter, err := c.filterDSL(b.NestedFilter)
			if err != nil {
				return nil, err
			}
			return wrapWith("filter", filter, b.Name, inner), nil
		},
	},
	{
		applies: func(b *aggregation.BucketBase) bool { return b.IsNested() },
		wrap: func(c *AggregationCompiler, b *aggregation.BucketBase, inner interface{}) (interface{}, error) {
			return wrapWith("nested", map[string]interface{}{"path": b.NestedPath}, b.Name, inner), nil
		},
	},
	{
		applies: func(b *aggregation.BucketBase) bool { return b.Filter != nil },
		wrap: func(c *AggregationCompiler, b *aggregation.BucketBase, inner interface{}) (interface{}, error) {
			filter, err := c.filterDSL(b.Filter)
			if err != nil {
				return nil, err
			}
			return wrapWith("filter", filter, b.Name, inner), nil
		},
	},
}

func wrapWith(kind string, params interface{}, name string, inner interface{}) map[string]interface{} {
	aggs := NewOrderedMap()
	aggs.Set(name, inner)
	return map[string]interface{}{
		kind:           params,
		"aggregations": aggs,
	}
}

// AggregationCompiler 将bucket树编译为ES aggregations
type AggregationCompiler struct {
	queries *QueryCompiler
}

// NewAggregationCompiler 创建聚合编译器
func NewAggregationCompiler(queries *QueryCompiler) *AggregationCompiler {
	if queries == nil {
		queries = NewQueryCompiler()
	}
	return &AggregationCompiler{queries: queries}
}

// Compile 编译bucket列表，输出按输入顺序排列
func (c *AggregationCompiler) Compile(buckets []aggregation.Bucket) (*OrderedMap, error) {
	if err := aggregation.ValidateNames(buckets); err != nil {
		return nil, err
	}
	return c.compileList(buckets)
}

func (c *AggregationCompiler) compileList(buckets []aggregation.Bucket) (*OrderedMap, error) {
	out := NewOrderedMap()
	for _, b := range buckets {
		if b == nil {
			continue
		}
		compiled, err := c.compileBucket(b)
		if err != nil {
			return nil, err
		}
		out.Set(b.Base().Name, compiled)
	}
	return out, nil
}

func (c *AggregationCompiler) compileBucket(b aggregation.Bucket) (interface{}, error) {
	base := b.Base()
	subAggs := NewOrderedMap()

	dsl, err := c.compileBucketBody(b, subAggs)
	if err != nil {
		return nil, err
	}

	children, err := c.compileList(base.Children)
	if err != nil {
		return nil, err
	}
	for _, name := range children.Keys() {
		v, _ := children.Get(name)
		if err := addSubAgg(subAggs, name, v); err != nil {
			return nil, err
		}
	}
	for _, m := range base.Metrics {
		if err := addSubAgg(subAggs, m.Name, compileMetric(m)); err != nil {
			return nil, err
		}
	}
	for _, p := range base.Pipelines {
		if p == nil {
			continue
		}
		compiled, err := compilePipeline(p)
		if err != nil {
			return nil, err
		}
		if err := addSubAgg(subAggs, p.Base().Name, compiled); err != nil {
			return nil, err
		}
	}
	if subAggs.Len() > 0 {
		dsl["aggregations"] = subAggs
	}

	var wrapped interface{} = dsl
	for _, w := range bucketWrappers {
		if !w.applies(base) {
			continue
		}
		if wrapped, err = w.wrap(c, base, wrapped); err != nil {
			return nil, err
		}
	}
	return wrapped, nil
}

// addSubAgg 添加子聚合，名称与已生成的子聚合（如termRelevance）冲突时报错
func addSubAgg(subAggs *OrderedMap, name string, v interface{}) error {
	if _, exists := subAggs.Get(name); exists {
		return &DuplicateBucketNameError{Name: name}
	}
	subAggs.Set(name, v)
	return nil
}

// compileBucketBody 编译bucket自身，subAggs用于附加类型相关的子聚合
func (c *AggregationCompiler) compileBucketBody(b aggregation.Bucket, subAggs *OrderedMap) (map[string]interface{}, error) {
	switch n := b.(type) {
	case *aggregation.TermBucket:
		return c.compileTerms(n, subAggs), nil
	case *aggregation.HistogramBucket:
		params := map[string]interface{}{
			"field":         n.Field,
			"interval":      n.Interval,
			"min_doc_count": n.MinDocCount,
		}
		if len(n.ExtendedBounds) > 0 {
			params["extended_bounds"] = n.ExtendedBounds
		}
		return map[string]interface{}{"histogram": params}, nil
	case *aggregation.DateHistogramBucket:
		params := map[string]interface{}{
			"field":         n.Field,
			"interval":      n.Interval,
			"min_doc_count": n.MinDocCount,
		}
		if n.Format != "" {
			params["format"] = n.Format
		}
		if n.TimeZone != "" {
			params["time_zone"] = n.TimeZone
		}
		if len(n.ExtendedBounds) > 0 {
			params["extended_bounds"] = n.ExtendedBounds
		}
		return map[string]interface{}{"date_histogram": params}, nil
	case *aggregation.QueryGroupBucket:
		filters := NewOrderedMap()
		for _, nq := range n.Queries {
			compiled, err := c.filterDSL(nq.Query)
			if err != nil {
				return nil, err
			}
			filters.Set(nq.Name, compiled)
		}
		return map[string]interface{}{"filters": map[string]interface{}{"filters": filters}}, nil
	case *aggregation.SignificantTermBucket:
		params := map[string]interface{}{
			"field":         n.Field,
			"size":          bucketSize(n.Size),
			"min_doc_count": n.MinDocCount,
		}
		if n.Algorithm != "" {
			params[n.Algorithm] = map[string]interface{}{}
		}
		return map[string]interface{}{"significant_terms": params}, nil
	case *aggregation.ReverseNestedBucket:
		params := map[string]interface{}{}
		if n.Path != "" {
			params["path"] = n.Path
		}
		return map[string]interface{}{"reverse_nested": params}, nil
	case *aggregation.TopHitsBucket:
		params := map[string]interface{}{"size": n.Size}
		if len(n.Sort) > 0 {
			params["sort"] = n.Sort
		}
		if len(n.Source) > 0 {
			params["_source"] = n.Source
		}
		return map[string]interface{}{"top_hits": params}, nil
	default:
		return nil, &aggregation.UnsupportedBucketTypeError{Type: fmt.Sprintf("%T", b)}
	}
}

func (c *AggregationCompiler) compileTerms(b *aggregation.TermBucket, subAggs *OrderedMap) map[string]interface{} {
	params := map[string]interface{}{
		"field": b.Field,
		"size":  bucketSize(b.Size),
	}

	switch b.SortOrder {
	case aggregation.SortOrderTerm:
		params["order"] = []interface{}{map[string]interface{}{"_key": "asc"}}
	case aggregation.SortOrderRelevance:
		if b.IsNested() {
			// nested上下文中_score不可用，退化为按文档数排序
			params["order"] = countOrder()
			break
		}
		params["order"] = []interface{}{
			map[string]interface{}{TermRelevanceAgg: "desc"},
			map[string]interface{}{"_count": "desc"},
		}
		subAggs.Set(TermRelevanceAgg, map[string]interface{}{
			"avg": map[string]interface{}{"script": "_score"},
		})
	default:
		params["order"] = countOrder()
	}

	if len(b.Include) > 0 {
		params["include"] = b.Include
	}
	if len(b.Exclude) > 0 {
		params["exclude"] = b.Exclude
	}
	if b.MinDocCount != nil {
		params["min_doc_count"] = *b.MinDocCount
	}
	return map[string]interface{}{"terms": params}
}

func countOrder() []interface{} {
	return []interface{}{
		map[string]interface{}{"_count": "desc"},
		map[string]interface{}{"_key": "asc"},
	}
}

func bucketSize(size int) int {
	if size <= 0 {
		return MaxBucketSize
	}
	return size
}

// filterDSL 编译过滤条件，空条件视为match_all
func (c *AggregationCompiler) filterDSL(q query.Query) (map[string]interface{}, error) {
	compiled, err := c.queries.Compile(q)
	if err != nil {
		return nil, err
	}
	if len(compiled) == 0 {
		return MatchAll(), nil
	}
	return compiled, nil
}

func compileMetric(m aggregation.Metric) map[string]interface{} {
	params := make(map[string]interface{}, len(m.Config)+1)
	if m.Field != "" {
		params["field"] = m.Field
	}
	for k, v := range m.Config {
		params[k] = v
	}
	return map[string]interface{}{m.Type: params}
}

func compilePipeline(p aggregation.Pipeline) (map[string]interface{}, error) {
	base := p.Base()
	params := map[string]interface{}{"buckets_path": base.BucketsPath}
	if base.GapPolicy != "" {
		params["gap_policy"] = base.GapPolicy
	}

	switch n := p.(type) {
	case *aggregation.BucketSelectorPipeline:
		params["script"] = n.Script
	case *aggregation.MovingFunctionPipeline:
		params["script"] = n.Script
		params["window"] = n.Window
		if n.Shift != 0 {
			params["shift"] = n.Shift
		}
	case *aggregation.BucketMetricPipeline:
		switch n.Kind {
		case aggregation.PipelineMaxBucket, aggregation.PipelineMinBucket,
			aggregation.PipelineAvgBucket, aggregation.PipelineSumBucket:
		default:
			return nil, &aggregation.UnsupportedPipelineTypeError{Type: string(n.Kind)}
		}
		if n.Format != "" {
			params["format"] = n.Format
		}
	case *aggregation.BucketScriptPipeline:
		params["script"] = n.Script
		if n.Format != "" {
			params["format"] = n.Format
		}
	default:
		return nil, &aggregation.UnsupportedPipelineTypeError{Type: fmt.Sprintf("%T", p)}
	}
	return map[string]interface{}{string(p.Type()): params}, nil
}
