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

// Package aggregation 定义抽象聚合树：bucket、metric 和 pipeline
package aggregation

import (
	"fmt"

	"github.com/lscgzwd/tigersuite/search/query"
)

// BucketType bucket类型标签
type BucketType string

const (
	TypeTerms            BucketType = "terms"
	TypeHistogram        BucketType = "histogram"
	TypeDateHistogram    BucketType = "date_histogram"
	TypeQueryGroup       BucketType = "query_group"
	TypeSignificantTerms BucketType = "significant_terms"
	TypeReverseNested    BucketType = "reverse_nested"
	TypeTopHits          BucketType = "top_hits"
)

// terms bucket 排序方式
const (
	SortOrderCount     = "_count"
	SortOrderTerm      = "_term"
	SortOrderRelevance = "_score"
	SortOrderManual    = "_manual"
)

// Bucket 聚合节点
type Bucket interface {
	Type() BucketType
	Base() *BucketBase
	isBucket()
}

// BucketBase 所有bucket共有的字段
type BucketBase struct {
	Name      string
	Field     string
	Metrics   []Metric
	Children  []Bucket
	Pipelines []Pipeline
	// Filter 作用于整个bucket（最外层包装）
	Filter query.Query
	// NestedPath 非空时bucket位于nested文档内
	NestedPath string
	// NestedFilter 在nested上下文内过滤子文档
	NestedFilter query.Query
}

// Base 返回公共字段
func (b *BucketBase) Base() *BucketBase { return b }

// IsNested 当且仅当设置了NestedPath
func (b *BucketBase) IsNested() bool { return b.NestedPath != "" }

// TermBucket terms聚合
type TermBucket struct {
	BucketBase
	Size        int
	SortOrder   string
	Include     []string
	Exclude     []string
	MinDocCount *int
}

func (*TermBucket) Type() BucketType { return TypeTerms }
func (*TermBucket) isBucket()        {}

// HistogramBucket 数值直方图
type HistogramBucket struct {
	BucketBase
	Interval       float64
	MinDocCount    int
	ExtendedBounds map[string]interface{}
}

func (*HistogramBucket) Type() BucketType { return TypeHistogram }
func (*HistogramBucket) isBucket()        {}

// DateHistogramBucket 日期直方图
type DateHistogramBucket struct {
	BucketBase
	Interval       string
	MinDocCount    int
	Format         string
	TimeZone       string
	ExtendedBounds map[string]interface{}
}

func (*DateHistogramBucket) Type() BucketType { return TypeDateHistogram }
func (*DateHistogramBucket) isBucket()        {}

// NamedQuery query_group中的一个命名子查询
type NamedQuery struct {
	Name  string
	Query query.Query
}

// QueryGroupBucket 按一组命名查询分桶（ES filters聚合）
type QueryGroupBucket struct {
	BucketBase
	Queries []NamedQuery
}

func (*QueryGroupBucket) Type() BucketType { return TypeQueryGroup }
func (*QueryGroupBucket) isBucket()        {}

// SignificantTermBucket significant_terms聚合
type SignificantTermBucket struct {
	BucketBase
	Size        int
	MinDocCount int
	Algorithm   string
}

func (*SignificantTermBucket) Type() BucketType { return TypeSignificantTerms }
func (*SignificantTermBucket) isBucket()        {}

// ReverseNestedBucket 从nested上下文回到父文档（Path为空表示根文档）
type ReverseNestedBucket struct {
	BucketBase
	Path string
}

func (*ReverseNestedBucket) Type() BucketType { return TypeReverseNested }
func (*ReverseNestedBucket) isBucket()        {}

// TopHitsBucket 每个桶内的top文档
type TopHitsBucket struct {
	BucketBase
	Size   int
	Sort   []interface{}
	Source []string
}

func (*TopHitsBucket) Type() BucketType { return TypeTopHits }
func (*TopHitsBucket) isBucket()        {}

// Metric 挂在bucket上的指标
// 编译为 {Name: {Type: {"field": Field, ...Config}}}
type Metric struct {
	Name   string
	Field  string
	Type   string
	Config map[string]interface{}
}

// PipelineType pipeline类型标签
type PipelineType string

const (
	PipelineBucketSelector PipelineType = "bucket_selector"
	PipelineMovingFunction PipelineType = "moving_fn"
	PipelineMaxBucket      PipelineType = "max_bucket"
	PipelineMinBucket      PipelineType = "min_bucket"
	PipelineAvgBucket      PipelineType = "avg_bucket"
	PipelineSumBucket      PipelineType = "sum_bucket"
	PipelineBucketScript   PipelineType = "bucket_script"
)

// Pipeline pipeline聚合节点
type Pipeline interface {
	Type() PipelineType
	Base() *PipelineBase
	isPipeline()
}

// PipelineBase 所有pipeline共有的字段
// BucketsPath 可以是 string、[]string 或 map[string]string，编译时原样输出，不做引用校验
type PipelineBase struct {
	Name        string
	BucketsPath interface{}
	GapPolicy   string
}

// Base 返回公共字段
func (p *PipelineBase) Base() *PipelineBase { return p }

// BucketSelectorPipeline 按脚本条件保留bucket
type BucketSelectorPipeline struct {
	PipelineBase
	Script string
}

func (*BucketSelectorPipeline) Type() PipelineType { return PipelineBucketSelector }
func (*BucketSelectorPipeline) isPipeline()        {}

// MovingFunctionPipeline 滑动窗口函数
type MovingFunctionPipeline struct {
	PipelineBase
	Script string
	Window int
	Shift  int
}

func (*MovingFunctionPipeline) Type() PipelineType { return PipelineMovingFunction }
func (*MovingFunctionPipeline) isPipeline()        {}

// BucketMetricPipeline max/min/avg/sum_bucket 兄弟聚合
type BucketMetricPipeline struct {
	PipelineBase
	Kind   PipelineType
	Format string
}

func (p *BucketMetricPipeline) Type() PipelineType { return p.Kind }
func (*BucketMetricPipeline) isPipeline()          {}

// BucketScriptPipeline 按脚本计算新指标
type BucketScriptPipeline struct {
	PipelineBase
	Script string
	Format string
}

func (*BucketScriptPipeline) Type() PipelineType { return PipelineBucketScript }
func (*BucketScriptPipeline) isPipeline()        {}

// UnsupportedBucketTypeError 未知bucket类型
type UnsupportedBucketTypeError struct {
	Type string
}

func (e *UnsupportedBucketTypeError) Error() string {
	return fmt.Sprintf("unsupported bucket type: %q", e.Type)
}

// UnsupportedPipelineTypeError 未知pipeline类型
type UnsupportedPipelineTypeError struct {
	Type string
}

func (e *UnsupportedPipelineTypeError) Error() string {
	return fmt.Sprintf("unsupported pipeline type: %q", e.Type)
}

// DuplicateBucketNameError 同级聚合重名
type DuplicateBucketNameError struct {
	Name string
}

func (e *DuplicateBucketNameError) Error() string {
	return fmt.Sprintf("duplicate aggregation name %q among siblings", e.Name)
}

// ValidateNames 检查同级bucket、metric、pipeline名称唯一（递归）
// bucket、metric和pipeline共享同一个aggregations命名空间
func ValidateNames(buckets []Bucket) error {
	seen := make(map[string]struct{}, len(buckets))
	for _, b := range buckets {
		if b == nil {
			continue
		}
		base := b.Base()
		if _, dup := seen[base.Name]; dup {
			return &DuplicateBucketNameError{Name: base.Name}
		}
		seen[base.Name] = struct{}{}

		children := make(map[string]struct{})
		for _, c := range base.Children {
			if c == nil {
				continue
			}
			children[c.Base().Name] = struct{}{}
		}
		for _, m := range base.Metrics {
			if _, dup := children[m.Name]; dup {
				return &DuplicateBucketNameError{Name: m.Name}
			}
			children[m.Name] = struct{}{}
		}
		for _, p := range base.Pipelines {
			if p == nil {
				continue
			}
			name := p.Base().Name
			if _, dup := children[name]; dup {
				return &DuplicateBucketNameError{Name: name}
			}
			children[name] = struct{}{}
		}
		if err := ValidateNames(base.Children); err != nil {
			return err
		}
	}
	return nil
}
