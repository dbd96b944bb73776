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

// Package query 定义抽象查询树（与具体搜索引擎DSL无关）
// 查询节点是一个封闭的类型集合，编译器通过类型断言穷举处理
package query

import "fmt"

// DefaultBoost 默认权重，编译时等于默认值的boost不输出
const DefaultBoost = 1.0

// Type 查询节点类型标签
type Type string

const (
	TypeBool       Type = "bool"
	TypeMatch      Type = "match"
	TypeMultiMatch Type = "multi_match"
	TypeCommon     Type = "common"
	TypeRange      Type = "range"
	TypeTerm       Type = "term"
	TypeTerms      Type = "terms"
	TypeNested     Type = "nested"
	TypeFiltered   Type = "filtered"
	TypeExists     Type = "exists"
	TypeMissing    Type = "missing"
	TypeNot        Type = "not"
)

// nested查询的score_mode
const (
	ScoreModeNone = "none"
	ScoreModeAvg  = "avg"
	ScoreModeMax  = "max"
	ScoreModeMin  = "min"
	ScoreModeSum  = "sum"
)

// Query 查询节点
// isQuery 未导出，保证节点集合在本包内封闭
type Query interface {
	Type() Type
	GetBoost() float64
	isQuery()
}

// EffectiveBoost 零值boost视为默认权重
func EffectiveBoost(q Query) float64 {
	if q == nil || q.GetBoost() == 0 {
		return DefaultBoost
	}
	return q.GetBoost()
}

// BoolQuery 布尔组合查询
type BoolQuery struct {
	Must               []Query
	Should             []Query
	MustNot            []Query
	MinimumShouldMatch string
	Boost              float64
}

func (q *BoolQuery) Type() Type        { return TypeBool }
func (q *BoolQuery) GetBoost() float64 { return q.Boost }
func (*BoolQuery) isQuery()            {}

// MatchQuery 全文匹配查询
type MatchQuery struct {
	Field              string
	Text               string
	MinimumShouldMatch string
	Fuzziness          string
	Boost              float64
}

func (q *MatchQuery) Type() Type        { return TypeMatch }
func (q *MatchQuery) GetBoost() float64 { return q.Boost }
func (*MatchQuery) isQuery()            {}

// WeightedField 带权重的搜索字段
type WeightedField struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// String 返回 "name^weight" 形式，权重为1时只返回字段名
func (f WeightedField) String() string {
	if f.Weight == 0 || f.Weight == 1 {
		return f.Name
	}
	return fmt.Sprintf("%s^%g", f.Name, f.Weight)
}

// MultiMatchQuery 多字段匹配查询
type MultiMatchQuery struct {
	Text               string
	Fields             []WeightedField
	MatchType          string
	MinimumShouldMatch string
	TieBreaker         *float64
	Fuzziness          string
	Boost              float64
}

func (q *MultiMatchQuery) Type() Type        { return TypeMultiMatch }
func (q *MultiMatchQuery) GetBoost() float64 { return q.Boost }
func (*MultiMatchQuery) isQuery()            {}

// CommonQuery common terms查询（高频词按cutoff降权）
type CommonQuery struct {
	Field              string
	Text               string
	CutoffFrequency    float64
	MinimumShouldMatch string
	Boost              float64
}

func (q *CommonQuery) Type() Type        { return TypeCommon }
func (q *CommonQuery) GetBoost() float64 { return q.Boost }
func (*CommonQuery) isQuery()            {}

// RangeQuery 范围查询，Bounds原样输出（包括nil端点）
type RangeQuery struct {
	Field  string
	Bounds map[string]interface{}
	Boost  float64
}

func (q *RangeQuery) Type() Type        { return TypeRange }
func (q *RangeQuery) GetBoost() float64 { return q.Boost }
func (*RangeQuery) isQuery()            {}

// TermQuery 精确值查询
type TermQuery struct {
	Field string
	Value interface{}
	Boost float64
}

func (q *TermQuery) Type() Type        { return TypeTerm }
func (q *TermQuery) GetBoost() float64 { return q.Boost }
func (*TermQuery) isQuery()            {}

// TermsQuery 多值精确查询
type TermsQuery struct {
	Field  string
	Values []interface{}
	Boost  float64
}

func (q *TermsQuery) Type() Type        { return TypeTerms }
func (q *TermsQuery) GetBoost() float64 { return q.Boost }
func (*TermsQuery) isQuery()            {}

// NestedQuery 嵌套文档查询
type NestedQuery struct {
	Path      string
	Query     Query
	ScoreMode string
	Boost     float64
}

func (q *NestedQuery) Type() Type        { return TypeNested }
func (q *NestedQuery) GetBoost() float64 { return q.Boost }
func (*NestedQuery) isQuery()            {}

// FilteredQuery 旧式 query + filter 两段式查询
type FilteredQuery struct {
	Query  Query
	Filter Query
	Boost  float64
}

func (q *FilteredQuery) Type() Type        { return TypeFiltered }
func (q *FilteredQuery) GetBoost() float64 { return q.Boost }
func (*FilteredQuery) isQuery()            {}

// ExistsQuery 字段存在查询
type ExistsQuery struct {
	Field string
}

func (q *ExistsQuery) Type() Type        { return TypeExists }
func (q *ExistsQuery) GetBoost() float64 { return DefaultBoost }
func (*ExistsQuery) isQuery()            {}

// MissingQuery 字段缺失查询
type MissingQuery struct {
	Field string
}

func (q *MissingQuery) Type() Type        { return TypeMissing }
func (q *MissingQuery) GetBoost() float64 { return DefaultBoost }
func (*MissingQuery) isQuery()            {}

// NotQuery 取反查询
type NotQuery struct {
	Query Query
	Boost float64
}

func (q *NotQuery) Type() Type        { return TypeNot }
func (q *NotQuery) GetBoost() float64 { return q.Boost }
func (*NotQuery) isQuery()            {}

// UnsupportedQueryTypeError 未知的查询类型
// 属于配置或程序缺陷，不应重试
type UnsupportedQueryTypeError struct {
	Type string
}

func (e *UnsupportedQueryTypeError) Error() string {
	return fmt.Sprintf("unsupported query type: %q", e.Type)
}
