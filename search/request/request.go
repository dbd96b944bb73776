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

// Package request 定义待编译的抽象搜索请求
package request

import (
	"fmt"
	"strings"

	"github.com/lscgzwd/tigersuite/search/aggregation"
	"github.com/lscgzwd/tigersuite/search/query"
)

// SpellingType 查询文本与索引内容的字面匹配程度
type SpellingType int

const (
	SpellingTypeExact SpellingType = iota + 1
	SpellingTypeMostExact
	SpellingTypeMostFuzzy
	SpellingTypeFuzzy
	SpellingTypePureStopwords
)

var spellingTypeNames = map[SpellingType]string{
	SpellingTypeExact:         "EXACT",
	SpellingTypeMostExact:     "MOST_EXACT",
	SpellingTypeMostFuzzy:     "MOST_FUZZY",
	SpellingTypeFuzzy:         "FUZZY",
	SpellingTypePureStopwords: "PURE_STOPWORDS",
}

// String 返回拼写类型名称
func (t SpellingType) String() string {
	if name, ok := spellingTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseSpellingType 解析拼写类型名称（大小写不敏感）
func ParseSpellingType(s string) (SpellingType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range spellingTypeNames {
		if name == upper {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown spelling type %q", s)
}

// MarshalText 实现encoding.TextMarshaler
func (t SpellingType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler
func (t *SpellingType) UnmarshalText(text []byte) error {
	parsed, err := ParseSpellingType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// 排序方向
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// 缺失值位置
const (
	MissingFirst = "_first"
	MissingLast  = "_last"
)

// ScoreField 按相关度排序的伪字段
const ScoreField = "_score"

// SortScript 脚本排序
type SortScript struct {
	// Type 排序值类型："number" 或 "string"
	Type   string                 `json:"type"`
	Lang   string                 `json:"lang"`
	Source string                 `json:"source"`
	Params map[string]interface{} `json:"params"`
}

// SortOrder 排序规则
type SortOrder struct {
	Field     string
	Direction string
	// Missing 为空时按方向取默认值（asc -> _last, desc -> _first）
	Missing      string
	NestedPath   string
	NestedFilter query.Query
	// Mode nested排序时多值的取值方式（min/max/avg/sum）
	Mode   string
	Script *SortScript
}

// IsNested 是否为nested排序
func (s *SortOrder) IsNested() bool { return s.NestedPath != "" }

// InnerHits collapse的折叠内文档
type InnerHits struct {
	Name string        `json:"name"`
	Size int           `json:"size"`
	Sort []interface{} `json:"sort,omitempty"`
}

// Collapse 字段折叠
type Collapse struct {
	Field     string     `json:"field"`
	InnerHits *InnerHits `json:"inner_hits,omitempty"`
}

// SearchRequest 一次搜索的完整抽象描述
type SearchRequest struct {
	// Container 搜索容器名（如 quick_search_container）
	Container string
	Index     string
	StoreID   int

	// Query 结构化主查询（可为空）
	Query query.Query
	// Filter 独立过滤条件，编译为post_filter，不合并到主查询
	Filter query.Query

	// QueryText 全文查询文本，经拼写检查和同义词改写后与Query合并
	QueryText []string
	// Boost 全文查询权重，0表示默认权重
	Boost float64

	Buckets    []aggregation.Bucket
	SortOrders []SortOrder
	From       int
	Size       int
	Collapse   *Collapse

	// SpellingType 已解析的拼写类型；为0时由搜索引擎流程解析
	SpellingType SpellingType
}

// HasFulltext 请求是否带有全文查询文本
func (r *SearchRequest) HasFulltext() bool {
	for _, t := range r.QueryText {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

// FulltextBoost 全文查询实际权重
func (r *SearchRequest) FulltextBoost() float64 {
	if r.Boost == 0 {
		return query.DefaultBoost
	}
	return r.Boost
}

// JoinedText 多段查询文本以空格连接，用于拼写检查
func (r *SearchRequest) JoinedText() string {
	parts := make([]string, 0, len(r.QueryText))
	for _, t := range r.QueryText {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
