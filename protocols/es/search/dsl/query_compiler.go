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
	"reflect"

	"github.com/lscgzwd/tigersuite/search/query"
)

// MatchAll 空查询的DSL
func MatchAll() map[string]interface{} {
	return map[string]interface{}{"match_all": map[string]interface{}{}}
}

// QueryCompiler 将抽象查询树编译为ES Query DSL
// 无状态，可并发使用
type QueryCompiler struct{}

// NewQueryCompiler 创建查询编译器
func NewQueryCompiler() *QueryCompiler {
	return &QueryCompiler{}
}

// Compile 编译查询节点
// q为nil（包括带类型的nil节点）时返回nil（表示"无查询"），由调用方决定是否替换为match_all
func (c *QueryCompiler) Compile(q query.Query) (map[string]interface{}, error) {
	if isNilQuery(q) {
		return nil, nil
	}

	switch n := q.(type) {
	case *query.BoolQuery:
		return c.compileBool(n)
	case *query.MatchQuery:
		return c.compileMatch(n), nil
	case *query.MultiMatchQuery:
		return c.compileMultiMatch(n), nil
	case *query.CommonQuery:
		return c.compileCommon(n), nil
	case *query.RangeQuery:
		return c.compileRange(n), nil
	case *query.TermQuery:
		body := map[string]interface{}{"value": n.Value}
		addBoost(body, n)
		return map[string]interface{}{"term": map[string]interface{}{n.Field: body}}, nil
	case *query.TermsQuery:
		values := n.Values
		if values == nil {
			values = []interface{}{}
		}
		body := map[string]interface{}{n.Field: values}
		addBoost(body, n)
		return map[string]interface{}{"terms": body}, nil
	case *query.NestedQuery:
		return c.compileNested(n)
	case *query.FilteredQuery:
		return c.compileFiltered(n)
	case *query.ExistsQuery:
		return map[string]interface{}{"exists": map[string]interface{}{"field": n.Field}}, nil
	case *query.MissingQuery:
		return map[string]interface{}{"missing": map[string]interface{}{"field": n.Field}}, nil
	case *query.NotQuery:
		return c.compileNot(n)
	default:
		return nil, &query.UnsupportedQueryTypeError{Type: fmt.Sprintf("%T", q)}
	}
}

// addBoost 仅在boost不等于默认值时输出
func addBoost(body map[string]interface{}, q query.Query) {
	if b := query.EffectiveBoost(q); b != query.DefaultBoost {
		body["boost"] = b
	}
}

// compileClauses 编译子句列表，丢弃nil和空结果
func isNilQuery(q query.Query) bool {
	if q == nil {
		return true
	}
	v := reflect.ValueOf(q)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func (c *QueryCompiler) compileClauses(clauses []query.Query) ([]interface{}, error) {
	out := make([]interface{}, 0, len(clauses))
	for _, clause := range clauses {
		compiled, err := c.Compile(clause)
		if err != nil {
			return nil, err
		}
		if len(compiled) == 0 {
			continue
		}
		out = append(out, compiled)
	}
	return out, nil
}

func (c *QueryCompiler) compileBool(q *query.BoolQuery) (map[string]interface{}, error) {
	must, err := c.compileClauses(q.Must)
	if err != nil {
		return nil, err
	}
	mustNot, err := c.compileClauses(q.MustNot)
	if err != nil {
		return nil, err
	}
	should, err := c.compileClauses(q.Should)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"must":     must,
		"must_not": mustNot,
		"should":   should,
	}
	if q.MinimumShouldMatch != "" {
		body["minimum_should_match"] = q.MinimumShouldMatch
	}
	addBoost(body, q)
	return map[string]interface{}{"bool": body}, nil
}

func (c *QueryCompiler) compileMatch(q *query.MatchQuery) map[string]interface{} {
	body := map[string]interface{}{"query": q.Text}
	if q.MinimumShouldMatch != "" {
		body["minimum_should_match"] = q.MinimumShouldMatch
	}
	if q.Fuzziness != "" {
		body["fuzziness"] = q.Fuzziness
	}
	addBoost(body, q)
	return map[string]interface{}{"match": map[string]interface{}{q.Field: body}}
}

func (c *QueryCompiler) compileMultiMatch(q *query.MultiMatchQuery) map[string]interface{} {
	fields := make([]string, 0, len(q.Fields))
	for _, f := range q.Fields {
		fields = append(fields, f.String())
	}
	matchType := q.MatchType
	if matchType == "" {
		matchType = "best_fields"
	}
	body := map[string]interface{}{
		"query":  q.Text,
		"fields": fields,
		"type":   matchType,
	}
	if q.MinimumShouldMatch != "" {
		body["minimum_should_match"] = q.MinimumShouldMatch
	}
	if q.TieBreaker != nil {
		body["tie_breaker"] = *q.TieBreaker
	}
	if q.Fuzziness != "" {
		body["fuzziness"] = q.Fuzziness
	}
	addBoost(body, q)
	return map[string]interface{}{"multi_match": body}
}

func (c *QueryCompiler) compileCommon(q *query.CommonQuery) map[string]interface{} {
	body := map[string]interface{}{
		"query":            q.Text,
		"cutoff_frequency": q.CutoffFrequency,
	}
	if q.MinimumShouldMatch != "" {
		body["minimum_should_match"] = q.MinimumShouldMatch
	}
	addBoost(body, q)
	return map[string]interface{}{"common": map[string]interface{}{q.Field: body}}
}

// compileRange 端点原样输出，包括nil端点
func (c *QueryCompiler) compileRange(q *query.RangeQuery) map[string]interface{} {
	body := make(map[string]interface{}, len(q.Bounds)+1)
	for k, v := range q.Bounds {
		body[k] = v
	}
	addBoost(body, q)
	return map[string]interface{}{"range": map[string]interface{}{q.Field: body}}
}

func (c *QueryCompiler) compileNested(q *query.NestedQuery) (map[string]interface{}, error) {
	inner, err := c.Compile(q.Query)
	if err != nil {
		return nil, err
	}
	if len(inner) == 0 {
		inner = MatchAll()
	}
	scoreMode := q.ScoreMode
	if scoreMode == "" {
		scoreMode = query.ScoreModeNone
	}
	body := map[string]interface{}{
		"path":       q.Path,
		"score_mode": scoreMode,
		"query":      inner,
	}
	addBoost(body, q)
	return map[string]interface{}{"nested": body}, nil
}

func (c *QueryCompiler) compileFiltered(q *query.FilteredQuery) (map[string]interface{}, error) {
	body := make(map[string]interface{}, 3)
	inner, err := c.Compile(q.Query)
	if err != nil {
		return nil, err
	}
	if len(inner) > 0 {
		body["query"] = inner
	}
	filter, err := c.Compile(q.Filter)
	if err != nil {
		return nil, err
	}
	if len(filter) > 0 {
		body["filter"] = filter
	}
	addBoost(body, q)
	return map[string]interface{}{"filtered": body}, nil
}

func (c *QueryCompiler) compileNot(q *query.NotQuery) (map[string]interface{}, error) {
	inner, err := c.Compile(q.Query)
	if err != nil {
		return nil, err
	}
	mustNot := make([]interface{}, 0, 1)
	if len(inner) > 0 {
		mustNot = append(mustNot, inner)
	}
	body := map[string]interface{}{"must_not": mustNot}
	addBoost(body, q)
	return map[string]interface{}{"bool": body}, nil
}
