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

package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString 同时接受JSON字符串和数字（如 minimum_should_match: 1 或 "75%"）
type FlexString string

// UnmarshalJSON 实现json.Unmarshaler
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(strings.TrimSpace(string(data)))
	return nil
}

// rawNode 带类型标签的查询节点输入格式
// 例如: {"type": "match", "field": "name", "text": "red shoes"}
type rawNode struct {
	Type               string                 `json:"type"`
	Field              string                 `json:"field"`
	Text               string                 `json:"text"`
	Value              interface{}            `json:"value"`
	Values             []interface{}          `json:"values"`
	Bounds             map[string]interface{} `json:"bounds"`
	Must               []json.RawMessage      `json:"must"`
	Should             []json.RawMessage      `json:"should"`
	MustNot            []json.RawMessage      `json:"must_not"`
	Query              json.RawMessage        `json:"query"`
	Filter             json.RawMessage        `json:"filter"`
	Path               string                 `json:"path"`
	ScoreMode          string                 `json:"score_mode"`
	MinimumShouldMatch FlexString             `json:"minimum_should_match"`
	Fuzziness          FlexString             `json:"fuzziness"`
	Fields             []WeightedField        `json:"fields"`
	MatchType          string                 `json:"match_type"`
	TieBreaker         *float64               `json:"tie_breaker"`
	CutoffFrequency    float64                `json:"cutoff_frequency"`
	Boost              *float64               `json:"boost"`
}

// Decode 解析带类型标签的JSON查询节点
// 空输入或null返回 (nil, nil)；未知类型返回 *UnsupportedQueryTypeError
func Decode(data []byte) (Query, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	// 保留数字原文，range边界和term值原样输出
	dec.UseNumber()
	var raw rawNode
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode query node: %w", err)
	}

	boost := DefaultBoost
	if raw.Boost != nil {
		boost = *raw.Boost
	}

	switch Type(raw.Type) {
	case TypeBool:
		must, err := decodeList(raw.Must, "must")
		if err != nil {
			return nil, err
		}
		should, err := decodeList(raw.Should, "should")
		if err != nil {
			return nil, err
		}
		mustNot, err := decodeList(raw.MustNot, "must_not")
		if err != nil {
			return nil, err
		}
		return &BoolQuery{
			Must:               must,
			Should:             should,
			MustNot:            mustNot,
			MinimumShouldMatch: string(raw.MinimumShouldMatch),
			Boost:              boost,
		}, nil

	case TypeMatch:
		if raw.Field == "" {
			return nil, fmt.Errorf("match query requires a field")
		}
		return &MatchQuery{
			Field:              raw.Field,
			Text:               raw.Text,
			MinimumShouldMatch: string(raw.MinimumShouldMatch),
			Fuzziness:          string(raw.Fuzziness),
			Boost:              boost,
		}, nil

	case TypeMultiMatch:
		if len(raw.Fields) == 0 {
			return nil, fmt.Errorf("multi_match query requires fields")
		}
		return &MultiMatchQuery{
			Text:               raw.Text,
			Fields:             raw.Fields,
			MatchType:          raw.MatchType,
			MinimumShouldMatch: string(raw.MinimumShouldMatch),
			TieBreaker:         raw.TieBreaker,
			Fuzziness:          string(raw.Fuzziness),
			Boost:              boost,
		}, nil

	case TypeCommon:
		if raw.Field == "" {
			return nil, fmt.Errorf("common query requires a field")
		}
		return &CommonQuery{
			Field:              raw.Field,
			Text:               raw.Text,
			CutoffFrequency:    raw.CutoffFrequency,
			MinimumShouldMatch: string(raw.MinimumShouldMatch),
			Boost:              boost,
		}, nil

	case TypeRange:
		if raw.Field == "" {
			return nil, fmt.Errorf("range query requires a field")
		}
		bounds := raw.Bounds
		if bounds == nil {
			bounds = map[string]interface{}{}
		}
		return &RangeQuery{Field: raw.Field, Bounds: bounds, Boost: boost}, nil

	case TypeTerm:
		if raw.Field == "" {
			return nil, fmt.Errorf("term query requires a field")
		}
		return &TermQuery{Field: raw.Field, Value: raw.Value, Boost: boost}, nil

	case TypeTerms:
		if raw.Field == "" {
			return nil, fmt.Errorf("terms query requires a field")
		}
		values := raw.Values
		if values == nil {
			values = []interface{}{}
		}
		return &TermsQuery{Field: raw.Field, Values: values, Boost: boost}, nil

	case TypeNested:
		if raw.Path == "" {
			return nil, fmt.Errorf("nested query requires a path")
		}
		inner, err := Decode(raw.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to decode nested query: %w", err)
		}
		scoreMode := raw.ScoreMode
		if scoreMode == "" {
			scoreMode = ScoreModeNone
		}
		return &NestedQuery{Path: raw.Path, Query: inner, ScoreMode: scoreMode, Boost: boost}, nil

	case TypeFiltered:
		inner, err := Decode(raw.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to decode filtered query: %w", err)
		}
		filter, err := Decode(raw.Filter)
		if err != nil {
			return nil, fmt.Errorf("failed to decode filtered filter: %w", err)
		}
		return &FilteredQuery{Query: inner, Filter: filter, Boost: boost}, nil

	case TypeExists:
		if raw.Field == "" {
			return nil, fmt.Errorf("exists query requires a field")
		}
		return &ExistsQuery{Field: raw.Field}, nil

	case TypeMissing:
		if raw.Field == "" {
			return nil, fmt.Errorf("missing query requires a field")
		}
		return &MissingQuery{Field: raw.Field}, nil

	case TypeNot:
		inner, err := Decode(raw.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to decode not query: %w", err)
		}
		return &NotQuery{Query: inner, Boost: boost}, nil
	}

	return nil, &UnsupportedQueryTypeError{Type: raw.Type}
}

func decodeList(items []json.RawMessage, clause string) ([]Query, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]Query, 0, len(items))
	for _, item := range items {
		q, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s clause: %w", clause, err)
		}
		if q != nil {
			out = append(out, q)
		}
	}
	return out, nil
}
