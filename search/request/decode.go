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

package request

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lscgzwd/tigersuite/search/aggregation"
	"github.com/lscgzwd/tigersuite/search/query"
)

// textList 接受 "text" 或 ["text1", "text2"]
type textList []string

func (l *textList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = textList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("query_text must be a string or a list of strings: %w", err)
	}
	*l = list
	return nil
}

type rawSortOrder struct {
	Field        string          `json:"field"`
	Direction    string          `json:"direction"`
	Missing      string          `json:"missing"`
	NestedPath   string          `json:"nested_path"`
	NestedFilter json.RawMessage `json:"nested_filter"`
	Mode         string          `json:"mode"`
	Script       *SortScript     `json:"script"`
}

type rawSearchRequest struct {
	Container    string            `json:"container"`
	Index        string            `json:"index"`
	StoreID      int               `json:"store_id"`
	Query        json.RawMessage   `json:"query"`
	Filter       json.RawMessage   `json:"filter"`
	QueryText    textList          `json:"query_text"`
	Boost        float64           `json:"boost"`
	Buckets      []json.RawMessage `json:"buckets"`
	Sort         []rawSortOrder    `json:"sort"`
	From         int               `json:"from"`
	Size         *int              `json:"size"`
	Collapse     *Collapse         `json:"collapse"`
	SpellingType *SpellingType     `json:"spelling_type"`
}

// DefaultPageSize 未指定size时的默认分页大小
const DefaultPageSize = 10

// Decode 解析JSON格式的搜索请求
func Decode(data []byte) (*SearchRequest, error) {
	var raw rawSearchRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode search request: %w", err)
	}

	req := &SearchRequest{
		Container: raw.Container,
		Index:     raw.Index,
		StoreID:   raw.StoreID,
		QueryText: []string(raw.QueryText),
		Boost:     raw.Boost,
		From:      raw.From,
		Size:      DefaultPageSize,
		Collapse:  raw.Collapse,
	}
	if raw.Size != nil {
		req.Size = *raw.Size
	}
	if raw.SpellingType != nil {
		req.SpellingType = *raw.SpellingType
	}
	if req.From < 0 || req.Size < 0 {
		return nil, fmt.Errorf("from and size must not be negative")
	}
	if req.Collapse != nil && req.Collapse.Field == "" {
		return nil, fmt.Errorf("collapse requires a field")
	}

	var err error
	if req.Query, err = query.Decode(raw.Query); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if req.Filter, err = query.Decode(raw.Filter); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if req.Buckets, err = aggregation.DecodeBuckets(raw.Buckets); err != nil {
		return nil, fmt.Errorf("buckets: %w", err)
	}

	for i, rs := range raw.Sort {
		order := SortOrder{
			Field:      rs.Field,
			Direction:  rs.Direction,
			Missing:    rs.Missing,
			NestedPath: rs.NestedPath,
			Mode:       rs.Mode,
			Script:     rs.Script,
		}
		if order.Field == "" && order.Script == nil {
			return nil, fmt.Errorf("sort[%d]: field or script is required", i)
		}
		if order.NestedFilter, err = query.Decode(rs.NestedFilter); err != nil {
			return nil, fmt.Errorf("sort[%d] nested_filter: %w", i, err)
		}
		req.SortOrders = append(req.SortOrders, order)
	}

	return req, nil
}
