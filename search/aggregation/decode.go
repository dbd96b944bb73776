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

package aggregation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lscgzwd/tigersuite/search/query"
)

// rawBucket bucket输入格式
// 例如: {"type": "terms", "name": "brand", "field": "brand_id", "size": 10,
//
//	"nested_path": "attrs", "metrics": [...], "children": [...], "pipelines": [...]}
type rawBucket struct {
	Type           string                 `json:"type"`
	Name           string                 `json:"name"`
	Field          string                 `json:"field"`
	Size           int                    `json:"size"`
	SortOrder      string                 `json:"sort_order"`
	Include        []string               `json:"include"`
	Exclude        []string               `json:"exclude"`
	MinDocCount    *int                   `json:"min_doc_count"`
	Interval       json.RawMessage        `json:"interval"`
	Format         string                 `json:"format"`
	TimeZone       string                 `json:"time_zone"`
	ExtendedBounds map[string]interface{} `json:"extended_bounds"`
	Queries        []rawNamedQuery        `json:"queries"`
	Algorithm      string                 `json:"algorithm"`
	Path           string                 `json:"path"`
	Sort           []interface{}          `json:"sort"`
	Source         []string               `json:"source"`
	Metrics        []rawMetric            `json:"metrics"`
	Children       []json.RawMessage      `json:"children"`
	Pipelines      []json.RawMessage      `json:"pipelines"`
	Filter         json.RawMessage        `json:"filter"`
	NestedPath     string                 `json:"nested_path"`
	NestedFilter   json.RawMessage        `json:"nested_filter"`
}

type rawNamedQuery struct {
	Name  string          `json:"name"`
	Query json.RawMessage `json:"query"`
}

type rawMetric struct {
	Name   string                 `json:"name"`
	Field  string                 `json:"field"`
	Type   string                 `json:"type"`
	Config map[string]interface{} `json:"config"`
}

type rawPipeline struct {
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	BucketsPath interface{} `json:"buckets_path"`
	GapPolicy   string      `json:"gap_policy"`
	Script      string      `json:"script"`
	Window      int         `json:"window"`
	Shift       int         `json:"shift"`
	Format      string      `json:"format"`
}

// DecodeBuckets 解析bucket列表并校验同级名称唯一
func DecodeBuckets(items []json.RawMessage) ([]Bucket, error) {
	buckets, err := decodeBucketList(items)
	if err != nil {
		return nil, err
	}
	if err := ValidateNames(buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func decodeBucketList(items []json.RawMessage) ([]Bucket, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]Bucket, 0, len(items))
	for _, item := range items {
		b, err := decodeBucket(item)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func decodeBucket(data []byte) (Bucket, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw rawBucket
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode bucket: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("bucket of type %q requires a name", raw.Type)
	}

	base, err := decodeBase(&raw)
	if err != nil {
		return nil, fmt.Errorf("bucket [%s]: %w", raw.Name, err)
	}

	switch BucketType(raw.Type) {
	case TypeTerms:
		return &TermBucket{
			BucketBase:  base,
			Size:        raw.Size,
			SortOrder:   raw.SortOrder,
			Include:     raw.Include,
			Exclude:     raw.Exclude,
			MinDocCount: raw.MinDocCount,
		}, nil

	case TypeHistogram:
		var interval float64
		if len(raw.Interval) > 0 {
			if err := json.Unmarshal(raw.Interval, &interval); err != nil {
				return nil, fmt.Errorf("bucket [%s]: histogram interval must be numeric: %w", raw.Name, err)
			}
		}
		return &HistogramBucket{
			BucketBase:     base,
			Interval:       interval,
			MinDocCount:    derefInt(raw.MinDocCount),
			ExtendedBounds: raw.ExtendedBounds,
		}, nil

	case TypeDateHistogram:
		var interval string
		if len(raw.Interval) > 0 {
			if err := json.Unmarshal(raw.Interval, &interval); err != nil {
				return nil, fmt.Errorf("bucket [%s]: date_histogram interval must be a string: %w", raw.Name, err)
			}
		}
		return &DateHistogramBucket{
			BucketBase:     base,
			Interval:       interval,
			MinDocCount:    derefInt(raw.MinDocCount),
			Format:         raw.Format,
			TimeZone:       raw.TimeZone,
			ExtendedBounds: raw.ExtendedBounds,
		}, nil

	case TypeQueryGroup:
		queries := make([]NamedQuery, 0, len(raw.Queries))
		for _, nq := range raw.Queries {
			q, err := query.Decode(nq.Query)
			if err != nil {
				return nil, fmt.Errorf("bucket [%s] query [%s]: %w", raw.Name, nq.Name, err)
			}
			queries = append(queries, NamedQuery{Name: nq.Name, Query: q})
		}
		return &QueryGroupBucket{BucketBase: base, Queries: queries}, nil

	case TypeSignificantTerms:
		return &SignificantTermBucket{
			BucketBase:  base,
			Size:        raw.Size,
			MinDocCount: derefInt(raw.MinDocCount),
			Algorithm:   raw.Algorithm,
		}, nil

	case TypeReverseNested:
		return &ReverseNestedBucket{BucketBase: base, Path: raw.Path}, nil

	case TypeTopHits:
		return &TopHitsBucket{BucketBase: base, Size: raw.Size, Sort: raw.Sort, Source: raw.Source}, nil
	}

	return nil, &UnsupportedBucketTypeError{Type: raw.Type}
}

func decodeBase(raw *rawBucket) (BucketBase, error) {
	base := BucketBase{
		Name:       raw.Name,
		Field:      raw.Field,
		NestedPath: raw.NestedPath,
	}

	for _, m := range raw.Metrics {
		base.Metrics = append(base.Metrics, Metric{Name: m.Name, Field: m.Field, Type: m.Type, Config: m.Config})
	}

	children, err := decodeBucketList(raw.Children)
	if err != nil {
		return base, err
	}
	base.Children = children

	for _, item := range raw.Pipelines {
		p, err := decodePipeline(item)
		if err != nil {
			return base, err
		}
		base.Pipelines = append(base.Pipelines, p)
	}

	if base.Filter, err = query.Decode(raw.Filter); err != nil {
		return base, fmt.Errorf("filter: %w", err)
	}
	if base.NestedFilter, err = query.Decode(raw.NestedFilter); err != nil {
		return base, fmt.Errorf("nested_filter: %w", err)
	}
	return base, nil
}

func decodePipeline(data []byte) (Pipeline, error) {
	var raw rawPipeline
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline: %w", err)
	}
	base := PipelineBase{Name: raw.Name, BucketsPath: raw.BucketsPath, GapPolicy: raw.GapPolicy}

	switch kind := PipelineType(raw.Type); kind {
	case PipelineBucketSelector:
		return &BucketSelectorPipeline{PipelineBase: base, Script: raw.Script}, nil
	case PipelineMovingFunction:
		return &MovingFunctionPipeline{PipelineBase: base, Script: raw.Script, Window: raw.Window, Shift: raw.Shift}, nil
	case PipelineMaxBucket, PipelineMinBucket, PipelineAvgBucket, PipelineSumBucket:
		return &BucketMetricPipeline{PipelineBase: base, Kind: kind, Format: raw.Format}, nil
	case PipelineBucketScript:
		return &BucketScriptPipeline{PipelineBase: base, Script: raw.Script, Format: raw.Format}, nil
	}
	return nil, &UnsupportedPipelineTypeError{Type: raw.Type}
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
