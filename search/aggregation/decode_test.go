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
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, in string) ([]Bucket, error) {
	t.Helper()
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(in), &items))
	return DecodeBuckets(items)
}

func TestDecodeBuckets(t *testing.T) {
	buckets, err := decode(t, `[
		{"type": "terms", "name": "color", "field": "attrs.color", "size": 5, "sort_order": "_term",
		 "nested_path": "attrs", "nested_filter": {"type": "term", "field": "attrs.active", "value": true},
		 "metrics": [{"name": "max_price", "type": "max", "field": "price"}],
		 "children": [{"type": "histogram", "name": "prices", "field": "price", "interval": 10}],
		 "pipelines": [{"type": "max_bucket", "name": "best", "buckets_path": "prices>_count"}]},
		{"type": "date_histogram", "name": "created", "field": "created_at", "interval": "1d"}
	]`)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	tb, ok := buckets[0].(*TermBucket)
	require.True(t, ok)
	assert.Equal(t, 5, tb.Size)
	assert.Equal(t, SortOrderTerm, tb.SortOrder)
	assert.True(t, tb.IsNested())
	assert.NotNil(t, tb.NestedFilter)
	require.Len(t, tb.Metrics, 1)
	require.Len(t, tb.Children, 1)
	assert.Equal(t, 10.0, tb.Children[0].(*HistogramBucket).Interval)
	require.Len(t, tb.Pipelines, 1)
	assert.Equal(t, PipelineMaxBucket, tb.Pipelines[0].Type())
	assert.Equal(t, "prices>_count", tb.Pipelines[0].Base().BucketsPath)

	assert.Equal(t, "1d", buckets[1].(*DateHistogramBucket).Interval)
}

func TestDecodeUnknownTypes(t *testing.T) {
	_, err := decode(t, `[{"type": "geohash_grid", "name": "g"}]`)
	var bErr *UnsupportedBucketTypeError
	require.True(t, errors.As(err, &bErr), "got %v", err)
	assert.Equal(t, "geohash_grid", bErr.Type)

	_, err = decode(t, `[{"type": "terms", "name": "t", "pipelines": [{"type": "derivative", "name": "d"}]}]`)
	var pErr *UnsupportedPipelineTypeError
	require.True(t, errors.As(err, &pErr), "got %v", err)
	assert.Equal(t, "derivative", pErr.Type)
}

func TestValidateNames(t *testing.T) {
	tests := []struct {
		name    string
		buckets []Bucket
		dup     string
	}{
		{
			name: "sibling buckets",
			buckets: []Bucket{
				&TermBucket{BucketBase: BucketBase{Name: "a"}},
				&TermBucket{BucketBase: BucketBase{Name: "a"}},
			},
			dup: "a",
		},
		{
			name: "metric clashes with child",
			buckets: []Bucket{&TermBucket{BucketBase: BucketBase{
				Name:     "a",
				Children: []Bucket{&TermBucket{BucketBase: BucketBase{Name: "x"}}},
				Metrics:  []Metric{{Name: "x", Type: "max"}},
			}}},
			dup: "x",
		},
		{
			name: "nested siblings",
			buckets: []Bucket{&TermBucket{BucketBase: BucketBase{
				Name: "a",
				Children: []Bucket{
					&TermBucket{BucketBase: BucketBase{Name: "y"}},
					&HistogramBucket{BucketBase: BucketBase{Name: "y"}},
				},
			}}},
			dup: "y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNames(tt.buckets)
			var dup *DuplicateBucketNameError
			require.True(t, errors.As(err, &dup), "got %v", err)
			assert.Equal(t, tt.dup, dup.Name)
		})
	}

	// 不同层级可以重名
	assert.NoError(t, ValidateNames([]Bucket{&TermBucket{BucketBase: BucketBase{
		Name:     "a",
		Children: []Bucket{&TermBucket{BucketBase: BucketBase{Name: "a"}}},
	}}}))
}
