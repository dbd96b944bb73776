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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
)

func TestCompileSortOrders(t *testing.T) {
	tests := []struct {
		name  string
		order request.SortOrder
		want  string
	}{
		{
			name:  "field asc defaults missing last",
			order: request.SortOrder{Field: "price"},
			want:  `{"price":{"order":"asc","missing":"_last","unmapped_type":"keyword"}}`,
		},
		{
			name:  "field desc defaults missing first",
			order: request.SortOrder{Field: "price", Direction: "DESC"},
			want:  `{"price":{"order":"desc","missing":"_first","unmapped_type":"keyword"}}`,
		},
		{
			name:  "score defaults desc",
			order: request.SortOrder{Field: "_score"},
			want:  `{"_score":{"order":"desc"}}`,
		},
		{
			name: "nested with filter",
			order: request.SortOrder{
				Field:        "category.position",
				NestedPath:   "category",
				NestedFilter: &query.TermQuery{Field: "category.category_id", Value: 3},
			},
			want: `{"category.position":{"order":"asc","missing":"_last","unmapped_type":"keyword","mode":"min",
				"nested":{"path":"category","filter":{"term":{"category.category_id":{"value":3}}}}}}`,
		},
		{
			name: "script",
			order: request.SortOrder{
				Direction: "desc",
				Script:    &request.SortScript{Lang: "painless", Source: "doc['price'].value * params.f", Params: map[string]interface{}{"f": 2}},
			},
			want: `{"_script":{"type":"number","script":{"lang":"painless","source":"doc['price'].value * params.f","params":{"f":2}},"order":"desc"}}`,
		},
	}

	c := NewSortOrderCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compile([]request.SortOrder{tt.order})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.JSONEq(t, tt.want, mustJSON(t, got[0]))
		})
	}
}

func TestCompileNoSortOrders(t *testing.T) {
	got, err := NewSortOrderCompiler(nil).Compile(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "[]", mustJSON(t, got))
}

func TestCompileInvalidDirection(t *testing.T) {
	_, err := NewSortOrderCompiler(nil).Compile([]request.SortOrder{{Field: "price", Direction: "up"}})
	assert.Error(t, err)
}
