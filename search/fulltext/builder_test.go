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

package fulltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
)

func testContainer() *request.ContainerConfig {
	c := request.DefaultContainerConfig("quick_search_container", "catalog", 1)
	c.SearchFields = []query.WeightedField{{Name: "name", Weight: 5}, {Name: "search", Weight: 1}}
	return c
}

func TestCreateBySpellingType(t *testing.T) {
	b := NewBuilder()
	c := testContainer()

	tests := []struct {
		name         string
		spellingType request.SpellingType
		check        func(t *testing.T, q query.Query)
	}{
		{
			name:         "pure stopwords",
			spellingType: request.SpellingTypePureStopwords,
			check: func(t *testing.T, q query.Query) {
				mm, ok := q.(*query.MultiMatchQuery)
				require.True(t, ok, "expected multi_match, got %T", q)
				assert.Equal(t, "100%", mm.MinimumShouldMatch)
				assert.Equal(t, "name.whitespace", mm.Fields[0].Name)
				assert.Equal(t, 5.0, mm.Fields[0].Weight)
				assert.Equal(t, 3.0, mm.Boost)
			},
		},
		{
			name:         "exact",
			spellingType: request.SpellingTypeExact,
			check: func(t *testing.T, q query.Query) {
				bq, ok := q.(*query.BoolQuery)
				require.True(t, ok)
				require.Len(t, bq.Must, 1)
				common, ok := bq.Must[0].(*query.CommonQuery)
				require.True(t, ok)
				assert.Equal(t, "spelling", common.Field)
				assert.Equal(t, 0.15, common.CutoffFrequency)
				assert.Equal(t, 3.0, bq.Boost)
			},
		},
		{
			name:         "most fuzzy",
			spellingType: request.SpellingTypeMostFuzzy,
			check: func(t *testing.T, q query.Query) {
				bq, ok := q.(*query.BoolQuery)
				require.True(t, ok)
				require.Len(t, bq.Should, 2)
				assert.Equal(t, "1", bq.MinimumShouldMatch)
				match, ok := bq.Should[1].(*query.MatchQuery)
				require.True(t, ok)
				assert.Equal(t, "AUTO", match.Fuzziness)
			},
		},
		{
			name:         "fuzzy without phonetic",
			spellingType: request.SpellingTypeFuzzy,
			check: func(t *testing.T, q query.Query) {
				bq, ok := q.(*query.BoolQuery)
				require.True(t, ok)
				assert.Len(t, bq.Should, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := b.Create(c, []string{"red shirt"}, tt.spellingType, 3)
			require.NoError(t, err)
			tt.check(t, q)
		})
	}
}

func TestCreateFuzzyWithPhonetic(t *testing.T) {
	c := testContainer()
	c.Relevance.EnablePhonetic = true

	q, err := NewBuilder().Create(c, []string{"shrit"}, request.SpellingTypeFuzzy, 1)
	require.NoError(t, err)

	bq := q.(*query.BoolQuery)
	require.Len(t, bq.Should, 2)
	assert.Equal(t, "spelling.phonetic", bq.Should[1].(*query.MatchQuery).Field)
}

func TestCreateMultipleTexts(t *testing.T) {
	q, err := NewBuilder().Create(testContainer(), []string{"shirt", "  ", "tee"}, request.SpellingTypeExact, 1)
	require.NoError(t, err)

	bq, ok := q.(*query.BoolQuery)
	require.True(t, ok)
	assert.Len(t, bq.Should, 2)
}

func TestCreateEmpty(t *testing.T) {
	q, err := NewBuilder().Create(testContainer(), []string{" "}, request.SpellingTypeExact, 1)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestCreateUnknownSpellingType(t *testing.T) {
	_, err := NewBuilder().Create(testContainer(), []string{"shirt"}, 0, 1)
	assert.Error(t, err)
}
