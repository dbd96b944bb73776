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

package thesaurus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lscgzwd/tigersuite/search/fulltext"
	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
)

// countingDictionary 记录调用次数的测试词典
type countingDictionary struct {
	mu         sync.Mutex
	synonyms   map[string][]string
	expansions map[string][]string
	err        error
	calls      int
}

func (d *countingDictionary) SynonymRewrites(ctx context.Context, storeID int, text string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.synonyms[text], nil
}

func (d *countingDictionary) ExpansionRewrites(ctx context.Context, storeID int, text string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.expansions[text], nil
}

func testContainer(divider float64) *request.ContainerConfig {
	c := request.DefaultContainerConfig("quick_search_container", "catalog", 1)
	c.Thesaurus.SynonymsEnabled = true
	c.Thesaurus.SynonymWeightDivider = divider
	return c
}

func TestRewriteBoostLaw(t *testing.T) {
	dict := &countingDictionary{synonyms: map[string][]string{
		"tee": {"t-shirt", "shirt"},
	}}
	r := NewRewriter(dict, fulltext.NewBuilder())

	q, err := r.Rewrite(context.Background(), NewCache(), testContainer(2), []string{"tee"}, request.SpellingTypeFuzzy, 10)
	require.NoError(t, err)

	bq, ok := q.(*query.BoolQuery)
	require.True(t, ok, "expected bool query, got %T", q)
	require.Len(t, bq.Should, 3)
	assert.Equal(t, 10.0, query.EffectiveBoost(bq.Should[0]))
	assert.Equal(t, 5.0, query.EffectiveBoost(bq.Should[1]))
	assert.Equal(t, 5.0, query.EffectiveBoost(bq.Should[2]))
}

func TestRewritesAreCompiledExact(t *testing.T) {
	dict := &countingDictionary{synonyms: map[string][]string{"tee": {"t-shirt"}}}
	r := NewRewriter(dict, fulltext.NewBuilder())

	q, err := r.Rewrite(context.Background(), NewCache(), testContainer(2), []string{"tee"}, request.SpellingTypeFuzzy, 1)
	require.NoError(t, err)

	rewrite := q.(*query.BoolQuery).Should[1].(*query.BoolQuery)
	require.Len(t, rewrite.Must, 1)
	_, isCommon := rewrite.Must[0].(*query.CommonQuery)
	assert.True(t, isCommon, "rewrite should use the exact strategy")
}

func TestRewriteWithoutRewritesReturnsBase(t *testing.T) {
	dict := &countingDictionary{}
	builder := fulltext.NewBuilder()
	r := NewRewriter(dict, builder)
	container := testContainer(2)

	q, err := r.Rewrite(context.Background(), NewCache(), container, []string{"shoes"}, request.SpellingTypeExact, 10)
	require.NoError(t, err)

	base, err := builder.Create(container, []string{"shoes"}, request.SpellingTypeExact, 10)
	require.NoError(t, err)
	assert.Equal(t, base, q)
}

func TestRewriteMemoization(t *testing.T) {
	dict := &countingDictionary{synonyms: map[string][]string{"tee": {"t-shirt"}}}
	r := NewRewriter(dict, fulltext.NewBuilder())
	cache := NewCache()
	container := testContainer(2)

	first, err := r.Rewrite(context.Background(), cache, container, []string{"tee"}, request.SpellingTypeExact, 1)
	require.NoError(t, err)
	second, err := r.Rewrite(context.Background(), cache, container, []string{"tee"}, request.SpellingTypeExact, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, dict.calls)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())

	// 新的编译过程使用新的缓存
	_, err = r.Rewrite(context.Background(), NewCache(), container, []string{"tee"}, request.SpellingTypeExact, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, dict.calls)
}

func TestRewriteDisabledStillCached(t *testing.T) {
	dict := &countingDictionary{synonyms: map[string][]string{"tee": {"t-shirt"}}}
	r := NewRewriter(dict, fulltext.NewBuilder())
	cache := NewCache()
	container := testContainer(2)
	container.Thesaurus.SynonymsEnabled = false

	q, err := r.Rewrite(context.Background(), cache, container, []string{"tee"}, request.SpellingTypeExact, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, dict.calls)
	assert.Equal(t, 1, cache.Len())

	_, isBool := q.(*query.BoolQuery)
	require.True(t, isBool)
	assert.Len(t, q.(*query.BoolQuery).Must, 1, "expected the base exact query, not an OR wrapper")
}

func TestRewriteDeduplicatesAcrossTexts(t *testing.T) {
	dict := &countingDictionary{synonyms: map[string][]string{
		"tee":   {"t-shirt", "shirt"},
		"shirt": {"t-shirt", "tee"},
	}}
	r := NewRewriter(dict, fulltext.NewBuilder())

	q, err := r.Rewrite(context.Background(), NewCache(), testContainer(2), []string{"tee", "shirt"}, request.SpellingTypeExact, 1)
	require.NoError(t, err)

	// 只有 t-shirt 是新的改写："shirt" 和 "tee" 都是输入文本
	assert.Len(t, q.(*query.BoolQuery).Should, 2)
}

func TestRewriteMaxRewrites(t *testing.T) {
	dict := &countingDictionary{synonyms: map[string][]string{"tee": {"a", "b", "c"}}}
	r := NewRewriter(dict, fulltext.NewBuilder())
	container := testContainer(2)
	container.Thesaurus.MaxRewrites = 2

	q, err := r.Rewrite(context.Background(), NewCache(), container, []string{"tee"}, request.SpellingTypeExact, 1)
	require.NoError(t, err)
	assert.Len(t, q.(*query.BoolQuery).Should, 3)
}

func TestRewriteExpansionsUseOwnDivider(t *testing.T) {
	dict := &countingDictionary{expansions: map[string][]string{"shoes": {"sneakers"}}}
	r := NewRewriter(dict, fulltext.NewBuilder())
	container := testContainer(2)
	container.Thesaurus.SynonymsEnabled = false
	container.Thesaurus.ExpansionsEnabled = true
	container.Thesaurus.ExpansionWeightDivider = 4

	q, err := r.Rewrite(context.Background(), NewCache(), container, []string{"shoes"}, request.SpellingTypeExact, 8)
	require.NoError(t, err)

	should := q.(*query.BoolQuery).Should
	require.Len(t, should, 2)
	assert.Equal(t, 2.0, query.EffectiveBoost(should[1]))
}

func TestRewriteDictionaryFailure(t *testing.T) {
	dict := &countingDictionary{err: errors.New("dictionary offline")}
	container := testContainer(2)

	t.Run("degrade", func(t *testing.T) {
		r := NewRewriter(dict, fulltext.NewBuilder())
		q, err := r.Rewrite(context.Background(), NewCache(), container, []string{"tee"}, request.SpellingTypeExact, 1)
		require.NoError(t, err)
		assert.NotNil(t, q)
	})

	t.Run("fail", func(t *testing.T) {
		r := NewRewriter(dict, fulltext.NewBuilder(), WithFailOnError(true))
		_, err := r.Rewrite(context.Background(), NewCache(), container, []string{"tee"}, request.SpellingTypeExact, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, dict.err)
	})
}

func TestCacheKeyDependsOnInputs(t *testing.T) {
	a := NewCacheKey("c", 1, []string{"tee"}, request.SpellingTypeExact, 1)
	b := NewCacheKey("c", 1, []string{"tee"}, request.SpellingTypeExact, 1)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, NewCacheKey("c", 2, []string{"tee"}, request.SpellingTypeExact, 1))
	assert.NotEqual(t, a, NewCacheKey("c", 1, []string{"shirt"}, request.SpellingTypeExact, 1))
	assert.NotEqual(t, a, NewCacheKey("other", 1, []string{"tee"}, request.SpellingTypeExact, 1))
}
