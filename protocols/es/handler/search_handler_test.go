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

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/olivere/elastic/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lscgzwd/tigersuite/protocols/es/search"
	"github.com/lscgzwd/tigersuite/protocols/es/search/dsl"
	"github.com/lscgzwd/tigersuite/search/fulltext"
	"github.com/lscgzwd/tigersuite/search/request"
	"github.com/lscgzwd/tigersuite/spellcheck"
	"github.com/lscgzwd/tigersuite/thesaurus"
	"github.com/lscgzwd/tigersuite/thesaurus/store"
)

type stubSearcher struct {
	index string
	err   error
}

func (s *stubSearcher) Search(ctx context.Context, index string, body interface{}) (*elastic.SearchResult, error) {
	s.index = index
	if s.err != nil {
		return nil, s.err
	}
	return &elastic.SearchResult{
		TookInMillis: 3,
		Hits:         &elastic.SearchHits{TotalHits: &elastic.TotalHits{Value: 1, Relation: "eq"}},
	}, nil
}

func newTestRouter(t *testing.T) (*mux.Router, *stubSearcher) {
	t.Helper()
	container := request.DefaultContainerConfig("catalog", "catalog_v1", 1)
	container.Relevance.CutoffFrequency = 0.5
	containers := request.Containers{container.Name: container}

	tv := spellcheck.NewMemoryTermVectors()
	tv.Index("catalog_v1", "leather shoes", "running shoes", "blue shirt")

	dict := store.NewMemory()
	assembler := dsl.NewRequestAssembler(thesaurus.NewRewriter(dict, fulltext.NewBuilder()), containers)
	searcher := &stubSearcher{}
	engine := search.NewEngine(search.DefaultConfig(), containers, spellcheck.New(tv), assembler, searcher)

	h := NewSearchHandler(engine)
	info := NewInfoHandler(containers)
	r := mux.NewRouter()
	r.HandleFunc("/", info.Root).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/_containers", info.Containers).Methods(http.MethodGet)
	r.HandleFunc("/{container}/_compile", h.Compile).Methods(http.MethodPost)
	r.HandleFunc("/{container}/_spellcheck", h.Spellcheck).Methods(http.MethodPost)
	r.HandleFunc("/{container}/_search", h.Search).Methods(http.MethodPost)
	return r, searcher
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestCompileEmptyBody(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/catalog/_compile", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"query":{"match_all":{}},"sort":[],"from":0,"size":10}`, w.Body.String())
}

func TestCompileFulltext(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/catalog/_compile", `{"query_text":"leather","size":5,"sort":[{"field":"price","direction":"desc"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, float64(5), doc["size"])
	assert.Contains(t, w.Body.String(), `"common"`)
	assert.Contains(t, w.Body.String(), `"unmapped_type":"keyword"`)
}

func TestCompileErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantType   string
	}{
		{"invalid json", "/catalog/_compile", `{"size":`, http.StatusBadRequest, "parsing_exception"},
		{"unsupported query", "/catalog/_compile", `{"query":{"type":"geo_shape"}}`, http.StatusBadRequest, "unsupported_type_exception"},
		{"unknown container", "/unknown/_compile", `{"query_text":"shoes"}`, http.StatusNotFound, "container_not_found_exception"},
		{"invalid container name", "/Catalog/_compile", `{}`, http.StatusBadRequest, "illegal_argument_exception"},
		{"duplicate bucket name", "/catalog/_compile",
			`{"buckets":[{"type":"terms","name":"b","field":"color"},{"type":"terms","name":"b","field":"size"}]}`,
			http.StatusBadRequest, "illegal_argument_exception"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			var body struct {
				Error struct {
					Type string `json:"type"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Error.Type)
		})
	}
}

func TestSpellcheck(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/catalog/_spellcheck", `{"text":"leather qwerty"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		SpellingType string           `json:"spelling_type"`
		Stats        spellcheck.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, request.SpellingTypeMostFuzzy.String(), res.SpellingType)
	assert.Equal(t, 2, res.Stats.Total)
	assert.Equal(t, 1, res.Stats.Missing)
}

func TestSearchExecutesAgainstContainerIndex(t *testing.T) {
	r, searcher := newTestRouter(t)
	w := do(r, http.MethodPost, "/catalog/_search", `{"size":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "catalog_v1", searcher.index)
	assert.Contains(t, w.Body.String(), `"took":3`)
}

func TestSearchEngineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"rejected request", &elastic.Error{
			Status:  http.StatusBadRequest,
			Details: &elastic.ErrorDetails{Type: "action_request_validation_exception", Reason: "No aggregation found for path [missing]"},
		}, http.StatusBadRequest, "action_request_validation_exception"},
		{"engine down", &elastic.Error{Status: http.StatusBadGateway}, http.StatusServiceUnavailable, "search_engine_unavailable_exception"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, searcher := newTestRouter(t)
			searcher.err = tt.err

			w := do(r, http.MethodPost, "/catalog/_search", `{"size":1}`)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			var body struct {
				Error struct {
					Type string `json:"type"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Error.Type)
		})
	}
}

func TestInfoHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), NodeName)

	w = do(r, http.MethodHead, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, http.MethodGet, "/_containers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"catalog_v1"`)
}
