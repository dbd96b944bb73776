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

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/{container}/_compile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/quick_search/_compile", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/{container}/_compile", "201"))
	if got < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", got)
	}
}

func TestObserveCompile(t *testing.T) {
	before := testutil.ToFloat64(CompiledRequestsTotal.WithLabelValues("error"))
	ObserveCompile(errors.New("boom"))
	after := testutil.ToFloat64(CompiledRequestsTotal.WithLabelValues("error"))
	if after != before+1 {
		t.Errorf("expected error counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestObserveCache(t *testing.T) {
	hits := testutil.ToFloat64(ThesaurusCacheTotal.WithLabelValues("hit"))
	ObserveCache(true)
	ObserveCache(false)
	if got := testutil.ToFloat64(ThesaurusCacheTotal.WithLabelValues("hit")); got != hits+1 {
		t.Errorf("expected hit counter %f, got %f", hits+1, got)
	}
}
