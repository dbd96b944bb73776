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

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

// helper to serve using router's mux
func serve(r *Router, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Build().ServeHTTP(w, req)
	return w
}

func TestRouterAddRoutes(t *testing.T) {
	r := NewRouter()
	r.AddRoutes([]Route{
		{Method: "GET", Path: "/route1", Handler: okHandler},
		{Method: "POST", Path: "/route2", Handler: okHandler},
	})
	if len(r.routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(r.routes))
	}
}

func TestRouterServeHTTP(t *testing.T) {
	r := NewRouter()
	r.AddRoute("GET", "/hello", okHandler)
	if w := serve(r, httptest.NewRequest("GET", "/hello", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestRouterAddRouteWithMiddleware(t *testing.T) {
	r := NewRouter()
	mw := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { w.Header().Set("X-M", "1"); next(w, r) }
	}
	r.AddRoute("GET", "/mw", okHandler, mw)
	if w := serve(r, httptest.NewRequest("GET", "/mw", nil)); w.Header().Get("X-M") != "1" {
		t.Fatalf("middleware not applied")
	}
}

func TestRouterGlobalRouteNotShadowed(t *testing.T) {
	r := NewRouter()
	r.AddRoute("GET", "/{container}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.AddRoute("GET", "/_health", okHandler)
	if w := serve(r, httptest.NewRequest("GET", "/_health", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected /_health to win, got %d", w.Code)
	}
}

func TestRouterUseSeesRouteTemplate(t *testing.T) {
	r := NewRouter()
	var template string
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			template, _ = mux.CurrentRoute(req).GetPathTemplate()
			next.ServeHTTP(w, req)
		})
	})
	r.AddRoute("POST", "/{container}/_compile", okHandler)

	serve(r, httptest.NewRequest("POST", "/catalog/_compile", nil))
	if template != "/{container}/_compile" {
		t.Fatalf("expected route template, got %q", template)
	}
}

func TestRouterNotFound(t *testing.T) {
	r := NewRouter()
	if w := serve(r, httptest.NewRequest("GET", "/nonexist", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
