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
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lscgzwd/tigersuite/protocols/es/http/common"
)

func okHandler(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestLoggingMiddleware(t *testing.T) {
	logging := LoggingMiddleware(okHandler)
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	logging.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if seen == "" || w.Header().Get(common.HeaderRequestID) != seen {
		t.Fatalf("expected generated request id, got %q / %q", seen, w.Header().Get(common.HeaderRequestID))
	}
	if len(seen) != 36 {
		t.Errorf("expected uuid request id, got %q", seen)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(common.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if seen != "abc-123" {
		t.Fatalf("expected client request id to be kept, got %q", seen)
	}
}

func TestCORSMiddleware(t *testing.T) {
	cors := CORSMiddleware([]string{"http://localhost:3000"})(okHandler)
	req := httptest.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	cors.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("cors header missing")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := RateLimitMiddleware(60)(okHandler) // 1 token per second
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	rl.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before first token, got %d", w.Code)
	}

	time.Sleep(1100 * time.Millisecond)
	w = httptest.NewRecorder()
	rl.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	rl := RateLimitMiddleware(0)(okHandler)
	w := httptest.NewRecorder()
	rl.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	slow := func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}
	to := TimeoutMiddleware(50 * time.Millisecond)(slow)
	w := httptest.NewRecorder()
	to.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", w.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	rec := RecoveryMiddleware(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	w := httptest.NewRecorder()
	rec.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	sec := SecurityHeadersMiddleware(okHandler)
	w := httptest.NewRecorder()
	sec.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("security header missing")
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	sizeLimit := RequestSizeLimitMiddleware(100)(okHandler)

	small := strings.Repeat("x", 50)
	req := httptest.NewRequest("POST", "/", strings.NewReader(small))
	w := httptest.NewRecorder()
	sizeLimit.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}

	large := strings.Repeat("x", 200)
	req = httptest.NewRequest("POST", "/", strings.NewReader(large))
	w = httptest.NewRecorder()
	sizeLimit.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestGzipDecompressMiddleware(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(`{"size":1}`))
	zw.Close()

	var body string
	h := GzipDecompressMiddleware(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if body != `{"size":1}` {
		t.Fatalf("unexpected decompressed body %q", body)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestChainMiddleware(t *testing.T) {
	ch := ChainMiddleware(LoggingMiddleware, SecurityHeadersMiddleware)(okHandler)
	w := httptest.NewRecorder()
	ch.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200")
	}
	if w.Header().Get("X-XSS-Protection") == "" {
		t.Fatalf("expected security headers")
	}
}

func TestDefaultMiddlewareStack(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.EnableRateLimit = false

	wrapped := DefaultMiddlewareStack(cfg)(okHandler)
	w := httptest.NewRecorder()
	wrapped(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if w.Header().Get(common.HeaderRequestID) == "" {
		t.Fatalf("expected request id header from default stack")
	}
}
