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

package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestErrorResponse(t *testing.T) {
	resp := ErrorResponse("parsing_exception", "unexpected EOF").WithStatus(http.StatusBadRequest)
	if resp.Error == nil {
		t.Fatal("expected error info")
	}
	if resp.Error.Type != "parsing_exception" || resp.Error.Reason != "unexpected EOF" {
		t.Errorf("unexpected error info: %+v", resp.Error)
	}
}

func TestResponseWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	if err := ErrorResponse("parsing_exception", "bad").WithStatus(400).WriteJSON(w, http.StatusBadRequest); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != float64(400) {
		t.Errorf("status field = %v, want 400", body["status"])
	}
	if _, ok := body["error"].(map[string]interface{}); !ok {
		t.Errorf("error field missing: %s", w.Body.String())
	}
}

func TestHandleSuccessDefaultsToOK(t *testing.T) {
	w := httptest.NewRecorder()
	HandleSuccess(w, map[string]string{"status": "ok"}, 0)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "{\"status\":\"ok\"}\n" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}
