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
	"encoding/json"
	"testing"
)

func TestOrderedMapMarshal(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", 1)
	m.Set("a", map[string]interface{}{"x": true})
	m.Set("b", 2)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if got, want := string(data), `{"b":2,"a":{"x":true}}`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 keys, got %d", m.Len())
	}
}

func TestOrderedMapEmpty(t *testing.T) {
	data, err := json.Marshal(NewOrderedMap())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("expected {}, got %s", data)
	}
}
