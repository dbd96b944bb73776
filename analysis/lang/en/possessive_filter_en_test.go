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

package en

import "testing"

func TestTrimPossessive(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"marty's", "marty"},
		{"MARTY'S", "MARTY'S"},
		{"marty’s", "marty"},
		{"students'", "students"},
		{"shirt", "shirt"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := string(TrimPossessive([]byte(tt.in))); got != tt.want {
			t.Errorf("TrimPossessive(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
