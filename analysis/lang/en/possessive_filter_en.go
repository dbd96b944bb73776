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

import (
	"bytes"
)

const Name = "possessive_en"

// 's or ' (Apostrophe S or Apostrophe)
var possessive = []byte{39, 115}

// 's (Right Single Quotation Mark S)
var possessiveQuote = []byte("’s")

// TrimPossessive removes a trailing 's or ' from a term.
func TrimPossessive(term []byte) []byte {
	switch {
	case len(term) == 0:
		return term
	case bytes.HasSuffix(term, possessive):
		return term[:len(term)-2]
	case bytes.HasSuffix(term, possessiveQuote):
		return term[:len(term)-len(possessiveQuote)]
	case term[len(term)-1] == 39: // '
		return term[:len(term)-1]
	}
	return term
}
