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

package analysis

import (
	"bytes"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// LowerCaseFilter 转小写
var LowerCaseFilter = TokenFilterFunc(func(input TokenStream) TokenStream {
	for _, token := range input {
		token.Term = bytes.ToLower(token.Term)
	}
	return input
})

// PorterStemFilter 英文词干提取
var PorterStemFilter = TokenFilterFunc(func(input TokenStream) TokenStream {
	for _, token := range input {
		// 非ASCII词不做词干提取
		if !isASCII(token.Term) {
			continue
		}
		token.Term = []byte(porterstemmer.StemString(string(token.Term)))
	}
	return input
})

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
