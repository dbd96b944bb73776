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
	"github.com/lscgzwd/tigersuite/analysis/lang/en"
	"github.com/lscgzwd/tigersuite/search/request"
)

// NewStandardAnalyzer 词干化分析器：Unicode分词、小写、去所有格、Porter词干
func NewStandardAnalyzer() *Analyzer {
	return &Analyzer{
		Name:      request.AnalyzerStandard,
		Tokenizer: UnicodeTokenizer{},
		Filters: []TokenFilter{
			LowerCaseFilter,
			TokenFilterFunc(possessive),
			PorterStemFilter,
		},
	}
}

// NewWhitespaceAnalyzer 精确分析器：空白分词、小写
func NewWhitespaceAnalyzer() *Analyzer {
	return &Analyzer{
		Name:      request.AnalyzerWhitespace,
		Tokenizer: WhitespaceTokenizer{},
		Filters:   []TokenFilter{LowerCaseFilter},
	}
}

func possessive(input TokenStream) TokenStream {
	for _, token := range input {
		token.Term = en.TrimPossessive(token.Term)
	}
	return input
}
