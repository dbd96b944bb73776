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

// Package analysis 本地文本分析：分词、过滤和分析器
// 与搜索引擎中 spelling.standard / spelling.whitespace 子字段的分析链保持一致
package analysis

// Token 分词结果
type Token struct {
	// Term 词项
	Term []byte
	// Start 起始字节偏移
	Start int
	// End 结束字节偏移（不含）
	End int
	// Position 词位置，从1开始
	Position int
}

// TokenStream 词流
type TokenStream []*Token

// Tokenizer 分词器
type Tokenizer interface {
	Tokenize(input []byte) TokenStream
}

// TokenFilter 词过滤器
type TokenFilter interface {
	Filter(input TokenStream) TokenStream
}

// TokenFilterFunc 函数形式的过滤器
type TokenFilterFunc func(input TokenStream) TokenStream

// Filter 实现TokenFilter
func (f TokenFilterFunc) Filter(input TokenStream) TokenStream { return f(input) }

// Analyzer 分析器 = 分词器 + 过滤链
type Analyzer struct {
	Name      string
	Tokenizer Tokenizer
	Filters   []TokenFilter
}

// Analyze 分析文本，丢弃过滤后为空的词
func (a *Analyzer) Analyze(input []byte) TokenStream {
	tokens := a.Tokenizer.Tokenize(input)
	for _, f := range a.Filters {
		tokens = f.Filter(tokens)
	}
	out := tokens[:0]
	for _, t := range tokens {
		if len(t.Term) > 0 {
			out = append(out, t)
		}
	}
	return out
}
