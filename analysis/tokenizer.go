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
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/segment"
)

// UnicodeTokenizer 按Unicode单词边界（UAX#29）分词
type UnicodeTokenizer struct{}

// Tokenize 实现Tokenizer
func (UnicodeTokenizer) Tokenize(input []byte) TokenStream {
	rv := make(TokenStream, 0, 8)
	segmenter := segment.NewWordSegmenterDirect(input)
	start, pos := 0, 1
	for segmenter.Segment() {
		segmentBytes := segmenter.Bytes()
		end := start + len(segmentBytes)
		if segmenter.Type() != segment.None {
			rv = append(rv, &Token{
				Term:     append([]byte(nil), segmentBytes...),
				Start:    start,
				End:      end,
				Position: pos,
			})
			pos++
		}
		start = end
	}
	return rv
}

// WhitespaceTokenizer 按空白分词，保留标点
type WhitespaceTokenizer struct{}

// Tokenize 实现Tokenizer
func (WhitespaceTokenizer) Tokenize(input []byte) TokenStream {
	rv := make(TokenStream, 0, 8)
	start, pos := -1, 1
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRune(input[i:])
		if unicode.IsSpace(r) {
			if start >= 0 {
				rv = append(rv, &Token{Term: append([]byte(nil), input[start:i]...), Start: start, End: i, Position: pos})
				pos++
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i += size
	}
	if start >= 0 {
		rv = append(rv, &Token{Term: append([]byte(nil), input[start:]...), Start: start, End: len(input), Position: pos})
	}
	return rv
}
