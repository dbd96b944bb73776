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

// Package store 同义词词典的存储实现：内存、bbolt持久化，以及YAML导入
package store

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxPhraseTokens 词典中单个词条允许的最大词数
const MaxPhraseTokens = 4

var folder = cases.Fold()

// Normalize 规范化词条：NFKC、大小写折叠、合并空白
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// lookupFunc 按规范化词条查找替换词
type lookupFunc func(ctx context.Context, phrase string) ([]string, error)

// substitute 对文本中出现的每个词条生成替换后的文本
// 每个改写只替换一处，结果按出现位置和替换词顺序排列
func substitute(ctx context.Context, text string, lookup lookupFunc) ([]string, error) {
	tokens := strings.Fields(Normalize(text))
	if len(tokens) == 0 {
		return nil, nil
	}

	var out []string
	seen := make(map[string]struct{})
	for start := 0; start < len(tokens); start++ {
		for n := 1; n <= MaxPhraseTokens && start+n <= len(tokens); n++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			phrase := strings.Join(tokens[start:start+n], " ")
			alternatives, err := lookup(ctx, phrase)
			if err != nil {
				return nil, err
			}
			for _, alt := range alternatives {
				parts := make([]string, 0, len(tokens)-n+1)
				parts = append(parts, tokens[:start]...)
				parts = append(parts, alt)
				parts = append(parts, tokens[start+n:]...)
				rewritten := strings.Join(parts, " ")
				if _, dup := seen[rewritten]; dup {
					continue
				}
				seen[rewritten] = struct{}{}
				out = append(out, rewritten)
			}
		}
	}
	return out, nil
}

// synonymTable 同义词组展开为 词条 -> 其余词条
func synonymTable(terms []string) map[string][]string {
	normalized := normalizeTerms(terms)
	table := make(map[string][]string, len(normalized))
	for i, term := range normalized {
		others := make([]string, 0, len(normalized)-1)
		for j, other := range normalized {
			if i != j {
				others = append(others, other)
			}
		}
		table[term] = others
	}
	return table
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = Normalize(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// mergeTerms 追加新词条，保持原有顺序并去重
func mergeTerms(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, t := range list {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
