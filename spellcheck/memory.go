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

package spellcheck

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lscgzwd/tigersuite/analysis"
	"github.com/lscgzwd/tigersuite/search/request"
)

// MemoryTermVectors 基于本地分析器的内存词向量实现
// 用于离线拼写检查和测试
type MemoryTermVectors struct {
	mu        sync.RWMutex
	analyzers map[string]*analysis.Analyzer
	indices   map[string]*memoryIndex
}

type memoryIndex struct {
	docs int64
	// analyzer -> term -> 文档频率
	docFreq map[string]map[string]int64
}

// NewMemoryTermVectors 创建内存词向量，包含standard和whitespace分析器
func NewMemoryTermVectors() *MemoryTermVectors {
	return &MemoryTermVectors{
		analyzers: map[string]*analysis.Analyzer{
			request.AnalyzerStandard:   analysis.NewStandardAnalyzer(),
			request.AnalyzerWhitespace: analysis.NewWhitespaceAnalyzer(),
		},
		indices: make(map[string]*memoryIndex),
	}
}

// Index 向索引添加文档（spelling字段的文本）
func (m *MemoryTermVectors) Index(index string, docs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.indices[index]
	if !ok {
		idx = &memoryIndex{docFreq: make(map[string]map[string]int64)}
		m.indices[index] = idx
	}
	for _, doc := range docs {
		idx.docs++
		for name, analyzer := range m.analyzers {
			freq, ok := idx.docFreq[name]
			if !ok {
				freq = make(map[string]int64)
				idx.docFreq[name] = freq
			}
			seen := make(map[string]struct{})
			for _, tok := range analyzer.Analyze([]byte(doc)) {
				term := string(tok.Term)
				if _, dup := seen[term]; dup {
					continue
				}
				seen[term] = struct{}{}
				freq[term]++
			}
		}
	}
}

// TermVectors 实现TermVectorsProvider
func (m *MemoryTermVectors) TermVectors(ctx context.Context, index, field, text string, subFields []string) (map[string][]TermStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.indices[index]
	if !ok {
		return nil, fmt.Errorf("no such index [%s]", index)
	}

	out := make(map[string][]TermStat, len(subFields))
	for _, subField := range subFields {
		name := strings.TrimPrefix(subField, field+".")
		analyzer, ok := m.analyzers[name]
		if !ok {
			continue
		}
		tokens := analyzer.Analyze([]byte(text))
		stats := make([]TermStat, 0, len(tokens))
		for _, tok := range tokens {
			term := string(tok.Term)
			stats = append(stats, TermStat{
				Term:        term,
				DocFreq:     idx.docFreq[name][term],
				StartOffset: tok.Start,
				EndOffset:   tok.End,
			})
		}
		out[subField] = stats
	}
	return out, nil
}

// DocCount 实现TermVectorsProvider
func (m *MemoryTermVectors) DocCount(ctx context.Context, index string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.indices[index]
	if !ok {
		return 0, fmt.Errorf("no such index [%s]", index)
	}
	return idx.docs, nil
}
