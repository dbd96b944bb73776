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

package store

import (
	"context"
	"fmt"
	"sync"
)

// Writer 可写入的词典
type Writer interface {
	AddSynonyms(storeID int, terms ...string) error
	AddExpansion(storeID int, reference string, terms ...string) error
}

// Memory 内存词典，并发安全
type Memory struct {
	mu         sync.RWMutex
	synonyms   map[int]map[string][]string
	expansions map[int]map[string][]string
}

// NewMemory 创建空的内存词典
func NewMemory() *Memory {
	return &Memory{
		synonyms:   make(map[int]map[string][]string),
		expansions: make(map[int]map[string][]string),
	}
}

// AddSynonyms 添加一组互为同义的词条
func (m *Memory) AddSynonyms(storeID int, terms ...string) error {
	table := synonymTable(terms)
	if len(table) < 2 {
		return fmt.Errorf("a synonym group needs at least two distinct terms")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	dst := m.table(m.synonyms, storeID)
	for term, others := range table {
		dst[term] = mergeTerms(dst[term], others)
	}
	return nil
}

// AddExpansion 添加单向扩展：reference 扩展为 terms
func (m *Memory) AddExpansion(storeID int, reference string, terms ...string) error {
	ref := Normalize(reference)
	expansions := normalizeTerms(terms)
	if ref == "" || len(expansions) == 0 {
		return fmt.Errorf("an expansion needs a reference term and at least one expansion")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	dst := m.table(m.expansions, storeID)
	dst[ref] = mergeTerms(dst[ref], expansions)
	return nil
}

func (m *Memory) table(tables map[int]map[string][]string, storeID int) map[string][]string {
	t, ok := tables[storeID]
	if !ok {
		t = make(map[string][]string)
		tables[storeID] = t
	}
	return t
}

// SynonymRewrites 实现thesaurus.Dictionary
func (m *Memory) SynonymRewrites(ctx context.Context, storeID int, text string) ([]string, error) {
	return substitute(ctx, text, m.lookup(m.synonyms, storeID))
}

// ExpansionRewrites 实现thesaurus.Dictionary
func (m *Memory) ExpansionRewrites(ctx context.Context, storeID int, text string) ([]string, error) {
	return substitute(ctx, text, m.lookup(m.expansions, storeID))
}

func (m *Memory) lookup(tables map[int]map[string][]string, storeID int) lookupFunc {
	return func(_ context.Context, phrase string) ([]string, error) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		alternatives := tables[storeID][phrase]
		return append([]string(nil), alternatives...), nil
	}
}
