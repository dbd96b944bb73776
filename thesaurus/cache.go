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

package thesaurus

import (
	"encoding/json"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
)

// CacheKey 改写缓存键
type CacheKey struct {
	Container string
	StoreID   int
	TextHash  uint64
}

// cacheKeyPayload 参与哈希的内容：查询文本以及影响结果的拼写类型和权重
type cacheKeyPayload struct {
	Texts        []string             `json:"texts"`
	SpellingType request.SpellingType `json:"spelling_type"`
	Boost        float64              `json:"boost"`
}

// NewCacheKey 计算缓存键
func NewCacheKey(container string, storeID int, texts []string, spellingType request.SpellingType, boost float64) CacheKey {
	payload, _ := json.Marshal(cacheKeyPayload{Texts: texts, SpellingType: spellingType, Boost: boost})
	return CacheKey{
		Container: container,
		StoreID:   storeID,
		TextHash:  xxhash.Sum64(payload),
	}
}

// Cache 单次编译过程内的改写结果缓存
// 每次组装请求时新建，写入后不再修改，过程结束即丢弃
type Cache struct {
	mu      sync.Mutex
	entries map[CacheKey]query.Query
}

// NewCache 创建空缓存
func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]query.Query)}
}

// Get 查找缓存
func (c *Cache) Get(key CacheKey) (query.Query, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.entries[key]
	return q, ok
}

// Put 写入缓存并返回最终生效的值（已存在时保留先写入的值）
func (c *Cache) Put(key CacheKey, q query.Query) query.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = q
	return q
}

// Len 缓存条目数
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
