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
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	synonymsBucket   = []byte("synonyms")
	expansionsBucket = []byte("expansions")
)

// Bolt 基于bbolt的持久化词典
// 结构：synonyms|expansions / <storeID> / <词条> -> JSON数组
type Bolt struct {
	db *bolt.DB
}

// OpenBolt 打开（或创建）词典文件
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open thesaurus store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{synonymsBucket, expansionsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize thesaurus store: %w", err)
	}
	return &Bolt{db: db}, nil
}

// Close 关闭词典文件
func (b *Bolt) Close() error {
	return b.db.Close()
}

// AddSynonyms 添加一组互为同义的词条
func (b *Bolt) AddSynonyms(storeID int, terms ...string) error {
	table := synonymTable(terms)
	if len(table) < 2 {
		return fmt.Errorf("a synonym group needs at least two distinct terms")
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := storeBucket(tx, synonymsBucket, storeID)
		if err != nil {
			return err
		}
		for term, others := range table {
			if err := mergeEntry(bucket, term, others); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddExpansion 添加单向扩展
func (b *Bolt) AddExpansion(storeID int, reference string, terms ...string) error {
	ref := Normalize(reference)
	expansions := normalizeTerms(terms)
	if ref == "" || len(expansions) == 0 {
		return fmt.Errorf("an expansion needs a reference term and at least one expansion")
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := storeBucket(tx, expansionsBucket, storeID)
		if err != nil {
			return err
		}
		return mergeEntry(bucket, ref, expansions)
	})
}

// SynonymRewrites 实现thesaurus.Dictionary
func (b *Bolt) SynonymRewrites(ctx context.Context, storeID int, text string) ([]string, error) {
	return substitute(ctx, text, b.lookup(synonymsBucket, storeID))
}

// ExpansionRewrites 实现thesaurus.Dictionary
func (b *Bolt) ExpansionRewrites(ctx context.Context, storeID int, text string) ([]string, error) {
	return substitute(ctx, text, b.lookup(expansionsBucket, storeID))
}

func (b *Bolt) lookup(kind []byte, storeID int) lookupFunc {
	storeKey := []byte(strconv.Itoa(storeID))
	return func(_ context.Context, phrase string) ([]string, error) {
		var out []string
		err := b.db.View(func(tx *bolt.Tx) error {
			root := tx.Bucket(kind)
			if root == nil {
				return nil
			}
			bucket := root.Bucket(storeKey)
			if bucket == nil {
				return nil
			}
			data := bucket.Get([]byte(phrase))
			if data == nil {
				return nil
			}
			return json.Unmarshal(data, &out)
		})
		if err != nil {
			return nil, fmt.Errorf("thesaurus lookup failed: %w", err)
		}
		return out, nil
	}
}

func storeBucket(tx *bolt.Tx, kind []byte, storeID int) (*bolt.Bucket, error) {
	root := tx.Bucket(kind)
	if root == nil {
		return nil, fmt.Errorf("bucket %s does not exist", kind)
	}
	return root.CreateBucketIfNotExists([]byte(strconv.Itoa(storeID)))
}

func mergeEntry(bucket *bolt.Bucket, term string, added []string) error {
	var existing []string
	if data := bucket.Get([]byte(term)); data != nil {
		if err := json.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf("corrupt thesaurus entry %q: %w", term, err)
		}
	}
	data, err := json.Marshal(mergeTerms(existing, added))
	if err != nil {
		return err
	}
	return bucket.Put([]byte(term), data)
}
