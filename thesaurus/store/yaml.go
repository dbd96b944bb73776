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
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SynonymGroup 一组互为同义的词条
type SynonymGroup struct {
	StoreID int      `yaml:"store_id"`
	Terms   []string `yaml:"terms"`
}

// Expansion 单向扩展
type Expansion struct {
	StoreID   int      `yaml:"store_id"`
	Reference string   `yaml:"reference"`
	Terms     []string `yaml:"terms"`
}

// File 词典导入文件
//
//	synonyms:
//	  - store_id: 1
//	    terms: [tee, t-shirt]
//	expansions:
//	  - store_id: 1
//	    reference: shoes
//	    terms: [sneakers, boots]
type File struct {
	Synonyms   []SynonymGroup `yaml:"synonyms"`
	Expansions []Expansion    `yaml:"expansions"`
}

// Load 解析YAML词典
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse thesaurus file: %w", err)
	}
	return &f, nil
}

// LoadFile 从文件解析YAML词典
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open thesaurus file: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

// Apply 把全部词条写入词典，返回写入的条目数
func (f *File) Apply(dst Writer) (int, error) {
	count := 0
	for i, g := range f.Synonyms {
		if err := dst.AddSynonyms(g.StoreID, g.Terms...); err != nil {
			return count, fmt.Errorf("synonyms[%d]: %w", i, err)
		}
		count++
	}
	for i, e := range f.Expansions {
		if err := dst.AddExpansion(e.StoreID, e.Reference, e.Terms...); err != nil {
			return count, fmt.Errorf("expansions[%d]: %w", i, err)
		}
		count++
	}
	return count, nil
}
