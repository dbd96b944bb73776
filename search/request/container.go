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

package request

import (
	"fmt"

	"github.com/lscgzwd/tigersuite/search/query"
)

// 分析器子字段后缀
const (
	AnalyzerStandard   = "standard"
	AnalyzerWhitespace = "whitespace"
	AnalyzerPhonetic   = "phonetic"
)

// DefaultSpellingField 拼写检查使用的聚合全文字段
const DefaultSpellingField = "spelling"

// RelevanceConfig 相关度配置
type RelevanceConfig struct {
	// CutoffFrequency 停用词阈值（占索引文档数的比例）
	CutoffFrequency    float64 `yaml:"cutoff_frequency" json:"cutoff_frequency"`
	MinimumShouldMatch string  `yaml:"minimum_should_match" json:"minimum_should_match"`
	TieBreaker         float64 `yaml:"tie_breaker" json:"tie_breaker"`
	Fuzziness          string  `yaml:"fuzziness" json:"fuzziness"`
	EnablePhonetic     bool    `yaml:"enable_phonetic" json:"enable_phonetic"`
}

// ThesaurusConfig 同义词改写配置
type ThesaurusConfig struct {
	SynonymsEnabled        bool    `yaml:"synonyms_enabled" json:"synonyms_enabled"`
	SynonymWeightDivider   float64 `yaml:"synonym_weight_divider" json:"synonym_weight_divider"`
	ExpansionsEnabled      bool    `yaml:"expansions_enabled" json:"expansions_enabled"`
	ExpansionWeightDivider float64 `yaml:"expansion_weight_divider" json:"expansion_weight_divider"`
	// MaxRewrites 每段文本最多采用的改写数，0表示不限制
	MaxRewrites int `yaml:"max_rewrites" json:"max_rewrites"`
}

// Enabled 同义词或扩展任一启用
func (c ThesaurusConfig) Enabled() bool {
	return c.SynonymsEnabled || c.ExpansionsEnabled
}

// ContainerConfig 搜索容器配置（索引、店铺、字段与相关度）
type ContainerConfig struct {
	Name          string                `yaml:"name" json:"name"`
	StoreID       int                   `yaml:"store_id" json:"store_id"`
	Index         string                `yaml:"index" json:"index"`
	SearchFields  []query.WeightedField `yaml:"search_fields" json:"search_fields"`
	SpellingField string                `yaml:"spelling_field" json:"spelling_field"`
	Relevance     RelevanceConfig       `yaml:"relevance" json:"relevance"`
	Thesaurus     ThesaurusConfig       `yaml:"thesaurus" json:"thesaurus"`
}

// DefaultContainerConfig 返回默认容器配置
func DefaultContainerConfig(name, index string, storeID int) *ContainerConfig {
	return &ContainerConfig{
		Name:          name,
		StoreID:       storeID,
		Index:         index,
		SearchFields:  []query.WeightedField{{Name: "search", Weight: 1}},
		SpellingField: DefaultSpellingField,
		Relevance: RelevanceConfig{
			CutoffFrequency:    0.15,
			MinimumShouldMatch: "100%",
			TieBreaker:         1.0,
			Fuzziness:          "AUTO",
		},
		Thesaurus: ThesaurusConfig{
			SynonymWeightDivider:   10,
			ExpansionWeightDivider: 10,
		},
	}
}

// Validate 验证容器配置，不修改配置
func (c *ContainerConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("container name cannot be empty")
	}
	if c.Index == "" {
		return fmt.Errorf("container [%s]: index cannot be empty", c.Name)
	}
	if c.Relevance.CutoffFrequency < 0 || c.Relevance.CutoffFrequency > 1 {
		return fmt.Errorf("container [%s]: cutoff_frequency must be within [0, 1]", c.Name)
	}
	if c.Thesaurus.SynonymsEnabled && c.Thesaurus.SynonymWeightDivider <= 0 {
		return fmt.Errorf("container [%s]: synonym_weight_divider must be greater than 0", c.Name)
	}
	if c.Thesaurus.ExpansionsEnabled && c.Thesaurus.ExpansionWeightDivider <= 0 {
		return fmt.Errorf("container [%s]: expansion_weight_divider must be greater than 0", c.Name)
	}
	if c.SpellingField == "" {
		return fmt.Errorf("container [%s]: spelling_field cannot be empty", c.Name)
	}
	return nil
}

// SubField 返回字段的分析器子字段名，如 spelling.whitespace
func SubField(field, analyzer string) string {
	return field + "." + analyzer
}

// UnknownContainerError 未配置的搜索容器
type UnknownContainerError struct {
	Name string
}

func (e *UnknownContainerError) Error() string {
	return fmt.Sprintf("unknown search container [%s]", e.Name)
}

// Containers 按名称索引的容器配置
type Containers map[string]*ContainerConfig

// Container 查找容器配置
func (c Containers) Container(name string) (*ContainerConfig, error) {
	cfg, ok := c[name]
	if !ok {
		return nil, &UnknownContainerError{Name: name}
	}
	return cfg, nil
}
