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

// Package fulltext 根据拼写类型把查询文本构建为抽象查询树
package fulltext

import (
	"fmt"
	"strings"

	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
)

// Builder 全文查询构建器，无状态
type Builder struct{}

// NewBuilder 创建全文查询构建器
func NewBuilder() *Builder {
	return &Builder{}
}

// Create 为一组查询文本构建查询
// 单段文本直接返回该段的查询，多段文本以bool.should组合；全部为空时返回nil
func (b *Builder) Create(container *request.ContainerConfig, texts []string, spellingType request.SpellingType, boost float64) (query.Query, error) {
	if container == nil {
		return nil, fmt.Errorf("fulltext query requires a container config")
	}
	if boost == 0 {
		boost = query.DefaultBoost
	}

	queries := make([]query.Query, 0, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		q, err := b.createText(container, text, spellingType, boost)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}

	switch len(queries) {
	case 0:
		return nil, nil
	case 1:
		return queries[0], nil
	default:
		return &query.BoolQuery{Should: queries, MinimumShouldMatch: "1"}, nil
	}
}

func (b *Builder) createText(c *request.ContainerConfig, text string, spellingType request.SpellingType, boost float64) (query.Query, error) {
	switch spellingType {
	case request.SpellingTypePureStopwords:
		return pureStopwordsQuery(c, text, boost), nil
	case request.SpellingTypeExact, request.SpellingTypeMostExact:
		return exactQuery(c, text, boost), nil
	case request.SpellingTypeMostFuzzy:
		return &query.BoolQuery{
			Should:             []query.Query{exactQuery(c, text, query.DefaultBoost), fuzzyQuery(c, text)},
			MinimumShouldMatch: "1",
			Boost:              boost,
		}, nil
	case request.SpellingTypeFuzzy:
		should := []query.Query{fuzzyQuery(c, text)}
		if c.Relevance.EnablePhonetic {
			should = append(should, phoneticQuery(c, text))
		}
		return &query.BoolQuery{Should: should, MinimumShouldMatch: "1", Boost: boost}, nil
	default:
		return nil, fmt.Errorf("unknown spelling type %d", spellingType)
	}
}

// pureStopwordsQuery 全部为高频词时只在whitespace子字段上要求全部命中
func pureStopwordsQuery(c *request.ContainerConfig, text string, boost float64) query.Query {
	fields := make([]query.WeightedField, 0, len(c.SearchFields))
	for _, f := range c.SearchFields {
		fields = append(fields, query.WeightedField{
			Name:   request.SubField(f.Name, request.AnalyzerWhitespace),
			Weight: f.Weight,
		})
	}
	return &query.MultiMatchQuery{
		Text:               text,
		Fields:             fields,
		MatchType:          "best_fields",
		MinimumShouldMatch: "100%",
		TieBreaker:         tieBreaker(c),
		Boost:              boost,
	}
}

// exactQuery common查询负责过滤（高频词降权），multi_match负责按字段权重打分
func exactQuery(c *request.ContainerConfig, text string, boost float64) query.Query {
	return &query.BoolQuery{
		Must: []query.Query{&query.CommonQuery{
			Field:              c.SpellingField,
			Text:               text,
			CutoffFrequency:    c.Relevance.CutoffFrequency,
			MinimumShouldMatch: c.Relevance.MinimumShouldMatch,
		}},
		Should: []query.Query{&query.MultiMatchQuery{
			Text:       text,
			Fields:     append([]query.WeightedField(nil), c.SearchFields...),
			MatchType:  "best_fields",
			TieBreaker: tieBreaker(c),
		}},
		Boost: boost,
	}
}

func fuzzyQuery(c *request.ContainerConfig, text string) query.Query {
	return &query.MatchQuery{
		Field:              c.SpellingField,
		Text:               text,
		MinimumShouldMatch: c.Relevance.MinimumShouldMatch,
		Fuzziness:          c.Relevance.Fuzziness,
	}
}

func phoneticQuery(c *request.ContainerConfig, text string) query.Query {
	return &query.MatchQuery{
		Field:              request.SubField(c.SpellingField, request.AnalyzerPhonetic),
		Text:               text,
		MinimumShouldMatch: c.Relevance.MinimumShouldMatch,
	}
}

func tieBreaker(c *request.ContainerConfig) *float64 {
	v := c.Relevance.TieBreaker
	return &v
}
