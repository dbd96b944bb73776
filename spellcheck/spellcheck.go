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

// Package spellcheck 根据词频统计判断查询文本与索引内容的匹配程度
package spellcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/metrics"
	"github.com/lscgzwd/tigersuite/search/request"
)

// TermStat 单个词在某个分析器子字段上的统计
type TermStat struct {
	Term        string
	DocFreq     int64
	StartOffset int
	EndOffset   int
}

// TermVectorsProvider 词向量统计来源（搜索引擎或本地内存实现）
type TermVectorsProvider interface {
	// TermVectors 以 {field: text} 构造临时文档，返回各子字段的词统计，键为子字段全名
	TermVectors(ctx context.Context, index, field, text string, subFields []string) (map[string][]TermStat, error)
	// DocCount 索引文档总数
	DocCount(ctx context.Context, index string) (int64, error)
}

// SearchEngineUnavailableError 词向量或索引统计请求失败
// 本层不重试，由调用方决定是否降级
type SearchEngineUnavailableError struct {
	Op  string
	Err error
}

func (e *SearchEngineUnavailableError) Error() string {
	return fmt.Sprintf("search engine unavailable during %s: %v", e.Op, e.Err)
}

func (e *SearchEngineUnavailableError) Unwrap() error { return e.Err }

// Request 拼写检查请求
type Request struct {
	Index string
	Text  string
	// SpellingField 聚合全文字段，探测其 .standard 和 .whitespace 子字段
	SpellingField string
	// CutoffFrequency 停用词阈值占文档总数的比例
	CutoffFrequency float64
}

// Stats 各类位置的计数
type Stats struct {
	Total       int     `json:"total"`
	Stop        int     `json:"stop"`
	Exact       int     `json:"exact"`
	Standard    int     `json:"standard"`
	Missing     int     `json:"missing"`
	DocCount    int64   `json:"doc_count"`
	CutoffLimit float64 `json:"cutoff_limit"`
}

// Result 拼写检查结果
type Result struct {
	SpellingType request.SpellingType `json:"spelling_type"`
	Stats        Stats                `json:"stats"`
}

// Spellchecker 拼写类型分类器
type Spellchecker struct {
	provider TermVectorsProvider
}

// New 创建拼写检查器
func New(provider TermVectorsProvider) *Spellchecker {
	return &Spellchecker{provider: provider}
}

// GetSpellingType 返回查询文本的拼写类型
func (s *Spellchecker) GetSpellingType(ctx context.Context, req Request) (request.SpellingType, error) {
	res, err := s.Check(ctx, req)
	if err != nil {
		return 0, err
	}
	return res.SpellingType, nil
}

// Check 返回拼写类型和统计明细
func (s *Spellchecker) Check(ctx context.Context, req Request) (*Result, error) {
	field := req.SpellingField
	if field == "" {
		field = request.DefaultSpellingField
	}

	stats := Stats{}
	if strings.TrimSpace(req.Text) != "" {
		docCount, err := s.provider.DocCount(ctx, req.Index)
		if err != nil {
			return nil, &SearchEngineUnavailableError{Op: "index stats", Err: err}
		}
		stats.DocCount = docCount
		stats.CutoffLimit = req.CutoffFrequency * float64(docCount)

		subFields := []string{
			request.SubField(field, request.AnalyzerStandard),
			request.SubField(field, request.AnalyzerWhitespace),
		}
		vectors, err := s.provider.TermVectors(ctx, req.Index, field, req.Text, subFields)
		if err != nil {
			return nil, &SearchEngineUnavailableError{Op: "term vectors", Err: err}
		}
		countPositions(&stats, field, vectors)
	}

	spellingType := Classify(stats)
	metrics.SpellingTypesTotal.WithLabelValues(spellingType.String()).Inc()
	if logger.IsDebugEnabled() {
		logger.Debug("Spellcheck %q on index %s: %s (total=%d stop=%d exact=%d standard=%d missing=%d cutoff=%.2f)",
			req.Text, req.Index, spellingType, stats.Total, stats.Stop, stats.Exact, stats.Standard, stats.Missing, stats.CutoffLimit)
	}
	return &Result{SpellingType: spellingType, Stats: stats}, nil
}

type positionKey struct {
	start, end int
}

type positionStat struct {
	docFreq   int64
	analyzers map[string]bool
}

// countPositions 按偏移合并各分析器的词统计并分类计数
// 只识别standard和whitespace两个分析器，其他子字段忽略
func countPositions(stats *Stats, field string, vectors map[string][]TermStat) {
	positions := make(map[positionKey]*positionStat)
	order := make([]positionKey, 0)

	for subField, terms := range vectors {
		analyzer := strings.TrimPrefix(subField, field+".")
		if analyzer != request.AnalyzerStandard && analyzer != request.AnalyzerWhitespace {
			continue
		}
		for _, term := range terms {
			key := positionKey{start: term.StartOffset, end: term.EndOffset}
			ps, ok := positions[key]
			if !ok {
				ps = &positionStat{analyzers: make(map[string]bool, 2)}
				positions[key] = ps
				order = append(order, key)
			}
			if term.DocFreq > 0 {
				ps.analyzers[analyzer] = true
			}
			if term.DocFreq > ps.docFreq {
				ps.docFreq = term.DocFreq
			}
		}
	}

	for _, key := range order {
		ps := positions[key]
		stats.Total++
		switch {
		case ps.docFreq == 0:
			stats.Missing++
		case float64(ps.docFreq) >= stats.CutoffLimit:
			stats.Stop++
		case ps.analyzers[request.AnalyzerWhitespace]:
			stats.Exact++
		default:
			stats.Standard++
		}
	}
}

// Classify 按规则顺序判定拼写类型，先匹配先生效
func Classify(s Stats) request.SpellingType {
	switch {
	case s.Total == s.Stop:
		return request.SpellingTypePureStopwords
	case s.Total == s.Stop+s.Exact:
		return request.SpellingTypeExact
	case s.Missing == 0:
		return request.SpellingTypeMostExact
	case s.Total-s.Missing > 0:
		return request.SpellingTypeMostFuzzy
	default:
		return request.SpellingTypeFuzzy
	}
}
