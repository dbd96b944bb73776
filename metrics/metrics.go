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

// Package metrics Prometheus指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tigersuite"

// 编译流程指标
var (
	CompiledRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compiled_requests_total",
			Help:      "Total number of compiled search requests",
		},
		[]string{"outcome"}, // "ok" / "error"
	)

	SpellingTypesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spelling_types_total",
			Help:      "Spelling type classifications",
		},
		[]string{"type"},
	)

	SpellcheckFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spellcheck_fallback_total",
			Help:      "Spellcheck failures degraded to the fallback spelling type",
		},
	)

	ThesaurusCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thesaurus_cache_total",
			Help:      "Thesaurus rewrite cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ThesaurusErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thesaurus_errors_total",
			Help:      "Synonym dictionary lookup failures",
		},
	)
)

func init() {
	prometheus.MustRegister(CompiledRequestsTotal)
	prometheus.MustRegister(SpellingTypesTotal)
	prometheus.MustRegister(SpellcheckFallbackTotal)
	prometheus.MustRegister(ThesaurusCacheTotal)
	prometheus.MustRegister(ThesaurusErrorsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

// ObserveCompile 记录一次编译结果
func ObserveCompile(err error) {
	if err != nil {
		CompiledRequestsTotal.WithLabelValues("error").Inc()
		return
	}
	CompiledRequestsTotal.WithLabelValues("ok").Inc()
}

// ObserveCache 记录一次改写缓存查找
func ObserveCache(hit bool) {
	if hit {
		ThesaurusCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	ThesaurusCacheTotal.WithLabelValues("miss").Inc()
}
