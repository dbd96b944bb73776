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

package dsl

import (
	"fmt"
	"strings"

	"github.com/lscgzwd/tigersuite/search/request"
)

// UnmappedType 排序字段在部分索引中不存在时使用的类型
const UnmappedType = "keyword"

// SortOrderCompiler 编译排序规则
type SortOrderCompiler struct {
	queries *QueryCompiler
}

// NewSortOrderCompiler 创建排序编译器
func NewSortOrderCompiler(queries *QueryCompiler) *SortOrderCompiler {
	if queries == nil {
		queries = NewQueryCompiler()
	}
	return &SortOrderCompiler{queries: queries}
}

// Compile 编译排序列表，无排序时返回空数组（不是nil）
func (c *SortOrderCompiler) Compile(orders []request.SortOrder) ([]interface{}, error) {
	out := make([]interface{}, 0, len(orders))
	for i := range orders {
		compiled, err := c.compileOrder(&orders[i])
		if err != nil {
			return nil, fmt.Errorf("sort[%d]: %w", i, err)
		}
		out = append(out, compiled)
	}
	return out, nil
}

func (c *SortOrderCompiler) compileOrder(o *request.SortOrder) (map[string]interface{}, error) {
	direction, err := normalizeDirection(o)
	if err != nil {
		return nil, err
	}

	if o.Script != nil {
		return compileScriptSort(o.Script, direction), nil
	}
	if o.Field == request.ScoreField {
		return map[string]interface{}{
			request.ScoreField: map[string]interface{}{"order": direction},
		}, nil
	}

	missing := o.Missing
	if missing == "" {
		missing = request.MissingLast
		if direction == request.SortDesc {
			missing = request.MissingFirst
		}
	}
	params := map[string]interface{}{
		"order":         direction,
		"missing":       missing,
		"unmapped_type": UnmappedType,
	}

	if o.IsNested() {
		mode := o.Mode
		if mode == "" {
			mode = "min"
			if direction == request.SortDesc {
				mode = "max"
			}
		}
		params["mode"] = mode

		nested := map[string]interface{}{"path": o.NestedPath}
		filter, err := c.queries.Compile(o.NestedFilter)
		if err != nil {
			return nil, err
		}
		if len(filter) > 0 {
			nested["filter"] = filter
		}
		params["nested"] = nested
	}

	return map[string]interface{}{o.Field: params}, nil
}

// normalizeDirection 默认方向：_score降序，其余升序
func normalizeDirection(o *request.SortOrder) (string, error) {
	direction := strings.ToLower(strings.TrimSpace(o.Direction))
	switch direction {
	case "":
		if o.Field == request.ScoreField {
			return request.SortDesc, nil
		}
		return request.SortAsc, nil
	case request.SortAsc, request.SortDesc:
		return direction, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", o.Direction)
	}
}

func compileScriptSort(s *request.SortScript, direction string) map[string]interface{} {
	sortType := s.Type
	if sortType == "" {
		sortType = "number"
	}
	script := map[string]interface{}{"source": s.Source}
	if s.Lang != "" {
		script["lang"] = s.Lang
	}
	if len(s.Params) > 0 {
		script["params"] = s.Params
	}
	return map[string]interface{}{
		"_script": map[string]interface{}{
			"type":   sortType,
			"script": script,
			"order":  direction,
		},
	}
}
