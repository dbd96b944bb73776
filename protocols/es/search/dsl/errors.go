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
	"errors"

	"github.com/lscgzwd/tigersuite/search/aggregation"
	"github.com/lscgzwd/tigersuite/search/query"
)

// 编译错误类型：均为致命错误，表示上游配置或程序缺陷，不重试
type (
	UnsupportedQueryTypeError    = query.UnsupportedQueryTypeError
	UnsupportedBucketTypeError   = aggregation.UnsupportedBucketTypeError
	UnsupportedPipelineTypeError = aggregation.UnsupportedPipelineTypeError
	DuplicateBucketNameError     = aggregation.DuplicateBucketNameError
)

// IsUnsupportedType 判断错误链中是否包含未知类型错误
func IsUnsupportedType(err error) bool {
	var qErr *UnsupportedQueryTypeError
	var bErr *UnsupportedBucketTypeError
	var pErr *UnsupportedPipelineTypeError
	return errors.As(err, &qErr) || errors.As(err, &bErr) || errors.As(err, &pErr)
}
