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

package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/olivere/elastic/v7"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/search/aggregation"
	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
	"github.com/lscgzwd/tigersuite/spellcheck"
)

// APIError API错误接口
type APIError interface {
	Error() string
	Type() string
	StatusCode() int
	Response() *Response
}

// BaseError 基础错误结构体
type BaseError struct {
	ErrType    string
	Message    string
	HTTPStatus int
	Container  string
}

// Error 实现error接口
func (e *BaseError) Error() string {
	return e.Message
}

// Type 返回错误类型
func (e *BaseError) Type() string {
	return e.ErrType
}

// StatusCode 返回HTTP状态码
func (e *BaseError) StatusCode() int {
	return e.HTTPStatus
}

// Response 返回ES格式的错误响应
func (e *BaseError) Response() *Response {
	resp := ErrorResponse(e.ErrType, e.Message).WithStatus(e.HTTPStatus)
	resp.Error.Container = e.Container
	return resp
}

// 预定义错误类型

// NewContainerNotFoundError 搜索容器不存在
func NewContainerNotFoundError(container string) APIError {
	return &BaseError{
		ErrType:    "container_not_found_exception",
		Message:    fmt.Sprintf("no such search container [%s]", container),
		HTTPStatus: http.StatusNotFound,
		Container:  container,
	}
}

// NewBadRequestError 请求参数错误
func NewBadRequestError(message string) APIError {
	return &BaseError{
		ErrType:    "illegal_argument_exception",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewParsingError 请求体无法解析
func NewParsingError(message string) APIError {
	return &BaseError{
		ErrType:    "parsing_exception",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnsupportedTypeError 查询、bucket或pipeline类型不支持
func NewUnsupportedTypeError(message string) APIError {
	return &BaseError{
		ErrType:    "unsupported_type_exception",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewServiceUnavailableError 搜索引擎不可用
func NewServiceUnavailableError(message string) APIError {
	return &BaseError{
		ErrType:    "search_engine_unavailable_exception",
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewEngineRequestError 搜索引擎拒绝了编译后的请求，沿用引擎返回的状态码和错误类型
func NewEngineRequestError(status int, errType, message string) APIError {
	if errType == "" {
		errType = "search_phase_execution_exception"
	}
	return &BaseError{
		ErrType:    errType,
		Message:    message,
		HTTPStatus: status,
	}
}

// NewInternalServerError 服务器内部错误
func NewInternalServerError(message string) APIError {
	return &BaseError{
		ErrType:    "internal_server_error",
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// FromError 将编译流程中的错误映射为API错误
func FromError(err error) APIError {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var (
		unknownContainer  *request.UnknownContainerError
		unsupportedQuery  *query.UnsupportedQueryTypeError
		unsupportedBucket *aggregation.UnsupportedBucketTypeError
		unsupportedPipe   *aggregation.UnsupportedPipelineTypeError
		duplicateBucket   *aggregation.DuplicateBucketNameError
		unavailable       *spellcheck.SearchEngineUnavailableError
		engineErr         *elastic.Error
		validation        *ValidationError
	)
	switch {
	case errors.As(err, &unknownContainer):
		return NewContainerNotFoundError(unknownContainer.Name)
	case errors.As(err, &unsupportedQuery),
		errors.As(err, &unsupportedBucket),
		errors.As(err, &unsupportedPipe):
		return NewUnsupportedTypeError(err.Error())
	case errors.As(err, &duplicateBucket), errors.As(err, &validation):
		return NewBadRequestError(err.Error())
	case errors.As(err, &unavailable):
		return NewServiceUnavailableError(err.Error())
	case errors.As(err, &engineErr) && engineErr.Status >= http.StatusBadRequest && engineErr.Status < http.StatusInternalServerError:
		var errType string
		if engineErr.Details != nil {
			errType = engineErr.Details.Type
		}
		return NewEngineRequestError(engineErr.Status, errType, err.Error())
	default:
		return NewInternalServerError(err.Error())
	}
}

// HandleError 处理错误并写入HTTP响应
func HandleError(w http.ResponseWriter, err error) {
	apiErr := FromError(err)
	if apiErr.StatusCode() >= http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
	}
	if writeErr := apiErr.Response().WriteJSON(w, apiErr.StatusCode()); writeErr != nil {
		logger.Error("Failed to write error response: %v (original error: %v)", writeErr, err)
	}
}
