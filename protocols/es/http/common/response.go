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

// Package common 提供HTTP响应和错误处理
package common

import (
	"encoding/json"
	"net/http"

	"github.com/lscgzwd/tigersuite/logger"
)

// Response ES兼容的错误响应格式
type Response struct {
	Error  *ErrorInfo `json:"error,omitempty"`
	Status int        `json:"status,omitempty"`
}

// ErrorInfo 错误信息
type ErrorInfo struct {
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Container string `json:"container,omitempty"`
}

// WithStatus 设置状态码
func (r *Response) WithStatus(status int) *Response {
	r.Status = status
	return r
}

// WriteJSON 将响应写入HTTP响应
func (r *Response) WriteJSON(w http.ResponseWriter, statusCode int) error {
	return WriteJSON(w, statusCode, r)
}

// ErrorResponse 创建错误响应
func ErrorResponse(errType, reason string) *Response {
	return &Response{Error: &ErrorInfo{Type: errType, Reason: reason}}
}

// WriteJSON 以JSON写入任意响应体
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(body)
}

// HandleSuccess 处理成功响应
func HandleSuccess(w http.ResponseWriter, body interface{}, statusCode int) {
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	if err := WriteJSON(w, statusCode, body); err != nil {
		logger.Error("Failed to write success response: %v", err)
	}
}
