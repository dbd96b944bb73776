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

package handler

import (
	"net/http"

	"github.com/lscgzwd/tigersuite/protocols/es/http/common"
	"github.com/lscgzwd/tigersuite/search/request"
)

// 服务信息
const (
	// NodeName 节点名称
	NodeName = "tigersuite-node-1"
	// Version 服务版本
	Version = "1.0.0"
	// Tagline 根路径标语
	Tagline = "You Know, for Search Compilation"
)

// InfoHandler 服务信息处理器
type InfoHandler struct {
	containers request.Containers
}

// NewInfoHandler 创建服务信息处理器
func NewInfoHandler(containers request.Containers) *InfoHandler {
	return &InfoHandler{containers: containers}
}

// Root 根路径信息
// GET /, HEAD /
func (h *InfoHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	common.HandleSuccess(w, map[string]interface{}{
		"name":    NodeName,
		"version": map[string]interface{}{"number": Version},
		"tagline": Tagline,
	}, http.StatusOK)
}

// Containers 列出已配置的搜索容器
// GET /_containers
func (h *InfoHandler) Containers(w http.ResponseWriter, r *http.Request) {
	common.HandleSuccess(w, h.containers, http.StatusOK)
}
