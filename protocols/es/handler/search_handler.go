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

// Package handler 搜索编译服务的HTTP处理器
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/protocols/es/http/common"
	"github.com/lscgzwd/tigersuite/protocols/es/search"
	"github.com/lscgzwd/tigersuite/protocols/es/search/dsl"
	"github.com/lscgzwd/tigersuite/search/request"
)

// SearchHandler 编译、拼写检查和搜索处理器
type SearchHandler struct {
	engine *search.Engine
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(engine *search.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// SpellcheckRequest 拼写检查请求体
type SpellcheckRequest struct {
	Text string `json:"text"`
}

// Compile 编译搜索请求为ES请求体
// POST /{container}/_compile
func (h *SearchHandler) Compile(w http.ResponseWriter, r *http.Request) {
	req, err := readSearchRequest(r)
	if err != nil {
		common.HandleError(w, err)
		return
	}

	doc, err := h.engine.Prepare(r.Context(), req)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.HandleSuccess(w, doc, http.StatusOK)
}

// Spellcheck 返回查询文本的拼写类型和统计明细
// POST /{container}/_spellcheck
func (h *SearchHandler) Spellcheck(w http.ResponseWriter, r *http.Request) {
	container := mux.Vars(r)["container"]
	if err := common.ValidateContainerName(container); err != nil {
		common.HandleError(w, err)
		return
	}

	body, err := readBody(r, common.MaxSpellcheckBodySize)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	var sr SpellcheckRequest
	if err := json.Unmarshal(body, &sr); err != nil {
		common.HandleError(w, common.NewParsingError("failed to parse spellcheck request: "+err.Error()))
		return
	}

	res, err := h.engine.Spellcheck(r.Context(), container, sr.Text)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.HandleSuccess(w, res, http.StatusOK)
}

// Search 编译并执行搜索，返回搜索引擎的原始响应
// POST /{container}/_search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, err := readSearchRequest(r)
	if err != nil {
		common.HandleError(w, err)
		return
	}

	res, err := h.engine.Search(r.Context(), req)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	if logger.IsDebugEnabled() {
		logger.Debug("Search - container [%s] took %v, hits %d", req.Container, time.Since(start), res.TotalHits())
	}
	common.HandleSuccess(w, res, http.StatusOK)
}

// readSearchRequest 解析请求体，路径中的容器名优先于请求体
func readSearchRequest(r *http.Request) (*request.SearchRequest, error) {
	container := mux.Vars(r)["container"]
	if err := common.ValidateContainerName(container); err != nil {
		return nil, err
	}

	body, err := readBody(r, common.MaxCompileBodySize)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	req, err := request.Decode(body)
	if err != nil {
		var duplicate *dsl.DuplicateBucketNameError
		if dsl.IsUnsupportedType(err) || errors.As(err, &duplicate) {
			return nil, err
		}
		return nil, common.NewParsingError(err.Error())
	}
	req.Container = container
	return req, nil
}

func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, common.NewBadRequestError("failed to read request body: " + err.Error())
	}
	if int64(len(body)) > limit {
		return nil, common.NewBadRequestError(fmt.Sprintf("request body exceeds %d bytes", limit))
	}
	return body, nil
}
