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

// Package testutil 提供编译服务的测试工具
package testutil

import (
	"context"
	"net"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/lscgzwd/tigersuite/protocols/es"
	"github.com/lscgzwd/tigersuite/protocols/es/http/server"
	"github.com/lscgzwd/tigersuite/protocols/es/search"
	"github.com/lscgzwd/tigersuite/protocols/es/search/dsl"
	"github.com/lscgzwd/tigersuite/search/fulltext"
	"github.com/lscgzwd/tigersuite/search/query"
	"github.com/lscgzwd/tigersuite/search/request"
	"github.com/lscgzwd/tigersuite/spellcheck"
	"github.com/lscgzwd/tigersuite/thesaurus"
	"github.com/lscgzwd/tigersuite/thesaurus/store"
)

// TestContainer 测试服务器默认容器名
const TestContainer = "quick_search_container"

// TestIndex 测试容器对应的索引
const TestIndex = "catalog"

// EchoSearcher 不连接搜索引擎，返回空结果并记录最后一次请求
type EchoSearcher struct {
	LastIndex string
	LastBody  interface{}
}

// Search 实现 search.Searcher
func (s *EchoSearcher) Search(ctx context.Context, index string, body interface{}) (*elastic.SearchResult, error) {
	s.LastIndex = index
	s.LastBody = body
	return &elastic.SearchResult{
		Hits: &elastic.SearchHits{TotalHits: &elastic.TotalHits{Value: 0, Relation: "eq"}},
	}, nil
}

// TestServer 测试服务器
type TestServer struct {
	Server      *es.ESServer
	BaseURL     string
	TermVectors *spellcheck.MemoryTermVectors
	Dictionary  *store.Memory
	Searcher    *EchoSearcher
	Containers  request.Containers
	Cleanup     func()
}

// NewTestServer 创建测试服务器：内存词向量、内存同义词词典、随机端口
func NewTestServer() (*TestServer, error) {
	container := request.DefaultContainerConfig(TestContainer, TestIndex, 1)
	container.SearchFields = []query.WeightedField{{Name: "name", Weight: 5}, {Name: "search", Weight: 1}}
	container.Relevance.CutoffFrequency = 0.5
	container.Thesaurus.SynonymsEnabled = true
	container.Thesaurus.SynonymWeightDivider = 2
	containers := request.Containers{container.Name: container}

	tv := spellcheck.NewMemoryTermVectors()
	tv.Index(TestIndex, "leather shoes", "running shoes", "blue shirt", "red tee shirt")

	dict := store.NewMemory()
	searcher := &EchoSearcher{}
	assembler := dsl.NewRequestAssembler(thesaurus.NewRewriter(dict, fulltext.NewBuilder()), containers)
	engine := search.NewEngine(search.DefaultConfig(), containers, spellcheck.New(tv), assembler, searcher)

	config := es.DefaultConfig()
	config.ServerConfig = server.DefaultServerConfig()
	config.ServerConfig.Host = "127.0.0.1"
	config.ServerConfig.Port = 0

	esSrv, err := es.NewServer(engine, containers, config)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	go func() {
		_ = esSrv.Serve(ln)
	}()

	return &TestServer{
		Server:      esSrv,
		BaseURL:     "http://" + ln.Addr().String(),
		TermVectors: tv,
		Dictionary:  dict,
		Searcher:    searcher,
		Containers:  containers,
		Cleanup: func() {
			_ = esSrv.Stop()
			time.Sleep(10 * time.Millisecond)
		},
	}, nil
}

// Close 关闭测试服务器
func (ts *TestServer) Close() {
	if ts.Cleanup != nil {
		ts.Cleanup()
	}
}
