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
package main

import (
	"fmt"

	"github.com/lscgzwd/tigersuite/config"
	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/protocols/es/client"
	"github.com/lscgzwd/tigersuite/protocols/es/search"
	"github.com/lscgzwd/tigersuite/protocols/es/search/dsl"
	"github.com/lscgzwd/tigersuite/search/fulltext"
	"github.com/lscgzwd/tigersuite/search/request"
	"github.com/lscgzwd/tigersuite/spellcheck"
	"github.com/lscgzwd/tigersuite/thesaurus"
	"github.com/lscgzwd/tigersuite/thesaurus/store"
)

// dictionary 可读可写的同义词词典
type dictionary interface {
	thesaurus.Dictionary
	store.Writer
}

// app 组装好的编译引擎及其依赖
type app struct {
	config     *config.GlobalConfig
	containers request.Containers
	engine     *search.Engine
	client     *client.Client
	dict       dictionary
	closeDict  func() error
}

// newApp 按配置组装组件，connect为false时不连接搜索引擎（只编译）
func newApp(cfg *config.GlobalConfig, connect bool) (*app, error) {
	containers, err := cfg.ContainerMap()
	if err != nil {
		return nil, err
	}
	a := &app{config: cfg, containers: containers}

	if err := a.openDictionary(); err != nil {
		return nil, err
	}

	var (
		spellchecker *spellcheck.Spellchecker
		searcher     search.Searcher
	)
	if connect {
		a.client, err = client.New(cfg.Engine)
		if err != nil {
			a.Close()
			return nil, err
		}
		searcher = a.client
		if cfg.Spellcheck.Enabled {
			spellchecker = spellcheck.New(a.client)
		}
	}

	rewriter := thesaurus.NewRewriter(a.dict, fulltext.NewBuilder(),
		thesaurus.WithFailOnError(cfg.Thesaurus.FailOnError))
	assembler := dsl.NewRequestAssembler(rewriter, containers)
	a.engine = search.NewEngine(search.Config{
		SpellcheckEnabled: cfg.Spellcheck.Enabled && connect,
		Fallback:          cfg.Spellcheck.Fallback,
	}, containers, spellchecker, assembler, searcher)
	return a, nil
}

// openDictionary 打开bbolt词典（未配置路径时使用内存词典），并导入种子文件
func (a *app) openDictionary() error {
	tc := a.config.Thesaurus
	if tc.StorePath == "" {
		a.dict = store.NewMemory()
		a.closeDict = func() error { return nil }
	} else {
		b, err := store.OpenBolt(tc.StorePath)
		if err != nil {
			return err
		}
		a.dict = b
		a.closeDict = b.Close
	}

	if tc.SeedFile == "" {
		return nil
	}
	f, err := store.LoadFile(tc.SeedFile)
	if err != nil {
		a.closeDict()
		return err
	}
	n, err := f.Apply(a.dict)
	if err != nil {
		a.closeDict()
		return fmt.Errorf("failed to import %s: %w", tc.SeedFile, err)
	}
	logger.Info("Imported %d thesaurus entries from %s", n, tc.SeedFile)
	return nil
}

// Close 释放词典和客户端
func (a *app) Close() error {
	if a.client != nil {
		a.client.Stop()
	}
	if a.closeDict != nil {
		return a.closeDict()
	}
	return nil
}
