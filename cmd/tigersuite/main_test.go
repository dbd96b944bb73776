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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lscgzwd/tigersuite/config"
	"github.com/lscgzwd/tigersuite/thesaurus/store"
)

const testConfig = `
containers:
  - name: quick_search_container
    index: catalog
    store_id: 1
    thesaurus:
      synonyms_enabled: true
      synonym_weight_divider: 2
log:
  level: silent
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCompile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(writeFile(t, dir, "tigersuite.yaml", testConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	a, err := newApp(cfg, false)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.dict.AddSynonyms(1, "tee", "t-shirt"))

	files := []string{
		writeFile(t, dir, "term.json", `{"container":"quick_search_container","query":{"type":"term","field":"color","value":"red"},"size":5}`),
		writeFile(t, dir, "fulltext.json", `{"container":"quick_search_container","query_text":"tee"}`),
	}

	var out bytes.Buffer
	opts := &CompileOptions{RootOptions: &RootOptions{}, Workers: 2}
	require.NoError(t, runCompile(context.Background(), a.engine, files, opts, &out))

	var results []struct {
		File     string                 `json:"file"`
		Document map[string]interface{} `json:"document"`
		Error    string                 `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)

	// 输出顺序与参数顺序一致
	assert.Equal(t, files[0], results[0].File)
	assert.Equal(t, float64(5), results[0].Document["size"])
	assert.Equal(t, map[string]interface{}{"term": map[string]interface{}{"color": map[string]interface{}{"value": "red"}}}, results[0].Document["query"])

	should := results[1].Document["query"].(map[string]interface{})["bool"].(map[string]interface{})["should"].([]interface{})
	assert.Len(t, should, 2)
}

func TestRunCompileReportsFailures(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(writeFile(t, dir, "tigersuite.yaml", testConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	a, err := newApp(cfg, false)
	require.NoError(t, err)
	defer a.Close()

	files := []string{
		writeFile(t, dir, "ok.json", `{"container":"quick_search_container"}`),
		writeFile(t, dir, "bad.json", `{"query":{"type":"geo_shape"}}`),
		filepath.Join(dir, "missing.json"),
	}

	var out bytes.Buffer
	err = runCompile(context.Background(), a.engine, files, &CompileOptions{RootOptions: &RootOptions{}}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3")

	var results []CompileResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 3)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[1].Error)
	assert.NotEmpty(t, results[2].Error)
}

func TestImportThesaurus(t *testing.T) {
	dir := t.TempDir()
	seed := writeFile(t, dir, "thesaurus.yaml", `
synonyms:
  - store_id: 1
    terms: [tee, t-shirt]
expansions:
  - store_id: 1
    reference: shoes
    terms: [sneakers]
`)
	dbPath := filepath.Join(dir, "thesaurus.db")

	n, err := importThesaurus(dbPath, []string{seed})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	db, err := store.OpenBolt(dbPath)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.SynonymRewrites(context.Background(), 1, "tee")
	require.NoError(t, err)
	assert.Equal(t, []string{"t-shirt"}, got)
}

func TestNewAppSeedsDictionary(t *testing.T) {
	dir := t.TempDir()
	seed := writeFile(t, dir, "thesaurus.yaml", "synonyms:\n  - store_id: 1\n    terms: [couch, sofa]\n")

	cfg, err := config.Load(writeFile(t, dir, "tigersuite.yaml", testConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	cfg.Thesaurus.StorePath = filepath.Join(dir, "thesaurus.db")
	cfg.Thesaurus.SeedFile = seed

	a, err := newApp(cfg, false)
	require.NoError(t, err)
	defer a.Close()

	got, err := a.dict.SynonymRewrites(context.Background(), 1, "couch")
	require.NoError(t, err)
	assert.Equal(t, []string{"sofa"}, got)
}

func TestApplyCommandLineOverrides(t *testing.T) {
	cfg := config.DefaultGlobalConfig()
	applyCommandLineOverrides(cfg, &RootOptions{Host: "127.0.0.1", Port: 9999, LogLevel: "verbose"})

	assert.Equal(t, "127.0.0.1", cfg.ES.ServerConfig.Host)
	assert.Equal(t, 9999, cfg.ES.ServerConfig.Port)
	// 无效的日志级别被忽略
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestRootCommandWiring(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "compile", "spellcheck", "thesaurus"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}
