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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/protocols/es/search"
	"github.com/lscgzwd/tigersuite/protocols/es/search/dsl"
	"github.com/lscgzwd/tigersuite/search/request"
)

// CompileOptions compile命令参数
type CompileOptions struct {
	*RootOptions
	Workers int
	Connect bool
	Pretty  bool
}

// CompileResult 单个请求文件的编译结果
type CompileResult struct {
	File     string        `json:"file"`
	Document *dsl.Document `json:"document,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// NewCompileCommand 创建compile命令
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <request.json>...",
		Short: "Compile search request files into query documents",
		Long: `Compile one or more search request files offline.

Each file holds one JSON search request naming its container. Files are
compiled concurrently and the documents are printed in argument order.
Without --connect no spellcheck runs and fulltext uses the configured
fallback spelling type.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.RootOptions)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, opts.Connect)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCompile(cmd.Context(), a.engine, args, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", runtime.NumCPU(), "number of concurrent compilations")
	cmd.Flags().BoolVar(&opts.Connect, "connect", false, "connect to the search engine for spellcheck")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", true, "indent output")

	return cmd
}

// runCompile 在ants协程池中并发编译每个文件
func runCompile(ctx context.Context, engine *search.Engine, files []string, opts *CompileOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]CompileResult, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		i, file := i, file
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = compileFile(ctx, engine, file)
		}); err != nil {
			wg.Done()
			results[i] = CompileResult{File: file, Error: err.Error()}
		}
	}
	wg.Wait()

	enc := json.NewEncoder(out)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d request(s) failed to compile", failed, len(files))
	}
	return nil
}

func compileFile(ctx context.Context, engine *search.Engine, file string) CompileResult {
	result := CompileResult{File: file}
	data, err := os.ReadFile(file)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req, err := request.Decode(data)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	doc, err := engine.Prepare(ctx, req)
	if err != nil {
		logger.WithField("file", file).Warn("compile failed: %v", err)
		result.Error = err.Error()
		return result
	}
	result.Document = doc
	return result
}
