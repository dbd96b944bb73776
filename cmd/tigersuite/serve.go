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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/protocols/es"
)

// NewServeCommand 创建serve命令
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Start the HTTP compilation service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}
}

func runServe(rootOpts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	logger.Info("Starting %s v%s", Name, Version)

	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	esServer, err := es.NewServer(a.engine, a.containers, cfg.ES)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s starting\n", Name, Version)
	fmt.Fprintf(out, "Listening: %s\n", esServer.Address())
	fmt.Fprintf(out, "Containers: %d\n", len(a.containers))
	fmt.Fprintf(out, "Health check: http://%s%s\n", esServer.Address(), cfg.ES.ServerConfig.HealthPath)
	if cfg.ES.ServerConfig.EnableMetrics {
		fmt.Fprintf(out, "Metrics: http://%s%s\n", esServer.Address(), cfg.ES.ServerConfig.MetricsPath)
	}

	return startWithGracefulShutdown(esServer)
}

// startWithGracefulShutdown 启动服务器并在收到SIGINT/SIGTERM时优雅关闭
func startWithGracefulShutdown(esServer *es.ESServer) error {
	errChan := make(chan error, 1)

	go func() {
		if err := esServer.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// 最多等待5秒确认服务器已启动
	startTimeout := time.NewTimer(5 * time.Second)
	defer startTimeout.Stop()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

wait:
	for {
		select {
		case <-startTimeout.C:
			logger.Warn("Server startup check timeout, continuing...")
			break wait
		case err := <-errChan:
			return fmt.Errorf("server startup failed: %w", err)
		case <-ticker.C:
			if esServer.IsRunning() {
				break wait
			}
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down server...")
	if err := esServer.Stop(); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
		return err
	}
	logger.Info("Server exited")
	return nil
}
