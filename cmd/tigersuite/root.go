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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lscgzwd/tigersuite/config"
	"github.com/lscgzwd/tigersuite/logger"
)

// RootOptions 全局命令行参数
// 配置优先级：命令行参数 > 环境变量 > 配置文件 > 默认值
type RootOptions struct {
	ConfigPath string
	Host       string
	Port       int
	LogLevel   string
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "tigersuite",
		Short:   "TigerSuite - search request compilation service",
		Long:    "Compiles abstract search requests into search engine query documents, with spellcheck and thesaurus rewriting.",
		Version: Version,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file path")
	cmd.PersistentFlags().StringVar(&opts.Host, "host", "", "HTTP server host")
	cmd.PersistentFlags().IntVar(&opts.Port, "port", 0, "HTTP server port")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSpellcheckCommand(opts))
	cmd.AddCommand(NewThesaurusCommand(opts))

	return cmd
}

// loadConfig 加载并验证配置，然后初始化日志
func loadConfig(opts *RootOptions) (*config.GlobalConfig, error) {
	cfg, err := loadRawConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.Init(cfg.Log.LoggerConfig()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRawConfig 按 配置文件 -> 环境变量 -> 命令行参数 的顺序加载配置，不做验证
func loadRawConfig(opts *RootOptions) (*config.GlobalConfig, error) {
	path := opts.ConfigPath
	if path == "" {
		path = autoDetectConfig()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	applyCommandLineOverrides(cfg, opts)
	return cfg, nil
}

// applyCommandLineOverrides 应用命令行参数覆盖（最高优先级）
func applyCommandLineOverrides(cfg *config.GlobalConfig, opts *RootOptions) {
	if cfg.ES != nil && cfg.ES.ServerConfig != nil {
		if opts.Host != "" {
			cfg.ES.ServerConfig.Host = opts.Host
		}
		if opts.Port > 0 {
			cfg.ES.ServerConfig.Port = opts.Port
		}
	}
	if opts.LogLevel != "" && cfg.Log != nil && isValidLogLevel(opts.LogLevel) {
		cfg.Log.Level = opts.LogLevel
	}
}

// autoDetectConfig 自动检测配置文件
func autoDetectConfig() string {
	homeDir, _ := os.UserHomeDir()
	paths := []string{
		"tigersuite.yaml",
		"tigersuite.yml",
		filepath.Join(".", "config", "tigersuite.yaml"),
		filepath.Join(homeDir, ".tigersuite", "config.yaml"),
		filepath.Join("/etc", "tigersuite", "config.yaml"),
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error", "silent":
		return true
	}
	return false
}
