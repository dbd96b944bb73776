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

// Package config 全局配置：默认值 -> 配置文件 -> 环境变量 -> 命令行参数
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/protocols/es"
	"github.com/lscgzwd/tigersuite/protocols/es/client"
	"github.com/lscgzwd/tigersuite/search/request"
)

// GlobalConfig 全局配置结构
type GlobalConfig struct {
	// HTTP服务配置
	ES *es.Config `yaml:"es,omitempty" json:"es,omitempty"`

	// 搜索引擎集群配置
	Engine client.Config `yaml:"engine" json:"engine"`

	Spellcheck *SpellcheckConfig `yaml:"spellcheck,omitempty" json:"spellcheck,omitempty"`
	Thesaurus  *ThesaurusConfig  `yaml:"thesaurus,omitempty" json:"thesaurus,omitempty"`

	// 搜索容器
	Containers ContainerList `yaml:"containers" json:"containers"`

	// 日志配置（全局）
	Log *LogConfig `yaml:"log,omitempty" json:"log,omitempty"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level           string `yaml:"level" json:"level"`                       // 日志级别：debug, info, warn, error, silent
	Output          string `yaml:"output" json:"output"`                     // 输出目标：stdout, stderr, 或文件路径
	Format          string `yaml:"format" json:"format"`                     // 日志格式：text, json
	EnableCaller    bool   `yaml:"enable_caller" json:"enable_caller"`       // 是否显示调用位置（文件:行号）
	EnableTimestamp bool   `yaml:"enable_timestamp" json:"enable_timestamp"` // 是否显示时间戳
	MaxSize         int    `yaml:"max_size" json:"max_size"`                 // 单个日志文件的最大大小（MB）
	MaxBackups      int    `yaml:"max_backups" json:"max_backups"`           // 保留的旧日志文件数量
	MaxAge          int    `yaml:"max_age" json:"max_age"`                   // 保留旧日志文件的最大天数
	Compress        bool   `yaml:"compress" json:"compress"`                 // 是否压缩旧日志文件
}

// LoggerConfig 转换为logger配置
func (c *LogConfig) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:           logger.ParseLevel(c.Level),
		Output:          c.Output,
		Format:          c.Format,
		EnableCaller:    c.EnableCaller,
		EnableTimestamp: c.EnableTimestamp,
		MaxSize:         c.MaxSize,
		MaxBackups:      c.MaxBackups,
		MaxAge:          c.MaxAge,
		Compress:        c.Compress,
	}
}

// SpellcheckConfig 拼写检查配置
type SpellcheckConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Fallback 拼写检查关闭或失败时使用的拼写类型
	Fallback request.SpellingType `yaml:"fallback" json:"fallback"`
}

// ThesaurusConfig 同义词词典配置
type ThesaurusConfig struct {
	// StorePath bbolt词典文件路径，为空时使用内存词典
	StorePath string `yaml:"store_path" json:"store_path"`
	// SeedFile 启动时导入的YAML词典文件（可选）
	SeedFile string `yaml:"seed_file" json:"seed_file"`
	// FailOnError 词典查询失败时让请求失败，而不是降级为不改写
	FailOnError bool `yaml:"fail_on_error" json:"fail_on_error"`
}

// ContainerList 容器配置列表，未出现在配置文件中的字段取默认值
type ContainerList []*request.ContainerConfig

// UnmarshalYAML 在默认容器配置之上解码每个条目
func (l *ContainerList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("containers: expected a list, got %s", nodeKind(node))
	}
	list := make(ContainerList, 0, len(node.Content))
	for i, item := range node.Content {
		c := request.DefaultContainerConfig("", "", 0)
		if err := item.Decode(c); err != nil {
			return fmt.Errorf("containers[%d]: %w", i, err)
		}
		list = append(list, c)
	}
	*l = list
	return nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "node"
	}
}

// DefaultGlobalConfig 返回默认全局配置
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ES:     es.DefaultConfig(),
		Engine: client.DefaultConfig(),
		Spellcheck: &SpellcheckConfig{
			Enabled:  true,
			Fallback: request.SpellingTypeFuzzy,
		},
		Thesaurus: &ThesaurusConfig{},
		Log: &LogConfig{
			Level:           "info",
			Output:          "stdout",
			Format:          "text",
			EnableTimestamp: true,
			MaxSize:         100,
			MaxBackups:      3,
			MaxAge:          7,
			Compress:        true,
		},
	}
}

// Load 在默认配置之上加载YAML配置文件，path为空时只返回默认配置
func Load(path string) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 验证配置，缺失的段落使用默认值补齐
func (c *GlobalConfig) Validate() error {
	defaults := DefaultGlobalConfig()
	if c.ES == nil {
		c.ES = defaults.ES
	}
	if c.Spellcheck == nil {
		c.Spellcheck = defaults.Spellcheck
	}
	if c.Thesaurus == nil {
		c.Thesaurus = defaults.Thesaurus
	}
	if c.Log == nil {
		c.Log = defaults.Log
	}

	if err := c.ES.Validate(); err != nil {
		return fmt.Errorf("es: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Spellcheck.Fallback == 0 {
		c.Spellcheck.Fallback = request.SpellingTypeFuzzy
	}
	if len(c.Containers) == 0 {
		return fmt.Errorf("at least one search container must be configured")
	}
	if _, err := c.ContainerMap(); err != nil {
		return err
	}
	return nil
}

// ContainerMap 按名称索引容器配置，校验每个容器并拒绝重名
func (c *GlobalConfig) ContainerMap() (request.Containers, error) {
	containers := make(request.Containers, len(c.Containers))
	for i, container := range c.Containers {
		if container == nil {
			return nil, fmt.Errorf("containers[%d] cannot be empty", i)
		}
		if err := container.Validate(); err != nil {
			return nil, err
		}
		if _, exists := containers[container.Name]; exists {
			return nil, fmt.Errorf("duplicate search container [%s]", container.Name)
		}
		containers[container.Name] = container
	}
	return containers, nil
}

// ApplyEnvOverrides 应用环境变量覆盖（优先级高于配置文件）
func (c *GlobalConfig) ApplyEnvOverrides() {
	if c.ES != nil && c.ES.ServerConfig != nil {
		if host := os.Getenv("TIGERSUITE_HOST"); host != "" {
			c.ES.ServerConfig.Host = host
		}
		if portStr := os.Getenv("TIGERSUITE_PORT"); portStr != "" {
			if port, err := strconv.Atoi(portStr); err == nil {
				c.ES.ServerConfig.Port = port
			}
		}
	}

	if urls := os.Getenv("TIGERSUITE_ENGINE_URLS"); urls != "" {
		c.Engine.URLs = splitList(urls)
	}
	if username := os.Getenv("TIGERSUITE_ENGINE_USERNAME"); username != "" {
		c.Engine.Username = username
	}
	if password := os.Getenv("TIGERSUITE_ENGINE_PASSWORD"); password != "" {
		c.Engine.Password = password
	}

	if c.Spellcheck != nil {
		if enabled := os.Getenv("TIGERSUITE_SPELLCHECK_ENABLED"); enabled != "" {
			c.Spellcheck.Enabled = parseBool(enabled)
		}
	}
	if c.Thesaurus != nil {
		if path := os.Getenv("TIGERSUITE_THESAURUS_STORE"); path != "" {
			c.Thesaurus.StorePath = path
		}
	}

	if c.Log != nil {
		if level := os.Getenv("TIGERSUITE_LOG_LEVEL"); level != "" {
			c.Log.Level = level
		}
		if output := os.Getenv("TIGERSUITE_LOG_OUTPUT"); output != "" {
			c.Log.Output = output
		}
	}
}

func parseBool(s string) bool {
	return s == "true" || s == "1"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
