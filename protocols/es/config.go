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

package es

import (
	"github.com/lscgzwd/tigersuite/protocols/es/http/server"
	"github.com/lscgzwd/tigersuite/protocols/es/middleware"
)

// Config 编译服务HTTP配置
type Config struct {
	// HTTP服务器配置
	ServerConfig *server.ServerConfig `json:"server_config" yaml:"server_config"`

	// 认证配置（为nil时不启用）
	Auth *middleware.AuthConfig `json:"auth" yaml:"auth"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ServerConfig: server.DefaultServerConfig(),
		Auth:         middleware.DefaultAuthConfig(),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.ServerConfig == nil {
		c.ServerConfig = server.DefaultServerConfig()
	}
	return c.ServerConfig.Validate()
}
