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

package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/protocols/es/http/common"
)

// AuthConfig 认证配置
type AuthConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`   // 是否启用认证
	Type     string   `json:"type" yaml:"type"`         // 认证类型: "basic", "bearer", "apikey"
	Username string   `json:"username" yaml:"username"` // Basic Auth 用户名
	Password string   `json:"password" yaml:"password"` // Basic Auth 密码
	APIKeys  []string `json:"api_keys" yaml:"api_keys"` // bearer/apikey 可用的令牌
	Realm    string   `json:"realm" yaml:"realm"`       // 认证域
}

// DefaultAuthConfig 返回默认认证配置
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		Enabled: false,
		Type:    "basic",
		Realm:   "TigerSuite",
	}
}

// AuthMiddleware 创建认证中间件
func AuthMiddleware(config *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config == nil || !config.Enabled || shouldSkipAuth(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !checkAuth(r, config) {
				logger.Warn("Authentication failed for %s from %s", r.URL.Path, r.RemoteAddr)
				w.Header().Set("WWW-Authenticate", `Basic realm="`+config.Realm+`"`)
				resp := common.ErrorResponse("security_exception", "missing or invalid credentials").WithStatus(http.StatusUnauthorized)
				if err := resp.WriteJSON(w, http.StatusUnauthorized); err != nil {
					logger.Error("Failed to write auth error response: %v", err)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkAuth 检查请求的认证信息
func checkAuth(r *http.Request, config *AuthConfig) bool {
	switch config.Type {
	case "basic":
		return checkBasicAuth(r.Header.Get("Authorization"), config.Username, config.Password)
	case "bearer":
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return false
		}
		return containsKey(config.APIKeys, strings.TrimPrefix(authHeader, "Bearer "))
	case "apikey":
		return containsKey(config.APIKeys, r.Header.Get("X-API-Key"))
	default:
		return false
	}
}

// checkBasicAuth 解析 "Basic base64(username:password)"
func checkBasicAuth(authHeader, username, password string) bool {
	if !strings.HasPrefix(authHeader, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, "Basic "))
	if err != nil {
		logger.Debug("Failed to decode Basic Auth: %v", err)
		return false
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(parts[0]), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(parts[1]), []byte(password)) == 1
	return userOK && passOK
}

func containsKey(keys []string, key string) bool {
	if key == "" {
		return false
	}
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// shouldSkipAuth 公开路径：根路径和健康检查
func shouldSkipAuth(path string) bool {
	return path == "/" || path == "/_health"
}
