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
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/protocols"
	"github.com/lscgzwd/tigersuite/protocols/es/handler"
	"github.com/lscgzwd/tigersuite/protocols/es/http/server"
	"github.com/lscgzwd/tigersuite/protocols/es/middleware"
	"github.com/lscgzwd/tigersuite/protocols/es/search"
	"github.com/lscgzwd/tigersuite/search/request"
)

// ESServer 搜索请求编译服务
type ESServer struct {
	config        *Config
	httpServer    *server.Server
	searchHandler *handler.SearchHandler
	infoHandler   *handler.InfoHandler
	started       bool
	mu            sync.RWMutex
}

// NewServer 创建编译服务
func NewServer(engine *search.Engine, containers request.Containers, config *Config) (*ESServer, error) {
	if engine == nil {
		return nil, fmt.Errorf("search engine cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	httpSrv, err := server.NewServer(config.ServerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	esSrv := &ESServer{
		config:        config,
		httpServer:    httpSrv,
		searchHandler: handler.NewSearchHandler(engine),
		infoHandler:   handler.NewInfoHandler(containers),
	}
	esSrv.registerRoutes(middleware.AuthMiddleware(config.Auth))

	return esSrv, nil
}

// registerRoutes 注册路由
func (s *ESServer) registerRoutes(authMiddleware func(http.Handler) http.Handler) {
	router := s.httpServer.GetRouter()

	routes := []server.Route{
		{Method: http.MethodPost, Path: "/{container:[^_][^/]*}/_compile", Handler: s.searchHandler.Compile},
		{Method: http.MethodPost, Path: "/{container:[^_][^/]*}/_spellcheck", Handler: s.searchHandler.Spellcheck},
		{Method: http.MethodPost, Path: "/{container:[^_][^/]*}/_search", Handler: s.searchHandler.Search},
		{Method: http.MethodGet, Path: "/_containers", Handler: s.infoHandler.Containers},
	}
	router.AddRoutes(applyAuthMiddleware(routes, authMiddleware))

	// 全局路由（放在最后，确保最高优先级）
	router.AddRoutes([]server.Route{
		{Method: http.MethodGet, Path: "/", Handler: s.infoHandler.Root},
		{Method: http.MethodHead, Path: "/", Handler: s.infoHandler.Root},
	})

	s.httpServer.AddDefaultRoutes()
}

// applyAuthMiddleware 应用认证中间件到路由
func applyAuthMiddleware(routes []server.Route, authMiddleware func(http.Handler) http.Handler) []server.Route {
	if authMiddleware == nil {
		return routes
	}
	protected := make([]server.Route, 0, len(routes))
	for _, route := range routes {
		wrapped := authMiddleware(route.Handler)
		protected = append(protected, server.Route{
			Method:      route.Method,
			Path:        route.Path,
			Handler:     wrapped.ServeHTTP,
			Middlewares: route.Middlewares,
		})
	}
	return protected
}

// Handler 返回完整的HTTP处理器
func (s *ESServer) Handler() http.Handler {
	return s.httpServer.Handler()
}

// Start 启动服务
func (s *ESServer) Start() error {
	if err := s.markStarted(); err != nil {
		return err
	}
	return s.httpServer.Start()
}

// Serve 在指定监听器上启动服务
func (s *ESServer) Serve(ln net.Listener) error {
	if err := s.markStarted(); err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *ESServer) markStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("server already started")
	}
	s.started = true
	return nil
}

// Stop 停止服务
func (s *ESServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	shutdownTimeout := s.config.ServerConfig.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Stop(ctx); err != nil {
		logger.Error("Failed to stop HTTP server: %v", err)
		return err
	}

	s.started = false
	return nil
}

// Name 返回协议名称
func (s *ESServer) Name() string {
	return "es"
}

// Address 返回监听地址
func (s *ESServer) Address() string {
	return s.config.ServerConfig.Address()
}

// IsRunning 返回服务是否正在运行
func (s *ESServer) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && s.httpServer.IsRunning()
}

// 确保ESServer实现了ProtocolServer接口
var _ protocols.ProtocolServer = (*ESServer)(nil)
