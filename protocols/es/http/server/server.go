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

// Package server 提供HTTP服务器基础设施
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/metrics"
	"github.com/lscgzwd/tigersuite/protocols/es/http/common"
)

// Version 服务版本
const Version = "1.0.0"

// Server HTTP服务器
type Server struct {
	config     *ServerConfig
	router     *Router
	httpServer *http.Server
	middleware Middleware
	started    bool
	mu         sync.RWMutex
	startTime  time.Time
}

// NewServer 创建新的HTTP服务器
func NewServer(config *ServerConfig) (*Server, error) {
	if config == nil {
		config = DefaultServerConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	return &Server{
		config:     config,
		router:     NewRouter(),
		middleware: DefaultMiddlewareStack(config),
	}, nil
}

// GetRouter 获取路由管理器
func (s *Server) GetRouter() *Router {
	return s.router
}

// AddRoute 添加路由
func (s *Server) AddRoute(method, path string, handler http.HandlerFunc, middlewares ...Middleware) {
	s.router.AddRoute(method, path, handler, middlewares...)
}

// AddRoutes 批量添加路由
func (s *Server) AddRoutes(routes []Route) {
	s.router.AddRoutes(routes)
}

// Handler 返回带全局中间件的完整处理器
func (s *Server) Handler() http.Handler {
	return s.middleware(s.router.Build().ServeHTTP)
}

// Start 启动服务器
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(ln)
}

// Serve 在指定监听器上提供服务
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		ln.Close()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.startTime = time.Now()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		MaxHeaderBytes:    s.config.MaxHeaderBytes,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	logger.Info("Starting TigerSuite HTTP server on %s", ln.Addr())

	if s.config.TLSEnable {
		cert, err := tls.LoadX509KeyPair(s.config.TLSCertFile, s.config.TLSKeyFile)
		if err != nil {
			ln.Close()
			return fmt.Errorf("failed to load TLS cert: %w", err)
		}
		httpServer.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
		return httpServer.ServeTLS(ln, "", "")
	}
	return httpServer.Serve(ln)
}

// StartWithGracefulShutdown 启动服务器并支持优雅关闭
func (s *Server) StartWithGracefulShutdown() error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.Stop(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
		return err
	}

	logger.Info("Server exited")
	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// IsRunning 检查服务器是否正在运行
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// AddHealthCheck 添加健康检查端点
func (s *Server) AddHealthCheck() {
	s.AddRoute(http.MethodGet, s.config.HealthPath, s.healthCheckHandler)
}

// AddMetrics 添加Prometheus指标端点，并为所有路由记录请求指标
func (s *Server) AddMetrics() {
	if !s.config.EnableMetrics {
		return
	}
	s.router.Use(metrics.Middleware)
	s.AddRoute(http.MethodGet, s.config.MetricsPath, promhttp.Handler().ServeHTTP)
}

// healthCheckHandler 健康检查处理器
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	uptime := 0.0
	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Seconds()
	}
	s.mu.RUnlock()

	common.HandleSuccess(w, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   Version,
		"uptime":    uptime,
	}, http.StatusOK)
}

// AddDefaultRoutes 添加默认路由
func (s *Server) AddDefaultRoutes() {
	s.AddHealthCheck()
	s.AddMetrics()
}
