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

package server

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lscgzwd/tigersuite/logger"
	"github.com/lscgzwd/tigersuite/protocols/es/http/common"
)

// Middleware 中间件函数类型
type Middleware func(http.HandlerFunc) http.HandlerFunc

type requestIDKey struct{}

// RequestID 返回请求上下文中的请求ID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDMiddleware 为每个请求分配请求ID，沿用客户端传入的X-Request-Id
func RequestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.HeaderRequestID, id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	}
}

// LoggingMiddleware 请求日志中间件
func LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(rw, r)

		// 仅在错误或慢请求时输出
		duration := time.Since(start)
		if rw.statusCode >= 400 || duration > 1*time.Second {
			logger.WithFields(map[string]interface{}{
				"request_id": RequestID(r.Context()),
				"remote":     r.RemoteAddr,
			}).Warn("%s %s %d %v", r.Method, r.RequestURI, rw.statusCode, duration)
		} else if logger.IsDebugEnabled() {
			logger.Debug("%s %s %d %v", r.Method, r.RequestURI, rw.statusCode, duration)
		}
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware(allowedOrigins []string) Middleware {
	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			break
		}
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := allowAll
			if !allowed {
				for _, allowedOrigin := range allowedOrigins {
					if origin == allowedOrigin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next(w, r)
		}
	}
}

// RateLimitMiddleware 限流中间件
func RateLimitMiddleware(rpm int) Middleware {
	if rpm <= 0 {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return next
		}
	}

	// 简化的令牌桶
	tokens := make(chan struct{}, rpm)
	go func() {
		ticker := time.NewTicker(time.Minute / time.Duration(rpm))
		defer ticker.Stop()
		for range ticker.C {
			select {
			case tokens <- struct{}{}:
			default:
			}
		}
	}()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-tokens:
				next(w, r)
			default:
				resp := common.ErrorResponse("rate_limit_exceeded", "too many requests").WithStatus(http.StatusTooManyRequests)
				if err := resp.WriteJSON(w, http.StatusTooManyRequests); err != nil {
					logger.Error("Failed to write rate limit error response: %v", err)
				}
			}
		}
	}
}

// RecoveryMiddleware 错误恢复中间件
func RecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered: %v", err)
				if writeErr := common.NewInternalServerError("internal server error").Response().WriteJSON(w, http.StatusInternalServerError); writeErr != nil {
					logger.Error("Failed to write panic recovery error response: %v (panic: %v)", writeErr, err)
				}
			}
		}()

		next(w, r)
	}
}

// RequestSizeLimitMiddleware 请求大小限制中间件
func RequestSizeLimitMiddleware(maxSize int64) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			// chunked 编码时 ContentLength 为 -1，依赖 MaxBytesReader
			if r.ContentLength > 0 && r.ContentLength > maxSize {
				if err := common.NewBadRequestError("request body too large").Response().WriteJSON(w, http.StatusBadRequest); err != nil {
					logger.Error("Failed to write request size limit error response: %v", err)
				}
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next(w, r)
		}
	}
}

// TimeoutMiddleware 超时中间件
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next(w, r)
				return
			}
			h := http.TimeoutHandler(http.HandlerFunc(next), timeout, "request timeout")
			h.ServeHTTP(w, r)
		}
	}
}

// SecurityHeadersMiddleware 安全头中间件
func SecurityHeadersMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		next(w, r)
	}
}

// GzipDecompressMiddleware 自动解压缩Content-Encoding为gzip的请求体
func GzipDecompressMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			gzipReader, err := gzip.NewReader(r.Body)
			if err != nil {
				if writeErr := common.NewBadRequestError("invalid gzip content: "+err.Error()).Response().WriteJSON(w, http.StatusBadRequest); writeErr != nil {
					logger.Error("Failed to write gzip error response: %v", writeErr)
				}
				return
			}
			defer gzipReader.Close()

			r.Body = io.NopCloser(gzipReader)
			r.Header.Del("Content-Encoding")
			r.ContentLength = -1
		}

		next(w, r)
	}
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ChainMiddleware 链式组合多个中间件
func ChainMiddleware(middlewares ...Middleware) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		// 反向应用中间件 (洋葱模型)
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// DefaultMiddlewareStack 返回默认中间件栈
func DefaultMiddlewareStack(config *ServerConfig) Middleware {
	middlewares := []Middleware{
		RecoveryMiddleware,
		RequestIDMiddleware,
		GzipDecompressMiddleware, // gzip解压缩应该在请求大小限制之前
		LoggingMiddleware,
		SecurityHeadersMiddleware,
		RequestSizeLimitMiddleware(config.MaxRequestSize),
	}

	if config.EnableCORS {
		middlewares = append(middlewares, CORSMiddleware(config.CORSOrigins))
	}

	if config.EnableRateLimit {
		middlewares = append(middlewares, RateLimitMiddleware(config.RateLimitRPM))
	}

	if config.RequestTimeout > 0 {
		middlewares = append(middlewares, TimeoutMiddleware(config.RequestTimeout))
	}

	return ChainMiddleware(middlewares...)
}
