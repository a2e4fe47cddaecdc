package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPService 包装 http.Server 以接入 Runner
type HTTPService struct {
	server *http.Server
}

func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return &HTTPService{server: srv}
}

func (s *HTTPService) Name() string { return "http" }

// Start 退出由 Stop 驱动，进行中的请求在 Shutdown 里排空
func (s *HTTPService) Start(context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
