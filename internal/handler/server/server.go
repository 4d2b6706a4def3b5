package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bagdasarian/campus-teams/internal/logger"
)

type Server struct {
	server *http.Server
	log    *logger.Logger
}

func NewServer(handler http.Handler, addr string, log *logger.Logger) *Server {
	return &Server{
		log: log,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start блокирует до остановки сервера, штатная остановка через Shutdown не считается ошибкой
func (s *Server) Start() error {
	s.log.Info("server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
