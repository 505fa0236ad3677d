package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server 管理世界的生命周期：一个 Game 循环 + HTTP/WebSocket 接入
type Server struct {
	cfg     Config
	log     *zap.SugaredLogger
	metrics *Metrics
	game    *Game
}

func NewServer(cfg Config, log *zap.SugaredLogger) *Server {
	m := NewMetrics()
	return &Server{
		cfg:     cfg,
		log:     log,
		metrics: m,
		game:    NewGame(cfg, log, m),
	}
}

// Game 返回服务端持有的世界循环
func (s *Server) Game() *Game { return s.game }

// Metrics 返回运行指标
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler 路由：/ws 接入、/admin/config 配置、/metrics 监控、/healthz 存活
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", HandleWS(s.game, s.cfg, s.log))
	mux.HandleFunc("/admin/config", HandleAdminConfig(s.game))
	mux.HandleFunc("/metrics", HandleMetrics(s.game, s.metrics))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run 启动 Game 循环并监听 addr，直到 ctx 取消后优雅退出
func (s *Server) Run(ctx context.Context, addr string) error {
	gameCtx, stopGame := context.WithCancel(context.Background())
	gameDone := make(chan struct{})
	go func() {
		defer close(gameDone)
		_ = s.game.Run(gameCtx)
	}()

	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	listenErr := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- fmt.Errorf("listen %s: %w", addr, err)
		}
		close(listenErr)
	}()

	var err error
	select {
	case <-ctx.Done():
		s.log.Info("shutting down")
	case err = <-listenErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Append(err, srv.Shutdown(shutdownCtx))
	stopGame()
	<-gameDone
	return err
}
