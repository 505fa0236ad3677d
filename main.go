package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"questarena/server"
)

// 入口：加载配置、初始化日志，启动世界循环与 HTTP + WebSocket 服务
func main() {
	var (
		addr    string
		envFile string
	)
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (default :$PORT)")
	flag.StringVar(&envFile, "env", ".env", "optional dotenv file")
	flag.Parse()

	if err := run(addr, envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr, envFile string) error {
	cfg, err := server.LoadConfig(envFile)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Addr()
	}

	log, err := server.NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.NewServer(cfg, log).Run(ctx, addr)
}
