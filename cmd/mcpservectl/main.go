// Command mcpservectl runs the everything demonstration server over either
// stdio or HTTP, following go-mcp's example/stdio CLI shape but wired to
// the synchronous dispatch model instead of the async one.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	mcp "github.com/student/mcp-sync"
	"github.com/student/mcp-sync/examples/everything"
)

type config struct {
	Transport string `toml:"transport"`
	Addr      string `toml:"addr"`
	JWTSecret string `toml:"jwt_secret"`
}

func loadConfig(path string) (config, error) {
	cfg := config{Transport: "stdio", Addr: ":8080"}
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func main() {
	var configPath string
	var transport string
	var addr string

	pflag.StringVar(&configPath, "config", "", "path to a TOML config file")
	pflag.StringVar(&transport, "transport", "", "stdio or http (overrides config)")
	pflag.StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if transport != "" {
		cfg.Transport = transport
	}
	if addr != "" {
		cfg.Addr = addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := everything.NewServer()

	switch cfg.Transport {
	case "stdio":
		runStdio(ctx, srv, logger)
	case "http":
		runHTTP(cfg, srv, logger)
	default:
		logger.Error("unknown transport", slog.String("transport", cfg.Transport))
		os.Exit(1)
	}
}

func runStdio(ctx context.Context, srv *mcp.Server[any], logger *slog.Logger) {
	t := mcp.NewStdioTransport(os.Stdin, os.Stdout)
	var userCtx any
	if err := srv.Start(ctx, t, &userCtx); err != nil {
		logger.Error("stdio session ended with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func runHTTP(cfg config, srv *mcp.Server[any], logger *slog.Logger) {
	var opts []mcp.HTTPServerOption[any]
	if cfg.JWTSecret != "" {
		validator := mcp.NewHS256Validator([]byte(cfg.JWTSecret))
		opts = append(opts, mcp.WithAuth(validator, func(claims mcp.Claims) (*any, error) {
			var uc any = claims.UserID()
			return &uc, nil
		}))
	}
	h := mcp.NewHTTPServer(srv, opts...)
	logger.Info("listening", slog.String("addr", cfg.Addr))
	if err := h.ListenAndServe(cfg.Addr); err != nil {
		logger.Error("http server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
