// Command fanrelay serves a webhook fan-out relay.
//
// Usage:
//
//	fanrelay [-config fanrelay.yaml]
//	fanrelay -gen-secret
//
// Targets are read from WEBHOOK_TARGETS on every request, or from Redis when
// redis.url (FANRELAY_REDIS_URL) is set. A .env file in the working
// directory is loaded first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/fanrelay"
	"github.com/xraph/fanrelay/api"
	"github.com/xraph/fanrelay/observability"
	"github.com/xraph/fanrelay/signature"
	"github.com/xraph/fanrelay/target"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	genSecret := flag.Bool("gen-secret", false, "print a new signing secret and exit")
	flag.Parse()

	if *genSecret {
		fmt.Println(signature.GenerateSecret())
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("fanrelay exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := fanrelay.DefaultConfig()
	if configPath != "" {
		loaded, err := fanrelay.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	opts := []fanrelay.Option{
		fanrelay.WithConfig(cfg),
		fanrelay.WithLogger(logger),
		fanrelay.WithMetrics(observability.NewMetrics(prometheus.DefaultRegisterer)),
		fanrelay.WithTracer(observability.NewTracer()),
	}

	if cfg.Redis.URL != "" {
		redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("%w: redis url: %v", fanrelay.ErrInvalidConfig, err)
		}
		rdb := goredis.NewClient(redisOpts)
		defer rdb.Close()
		opts = append(opts, fanrelay.WithSource(target.NewRedisSource(rdb, cfg.Redis.Key)))
		logger.Info("reading targets from redis", "key", cfg.Redis.Key)
	} else {
		logger.Info("reading targets from environment", "env", cfg.TargetsEnv)
	}

	relay, err := fanrelay.New(opts...)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle(cfg.Path, api.NewHandler(relay, logger))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      relay.Config().RequestTimeout + 10*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fanrelay listening",
			"addr", cfg.Addr, "path", cfg.Path, "method", relay.Method())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
