package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	v1 "github.com/centum-academy/portal-api/internal/api/v1"
	"github.com/centum-academy/portal-api/internal/auth"
	"github.com/centum-academy/portal-api/internal/config"
	"github.com/centum-academy/portal-api/internal/logging"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/remote"
	"github.com/centum-academy/portal-api/internal/server"
	"github.com/centum-academy/portal-api/internal/service"
	"github.com/centum-academy/portal-api/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, err := logging.New(cfg)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		return serve(cmd.Context(), cfg, logger)
	},
}

// storage is the session backend picked by SESSION_BACKEND along with its
// optional health check, periodic sweep and shutdown hook.
type storage struct {
	backend store.Backend
	pinger  v1.Pinger
	sweep   func(context.Context) (int64, error)
	close   func() error
}

func openStorage(cfg *config.Config) (*storage, error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b := store.NewRedisBackend(client, "", cfg.SessionTTL)
		return &storage{backend: b, pinger: b, close: client.Close}, nil
	case config.BackendPostgres:
		b, err := store.NewGormStore(cfg.DatabaseURL, cfg.SessionTTL)
		if err != nil {
			return nil, err
		}
		return &storage{backend: b, pinger: b, sweep: b.DeleteExpired, close: b.Close}, nil
	default:
		return &storage{backend: store.NewMemoryBackend(), close: func() error { return nil }}, nil
	}
}

func serve(parent context.Context, cfg *config.Config, logger *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.SessionBackend, err)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Warn("close storage", zap.Error(err))
		}
	}()

	sealer, err := store.NewSealer(cfg.SessionSecret)
	if err != nil {
		return err
	}
	client := remote.NewClient(cfg.RemoteAPIURL, cfg.RemoteTimeout, logger)
	provider := service.NewAuthProvider(st.backend, sealer, client, logger)
	codec := auth.NewCookieCodec(cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	reg := rbac.Default(rbac.WithStrict(cfg.StrictRoleLookup()))

	srv := server.NewServer(cfg, reg, codec, provider, st.pinger, logger).NewHTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.SessionBackend),
			zap.Bool("strict_roles", reg.Strict()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if st.sweep != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					n, err := st.sweep(gctx)
					if err != nil {
						logger.Warn("sweep expired sessions", zap.Error(err))
						continue
					}
					logger.Debug("swept expired sessions", zap.Int64("rows", n))
				}
			}
		})
	}
	return g.Wait()
}
