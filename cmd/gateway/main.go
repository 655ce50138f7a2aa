package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	api "github.com/mind-engage/langinsight/internal/api/http"
	auth "github.com/mind-engage/langinsight/internal/auth/middleware"
	"github.com/mind-engage/langinsight/internal/config"
	"github.com/mind-engage/langinsight/internal/dataset"
	"github.com/mind-engage/langinsight/internal/db"
	"github.com/mind-engage/langinsight/internal/eventlog"
	"github.com/mind-engage/langinsight/internal/interpret"
	"github.com/mind-engage/langinsight/internal/logger"
	"github.com/mind-engage/langinsight/internal/recent"
	"github.com/mind-engage/langinsight/internal/report"
	"github.com/mind-engage/langinsight/internal/storage"
	"github.com/mind-engage/langinsight/internal/users"
)

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(cfg.LogMode, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("gateway stopped", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer dbh.Close()

	userStore := users.NewStore(dbh)
	if err := userStore.EnsureAdmin(openCtx, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	bs, err := storage.Open(openCtx, storage.Options{
		Driver:   cfg.BlobDriver,
		BasePath: cfg.BlobBasePath,
		S3: storage.S3Config{
			Bucket:    cfg.BlobS3Bucket,
			Region:    cfg.BlobS3Region,
			Endpoint:  cfg.BlobS3Endpoint,
			PathStyle: cfg.BlobS3PathStyle,
		},
	})
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	recentStore, err := openRecent(openCtx, cfg, dbh)
	if err != nil {
		return fmt.Errorf("recent store: %w", err)
	}
	defer closeStore(log, recentStore)

	// The assembler's matcher is only read by Report, which cannot run
	// before g.Wait returns.
	events := eventlog.NewRepo(dbh)
	asm := &report.Assembler{Now: time.Now}
	svc := dataset.NewService(dataset.Config{
		Assembler: asm,
		Blobs:     bs,
		Events:    events,
		Log:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tbl, err := interpret.LoadTableFile(cfg.RulesPath)
		if err != nil {
			return fmt.Errorf("rules %s: %w", cfg.RulesPath, err)
		}
		asm.Matcher = interpret.NewMatcher(tbl)
		log.Info("rule table loaded", "path", cfg.RulesPath, "rules", tbl.Len())
		return nil
	})
	g.Go(func() error {
		return loadInitialDataset(gctx, cfg, svc, log)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	h := api.NewRouter(api.Deps{
		Log:               log,
		Auth:              auth.NewAuthService(cfg.AuthHMACSecret),
		Users:             userStore,
		Datasets:          svc,
		Matcher:           asm.Matcher,
		Recent:            recent.NewList(recentStore),
		Blobs:             bs,
		Events:            events,
		CORSOrigins:       cfg.CORSOrigins(),
		EnableLocalAuth:   cfg.EnableLocalAuth,
		RoleClaimFallback: cfg.Mode == config.ModeOffline,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver,
		"blob", cfg.BlobDriver, "recent", cfg.RecentDriver)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// loadInitialDataset prefers DATASET_PATH and falls back to the last upload.
func loadInitialDataset(ctx context.Context, cfg config.Config, svc *dataset.Service, log *logger.Logger) error {
	if cfg.DatasetPath != "" {
		f, err := os.Open(cfg.DatasetPath)
		if err != nil {
			return fmt.Errorf("%w: %v", dataset.ErrIngest, err)
		}
		defer f.Close()
		_, err = svc.Load(ctx, f, "file:"+cfg.DatasetPath, "")
		return err
	}
	ok, err := svc.LoadLatest(ctx)
	if err != nil {
		return fmt.Errorf("reload last dataset: %w", err)
	}
	if !ok {
		log.Warn("no dataset loaded; waiting for upload")
	}
	return nil
}

// closeStore releases stores that hold external connections.
func closeStore(log *logger.Logger, s recent.Store) {
	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn("close recent store", "err", err)
		}
	}
}

func openRecent(ctx context.Context, cfg config.Config, dbh *sql.DB) (recent.Store, error) {
	switch cfg.RecentDriver {
	case "memory":
		return recent.NewMemoryStore(), nil
	case "", "sql":
		return recent.NewSQLStore(dbh), nil
	case "redis":
		return recent.NewRedisStore(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unsupported recent driver: %s", cfg.RecentDriver)
	}
}
