package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/imagesight/internal/config"
	"github.com/iudanet/imagesight/internal/filestore"
	"github.com/iudanet/imagesight/internal/imaging"
	"github.com/iudanet/imagesight/internal/server"
	"github.com/iudanet/imagesight/internal/server/autosave"
	"github.com/iudanet/imagesight/internal/server/handlers"
	"github.com/iudanet/imagesight/internal/server/storage/sqlite"
	"github.com/iudanet/imagesight/internal/vision"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Show version and exit if requested
	if len(os.Args) > 1 && os.Args[1] == "-version" {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	files, uploadDir, err := newFileStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init file store: %w", err)
	}

	analyzer := vision.New(cfg.VisionEndpoint, cfg.VisionKey, cfg.VisionTimeout, logger)
	autoSaver := autosave.New(logger, store)

	srv := server.New(cfg.Addr, server.Options{
		Logger:             logger,
		UserStorage:        store,
		AnalysisStorage:    store,
		ImageStorage:       store,
		PreferencesStorage: store,
		Analyzer:           analyzer,
		Thumbnailer:        imaging.NewThumbnailer(),
		AutoSaver:          autoSaver,
		Files:              files,
		JWTConfig: handlers.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			TokenTTL: cfg.TokenTTL,
		},
		MaxUploadSize: cfg.MaxUploadSize,
		RateLimit:     cfg.RateLimit,
		RateWindow:    cfg.RateWindow,
		UploadDir:     uploadDir,
	})

	errC := make(chan error, 1)
	go func() {
		errC <- srv.Run()
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	return srv.Shutdown(context.Background())
}

// newFileStore выбирает бэкенд хранения файлов по конфигурации.
// Для локального бэкенда возвращает директорию, которую сервер
// отдает через /uploads/.
func newFileStore(ctx context.Context, cfg *config.Config) (filestore.Store, string, error) {
	if cfg.FileStore == "s3" {
		s3store, err := filestore.NewS3(ctx, filestore.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			BaseEndpoint:    cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return s3store, "", nil
	}

	local, err := filestore.NewLocal(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}

func printVersion() {
	fmt.Printf("ImageSight Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
