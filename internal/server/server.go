// Package server собирает HTTP-сервер: маршруты, middleware и graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/imagesight/internal/filestore"
	"github.com/iudanet/imagesight/internal/server/handlers"
	"github.com/iudanet/imagesight/internal/server/middleware"
	"github.com/iudanet/imagesight/internal/server/storage"
)

const shutdownTimeout = 10 * time.Second

// Options содержит зависимости и настройки сервера
type Options struct {
	Logger *slog.Logger

	UserStorage        storage.UserStorage
	AnalysisStorage    storage.AnalysisStorage
	ImageStorage       storage.ImageStorage
	PreferencesStorage storage.PreferencesStorage

	Analyzer    handlers.Analyzer
	Thumbnailer handlers.Thumbnailer
	AutoSaver   handlers.AutoSaver
	Files       filestore.Store

	JWTConfig     handlers.JWTConfig
	MaxUploadSize int64

	RateLimit  int
	RateWindow time.Duration

	// UploadDir непустой включает отдачу /uploads/ с локального диска
	UploadDir string
}

// Server инкапсулирует http.Server с настроенным роутером
type Server struct {
	logger *slog.Logger
	http   *http.Server
}

// New создает сервер с полностью собранным роутером
func New(addr string, opts Options) *Server {
	mux := http.NewServeMux()

	auth := handlers.NewAuthHandler(opts.Logger, opts.UserStorage, opts.JWTConfig)
	analyze := handlers.NewAnalyzeHandler(
		opts.Logger, opts.Analyzer, opts.Thumbnailer, opts.Files,
		opts.ImageStorage, opts.AutoSaver, opts.MaxUploadSize)
	history := handlers.NewHistoryHandler(opts.Logger, opts.AnalysisStorage, opts.PreferencesStorage)
	images := handlers.NewImagesHandler(opts.Logger, opts.ImageStorage, opts.Files)
	export := handlers.NewExportHandler(opts.Logger)
	health := handlers.NewHealthHandler(opts.Logger)

	requireAuth := middleware.AuthMiddleware(opts.Logger, opts.JWTConfig)
	optionalAuth := middleware.OptionalAuthMiddleware(opts.Logger, opts.JWTConfig)

	// Публичные маршруты
	mux.HandleFunc("POST /api/auth/register", auth.Register)
	mux.HandleFunc("POST /api/auth/login", auth.Login)
	mux.HandleFunc("GET /api/images", images.List)
	mux.HandleFunc("GET /api/search", images.Search)
	mux.HandleFunc("GET /api/export/{format}", export.Export)
	mux.HandleFunc("GET /api/health", health.Health)

	// Загрузка доступна и анонимам, токен учитывается при наличии
	mux.Handle("POST /api/analyze", optionalAuth(http.HandlerFunc(analyze.Analyze)))

	// Маршруты, требующие аутентификации
	mux.Handle("POST /api/user/save-analysis", requireAuth(http.HandlerFunc(history.SaveAnalysis)))
	mux.Handle("GET /api/user/history", requireAuth(http.HandlerFunc(history.History)))
	mux.Handle("DELETE /api/user/history/bulk", requireAuth(http.HandlerFunc(history.BulkDelete)))
	mux.Handle("POST /api/user/history/export", requireAuth(http.HandlerFunc(history.BulkExport)))
	mux.Handle("GET /api/user/statistics", requireAuth(http.HandlerFunc(history.Statistics)))
	mux.Handle("POST /api/user/preferences", requireAuth(http.HandlerFunc(history.SavePreferences)))
	mux.Handle("GET /api/user/preferences", requireAuth(http.HandlerFunc(history.GetPreferences)))

	if opts.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(opts.UploadDir))))
	}

	// Общая цепочка: recovery снаружи, затем логирование и rate limit
	var handler http.Handler = mux
	if opts.RateLimit > 0 {
		handler = middleware.RateLimitMiddleware(opts.RateLimit, opts.RateWindow, opts.Logger)(handler)
	}
	handler = middleware.LoggingWithSkip(opts.Logger, []string{"/api/health", "/uploads/"})(handler)
	handler = middleware.RecoveryMiddleware(opts.Logger)(handler)

	return &Server{
		logger: opts.Logger,
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run запускает сервер и блокируется до остановки
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.http.Addr))

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// Handler возвращает корневой handler сервера
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
