// Package httpapi exposes the translation engine over HTTP for the serve
// command: health, supported languages and a text translation endpoint that
// runs the same classify/batch/reassemble pipeline as the CLI.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sayaxia/srt-transfer/internal/engine"
	"github.com/sayaxia/srt-transfer/internal/subtitle"
	"github.com/sayaxia/srt-transfer/internal/translation"
)

const maxTranslateBodyBytes = 1 << 20

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Engine is the subset of the orchestrator the API needs.
type Engine interface {
	TranslateBlocks(ctx context.Context, blocks []subtitle.Block) ([]subtitle.Block, string, engine.RunStats, error)
}

type Server struct {
	engine       Engine
	providerName string
	logger       zerolog.Logger
	opts         Options
}

func NewServer(eng Engine, providerName string, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 120 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		engine:       eng,
		providerName: providerName,
		logger:       logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.engine == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%d", maxTranslateBodyBytes)))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)
	api.POST("/translate", s.handleTranslate)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("srt-transfer API server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("srt-transfer API server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service":  "srt-transfer",
		"provider": s.providerName,
		"time":     time.Now().UTC(),
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"languages": translation.TargetLanguageOptions(),
	})
}

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	Text       string          `json:"text"`
	SourceLang string          `json:"source_lang"`
	Stats      engine.RunStats `json:"stats"`
}

// handleTranslate accepts line-oriented text (including full SRT bodies) and
// returns it with translatable lines rewritten; structural lines pass
// through untouched.
func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fail(c, http.StatusBadRequest, "text is required")
	}

	blocks := subtitle.Parse(req.Text)
	outBlocks, sourceLang, stats, err := s.engine.TranslateBlocks(c.Request().Context(), blocks)
	if err != nil {
		s.logger.Error().Err(err).Msg("translate request failed")
		if errors.Is(err, translation.ErrAttemptsExhausted) {
			return fail(c, http.StatusBadGateway, "Translation provider is unavailable")
		}
		return internalError(c, "Translation failed")
	}

	return success(c, translateResponse{
		Text:       subtitle.Compose(outBlocks),
		SourceLang: sourceLang,
		Stats:      stats,
	})
}

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"data": data,
	})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]any{
		"ok":    false,
		"error": message,
	})
}

func internalError(c echo.Context, message string) error {
	return fail(c, http.StatusInternalServerError, message)
}
