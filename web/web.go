package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/gosom/contact-extractor/logging"
)

const maxBodyBytes = 1 << 20

type Server struct {
	srv *http.Server
	svc *Service
}

func New(svc *Service, addr string) *Server {
	ans := Server{
		svc: svc,
		srv: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			// Extractions crawl and render; give them room.
			WriteTimeout:   10 * time.Minute,
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
	}

	ans.srv.Handler = ans.routes()

	return &ans
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		renderJSON(w, http.StatusMethodNotAllowed, apiError{
			Code:    http.StatusMethodNotAllowed,
			Message: "Method not allowed",
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		renderJSON(w, http.StatusNotFound, apiError{
			Code:    http.StatusNotFound,
			Message: http.StatusText(http.StatusNotFound),
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/extract", s.extract)
	r.Post("/clear-cache", s.clearCache)
	r.Post("/export", s.export)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/extract", s.extract)
		r.Delete("/cache", s.clearCache)
		r.Post("/export", s.export)
	})

	return r
}

func (s *Server) Start(ctx context.Context) error {
	log := logging.Get()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")

			return
		}

		log.Info().Msg("server stopped")
	}()

	log.Info().Str("addr", s.srv.Addr).Msg("server listening")

	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest

	if err := decodeJSON(w, r, &req); err != nil {
		renderJSON(w, http.StatusUnprocessableEntity, apiError{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		})

		return
	}

	resp, err := s.svc.Extract(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrNoValidURLs) {
			code = http.StatusBadRequest
		}

		renderJSON(w, code, resp)

		return
	}

	renderJSON(w, http.StatusOK, resp)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearCache(r.Context())

	renderJSON(w, http.StatusOK, ackResponse{
		Status:  StatusSuccess,
		Message: "Cache cleared",
	})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest

	if err := decodeJSON(w, r, &req); err != nil {
		renderJSON(w, http.StatusUnprocessableEntity, apiError{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		})

		return
	}

	exp, err := s.svc.Export(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownFormat) {
			code = http.StatusBadRequest
		}

		renderJSON(w, code, apiError{Code: code, Message: err.Error()})

		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exp.Filename))
	w.Header().Set("Content-Type", exp.ContentType)
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(exp.Body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

func renderJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(data)
}

// requestLogger attaches a request-scoped logger and logs one line per
// request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, id := logging.WithRequest(r.Context())
		w.Header().Set("X-Request-Id", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		zerolog.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")

		next.ServeHTTP(w, r)
	})
}
