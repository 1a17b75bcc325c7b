package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"vacancy-export-bot/internal/config"
	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/infra/i18n"
	"vacancy-export-bot/internal/infra/logging"
	"vacancy-export-bot/internal/usecase"
)

// Server is the HTTP surface of the export service.
type Server struct {
	exportUC   usecase.ExportUseCase
	translator *i18n.Translator
	cfg        config.APIConfig
	log        *zerolog.Logger
}

func NewServer(exportUC usecase.ExportUseCase, translator *i18n.Translator, cfg config.APIConfig, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "ExportAPI").Logger()
	return &Server{exportUC: exportUC, translator: translator, cfg: cfg, log: &l}
}

// Router builds the chi router with the guard middlewares applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleStatus)
	r.Get("/export_csv", s.handleExportCSV)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return Chain(r,
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		Timeout(s.cfg.RequestTimeout),
	)
}

// Run serves until ctx is cancelled, then shuts down within api.shutdown_grace.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, s.cfg.ShutdownGrace, s.log)
}

func serve(ctx context.Context, srv *http.Server, grace time.Duration, log *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	log.Info().Msg("http server shutting down")
	return srv.Shutdown(shCtx)
}

type messageBody struct {
	Message string `json:"message"`
}

type detailBody struct {
	Detail string `json:"detail"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageBody{Message: s.translator.T("api_status")})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.exportUC.Export(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		code, body := s.errorResponse(err)
		if code >= http.StatusInternalServerError {
			l := logging.With(r.Context(), s.log)
			l.Error().Err(err).Int("status", code).Msg("export failed")
		}
		writeJSON(w, code, body)
		return
	}
	if res.Empty {
		writeJSON(w, http.StatusOK, messageBody{Message: s.translator.T("api_no_data")})
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/csv; charset=utf-8")
	h.Set("Content-Disposition", "attachment; filename="+res.Filename)
	h.Set("Content-Length", strconv.Itoa(len(res.CSV)))
	h.Set("X-Export-Rows", strconv.Itoa(res.Rows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.CSV)
}

// errorResponse maps export failures to a status code and JSON body.
// Client mistakes answer with {"detail"}, server side failures with {"error"}.
func (s *Server) errorResponse(err error) (int, interface{}) {
	code := statusFor(err)
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		return code, detailBody{Detail: s.translator.T("api_invalid_range")}
	case errors.Is(err, domain.ErrMalformedDate):
		field := "start_date"
		var fe *usecase.DateFieldError
		if errors.As(err, &fe) {
			field = fe.Field
		}
		return code, detailBody{Detail: s.translator.T("api_malformed_date", field)}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return code, errorBody{Error: s.translator.T("api_store_unavailable")}
	case errors.Is(err, domain.ErrTimeout):
		return code, errorBody{Error: s.translator.T("api_timeout")}
	default:
		return code, errorBody{Error: s.translator.T("api_internal_error")}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrMalformedDate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
