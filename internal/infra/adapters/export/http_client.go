package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"vacancy-export-bot/internal/config"
	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/domain/ports/adapter"
	"vacancy-export-bot/internal/infra/logging"
)

var _ adapter.ExportClient = (*HTTPClient)(nil)

// HTTPClient calls the export service's /export_csv endpoint.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	maxBody  int64
	log      *zerolog.Logger
}

func NewHTTPClient(cfg config.ExportConfig, logger *zerolog.Logger) (*HTTPClient, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid export.base_url %q", cfg.BaseURL)
	}
	l := logger.With().Str("component", "ExportHTTPClient").Logger()
	return &HTTPClient{
		endpoint: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		timeout: cfg.Timeout,
		maxBody: cfg.MaxBodyBytes,
		log:     &l,
	}, nil
}

// RequestExport returns the service answer whatever its status code.
// Only network level failures are errors.
func (c *HTTPClient) RequestExport(ctx context.Context, startDate, endDate string) (*adapter.ExportResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u, _ := url.Parse(c.endpoint)
	q := u.Query()
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "text/csv, application/json")
	if tid := logging.TraceID(ctx); tid != "" {
		req.Header.Set("X-Trace-Id", tid)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}
	defer resp.Body.Close()

	body, err := readCapped(resp.Body, c.maxBody)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}

	l := logging.With(ctx, c.log)
	l.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("export response")

	return &adapter.ExportResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

var errBodyTooLarge = errors.New("response body exceeds limit")

func readCapped(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}

func classifyTransportErr(ctx context.Context, err error) error {
	var uerr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &uerr) && uerr.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}
