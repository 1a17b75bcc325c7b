package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/domain/model"
	"vacancy-export-bot/internal/domain/ports/repository"
	"vacancy-export-bot/internal/infra/logging"
	"vacancy-export-bot/internal/infra/metrics"
)

// PublishedAtLayout is how publication timestamps are written to CSV.
const PublishedAtLayout = "2006-01-02 15:04:05"

// Compile-time check
var _ ExportUseCase = (*exportUC)(nil)

type ExportUseCase interface {
	// Export validates the date texts, reads the range and renders it as CSV.
	// A range with no rows is a success with Empty set and no CSV.
	Export(ctx context.Context, startText, endText string) (*model.ExportResult, error)
}

type exportUC struct {
	vacancies repository.VacancyRepository
	log       *zerolog.Logger
}

func NewExportUseCase(vacancies repository.VacancyRepository, logger *zerolog.Logger) *exportUC {
	l := logger.With().Str("component", "ExportUseCase").Logger()
	return &exportUC{vacancies: vacancies, log: &l}
}

func (u *exportUC) Export(ctx context.Context, startText, endText string) (*model.ExportResult, error) {
	started := time.Now()
	l := logging.With(ctx, u.log)
	defer logging.TraceDuration(l, "ExportUC.Export")()

	rng, err := parseRange(startText, endText)
	if err != nil {
		metrics.ObserveExport(outcomeFor(err), 0, time.Since(started))
		return nil, err
	}

	rows, err := u.vacancies.FetchRange(ctx, rng.Start, rng.Upper())
	if err != nil {
		metrics.ObserveExport(outcomeFor(err), 0, time.Since(started))
		l.Error().Err(err).Str("start", rng.StartText()).Str("end", rng.EndText()).Msg("fetch vacancies")
		return nil, err
	}

	res := &model.ExportResult{Range: rng, Rows: len(rows), Filename: rng.Filename()}
	if len(rows) == 0 {
		res.Empty = true
		metrics.ObserveExport("empty", 0, time.Since(started))
		l.Info().Str("start", rng.StartText()).Str("end", rng.EndText()).Msg("no vacancies in range")
		return res, nil
	}

	data, err := RenderVacanciesCSV(rows)
	if err != nil {
		metrics.ObserveExport("error", 0, time.Since(started))
		return nil, fmt.Errorf("render csv: %w", err)
	}
	res.CSV = data

	metrics.ObserveExport("ok", len(rows), time.Since(started))
	l.Info().
		Str("start", rng.StartText()).
		Str("end", rng.EndText()).
		Int("rows", len(rows)).
		Int("bytes", len(data)).
		Msg("export rendered")
	return res, nil
}

// DateFieldError names the request field holding a malformed date.
type DateFieldError struct {
	Field string
	Err   error
}

func (e *DateFieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *DateFieldError) Unwrap() error { return e.Err }

func parseRange(startText, endText string) (model.DateRange, error) {
	start, err := model.ParseDate(startText)
	if err != nil {
		return model.DateRange{}, &DateFieldError{Field: "start_date", Err: err}
	}
	end, err := model.ParseDate(endText)
	if err != nil {
		return model.DateRange{}, &DateFieldError{Field: "end_date", Err: err}
	}
	return model.NewDateRange(start, end)
}

// RenderVacanciesCSV writes a header row and one record per vacancy, in order.
func RenderVacanciesCSV(rows []*model.Vacancy) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(model.VacancyColumns); err != nil {
		return nil, err
	}
	rec := make([]string, len(model.VacancyColumns))
	for _, v := range rows {
		rec[0] = strconv.FormatInt(v.ID, 10)
		rec[1] = v.Title
		rec[2] = v.Company
		rec[3] = v.Location
		rec[4] = v.Salary
		rec[5] = v.GeneralTitle
		rec[6] = v.Category
		rec[7] = v.Level
		rec[8] = v.PublishedAt.Format(PublishedAtLayout)
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedDate):
		return "malformed"
	case errors.Is(err, domain.ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
