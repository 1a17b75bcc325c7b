package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"

	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/domain/model"
	"vacancy-export-bot/internal/domain/ports/repository"
	"vacancy-export-bot/internal/infra/metrics"
)

// Ensure interface compliance
var _ repository.VacancyRepository = (*PostgresVacancyRepo)(nil)

type PostgresVacancyRepo struct {
	src     QuerierSource
	timeout time.Duration
}

func NewPostgresVacancyRepo(src QuerierSource, queryTimeout time.Duration) *PostgresVacancyRepo {
	if queryTimeout <= 0 {
		queryTimeout = 15 * time.Second
	}
	return &PostgresVacancyRepo{src: src, timeout: queryTimeout}
}

const fetchRangeSQL = `
SELECT id, title, company, location, salary,
       general_title, category, level, published_at
  FROM vacancies
 WHERE published_at >= $1 AND published_at < $2
 ORDER BY published_at DESC;
`

func (r *PostgresVacancyRepo) FetchRange(ctx context.Context, from, to time.Time) (out []*model.Vacancy, err error) {
	q, err := r.src.Querier(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.ObserveDBQuery("fetch_range", time.Since(start), err) }()

	rows, err := q.Query(ctx, fetchRangeSQL, from, to)
	if err != nil {
		return nil, classifyQueryErr("FetchRange query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v                                model.Vacancy
			title, company, location, salary *string
			generalTitle, category, level    *string
		)
		if err := rows.Scan(&v.ID, &title, &company, &location, &salary,
			&generalTitle, &category, &level, &v.PublishedAt); err != nil {
			return nil, classifyQueryErr("FetchRange scan", err)
		}
		v.Title = deref(title)
		v.Company = deref(company)
		v.Location = deref(location)
		v.Salary = deref(salary)
		v.GeneralTitle = deref(generalTitle)
		v.Category = deref(category)
		v.Level = deref(level)
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyQueryErr("FetchRange rows", err)
	}
	return out, nil
}

func classifyQueryErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTimeout, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w: sqlstate %s: %s", op, domain.ErrQueryFailed, pgErr.Code, pgErr.Message)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrQueryFailed, err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
