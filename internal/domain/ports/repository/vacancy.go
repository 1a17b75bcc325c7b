package repository

import (
	"context"
	"time"

	"vacancy-export-bot/internal/domain/model"
)

// VacancyRepository is the read port to the listings store.
type VacancyRepository interface {
	// FetchRange returns vacancies with from <= published_at < to,
	// newest first. The caller guarantees from <= to.
	FetchRange(ctx context.Context, from, to time.Time) ([]*model.Vacancy, error)
}
