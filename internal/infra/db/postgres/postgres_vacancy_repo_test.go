//go:build !integration

package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgconn"

	"vacancy-export-bot/internal/domain"
)

func TestPostgresVacancyRepo_FetchRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	published := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should scan all nine columns and map NULLs to empty strings", func(t *testing.T) {
		rows := &fakeRows{data: [][]interface{}{
			{int64(2), "Go Dev", "Acme", "Remote", nil, "Разработка", "Backend", "Senior", published.Add(time.Hour)},
			{int64(1), "Python Dev", "Test Corp", "Remote", "200k", "Разработка", "Backend", "Middle", published},
		}}
		q := &fakeQuerier{rows: rows}
		repo := NewPostgresVacancyRepo(&fakeSource{q: q}, time.Second)

		got, err := repo.FetchRange(context.Background(), from, to)
		if err != nil {
			t.Fatalf("FetchRange: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 vacancies, got %d", len(got))
		}
		if got[0].ID != 2 || got[0].Salary != "" {
			t.Errorf("unexpected first row: %+v", got[0])
		}
		if got[1].Title != "Python Dev" || got[1].Salary != "200k" || !got[1].PublishedAt.Equal(published) {
			t.Errorf("unexpected second row: %+v", got[1])
		}
		if !rows.closed {
			t.Error("rows must be closed")
		}
		if len(q.gotArgs) != 2 || q.gotArgs[0] != from || q.gotArgs[1] != to {
			t.Errorf("unexpected query args: %v", q.gotArgs)
		}
		for _, col := range []string{"id", "title", "company", "location", "salary", "general_title", "category", "level", "published_at", "ORDER BY published_at DESC"} {
			if !strings.Contains(q.gotSQL, col) {
				t.Errorf("query is missing %q", col)
			}
		}
	})

	t.Run("should return an empty slice for no rows", func(t *testing.T) {
		repo := NewPostgresVacancyRepo(&fakeSource{q: &fakeQuerier{}}, time.Second)
		got, err := repo.FetchRange(context.Background(), from, to)
		if err != nil {
			t.Fatalf("FetchRange: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no rows, got %d", len(got))
		}
	})

	t.Run("should pass through pool errors", func(t *testing.T) {
		repo := NewPostgresVacancyRepo(&fakeSource{err: domain.ErrStoreUnavailable}, time.Second)
		_, err := repo.FetchRange(context.Background(), from, to)
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
	})

	t.Run("should classify SQL errors as query errors", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "42P01", Message: `relation "vacancies" does not exist`}
		repo := NewPostgresVacancyRepo(&fakeSource{q: &fakeQuerier{queryErr: pgErr}}, time.Second)
		_, err := repo.FetchRange(context.Background(), from, to)
		if !errors.Is(err, domain.ErrQueryFailed) {
			t.Fatalf("expected ErrQueryFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "42P01") {
			t.Errorf("expected sqlstate in error, got %v", err)
		}
	})

	t.Run("should classify row iteration errors as query errors", func(t *testing.T) {
		rows := &fakeRows{err: errors.New("conn reset")}
		repo := NewPostgresVacancyRepo(&fakeSource{q: &fakeQuerier{rows: rows}}, time.Second)
		_, err := repo.FetchRange(context.Background(), from, to)
		if !errors.Is(err, domain.ErrQueryFailed) {
			t.Fatalf("expected ErrQueryFailed, got %v", err)
		}
	})

	t.Run("should time out slow queries", func(t *testing.T) {
		repo := NewPostgresVacancyRepo(&fakeSource{q: &fakeQuerier{block: true}}, 20*time.Millisecond)
		_, err := repo.FetchRange(context.Background(), from, to)
		if !errors.Is(err, domain.ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
	})
}
