package sched

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// FileJanitor removes per-delivery directories left behind in the download dir.
// Only directories named by a ULID are considered; the ULID timestamp is their age.
type FileJanitor struct {
	dir      string
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	log      *zerolog.Logger
}

func NewFileJanitor(dir string, ttl time.Duration, logger *zerolog.Logger) *FileJanitor {
	if ttl <= 0 {
		ttl = time.Hour
	}
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	l := logger.With().Str("component", "FileJanitor").Logger()
	return &FileJanitor{dir: dir, ttl: ttl, interval: interval, now: time.Now, log: &l}
}

func (j *FileJanitor) Run(ctx context.Context) error {
	j.log.Info().Str("dir", j.dir).Dur("ttl", j.ttl).Msg("starting file janitor")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.Sweep(); err != nil {
				j.log.Error().Err(err).Msg("sweep download dir")
			}
		}
	}
}

// Sweep removes expired delivery directories and returns how many were removed.
func (j *FileJanitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := j.now().Add(-j.ttl)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := ulid.ParseStrict(e.Name())
		if err != nil {
			continue
		}
		if !ulid.Time(id.Time()).Before(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			j.log.Warn().Err(err).Str("path", path).Msg("remove expired delivery dir")
			continue
		}
		removed++
	}
	if removed > 0 {
		j.log.Info().Int("count", removed).Msg("expired delivery dirs removed")
	}
	return removed, nil
}
