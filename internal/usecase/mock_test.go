//go:build !integration

package usecase

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/domain/model"
	"vacancy-export-bot/internal/domain/ports/adapter"
	"vacancy-export-bot/internal/domain/ports/repository"
	"vacancy-export-bot/internal/infra/i18n"
)

// ---- Fakes ----

type fakeVacancyRepo struct {
	rows  []*model.Vacancy
	err   error
	calls int
	from  time.Time
	to    time.Time
}

func (f *fakeVacancyRepo) FetchRange(ctx context.Context, from, to time.Time) ([]*model.Vacancy, error) {
	f.calls++
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Vacancy
	for _, v := range f.rows {
		if !v.PublishedAt.Before(from) && v.PublishedAt.Before(to) {
			out = append(out, v)
		}
	}
	return out, nil
}

type memStates struct {
	mu sync.Mutex
	m  map[int64]repository.DialogueState
}

func newMemStates() *memStates { return &memStates{m: map[int64]repository.DialogueState{}} }

func (s *memStates) SetState(ctx context.Context, tgID int64, st *repository.DialogueState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[tgID] = *st
	return nil
}

func (s *memStates) GetState(ctx context.Context, tgID int64) (*repository.DialogueState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (s *memStates) ClearState(ctx context.Context, tgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, tgID)
	return nil
}

func (s *memStates) step(tgID int64) repository.DialogueStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[tgID].Step
}

type exportCall struct{ start, end string }

type fakeExportClient struct {
	resp  *adapter.ExportResponse
	err   error
	calls []exportCall
}

func (f *fakeExportClient) RequestExport(ctx context.Context, start, end string) (*adapter.ExportResponse, error) {
	f.calls = append(f.calls, exportCall{start, end})
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type sentDocument struct {
	chatID  int64
	path    string
	caption string
	content []byte
}

type fakeBot struct {
	messages  []string
	documents []sentDocument
	docErr    error
}

func (b *fakeBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	b.messages = append(b.messages, text)
	return nil
}

func (b *fakeBot) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	if b.docErr != nil {
		return b.docErr
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	b.documents = append(b.documents, sentDocument{chatID: chatID, path: path, caption: caption, content: content})
	return nil
}

func (b *fakeBot) last() string {
	if len(b.messages) == 0 {
		return ""
	}
	return b.messages[len(b.messages)-1]
}

// ---- helpers ----

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func testTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "ru")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}
