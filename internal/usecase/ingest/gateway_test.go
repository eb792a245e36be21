package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tg-insights/internal/domain"
)

type stubRegistry struct {
	active map[int64]bool
}

func (s *stubRegistry) Register(int64) error   { return nil }
func (s *stubRegistry) Deregister(int64) error { return nil }
func (s *stubRegistry) IsActive(userID int64) bool {
	return s.active[userID]
}
func (s *stubRegistry) ActiveCount() int { return len(s.active) }
func (s *stubRegistry) Profile(int64) (domain.UserProfile, bool) {
	return domain.UserProfile{}, false
}
func (s *stubRegistry) AppendReportHistory(int64, string) {}

type stubStore struct {
	appended []domain.MessageRecord
	err      error
}

func (s *stubStore) Append(_ context.Context, _ int64, rec domain.MessageRecord) error {
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, rec)
	return nil
}
func (s *stubStore) ReadAll(context.Context, int64) ([]domain.MessageRecord, error) {
	return s.appended, nil
}
func (s *stubStore) Provision(int64) error { return nil }
func (s *stubStore) Purge(int64) error     { return nil }

type stubNotifier struct {
	insights []string
}

func (s *stubNotifier) NotifyInsight(_ context.Context, _ int64, insight string) error {
	s.insights = append(s.insights, insight)
	return nil
}

func validEvent(text string) domain.MessageEvent {
	return domain.MessageEvent{
		OwnerUserID: 42,
		MessageID:   100,
		ChatID:      7,
		SenderID:    42,
		Text:        text,
	}
}

func TestIngest(t *testing.T) {
	store := &stubStore{}
	g := NewGateway(&stubRegistry{active: map[int64]bool{42: true}}, store, nil, nil, nil, zerolog.Nop())
	g.now = func() time.Time { return time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC) }

	if err := g.Ingest(context.Background(), validEvent("привет мир")); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(store.appended) != 1 {
		t.Fatalf("ожидали одну запись в журнале, получили %d", len(store.appended))
	}

	rec := store.appended[0]
	if rec.TextLength != 10 {
		t.Fatalf("длина считается в рунах: ожидали 10, получили %d", rec.TextLength)
	}
	if rec.Hour != 23 {
		t.Fatalf("ожидали час 23, получили %d", rec.Hour)
	}
	// 2026-08-29 — суббота, в нумерации с понедельника это 5.
	if rec.Weekday != 5 {
		t.Fatalf("ожидали день недели 5, получили %d", rec.Weekday)
	}
	if rec.HasMedia {
		t.Fatalf("текстовое сообщение не должно помечаться медиа")
	}
	if g.Processed() != 1 {
		t.Fatalf("счётчик обработанных должен быть 1, получили %d", g.Processed())
	}
}

func TestIngestInactiveUserDropped(t *testing.T) {
	store := &stubStore{}
	g := NewGateway(&stubRegistry{active: map[int64]bool{}}, store, nil, nil, nil, zerolog.Nop())

	if err := g.Ingest(context.Background(), validEvent("текст")); err != nil {
		t.Fatalf("отброс неактивного пользователя не ошибка: %v", err)
	}
	if len(store.appended) != 0 {
		t.Fatalf("журнал неактивного пользователя не должен пополняться")
	}
	if g.Processed() != 0 {
		t.Fatalf("отброшенные события не считаются обработанными")
	}
}

func TestIngestMalformedEvent(t *testing.T) {
	store := &stubStore{}
	g := NewGateway(&stubRegistry{active: map[int64]bool{42: true}}, store, nil, nil, nil, zerolog.Nop())

	event := validEvent("текст")
	event.MessageID = 0
	if err := g.Ingest(context.Background(), event); !errors.Is(err, domain.ErrMalformedEvent) {
		t.Fatalf("ожидали ErrMalformedEvent, получили %v", err)
	}
	if len(store.appended) != 0 {
		t.Fatalf("некорректное событие не должно попасть в журнал")
	}
}

func TestIngestMediaEvent(t *testing.T) {
	store := &stubStore{}
	g := NewGateway(&stubRegistry{active: map[int64]bool{42: true}}, store, nil, nil, nil, zerolog.Nop())

	event := validEvent("")
	event.MediaType = "photo"
	if err := g.Ingest(context.Background(), event); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !store.appended[0].HasMedia {
		t.Fatalf("событие с media_type должно помечаться медиа")
	}
	if store.appended[0].TextLength != 0 {
		t.Fatalf("у медиа без подписи длина текста 0")
	}
}

func TestIngestAppendError(t *testing.T) {
	store := &stubStore{err: errors.New("диск переполнен")}
	g := NewGateway(&stubRegistry{active: map[int64]bool{42: true}}, store, nil, nil, nil, zerolog.Nop())

	if err := g.Ingest(context.Background(), validEvent("текст")); err == nil {
		t.Fatalf("ошибка журнала должна подниматься наверх")
	}
	if g.Processed() != 0 {
		t.Fatalf("неудавшаяся запись не считается обработанной")
	}
}

func TestIngestPatternHit(t *testing.T) {
	store := &stubStore{}
	notifier := &stubNotifier{}
	g := NewGateway(&stubRegistry{active: map[int64]bool{42: true}}, store, notifier, nil, []string{"Дедлайн"}, zerolog.Nop())

	if err := g.Ingest(context.Background(), validEvent("завтра ДЕДЛАЙН по проекту")); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(notifier.insights) != 1 {
		t.Fatalf("ожидали один мгновенный инсайт, получили %d", len(notifier.insights))
	}

	if err := g.Ingest(context.Background(), validEvent("обычное сообщение")); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(notifier.insights) != 1 {
		t.Fatalf("сообщение без шаблона не порождает инсайт")
	}
}

func TestSummary(t *testing.T) {
	store := &stubStore{}
	g := NewGateway(&stubRegistry{active: map[int64]bool{42: true, 43: true}}, store, nil, nil, nil, zerolog.Nop())
	g.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	for i := 0; i < 3; i++ {
		event := validEvent("текст")
		event.MessageID = int64(i + 1)
		if err := g.Ingest(context.Background(), event); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
	}

	summary := g.Summary()
	if summary.ActiveUsers != 2 {
		t.Fatalf("ожидали 2 активных пользователя, получили %d", summary.ActiveUsers)
	}
	if summary.MessagesProcessed != 3 {
		t.Fatalf("ожидали 3 обработанных сообщения, получили %d", summary.MessagesProcessed)
	}
}
