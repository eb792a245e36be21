package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tg-insights/internal/domain"
)

type stubMessageStore struct {
	records []domain.MessageRecord
	readErr error
}

func (s *stubMessageStore) Append(context.Context, int64, domain.MessageRecord) error { return nil }
func (s *stubMessageStore) ReadAll(context.Context, int64) ([]domain.MessageRecord, error) {
	return s.records, s.readErr
}
func (s *stubMessageStore) Provision(int64) error { return nil }
func (s *stubMessageStore) Purge(int64) error     { return nil }

type stubReportStore struct {
	saved   []domain.Report
	saveErr error
}

func (s *stubReportStore) Save(_ context.Context, report domain.Report) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, report)
	return "data/analytics_reports/report.json", nil
}
func (s *stubReportStore) Get(int64, time.Time) (domain.Report, error) {
	return domain.Report{}, domain.ErrReportNotFound
}
func (s *stubReportStore) List() ([]domain.ReportSummary, error) { return nil, nil }
func (s *stubReportStore) PurgeUser(int64) error                 { return nil }

type stubRegistry struct {
	history []string
}

func (s *stubRegistry) Register(int64) error   { return nil }
func (s *stubRegistry) Deregister(int64) error { return nil }
func (s *stubRegistry) IsActive(int64) bool    { return true }
func (s *stubRegistry) ActiveCount() int       { return 1 }
func (s *stubRegistry) Profile(int64) (domain.UserProfile, bool) {
	return domain.UserProfile{}, false
}
func (s *stubRegistry) AppendReportHistory(_ int64, location string) {
	s.history = append(s.history, location)
}

type stubRenderer struct {
	err      error
	rendered []string
}

func (s *stubRenderer) Render(name, _ string, _ []domain.Bucket) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.rendered = append(s.rendered, name)
	return []byte{0x89, 0x50, 0x4e, 0x47}, nil
}

func sampleRecords() []domain.MessageRecord {
	ts := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	var records []domain.MessageRecord
	for i := 0; i < 4; i++ {
		records = append(records, domain.MessageRecord{
			Timestamp:  ts.Add(time.Duration(i) * time.Minute),
			MessageID:  int64(i + 1),
			ChatID:     7,
			SenderID:   42,
			TextLength: 20 + i,
			HasMedia:   i%2 == 0,
			Hour:       23,
			Weekday:    5,
		})
	}
	return records
}

func newTestService(store *stubMessageStore, reports *stubReportStore, reg *stubRegistry, renderer domain.ChartRenderer) *Service {
	svc := NewService(store, reports, reg, renderer, nil, zerolog.Nop(), "daily", 30)
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestGenerate(t *testing.T) {
	store := &stubMessageStore{records: sampleRecords()}
	reports := &stubReportStore{}
	reg := &stubRegistry{}
	renderer := &stubRenderer{}
	svc := newTestService(store, reports, reg, renderer)

	result, err := svc.Generate(context.Background(), 42)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if result.Statistics.TotalMessages != 4 {
		t.Fatalf("ожидали 4 сообщения в статистике, получили %d", result.Statistics.TotalMessages)
	}
	if len(result.Insights) == 0 || len(result.Recommendations) == 0 {
		t.Fatalf("ожидали инсайты и рекомендации")
	}
	if len(result.Charts) != 3 {
		t.Fatalf("ожидали 3 графика, получили %d", len(result.Charts))
	}
	if len(reports.saved) != 1 {
		t.Fatalf("отчёт должен быть сохранён один раз")
	}
	if len(reg.history) != 1 {
		t.Fatalf("история отчётов должна пополниться")
	}
}

func TestGenerateEmptyLog(t *testing.T) {
	store := &stubMessageStore{}
	reports := &stubReportStore{}
	reg := &stubRegistry{}
	svc := newTestService(store, reports, reg, &stubRenderer{})

	result, err := svc.Generate(context.Background(), 42)
	if err != nil {
		t.Fatalf("пустой журнал не должен быть ошибкой: %v", err)
	}
	if result.Statistics != (domain.StatisticsSnapshot{}) {
		t.Fatalf("ожидали нулевую статистику, получили %+v", result.Statistics)
	}
	if len(result.Charts) != 0 {
		t.Fatalf("для пустого журнала графики не строятся")
	}
	if len(reports.saved) != 1 {
		t.Fatalf("отчёт по пустому журналу всё равно сохраняется")
	}
}

func TestGenerateCorruptStore(t *testing.T) {
	corrupt := &domain.CorruptStoreError{UserID: 42, Path: "messages.json", Err: errors.New("bad json")}
	store := &stubMessageStore{readErr: corrupt}
	reports := &stubReportStore{}
	reg := &stubRegistry{}
	svc := newTestService(store, reports, reg, &stubRenderer{})

	_, err := svc.Generate(context.Background(), 42)
	var target *domain.CorruptStoreError
	if !errors.As(err, &target) {
		t.Fatalf("ожидали CorruptStoreError, получили %v", err)
	}
	if len(reports.saved) != 0 {
		t.Fatalf("повреждённый журнал не должен порождать отчёт")
	}
	if len(reg.history) != 0 {
		t.Fatalf("история отчётов должна остаться без изменений")
	}
}

func TestGenerateRenderFailureNotFatal(t *testing.T) {
	store := &stubMessageStore{records: sampleRecords()}
	reports := &stubReportStore{}
	reg := &stubRegistry{}
	renderer := &stubRenderer{err: errors.New("нет шрифта")}
	svc := newTestService(store, reports, reg, renderer)

	result, err := svc.Generate(context.Background(), 42)
	if err != nil {
		t.Fatalf("ошибка графика не должна прерывать сборку: %v", err)
	}
	if len(result.Charts) != 0 {
		t.Fatalf("неудавшиеся графики должны быть пропущены")
	}
	if len(reports.saved) != 1 {
		t.Fatalf("отчёт без графиков всё равно сохраняется")
	}
}

func TestGenerateCancelled(t *testing.T) {
	store := &stubMessageStore{records: sampleRecords()}
	reports := &stubReportStore{}
	reg := &stubRegistry{}
	svc := newTestService(store, reports, reg, &stubRenderer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Generate(ctx, 42); err == nil {
		t.Fatalf("ожидали ошибку отмены")
	}
	if len(reports.saved) != 0 {
		t.Fatalf("отменённая генерация не должна сохранять отчёт")
	}
	if len(reg.history) != 0 {
		t.Fatalf("отменённая генерация не должна менять историю")
	}
}
