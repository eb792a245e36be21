package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tg-insights/internal/domain"
	"tg-insights/internal/infra/metrics"
	"tg-insights/internal/usecase/insights"
	"tg-insights/internal/usecase/stats"
)

// Имена графиков в отчёте.
const (
	ChartActivityByHour     = "activity_by_hour"
	ChartActivityByWeekday  = "activity_by_weekday"
	ChartLengthDistribution = "message_length_distribution"
)

// Service реализует сборку и сохранение отчётов.
type Service struct {
	store    domain.MessageStore
	reports  domain.ReportStore
	registry domain.UserRegistry
	renderer domain.ChartRenderer
	sink     domain.EventSink
	log      zerolog.Logger

	period     string
	lengthBins int
	now        func() time.Time
}

var _ domain.ReportService = (*Service)(nil)

// NewService создаёт сервис отчётов.
func NewService(store domain.MessageStore, reports domain.ReportStore, registry domain.UserRegistry, renderer domain.ChartRenderer, sink domain.EventSink, logger zerolog.Logger, period string, lengthBins int) *Service {
	return &Service{
		store:      store,
		reports:    reports,
		registry:   registry,
		renderer:   renderer,
		sink:       sink,
		log:        logger,
		period:     period,
		lengthBins: lengthBins,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate строит отчёт по полному журналу пользователя и сохраняет его.
// Отчёт собирается в памяти и записывается одной операцией: отменённая
// генерация не оставляет частично записанного артефакта,
// а история отчётов пополняется только после успешной записи.
func (s *Service) Generate(ctx context.Context, userID int64) (domain.Report, error) {
	metrics.IncReportForUser(userID)
	start := time.Now()

	records, err := s.store.ReadAll(ctx, userID)
	if err != nil {
		metrics.ReportErrorsTotal.Inc()
		return domain.Report{}, fmt.Errorf("чтение журнала: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}

	snapshot := stats.Compute(records)
	result := domain.Report{
		UserID:          userID,
		GeneratedAt:     s.now(),
		Period:          s.period,
		Statistics:      snapshot,
		Insights:        insights.DeriveInsights(snapshot),
		Recommendations: insights.DeriveRecommendations(snapshot),
		Charts:          s.renderCharts(userID, records),
	}

	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}

	location, err := s.reports.Save(ctx, result)
	if err != nil {
		metrics.ReportErrorsTotal.Inc()
		return domain.Report{}, fmt.Errorf("сохранение отчёта: %w", err)
	}
	s.registry.AppendReportHistory(userID, location)

	metrics.ReportsGeneratedTotal.Inc()
	metrics.ReportBuildSeconds.Observe(time.Since(start).Seconds())
	s.recordEvent(ctx, userID, "report_generated", map[string]any{"location": location})
	s.log.Info().Int64("user", userID).Str("location", location).Msg("отчёт сохранён")
	return result, nil
}

// renderCharts строит графики по распределениям журнала. Ошибка отрисовки
// одного графика не прерывает сборку: такой график пропускается с записью
// в лог. Для пустого журнала графики не строятся.
func (s *Service) renderCharts(userID int64, records []domain.MessageRecord) map[string]string {
	charts := make(map[string]string)
	if s.renderer == nil || len(records) == 0 {
		return charts
	}

	defs := []struct {
		name  string
		title string
		dist  []domain.Bucket
	}{
		{ChartActivityByHour, "Активность по часам суток", stats.HourDistribution(records)},
		{ChartActivityByWeekday, "Активность по дням недели", stats.WeekdayDistribution(records)},
		{ChartLengthDistribution, "Распределение длины сообщений", stats.LengthHistogram(records, s.lengthBins)},
	}
	for _, chart := range defs {
		if len(chart.dist) == 0 {
			continue
		}
		payload, err := s.renderer.Render(chart.name, chart.title, chart.dist)
		if err != nil {
			metrics.ChartRenderErrors.Inc()
			s.log.Warn().Err(err).Int64("user", userID).Str("chart", chart.name).Msg("график пропущен")
			continue
		}
		charts[chart.name] = base64.StdEncoding.EncodeToString(payload)
	}
	return charts
}

func (s *Service) recordEvent(ctx context.Context, userID int64, event string, metadata map[string]any) {
	if s.sink == nil {
		return
	}
	id := userID
	err := s.sink.RecordEvent(ctx, domain.AnalyticsEvent{
		Event:      event,
		UserID:     &id,
		Metadata:   metadata,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("событие не записано в приёмник")
	}
}
