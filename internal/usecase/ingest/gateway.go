package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"tg-insights/internal/domain"
	"tg-insights/internal/infra/metrics"
)

// Gateway принимает события от источника сообщений и наполняет журналы.
type Gateway struct {
	registry domain.UserRegistry
	store    domain.MessageStore
	notifier domain.InsightNotifier
	sink     domain.EventSink
	log      zerolog.Logger

	patterns  []string
	now       func() time.Time
	processed atomic.Int64
}

// NewGateway создаёт шлюз приёма. patterns — отслеживаемые подстроки;
// базовый набор пуст и задаётся конфигурацией.
func NewGateway(registry domain.UserRegistry, store domain.MessageStore, notifier domain.InsightNotifier, sink domain.EventSink, patterns []string, logger zerolog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		store:    store,
		notifier: notifier,
		sink:     sink,
		log:      logger,
		patterns: patterns,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ingest обрабатывает одно событие. Событие без обязательных полей отклоняется
// на границе. События неактивных пользователей отбрасываются молча: отсутствие
// согласия на аналитику — штатная ситуация, источник об этом не узнаёт.
func (g *Gateway) Ingest(ctx context.Context, event domain.MessageEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if !g.registry.IsActive(event.OwnerUserID) {
		metrics.DroppedTotal.Inc()
		g.log.Debug().Int64("user", event.OwnerUserID).Msg("событие неактивного пользователя отброшено")
		return nil
	}

	rec := domain.NewMessageRecord(event, g.now())
	if err := g.store.Append(ctx, event.OwnerUserID, rec); err != nil {
		return fmt.Errorf("запись в журнал: %w", err)
	}
	g.processed.Add(1)
	metrics.IngestedTotal.Inc()

	if insight := g.matchPatterns(event); insight != "" {
		metrics.PatternHitsTotal.Inc()
		g.notify(ctx, event.OwnerUserID, insight)
		g.recordPatternHit(ctx, event.OwnerUserID)
	}
	return nil
}

func (g *Gateway) recordPatternHit(ctx context.Context, userID int64) {
	if g.sink == nil {
		return
	}
	id := userID
	err := g.sink.RecordEvent(ctx, domain.AnalyticsEvent{
		Event:      "pattern_hit",
		UserID:     &id,
		OccurredAt: g.now(),
	})
	if err != nil {
		g.log.Warn().Err(err).Msg("событие не записано в приёмник")
	}
}

// matchPatterns — лёгкая проверка отслеживаемых шаблонов при приёме.
// Полный разбор статистики происходит только при построении отчёта.
func (g *Gateway) matchPatterns(event domain.MessageEvent) string {
	if event.Text == "" {
		return ""
	}
	text := strings.ToLower(event.Text)
	for _, pattern := range g.patterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p == "" {
			continue
		}
		if strings.Contains(text, p) {
			return fmt.Sprintf("В сообщении встретилось отслеживаемое слово: %q", strings.TrimSpace(pattern))
		}
	}
	return ""
}

func (g *Gateway) notify(ctx context.Context, userID int64, insight string) {
	if g.notifier == nil {
		g.log.Info().Int64("user", userID).Str("insight", insight).Msg("мгновенный инсайт")
		return
	}
	if err := g.notifier.NotifyInsight(ctx, userID, insight); err != nil {
		g.log.Warn().Err(err).Int64("user", userID).Msg("не удалось доставить инсайт")
	}
}

// Processed возвращает накопленное число принятых сообщений.
func (g *Gateway) Processed() int64 {
	return g.processed.Load()
}

// Summary формирует периодический сводный сигнал для презентационного слоя.
func (g *Gateway) Summary() domain.ActivitySummary {
	return domain.ActivitySummary{
		Timestamp:         g.now(),
		ActiveUsers:       g.registry.ActiveCount(),
		MessagesProcessed: g.processed.Load(),
	}
}
