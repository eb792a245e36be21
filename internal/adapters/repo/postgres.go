package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tg-insights/internal/domain"
	"tg-insights/internal/infra/metrics"
)

// Postgres записывает бизнес-события аналитики в БД для внешних потребителей
// (система уведомлений, BI). Приёмник необязателен и подключается конфигом.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.EventSink = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 5*time.Second)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// RecordEvent сохраняет бизнес-событие аналитики.
func (p *Postgres) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	if event.Event == "" {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var userID sql.NullInt64
	if event.UserID != nil {
		userID = sql.NullInt64{Int64: *event.UserID, Valid: true}
	}

	var payload []byte
	if event.Metadata != nil {
		if data, err := json.Marshal(event.Metadata); err == nil {
			payload = data
		}
	}

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO analytics_events (event, user_id, metadata, occurred_at)
VALUES ($1, $2, $3, $4)
`, event.Event, userID, payload, event.OccurredAt)
	metrics.ObserveNetworkRequest("postgres", "analytics_events_insert", "analytics_events", start, err)
	return err
}
