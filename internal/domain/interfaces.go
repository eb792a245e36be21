package domain

import (
	"context"
	"time"
)

// MessageStore владеет журналом сообщений пользователя на диске.
// Внутри одного пользователя записи хранятся в порядке поступления.
type MessageStore interface {
	Append(ctx context.Context, userID int64, rec MessageRecord) error
	ReadAll(ctx context.Context, userID int64) ([]MessageRecord, error)
	Provision(userID int64) error
	Purge(userID int64) error
}

// ReportStore сохраняет и возвращает артефакты отчётов по паре (пользователь, дата).
type ReportStore interface {
	Save(ctx context.Context, report Report) (string, error)
	Get(userID int64, date time.Time) (Report, error)
	List() ([]ReportSummary, error)
	PurgeUser(userID int64) error
}

// UserRegistry — таблица активных пользователей процесса.
type UserRegistry interface {
	Register(userID int64) error
	Deregister(userID int64) error
	IsActive(userID int64) bool
	ActiveCount() int
	Profile(userID int64) (UserProfile, bool)
	AppendReportHistory(userID int64, location string)
}

// ChartRenderer строит непрозрачное изображение по распределению.
type ChartRenderer interface {
	Render(name, title string, dist []Bucket) ([]byte, error)
}

// ReportService строит и сохраняет отчёты.
type ReportService interface {
	Generate(ctx context.Context, userID int64) (Report, error)
}

// InsightNotifier получает мгновенные инсайты из шлюза приёма.
type InsightNotifier interface {
	NotifyInsight(ctx context.Context, userID int64, insight string) error
}

// EventSink записывает события жизненного цикла аналитики во внешнее хранилище.
type EventSink interface {
	RecordEvent(ctx context.Context, event AnalyticsEvent) error
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
