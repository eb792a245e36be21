package domain

import "time"

// UserProfile описывает пользователя, подключённого к аналитике.
type UserProfile struct {
	UserID           int64
	JoinedAt         time.Time
	AnalyticsEnabled bool
	ReportHistory    []string
}

// MessageRecord — одна запись журнала сообщений пользователя.
// Timestamp фиксирует момент приёма события, а не отправки сообщения.
type MessageRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	MessageID  int64     `json:"message_id"`
	ChatID     int64     `json:"chat_id"`
	SenderID   int64     `json:"sender_id"`
	TextLength int       `json:"text_length"`
	HasMedia   bool      `json:"has_media"`
	Hour       int       `json:"hour"`
	Weekday    int       `json:"weekday"`
}

// StatisticsSnapshot — статистика, рассчитанная по полному журналу.
// Пустому журналу соответствует нулевой снимок.
type StatisticsSnapshot struct {
	TotalMessages     int     `json:"total_messages"`
	AvgMessageLength  float64 `json:"avg_message_length"`
	MostActiveHour    int     `json:"most_active_hour"`
	MostActiveWeekday int     `json:"most_active_weekday"`
	MediaPercentage   float64 `json:"media_percentage"`
	DailyAvg          float64 `json:"daily_avg"`
}

// Report — итоговый отчёт аналитики пользователя за один день.
type Report struct {
	UserID          int64              `json:"user_id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	Period          string             `json:"period"`
	Statistics      StatisticsSnapshot `json:"statistics"`
	Insights        []string           `json:"insights"`
	Recommendations []string           `json:"recommendations"`
	Charts          map[string]string  `json:"charts"`
}

// ReportSummary — краткое описание отчёта для списков.
type ReportSummary struct {
	UserID      int64              `json:"user_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Statistics  StatisticsSnapshot `json:"statistics"`
}

// ActivitySummary — периодический сводный сигнал для презентационного слоя.
type ActivitySummary struct {
	Timestamp         time.Time `json:"timestamp"`
	ActiveUsers       int       `json:"active_users"`
	MessagesProcessed int64     `json:"messages_processed"`
}

// Bucket — одна корзина распределения для построения графика.
type Bucket struct {
	Label string
	Count int
}

// AnalyticsEvent — бизнес-событие для внешнего приёмника.
type AnalyticsEvent struct {
	Event      string
	UserID     *int64
	Metadata   map[string]any
	OccurredAt time.Time
}
