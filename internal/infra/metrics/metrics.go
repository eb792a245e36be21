package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	IngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_ingested_total",
		Help: "Принятые сообщения, записанные в журналы",
	})
	DroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_dropped_total",
		Help: "События неактивных пользователей, отброшенные шлюзом",
	})
	PatternHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pattern_hits_total",
		Help: "Срабатывания отслеживаемых шаблонов при приёме",
	})
	ActiveUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_users",
		Help: "Число пользователей, подключённых к аналитике",
	})
	ReportBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_build_seconds",
		Help:    "Время построения отчёта",
		Buckets: prometheus.DefBuckets,
	})
	ReportsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Успешно сохранённые отчёты",
	})
	ReportErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "report_errors_total",
		Help: "Ошибки построения отчётов",
	})
	ChartRenderErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chart_render_errors_total",
		Help: "Ошибки отрисовки графиков (график пропускается)",
	})
	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})

	ReportRequestsByUser = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_requests_by_user_total",
		Help: "Количество запросов на построение отчёта по пользователям",
	}, []string{"user_id"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		IngestedTotal,
		DroppedTotal,
		PatternHitsTotal,
		ActiveUsers,
		ReportBuildSeconds,
		ReportsGeneratedTotal,
		ReportErrorsTotal,
		ChartRenderErrors,
		BotSendErrors,
		ReportRequestsByUser,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncReportForUser увеличивает счётчик запросов на отчёт для пользователя.
func IncReportForUser(userID int64) {
	ReportRequestsByUser.WithLabelValues(strconv.FormatInt(userID, 10)).Inc()
}
