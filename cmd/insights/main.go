package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tg-insights/internal/adapters/charts"
	"tg-insights/internal/adapters/repo"
	"tg-insights/internal/adapters/telegram"
	"tg-insights/internal/domain"
	"tg-insights/internal/infra/cache"
	"tg-insights/internal/infra/config"
	"tg-insights/internal/infra/db"
	httpinfra "tg-insights/internal/infra/http"
	applog "tg-insights/internal/infra/log"
	"tg-insights/internal/infra/metrics"
	"tg-insights/internal/infra/queue"
	"tg-insights/internal/storage"
	"tg-insights/internal/usecase/ingest"
	"tg-insights/internal/usecase/registry"
	reportusecase "tg-insights/internal/usecase/report"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), fmt.Sprintf(":%d", cfg.MetricsPort))

	messageStore := storage.NewFileStore(cfg.DataDir, logger.With().Str("component", "store").Logger())
	reportStore := storage.NewReportStore(cfg.DataDir, logger.With().Str("component", "reports").Logger())
	reg := registry.NewRegistry(messageStore, reportStore, registry.ParseRetention(cfg.Reports.Retention), logger.With().Str("component", "registry").Logger())
	defer reg.Shutdown()

	var sink domain.EventSink
	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("insights: нет подключения к БД")
		}
		defer pool.Close()
		sink = repo.NewPostgres(pool)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
	}

	var reportQueue domain.ReportQueue
	switch {
	case cfg.RabbitURL != "":
		q, err := queue.NewRabbitReportQueue(cfg.RabbitURL, cfg.RabbitManagementURL, cfg.Queues.Reports)
		if err != nil {
			logger.Fatal().Err(err).Msg("insights: не удалось инициализировать очередь RabbitMQ")
		}
		reportQueue = q
	case redisClient != nil:
		reportQueue = queue.NewRedisReportQueue(redisClient, cfg.Queues.Reports)
	default:
		reportQueue = queue.NewMemoryReportQueue(256)
	}

	renderer := charts.NewRenderer(cfg.Reports.ChartFont)
	reportService := reportusecase.NewService(messageStore, reportStore, reg, renderer, sink, logger.With().Str("component", "report").Logger(), cfg.Reports.Period, cfg.Reports.LengthBins)

	var notifier domain.InsightNotifier
	var botAPI *tgbotapi.BotAPI
	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			logger.Fatal().Err(err).Msg("insights: не удалось создать бота")
		}
		botAPI = api
		notifier = telegram.NewNotifier(api)
	}

	gateway := ingest.NewGateway(reg, messageStore, notifier, sink, cfg.Monitoring.Keywords, logger.With().Str("component", "ingest").Logger())
	botHandler := telegram.NewHandler(botAPI, logger.With().Str("component", "bot").Logger(), reg, gateway, reportQueue)

	go runWorker(ctx, logger.With().Str("component", "worker").Logger(), reportQueue, reportService)

	var onceCache domain.Cache
	if redisClient != nil {
		onceCache = cache.NewRedis(redisClient)
	}
	go runScheduler(ctx, logger.With().Str("component", "scheduler").Logger(), reg, reportQueue, onceCache, cfg.Reports.Hour)

	srv := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	registerRoutes(srv.Router, reportStore, reportQueue, gateway, botHandler)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("insights: HTTP сервер остановлен")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("insights: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// runWorker обрабатывает задачи построения отчётов из очереди.
func runWorker(ctx context.Context, logger zerolog.Logger, jobs domain.ReportQueue, reports domain.ReportService) {
	for {
		job, err := jobs.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("worker: ошибка чтения очереди")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		jobCtx, cancelJob := context.WithTimeout(ctx, time.Minute)
		if _, err := reports.Generate(jobCtx, job.UserID); err != nil {
			logger.Error().Err(err).Int64("user", job.UserID).Str("job", job.ID).Str("cause", string(job.Cause)).Msg("worker: не удалось построить отчёт")
		}
		cancelJob()
	}
}

// runScheduler раз в минуту проверяет, не настал ли час отчётов, и ставит
// по одной задаче на каждого активного пользователя. Повторная постановка
// за ту же дату отсекается через Redis (или локально, если Redis не задан).
func runScheduler(ctx context.Context, logger zerolog.Logger, reg *registry.Registry, jobs domain.ReportQueue, once domain.Cache, reportHour int) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	localSent := make(map[string]struct{})

	for {
		var now time.Time
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			now = tick.UTC()
		}
		if now.Hour() != reportHour {
			continue
		}
		dateKey := now.Format("2006-01-02")
		for _, userID := range reg.ActiveIDs() {
			key := fmt.Sprintf("report_job:%d:%s", userID, dateKey)
			enqueue := func() error {
				job := domain.ReportJob{
					ID:          uuid.NewString(),
					UserID:      userID,
					Date:        now,
					RequestedAt: now,
					Cause:       domain.ReportCauseScheduled,
				}
				return jobs.Enqueue(ctx, job)
			}
			if once != nil {
				if err := once.Once(key, 48*time.Hour, enqueue); err != nil {
					logger.Error().Err(err).Int64("user", userID).Msg("scheduler: не удалось поставить задачу")
				}
				continue
			}
			if _, ok := localSent[key]; ok {
				continue
			}
			if err := enqueue(); err != nil {
				logger.Error().Err(err).Int64("user", userID).Msg("scheduler: не удалось поставить задачу")
				continue
			}
			localSent[key] = struct{}{}
		}
	}
}

// registerRoutes подключает API дашборда и вебхук бота.
func registerRoutes(r chi.Router, reports domain.ReportStore, jobs domain.ReportQueue, gateway *ingest.Gateway, bot *telegram.Handler) {
	r.Get("/api/v1/reports", func(w http.ResponseWriter, req *http.Request) {
		summaries, err := reports.List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list reports")
			return
		}
		writeJSON(w, summaries)
	})

	r.Get("/api/v1/reports/{userID}", func(w http.ResponseWriter, req *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(req, "userID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		date := time.Now().UTC()
		if raw := req.URL.Query().Get("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
				return
			}
			date = parsed
		}
		report, err := reports.Get(userID, date)
		if err != nil {
			if errors.Is(err, domain.ErrReportNotFound) {
				writeError(w, http.StatusNotFound, "report not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to read report")
			return
		}
		writeJSON(w, report)
	})

	r.Post("/api/v1/reports/{userID}/generate", func(w http.ResponseWriter, req *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(req, "userID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		now := time.Now().UTC()
		job := domain.ReportJob{
			ID:          uuid.NewString(),
			UserID:      userID,
			Date:        now,
			RequestedAt: now,
			Cause:       domain.ReportCauseManual,
		}
		if err := jobs.Enqueue(req.Context(), job); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to enqueue report job")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": job.ID})
	})

	r.Get("/api/v1/summary", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, gateway.Summary())
	})

	r.Post("/bot/webhook", func(w http.ResponseWriter, req *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		bot.HandleUpdate(req.Context(), update)
		w.WriteHeader(http.StatusOK)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
