package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tg-insights/internal/domain"
	"tg-insights/internal/infra/metrics"
	"tg-insights/internal/usecase/ingest"
)

// Handler обрабатывает входящие обновления бота: команды управления
// и обычные сообщения, которые уходят в шлюз приёма.
type Handler struct {
	api      *tgbotapi.BotAPI
	log      zerolog.Logger
	registry domain.UserRegistry
	gateway  *ingest.Gateway
	queue    domain.ReportQueue
}

// NewHandler создаёт обработчик обновлений.
func NewHandler(api *tgbotapi.BotAPI, logger zerolog.Logger, registry domain.UserRegistry, gateway *ingest.Gateway, queue domain.ReportQueue) *Handler {
	return &Handler{api: api, log: logger, registry: registry, gateway: gateway, queue: queue}
}

// HandleUpdate маршрутизирует обновление Telegram.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return
	}
	event, ok := EventFromUpdate(update)
	if !ok {
		return
	}
	if err := h.gateway.Ingest(ctx, event); err != nil {
		h.log.Error().Err(err).Int64("user", event.OwnerUserID).Msg("не удалось принять сообщение")
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if err := h.registry.Register(msg.From.ID); err != nil {
			h.log.Error().Err(err).Int64("user", msg.From.ID).Msg("не удалось подключить пользователя")
			h.reply(msg, "Не удалось включить аналитику, попробуйте позже")
			return
		}
		h.reply(msg, "Аналитика включена. Отчёт будет готов по расписанию, команда /report строит его сейчас.")
	case "stop":
		if err := h.registry.Deregister(msg.From.ID); err != nil {
			h.log.Error().Err(err).Int64("user", msg.From.ID).Msg("не удалось отключить пользователя")
			return
		}
		h.reply(msg, "Аналитика отключена")
	case "report":
		if !h.registry.IsActive(msg.From.ID) {
			h.reply(msg, "Сначала включите аналитику командой /start")
			return
		}
		now := time.Now().UTC()
		job := domain.ReportJob{
			ID:          uuid.NewString(),
			UserID:      msg.From.ID,
			Date:        now,
			RequestedAt: now,
			Cause:       domain.ReportCauseManual,
		}
		if err := h.queue.Enqueue(ctx, job); err != nil {
			h.log.Error().Err(err).Int64("user", msg.From.ID).Msg("не удалось поставить отчёт в очередь")
			h.reply(msg, "Не удалось запросить отчёт, попробуйте позже")
			return
		}
		h.reply(msg, "Отчёт поставлен в очередь")
	default:
		h.reply(msg, "Доступные команды: /start, /stop, /report")
	}
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	if h.api == nil {
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	if _, err := h.api.Send(out); err != nil {
		metrics.BotSendErrors.Inc()
		h.log.Error().Err(err).Msg("не удалось отправить ответ")
	}
}
