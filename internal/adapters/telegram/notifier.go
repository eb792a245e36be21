package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-insights/internal/domain"
	"tg-insights/internal/infra/metrics"
)

// Notifier доставляет мгновенные инсайты пользователю через бота.
type Notifier struct {
	api *tgbotapi.BotAPI
}

var _ domain.InsightNotifier = (*Notifier)(nil)

// NewNotifier создаёт нотификатор.
func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

// NotifyInsight отправляет инсайт личным сообщением.
func (n *Notifier) NotifyInsight(ctx context.Context, userID int64, insight string) error {
	if n.api == nil {
		return nil
	}
	_, err := n.api.Send(tgbotapi.NewMessage(userID, "💡 "+insight))
	if err != nil {
		metrics.BotSendErrors.Inc()
	}
	return err
}
