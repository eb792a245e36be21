package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-insights/internal/domain"
)

// EventFromUpdate преобразует обновление Telegram в событие приёма.
// Возвращает false для обновлений без нового сообщения
// (правки сообщений не пересылаются в аналитику).
func EventFromUpdate(update tgbotapi.Update) (domain.MessageEvent, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return domain.MessageEvent{}, false
	}
	return domain.MessageEvent{
		OwnerUserID: msg.From.ID,
		MessageID:   int64(msg.MessageID),
		ChatID:      msg.Chat.ID,
		SenderID:    msg.From.ID,
		Text:        messageText(msg),
		MediaType:   mediaType(msg),
	}, true
}

func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// mediaType определяет тип вложения сообщения; пустая строка — без вложений.
func mediaType(msg *tgbotapi.Message) string {
	switch {
	case len(msg.Photo) > 0:
		return "photo"
	case msg.Video != nil:
		return "video"
	case msg.Voice != nil:
		return "voice"
	case msg.VideoNote != nil:
		return "video_note"
	case msg.Audio != nil:
		return "audio"
	case msg.Animation != nil:
		return "animation"
	case msg.Sticker != nil:
		return "sticker"
	case msg.Document != nil:
		return "document"
	default:
		return ""
	}
}
