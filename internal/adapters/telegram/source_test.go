package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func update(msg *tgbotapi.Message) tgbotapi.Update {
	return tgbotapi.Update{Message: msg}
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 100,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 7},
		Text:      text,
	}
}

func TestEventFromUpdate(t *testing.T) {
	event, ok := EventFromUpdate(update(textMessage("привет")))
	if !ok {
		t.Fatalf("ожидали событие из обычного сообщения")
	}
	if event.OwnerUserID != 42 || event.SenderID != 42 {
		t.Fatalf("владелец и отправитель берутся из From: %+v", event)
	}
	if event.MessageID != 100 || event.ChatID != 7 {
		t.Fatalf("неверные идентификаторы: %+v", event)
	}
	if event.Text != "привет" || event.MediaType != "" {
		t.Fatalf("неверное содержимое: %+v", event)
	}
}

func TestEventFromUpdateSkipsNonMessages(t *testing.T) {
	if _, ok := EventFromUpdate(tgbotapi.Update{}); ok {
		t.Fatalf("обновление без сообщения должно пропускаться")
	}
	if _, ok := EventFromUpdate(tgbotapi.Update{EditedMessage: textMessage("правка")}); ok {
		t.Fatalf("правки сообщений не пересылаются в аналитику")
	}
}

func TestEventFromUpdateMedia(t *testing.T) {
	msg := textMessage("")
	msg.Caption = "подпись к фото"
	msg.Photo = []tgbotapi.PhotoSize{{FileID: "f1"}}

	event, ok := EventFromUpdate(update(msg))
	if !ok {
		t.Fatalf("ожидали событие из сообщения с фото")
	}
	if event.MediaType != "photo" {
		t.Fatalf("ожидали тип photo, получили %q", event.MediaType)
	}
	if event.Text != "подпись к фото" {
		t.Fatalf("подпись должна подставляться вместо текста: %q", event.Text)
	}
}

func TestMediaType(t *testing.T) {
	cases := []struct {
		name string
		msg  *tgbotapi.Message
		want string
	}{
		{"video", &tgbotapi.Message{Video: &tgbotapi.Video{}}, "video"},
		{"voice", &tgbotapi.Message{Voice: &tgbotapi.Voice{}}, "voice"},
		{"video_note", &tgbotapi.Message{VideoNote: &tgbotapi.VideoNote{}}, "video_note"},
		{"audio", &tgbotapi.Message{Audio: &tgbotapi.Audio{}}, "audio"},
		{"animation", &tgbotapi.Message{Animation: &tgbotapi.Animation{}}, "animation"},
		{"sticker", &tgbotapi.Message{Sticker: &tgbotapi.Sticker{}}, "sticker"},
		{"document", &tgbotapi.Message{Document: &tgbotapi.Document{}}, "document"},
		{"text", &tgbotapi.Message{Text: "просто текст"}, ""},
	}
	for _, tc := range cases {
		if got := mediaType(tc.msg); got != tc.want {
			t.Fatalf("%s: ожидали %q, получили %q", tc.name, tc.want, got)
		}
	}
}
