package service

import (
	"context"

	"strategy_builder/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		// inline mode, стикеры и т.п. пока игнорируем
		return
	}
	chatID := msg.Chat.ID
	withKeyboard := msg.IsCommand() && (msg.Command() == "start" || msg.Command() == "new")

	t.commander.Handle(ctx, chatID, msg.Text, func(text string) {
		out := tgbotapi.NewMessage(chatID, text)
		if withKeyboard {
			out.ReplyMarkup = mainKeyboard()
		}
		if err := t.SendMessage(out); err != nil {
			logger.Error("send to chat %d: %v", chatID, err)
		}
	})
}

// mainKeyboard: частые команды без аргументов.
func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/show"),
			tgbotapi.NewKeyboardButton("/json"),
			tgbotapi.NewKeyboardButton("/save"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/indicators buy"),
			tgbotapi.NewKeyboardButton("/indicators sell"),
			tgbotapi.NewKeyboardButton("/symbols"),
		),
	)
}
