package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"strategy_builder/internal/modules/config"
	health "strategy_builder/internal/modules/health/service"
	"strategy_builder/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// лимит Telegram на длину сообщения
const maxMessageLen = 4096

// Telegram: транспорт: получает апдейты, отдаёт текст в Commander и отправляет ответы.
type Telegram struct {
	bot       *tgbot.BotAPI
	commander *Commander
	state     *health.State

	cancel context.CancelFunc
	done   chan struct{}
}

func NewTelegram(cfg *config.Config, commander *Commander, state *health.State) (*Telegram, error) {
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	logger.Info("authorized on account %s", b.Self.UserName)

	return &Telegram{
		bot:       b,
		commander: commander,
		state:     state,
	}, nil
}

func (t *Telegram) Send(chatID int64, text string) error {
	return t.SendMessage(tgbot.NewMessage(chatID, text))
}

func (t *Telegram) SendMessage(msg tgbot.MessageConfig) error {
	for _, part := range splitMessage(msg.Text, maxMessageLen) {
		m := msg
		m.Text = part
		if _, err := t.bot.Send(m); err != nil {
			return err
		}
		// клавиатуру цепляем только к первой части
		msg.ReplyMarkup = nil
	}
	return nil
}

// splitMessage режет текст по строкам так, чтобы каждая часть укладывалась в limit рун.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var (
		parts []string
		cur   []rune
	)
	for _, r := range text {
		cur = append(cur, r)
		if len(cur) < limit {
			continue
		}
		cut := len(cur)
		for i := len(cur) - 1; i > 0; i-- {
			if cur[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(cur[:cut]))
		cur = append([]rune(nil), cur[cut:]...)
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}

// Start запускает цикл апдейтов в фоне.
func (t *Telegram) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	t.state.SetBotConnected(true)

	go func() {
		defer close(t.done)
		for update := range updates {
			t.handleUpdate(ctx, update)
		}
	}()
}

// Stop прекращает приём апдейтов и отменяет незавершённые сохранения.
func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
	t.state.SetBotConnected(false)
	if t.cancel != nil {
		t.cancel()
		<-t.done
	}
	t.commander.Wait()
}
