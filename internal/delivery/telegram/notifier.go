package telegram

import (
	"fmt"
	"strings"

	"chessmonitor/internal/application"
	"chessmonitor/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers finished-game alerts to a Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger application.Logger
}

func NewNotifier(token string, chatID int64, logger application.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram notifier authorized on account %s", bot.Self.UserName)

	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (n *Notifier) GameFinished(game models.Game, watchedNames []string) error {
	title := "Game finished"
	if len(watchedNames) > 0 {
		title = fmt.Sprintf("Watched player game finished (%s)", strings.Join(watchedNames, ", "))
	}

	msg := tgbotapi.NewMessage(n.chatID, title+"\n"+game.FormattedResult())
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
