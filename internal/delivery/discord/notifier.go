package discord

import (
	"fmt"
	"strings"

	"chessmonitor/internal/application"
	"chessmonitor/internal/models"

	"github.com/bwmarrin/discordgo"
)

// Notifier delivers finished-game alerts to a Discord channel.
type Notifier struct {
	session   *discordgo.Session
	channelID string
	logger    application.Logger
}

func NewNotifier(token, channelID string, logger application.Logger) (*Notifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}

	logger.Info("Discord notifier connected")

	return &Notifier{
		session:   session,
		channelID: channelID,
		logger:    logger,
	}, nil
}

func (n *Notifier) GameFinished(game models.Game, watchedNames []string) error {
	var sb strings.Builder
	if len(watchedNames) > 0 {
		sb.WriteString(fmt.Sprintf("**Watched player game finished** (%s)\n", strings.Join(watchedNames, ", ")))
	} else {
		sb.WriteString("**Game finished**\n")
	}
	sb.WriteString(game.FormattedResult())

	if _, err := n.session.ChannelMessageSend(n.channelID, sb.String()); err != nil {
		return fmt.Errorf("failed to send discord notification: %w", err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.session.Close()
}
