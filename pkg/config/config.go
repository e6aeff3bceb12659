package config

import (
	"time"

	"chessmonitor/internal/repository"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Repo     repository.Config `envPrefix:"REPO_"`
	HTTPPort string            `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string            `env:"LOGGER_LEVEL" envDefault:"debug"`

	SourceBaseURL string        `env:"SOURCE_BASE_URL" envDefault:"https://www.echecs.asso.fr/"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"2m"`
	FetchTimeout  time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`

	TelegramToken  string `env:"TELEGRAM_TOKEN" envDefault:""`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`

	DiscordToken     string `env:"DISCORD_TOKEN" envDefault:""`
	DiscordChannelID string `env:"DISCORD_CHANNEL_ID" envDefault:""`

	SheetsCredentials string `env:"SHEETS_CREDENTIALS" envDefault:""`
	SpreadsheetID     string `env:"SPREADSHEET_ID" envDefault:""`
}

func ReadEnvConfig(cfg *Config) error {
	return env.Parse(cfg)
}
