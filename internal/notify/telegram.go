// Package notify delivers alerts for newly surfaced symbols.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"marketscan/models"
)

// Telegram sends one message per fresh alert to a configured chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// Alert sends a formatted alert for the asset.
func (t *Telegram) Alert(_ context.Context, asset models.ScoredAsset) error {
	text := fmt.Sprintf(
		"🔔 %s (%s)\nScore: %d — %s\nPrice: $%.4f (%+.2f%% 24h)\nStop: $%.4f | Target: $%.4f | Size: %s\nExit: %s",
		asset.Symbol, asset.Name,
		asset.Score, asset.Message,
		asset.Price, asset.Change24h,
		asset.Risk.StopLoss, asset.Risk.TakeProfit, asset.Risk.PositionSize,
		asset.Risk.Exit,
	)

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram alert: %w", err)
	}
	t.logger.Debug().Str("symbol", asset.Symbol).Int("score", asset.Score).Msg("Sent alert")
	return nil
}
