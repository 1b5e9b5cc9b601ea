package telegram

import (
	"bytes"
	"context"
	"fmt"

	"signalwatcher/internal/ports"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Messenger implements the ports.Messenger interface using the Telegram Bot
// API. All messages go to one chat and one forum topic, fixed at construction.
type Messenger struct {
	bot     *bot.Bot
	chatID  int64
	topicID int
	logger  ports.Logger
}

// Config holds configuration specific to the Telegram adapter.
type Config struct {
	Token   string
	ChatID  int64
	TopicID int
	Logger  ports.Logger
}

// New creates a Telegram messenger. The token is validated against the API,
// so an invalid token fails here rather than on the first send.
func New(cfg Config) (*Messenger, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram messenger")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: telegram token is required", ports.ErrConfigurationError)
	}

	b, err := bot.New(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: creating telegram bot: %v", ports.ErrConfigurationError, err)
	}

	return &Messenger{
		bot:     b,
		chatID:  cfg.ChatID,
		topicID: cfg.TopicID,
		logger:  cfg.Logger,
	}, nil
}

// SendPhotoURL delivers a caption with a remotely hosted image; Telegram
// fetches the URL itself.
func (m *Messenger) SendPhotoURL(ctx context.Context, caption, photoURL string) error {
	_, err := m.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:          m.chatID,
		MessageThreadID: m.topicID,
		Photo:           &models.InputFileString{Data: photoURL},
		Caption:         caption,
		ParseMode:       models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("%w: sendPhoto by URL: %v", ports.ErrDeliveryFailed, err)
	}
	return nil
}

// SendPhotoUpload delivers a caption with the image attached as an upload.
func (m *Messenger) SendPhotoUpload(ctx context.Context, caption, filename string, photo []byte) error {
	_, err := m.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:          m.chatID,
		MessageThreadID: m.topicID,
		Photo:           &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(photo)},
		Caption:         caption,
		ParseMode:       models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("%w: sendPhoto by upload: %v", ports.ErrDeliveryFailed, err)
	}
	return nil
}
