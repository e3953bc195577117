// Package telegram provides the optional Telegram notification channel.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	SendMessage(text string) error
	SendMessageUser(text string, chatID int64) error
}

// client is an implementation of Notifier.
type client struct {
	bot           *tgbotapi.BotAPI
	defaultChatID int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, defaultChatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:           bot,
		defaultChatID: defaultChatID,
	}, nil
}

// SendMessage sends a message to the default chat.
func (c *client) SendMessage(text string) error {
	return c.SendMessageUser(text, c.defaultChatID)
}

// SendMessageUser sends a message to a specific chat.
func (c *client) SendMessageUser(text string, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	return err
}
