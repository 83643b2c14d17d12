// Package telegram adapts Telegram updates to service events and renders
// service messages back through the Bot API.
package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/Javohir11011/Hisob-kitob-bot/service"
)

type Config struct {
	Token           string        `env:"BOT_TOKEN,required" json:"-"`
	Debug           bool          `env:"BOT_DEBUG" envDefault:"false"`
	Port            uint          `env:"SERVER_PORT" envDefault:"8080"`
	WebhookURL      string        `env:"WEBHOOK_URL"` // empty means long polling
	PollTimeout     int           `env:"POLL_TIMEOUT" envDefault:"30"`
	Workers         int           `env:"UPDATE_WORKERS" envDefault:"16"`
	BootstrapSecret string        `env:"BOOTSTRAP_SECRET" json:"-"`
	HTTPMaxRetry    int           `env:"TELEGRAM_HTTP_MAX_RETRY_COUNT" envDefault:"5"`
	HTTPMinRetryDur time.Duration `env:"TELEGRAM_HTTP_MIN_RETRY_DURATION" envDefault:"1s"`
	HTTPMaxRetryDur time.Duration `env:"TELEGRAM_HTTP_MAX_RETRY_DURATION" envDefault:"30s"`
}

type Client struct {
	api *tgbotapi.BotAPI
	cfg Config
}

func NewClient(cfg Config) (*Client, error) {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.HTTPMaxRetry
	rc.RetryWaitMin = cfg.HTTPMinRetryDur
	rc.RetryWaitMax = cfg.HTTPMaxRetryDur
	rc.Logger = nil

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, rc.StandardClient())
	if err != nil {
		return nil, fmt.Errorf("creating bot API client: %w", err)
	}
	api.Debug = cfg.Debug

	return &Client{api: api, cfg: cfg}, nil
}

func (c *Client) Self() string {
	return c.api.Self.UserName
}

// Send implements service.Notifier.
func (c *Client) Send(chatID int64, msg service.Message) error {
	out := tgbotapi.NewMessage(chatID, msg.Text)

	switch {
	case msg.ContactButton != "":
		btn := tgbotapi.NewKeyboardButtonContact(msg.ContactButton)
		kb := tgbotapi.NewReplyKeyboard([]tgbotapi.KeyboardButton{btn})
		kb.ResizeKeyboard = true
		kb.OneTimeKeyboard = true
		out.ReplyMarkup = kb
	case len(msg.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(msg.Keyboard))
		for _, row := range msg.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		out.ReplyMarkup = kb
	case len(msg.Inline) > 0:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(msg.Inline))
		for _, row := range msg.Inline {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Encode()))
			}
			rows = append(rows, buttons)
		}
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	case msg.RemoveKeyboard:
		out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	if _, err := c.api.Send(out); err != nil {
		return fmt.Errorf("sending message to chat %d: %w", chatID, err)
	}
	return nil
}

// Bot runs the update loop: it fans updates out to workers sharded by chat id
// so one conversation's events never interleave.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     Config
	service *service.Service
	updates []chan tgbotapi.Update
}

func (c *Client) ServiceBot(serviceHandler *service.Service) *Bot {
	workers := c.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	updates := make([]chan tgbotapi.Update, workers)
	for i := range updates {
		updates[i] = make(chan tgbotapi.Update, 16)
	}

	return &Bot{
		api:     c.api,
		cfg:     c.cfg,
		service: serviceHandler,
		updates: updates,
	}
}
