package services

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/desertthunder/spotctl/internal/metrics"
	"github.com/desertthunder/spotctl/internal/shared"
)

// TelegramClient sends bot messages through the Bot API.
//
// Updates are not polled; they arrive on the relay's webhook.
type TelegramClient struct {
	api   *bot.Bot
	token string
}

// NewTelegramClient creates a client for the bot token. Empty baseURL and nil httpClient use the defaults.
//
// No request is made until the first call.
func NewTelegramClient(token string, httpClient *http.Client, baseURL string) (*TelegramClient, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(time.Minute, &instrumentedDoer{client: httpClient}),
	}
	if baseURL != "" {
		opts = append(opts, bot.WithServerURL(strings.TrimRight(baseURL, "/")))
	}

	api, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: telegram: %s", shared.ErrInvalidConfig, redact(err, token))
	}
	return &TelegramClient{api: api, token: token}, nil
}

// SendMessage posts Markdown text to chatID with an optional inline keyboard.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string, markup *tgmodels.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeMarkdownV1,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.api.SendMessage(ctx, params); err != nil {
		return c.wrap("sendMessage", err)
	}
	return nil
}

// SetWebhook registers url as the bot's webhook.
func (c *TelegramClient) SetWebhook(ctx context.Context, url string) error {
	ok, err := c.api.SetWebhook(ctx, &bot.SetWebhookParams{URL: url})
	if err != nil {
		return c.wrap("setWebhook", err)
	}
	if !ok {
		return fmt.Errorf("%w: telegram setWebhook: not accepted", shared.ErrAPIRequest)
	}
	return nil
}

// Username returns the bot's @username, used to recognise commands addressed to it in group chats.
func (c *TelegramClient) Username(ctx context.Context) (string, error) {
	me, err := c.api.GetMe(ctx)
	if err != nil {
		return "", c.wrap("getMe", err)
	}
	return me.Username, nil
}

func (c *TelegramClient) wrap(method string, err error) error {
	return fmt.Errorf("%w: telegram %s: %s", shared.ErrAPIRequest, method, redact(err, c.token))
}

// redact keeps the bot token out of returned errors, which embed the request URL.
func redact(err error, token string) string {
	if token == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), token, "<token>")
}

// instrumentedDoer counts Bot API calls by method name.
type instrumentedDoer struct {
	client *http.Client
}

func (d *instrumentedDoer) Do(req *http.Request) (*http.Response, error) {
	endpoint := "telegram/" + path.Base(req.URL.Path)

	resp, err := d.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(req.Method, endpoint, "error").Inc()
		return nil, err
	}
	metrics.UpstreamRequests.WithLabelValues(req.Method, endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}
