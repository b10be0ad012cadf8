// package notify доставляет уведомления пользователям через Mattermost.
// Доставка best-effort: ошибка отправки логируется и никогда не влияет
// на бизнес-операцию, которая её вызвала.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/review360/assessment-service/internal/config"
)

// Notification is one outward message: resolved to a direct channel with
// the recipient and posted as markdown.
type Notification struct {
	Recipient  string
	Title      string
	Message    string
	ActionURL  string
	ActionText string
}

type MattermostClient struct {
	baseURL     string
	token       string
	botUsername string
	log         *slog.Logger
	client      *http.Client

	botMu     sync.Mutex
	botUserID string
}

func NewMattermostClient(cfg config.Mattermost, log *slog.Logger) *MattermostClient {
	return &MattermostClient{
		baseURL:     cfg.BaseURL + "/api/v4",
		token:       cfg.Token,
		botUsername: cfg.BotUsername,
		log:         log,
		client: &http.Client{
			Timeout: cfg.CallTimeout,
		},
	}
}

type mattermostUser struct {
	ID string `json:"id"`
}

type mattermostChannel struct {
	ID string `json:"id"`
}

// Send resolves the recipient, opens a direct channel and posts the message.
func (c *MattermostClient) Send(ctx context.Context, n Notification) error {
	user, err := c.getUserByUsername(ctx, n.Recipient)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient '%s': %w", n.Recipient, err)
	}

	botID, err := c.getBotUserID(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve bot user: %w", err)
	}

	channel, err := c.createDirectChannel(ctx, botID, user.ID)
	if err != nil {
		return fmt.Errorf("failed to create direct channel with '%s': %w", n.Recipient, err)
	}

	message := fmt.Sprintf("**%s**\n\n%s", n.Title, n.Message)
	if n.ActionURL != "" && n.ActionText != "" {
		message += fmt.Sprintf("\n\n[%s](%s)", n.ActionText, n.ActionURL)
	}

	if err := c.createPost(ctx, channel.ID, message); err != nil {
		return fmt.Errorf("failed to post message to '%s': %w", n.Recipient, err)
	}

	return nil
}

func (c *MattermostClient) getUserByUsername(ctx context.Context, username string) (*mattermostUser, error) {
	var user mattermostUser
	if err := c.get(ctx, "/users/username/"+url.PathEscape(username), &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *MattermostClient) getBotUserID(ctx context.Context) (string, error) {
	c.botMu.Lock()
	defer c.botMu.Unlock()

	if c.botUserID != "" {
		return c.botUserID, nil
	}

	bot, err := c.getUserByUsername(ctx, c.botUsername)
	if err != nil {
		return "", err
	}

	c.botUserID = bot.ID

	return bot.ID, nil
}

func (c *MattermostClient) createDirectChannel(ctx context.Context, botID, userID string) (*mattermostChannel, error) {
	var channel mattermostChannel
	if err := c.post(ctx, "/channels/direct", []string{botID, userID}, &channel); err != nil {
		return nil, err
	}

	return &channel, nil
}

func (c *MattermostClient) createPost(ctx context.Context, channelID, message string) error {
	body := map[string]string{
		"channel_id": channelID,
		"message":    message,
	}

	return c.post(ctx, "/posts", body, nil)
}

func (c *MattermostClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

func (c *MattermostClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *MattermostClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
