package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// WebhookNotifier posts notifications as JSON to an external delivery
// service.
type WebhookNotifier struct {
	url        string
	authHeader string
	client     *http.Client
	logger     Logger
}

func NewWebhookNotifier(url, authHeader string) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		authHeader: authHeader,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: defLogger{},
	}
}

func (n *WebhookNotifier) WithLogger(logger Logger) *WebhookNotifier {
	n.logger = logger
	return n
}

func (n *WebhookNotifier) WithClient(client *http.Client) *WebhookNotifier {
	n.client = client
	return n
}

func (n *WebhookNotifier) Send(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to encode notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to build notification request")
	}

	req.Header.Set("Content-Type", "application/json")
	if n.authHeader != "" {
		req.Header.Set("Authorization", n.authHeader)
	}

	res, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("Notification delivery error: %v", err)
		return goerrors.Wrap(err, ErrNotificationFailed.Category, ErrNotificationFailed.Message).
			WithTextCode(ErrNotificationFailed.TextCode)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		n.logger.Error("Notification delivery rejected: %s", res.Status)
		return goerrors.New(
			fmt.Sprintf("%s: %s", MsgNotificationFailed, res.Status),
			goerrors.CategoryOperation,
		).WithTextCode(ErrNotificationFailed.TextCode).WithCode(goerrors.CodeInternal)
	}

	return nil
}

var _ Notifier = (*WebhookNotifier)(nil)
