package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appnotification "github.com/homechef/backend/internal/application/notification"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Gateway result errors that mean the token will never work again
var unregisteredErrors = map[string]bool{
	"NotRegistered":       true,
	"InvalidRegistration": true,
	"Unregistered":        true,
}

// PushGatewayConfig holds push gateway settings
type PushGatewayConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// HTTPPushGateway sends push notifications through an HTTP fan-out gateway.
// The gateway answers with one result per token, in request order.
type HTTPPushGateway struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

type pushRequest struct {
	Tokens       []string          `json:"tokens"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewHTTPPushGateway creates the push channel
func NewHTTPPushGateway(cfg PushGatewayConfig, logger *zap.Logger) *HTTPPushGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPPushGateway{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("push"),
	}
}

// Send posts the message for all tokens. The returned slice lists tokens the
// gateway reported as unregistered.
func (g *HTTPPushGateway) Send(ctx context.Context, tokens []string, msg appnotification.PushMessage) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(pushRequest{
		Tokens:       tokens,
		Notification: pushNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read push gateway response: %w", err)
	}
	if resp.StatusCode >= 300 {
		reason := gjson.GetBytes(raw, "error.message").String()
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, reason)
	}
	return g.invalidTokens(tokens, raw), nil
}

// invalidTokens reads results[i].error. A result may name its token
// explicitly; otherwise it matches the request token at the same index.
func (g *HTTPPushGateway) invalidTokens(tokens []string, raw []byte) []string {
	var invalid []string
	failed := 0
	gjson.GetBytes(raw, "results").ForEach(func(key, result gjson.Result) bool {
		code := result.Get("error").String()
		if code == "" {
			return true
		}
		failed++
		if !unregisteredErrors[code] {
			return true
		}
		token := result.Get("token").String()
		if token == "" {
			if i := int(key.Int()); i < len(tokens) {
				token = tokens[i]
			}
		}
		if token != "" {
			invalid = append(invalid, token)
		}
		return true
	})
	if failed > 0 {
		g.logger.Debug("Push delivered with failures",
			zap.Int("tokens", len(tokens)),
			zap.Int("failed", failed),
			zap.Int("unregistered", len(invalid)),
		)
	}
	return invalid
}

var _ appnotification.PushSender = (*HTTPPushGateway)(nil)
