// Package clients содержит HTTP-клиенты соседних сервисов кампуса.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bagdasarian/campus-teams/internal/config"
	"github.com/bagdasarian/campus-teams/internal/logger"
)

// MembershipResult - ответ проверки пользователей. Valid=false при любой ошибке связи
type MembershipResult struct {
	Valid      bool
	InvalidIDs []string
	Message    string
}

type MembershipValidator interface {
	ValidateUsers(ctx context.Context, userIDs []string) MembershipResult
}

type validateUsersRequest struct {
	UserIDs []string `json:"user_ids"`
}

type validateUsersResponse struct {
	AllExist   bool     `json:"all_exist"`
	InvalidIDs []string `json:"invalid_ids"`
	Message    string   `json:"message"`
}

// AuthClient проверяет существование пользователей в сервисе аутентификации
type AuthClient struct {
	url        string
	httpClient *http.Client
	log        *logger.Logger
}

func NewAuthClient(cfg *config.Config, log *logger.Logger) *AuthClient {
	return &AuthClient{
		url:        cfg.Services.MembershipURL,
		httpClient: &http.Client{Timeout: cfg.Services.Timeout},
		log:        log,
	}
}

func NewAuthClientWithHTTP(url string, httpClient *http.Client, log *logger.Logger) *AuthClient {
	return &AuthClient{url: url, httpClient: httpClient, log: log}
}

func (c *AuthClient) ValidateUsers(ctx context.Context, userIDs []string) MembershipResult {
	if len(userIDs) == 0 {
		return MembershipResult{Valid: true}
	}

	resp, err := c.validate(ctx, userIDs)
	if err != nil {
		c.log.Warn("user validation failed", "users", len(userIDs), "error", err)
		return MembershipResult{
			Valid:      false,
			InvalidIDs: userIDs,
			Message:    "could not validate users",
		}
	}

	return MembershipResult{
		Valid:      resp.AllExist,
		InvalidIDs: resp.InvalidIDs,
		Message:    resp.Message,
	}
}

func (c *AuthClient) validate(ctx context.Context, userIDs []string) (*validateUsersResponse, error) {
	reqBytes, err := json.Marshal(validateUsersRequest{UserIDs: userIDs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var out validateUsersResponse
	if err := postJSON(ctx, c.httpClient, c.url, "", reqBytes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// postJSON отправляет JSON и декодирует ответ. Любой статус кроме 2xx - ошибка
func postJSON(ctx context.Context, client *http.Client, url, token string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d after %s: %s", resp.StatusCode, time.Since(start).Round(time.Millisecond), string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
