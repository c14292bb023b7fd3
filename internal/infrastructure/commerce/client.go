// Package commerce содержит HTTP-клиент внешнего бэкенда магазина.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/cfg"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/jitter"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

const (
	maxErrorBody = 64 << 10
	baseBackoff  = 200 * time.Millisecond
	maxBackoff   = 5 * time.Second
)

// Client реализует CatalogService, OrderService и IdentityService.
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries int
	sem        chan struct{}
	logger     logger.Logger
	backoff    jitter.Backoff
}

func NewClient(cfg *cfg.CommerceCfg, logger logger.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.RequestTimeout}, logger)
}

// NewClientWithHTTP позволяет подставить свой http.Client (тесты, прокси).
// Таймаут заказа задается контекстом вызывающего кода, поэтому у http.Client он не должен быть меньше.
func NewClientWithHTTP(cfg *cfg.CommerceCfg, httpClient *http.Client, logger logger.Logger) *Client {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	if httpClient.Timeout > 0 && httpClient.Timeout < cfg.OrderTimeout {
		httpClient.Timeout = cfg.OrderTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		http:       httpClient,
		maxRetries: maxRetries,
		sem:        make(chan struct{}, maxConcurrent),
		logger:     logger,
		backoff:    jitter.NewBackoff(baseBackoff, maxBackoff),
	}
}

// getJSON выполняет идемпотентный GET с повторами и экспоненциальной задержкой.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, token string, out any) error {
	const op = "Client.getJSON"

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		err := c.do(ctx, http.MethodGet, path, query, token, nil, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxRetries-1 {
			break
		}

		c.logger.Warnf("commerce GET %s failed, retrying (attempt %d): %v", path, attempt+1, err)

		if !c.backoff.Sleep(ctx, attempt) {
			return e.Wrap(op, &APIError{Message: ctx.Err().Error(), Err: e.ErrUnavailable})
		}
	}

	return e.Wrap(op, lastErr)
}

// postJSON выполняет POST один раз: создание заказа не идемпотентно.
func (c *Client) postJSON(ctx context.Context, path string, token string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, token, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body any, out any) error {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return &APIError{Message: ctx.Err().Error(), Err: e.ErrUnavailable}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: err.Error(), Err: e.ErrUnavailable}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response: " + err.Error(), Err: e.ErrUnavailable}
	}

	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := http.StatusText(resp.StatusCode)
	var body errorDTO
	if err := json.Unmarshal(data, &body); err == nil {
		if m := body.message(); m != "" {
			message = m
		}
	}

	return &APIError{
		Status:  resp.StatusCode,
		Message: message,
		Err:     classifyStatus(resp.StatusCode),
	}
}

// statusOf возвращает HTTP-статус ошибки бэкенда или 0.
func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
