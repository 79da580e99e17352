package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OrderProduct is one cart line as it travels to the order store.
type OrderProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

// Order is the remote order record as returned by the store.
type Order struct {
	ID          string         `json:"id"`
	Ref         string         `json:"ref,omitempty"`
	UserID      string         `json:"userId"`
	Products    []OrderProduct `json:"products"`
	TotalAmount float64        `json:"totalAmount"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// CreateOrderRequest is the immutable payload submitted at order creation.
type CreateOrderRequest struct {
	Products    []OrderProduct `json:"products"`
	TotalAmount float64        `json:"totalAmount"`
}

// OrderService is the remote order store as the coordinator sees it.
type OrderService interface {
	CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (*Order, error)
	MarkOrderPaid(ctx context.Context, token, orderID string) (*Order, error)
}

// Client speaks the order store's JSON-over-HTTP contract: bearer
// authorization, {"data": ...} on success and {"error": ...} on failure.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (*Order, error) {
	return c.do(ctx, http.MethodPost, "/orders", token, req, http.StatusCreated)
}

func (c *Client) MarkOrderPaid(ctx context.Context, token, orderID string) (*Order, error) {
	return c.do(ctx, http.MethodPatch, "/orders/"+orderID+"/pay", token, nil, http.StatusOK)
}

type orderEnvelope struct {
	Data  *Order `json:"data"`
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body interface{}, wantStatus int) (*Order, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, RemoteUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	var envelope orderEnvelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	switch {
	case resp.StatusCode == wantStatus:
		if decodeErr != nil || envelope.Data == nil {
			return nil, RemoteUnavailableError{Status: resp.StatusCode, Err: fmt.Errorf("malformed response body")}
		}
		return envelope.Data, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		reason := envelope.Error
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return nil, RemoteRejectedError{Status: resp.StatusCode, Reason: reason}
	default:
		return nil, RemoteUnavailableError{Status: resp.StatusCode}
	}
}
