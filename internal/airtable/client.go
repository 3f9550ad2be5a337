// Package airtable is the typed client for the tabular data provider. It is
// stateless: every call takes the owner's access token, mirroring how the
// service layer resolves tokens per request.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"formbridge/internal/platform/metrics"
	"formbridge/pkg/platform/sentinel"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Client talks to the provider REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider API root (tests point it at a local
// stub).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records per-operation call latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient constructs a provider client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		tracer:     otel.Tracer("formbridge/airtable"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WhoAmI resolves the provider identity behind a token. Also doubles as
// token validation for personal-token logins.
func (c *Client) WhoAmI(ctx context.Context, token string) (*UserInfo, error) {
	var out UserInfo
	if err := c.do(ctx, "whoami", token, http.MethodGet, "/meta/whoami", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBases lists the bases reachable with the token.
func (c *Client) ListBases(ctx context.Context, token string) ([]Base, error) {
	var out struct {
		Bases []Base `json:"bases"`
	}
	if err := c.do(ctx, "list_bases", token, http.MethodGet, "/meta/bases", nil, &out); err != nil {
		return nil, err
	}
	return out.Bases, nil
}

// ListTables lists a base's tables including raw field schemas.
func (c *Client) ListTables(ctx context.Context, token, baseID string) ([]Table, error) {
	var out struct {
		Tables []Table `json:"tables"`
	}
	path := "/meta/bases/" + baseID + "/tables"
	if err := c.do(ctx, "list_tables", token, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tables, nil
}

// TableFields discovers the bindable columns of one table: supported types
// only, mapped to question types, with select choices as options.
func (c *Client) TableFields(ctx context.Context, token, baseID, tableID string) ([]DiscoveredField, error) {
	tables, err := c.ListTables(ctx, token, baseID)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		if table.ID == tableID {
			return discoverFields(table), nil
		}
	}
	return nil, fmt.Errorf("table %s: %w", tableID, sentinel.ErrNotFound)
}

// CreateRecord inserts one row with the given cell values, keyed by
// provider field name.
func (c *Client) CreateRecord(ctx context.Context, token, baseID, tableID string, fields map[string]any) (*Record, error) {
	body := map[string]any{"fields": fields}
	var out Record
	path := "/" + baseID + "/" + tableID
	if err := c.do(ctx, "create_record", token, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecord patches cell values on an existing row.
func (c *Client) UpdateRecord(ctx context.Context, token, baseID, tableID, recordID string, fields map[string]any) (*Record, error) {
	body := map[string]any{"fields": fields}
	var out Record
	path := "/" + baseID + "/" + tableID + "/" + recordID
	if err := c.do(ctx, "update_record", token, http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRecord fetches one row.
func (c *Client) GetRecord(ctx context.Context, token, baseID, tableID, recordID string) (*Record, error) {
	var out Record
	path := "/" + baseID + "/" + tableID + "/" + recordID
	if err := c.do(ctx, "get_record", token, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWebhook registers a change notification subscription scoped to one
// table's data.
func (c *Client) CreateWebhook(ctx context.Context, token, baseID, tableID, notificationURL string) (*Webhook, error) {
	body := map[string]any{
		"notificationUrl": notificationURL,
		"specification": map[string]any{
			"options": map[string]any{
				"filters": map[string]any{
					"dataTypes":         []string{"tableData"},
					"recordChangeScope": tableID,
				},
			},
		},
	}
	var out Webhook
	path := "/bases/" + baseID + "/webhooks"
	if err := c.do(ctx, "create_webhook", token, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteWebhook removes a subscription.
func (c *Client) DeleteWebhook(ctx context.Context, token, baseID, webhookID string) error {
	path := "/bases/" + baseID + "/webhooks/" + webhookID
	return c.do(ctx, "delete_webhook", token, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, op, token, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "airtable."+op)
	defer span.End()
	start := time.Now()
	defer c.metrics.ObserveProviderCall(op, start)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("airtable %s: encode body: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("airtable %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("airtable %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("airtable %s: %w", op, sentinel.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("airtable %s: status %d: %s", op, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("airtable %s: decode response: %w", op, err)
	}
	return nil
}
