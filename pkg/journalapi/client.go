package journalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
)

// Config configures the journal backend client.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to the trading-journal REST backend. It provides the
// persistence, billing, and streaming collaborators the dashboard facade
// consumes.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var (
	_ dashgrid.DashboardClient    = (*HTTPClient)(nil)
	_ dashgrid.SubscriptionClient = (*HTTPClient)(nil)
	_ dashgrid.StreamSource       = (*HTTPClient)(nil)
)

// NewHTTPClient builds a client for a live journal API.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("journalapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Dashboard fetches the canonical dashboard document.
func (c *HTTPClient) Dashboard(ctx context.Context, id string) (dashgrid.Dashboard, error) {
	var out dashgrid.Dashboard
	path := "/dashboards/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return dashgrid.Dashboard{}, err
	}
	return out, nil
}

// SaveDashboard overwrites the full dashboard document.
func (c *HTTPClient) SaveDashboard(ctx context.Context, d dashgrid.Dashboard) error {
	path := "/dashboards/" + url.PathEscape(d.ID)
	return c.do(ctx, http.MethodPut, path, d, nil)
}

// CreateWidget persists a new widget. The server response is authoritative and
// may rewrite the id or position.
func (c *HTTPClient) CreateWidget(ctx context.Context, dashboardID string, w dashgrid.Widget) (dashgrid.Widget, error) {
	var out dashgrid.Widget
	path := "/dashboards/" + url.PathEscape(dashboardID) + "/widgets"
	if err := c.do(ctx, http.MethodPost, path, w, &out); err != nil {
		return dashgrid.Widget{}, err
	}
	return out, nil
}

// UpdateWidget persists a full widget overwrite.
func (c *HTTPClient) UpdateWidget(ctx context.Context, dashboardID string, w dashgrid.Widget) (dashgrid.Widget, error) {
	var out dashgrid.Widget
	path := "/dashboards/" + url.PathEscape(dashboardID) + "/widgets/" + url.PathEscape(w.ID)
	if err := c.do(ctx, http.MethodPut, path, w, &out); err != nil {
		return dashgrid.Widget{}, err
	}
	return out, nil
}

// DeleteWidget removes a widget.
func (c *HTTPClient) DeleteWidget(ctx context.Context, dashboardID, widgetID string) error {
	path := "/dashboards/" + url.PathEscape(dashboardID) + "/widgets/" + url.PathEscape(widgetID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type reorderPayload struct {
	Widgets []dashgrid.ReorderEntry `json:"widgets"`
}

// ReorderWidgets persists the complete order as one atomic request.
func (c *HTTPClient) ReorderWidgets(ctx context.Context, dashboardID string, entries []dashgrid.ReorderEntry) error {
	path := "/dashboards/" + url.PathEscape(dashboardID) + "/widgets/reorder"
	return c.do(ctx, http.MethodPut, path, reorderPayload{Widgets: entries}, nil)
}

// WidgetData fetches the data payloads for every widget on the dashboard.
func (c *HTTPClient) WidgetData(ctx context.Context, dashboardID string) (map[string]dashgrid.WidgetPayload, error) {
	var out struct {
		WidgetData map[string]dashgrid.WidgetPayload `json:"widget_data"`
	}
	path := "/dashboards/" + url.PathEscape(dashboardID) + "/data"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.WidgetData, nil
}

// Subscription looks up the owner's billing tier. The bearer token scopes
// the lookup, so the owner id only travels as a query parameter when set.
func (c *HTTPClient) Subscription(ctx context.Context, ownerID string) (dashgrid.Subscription, error) {
	var out dashgrid.Subscription
	path := "/billing/subscription"
	if ownerID != "" {
		path += "?owner_id=" + url.QueryEscape(ownerID)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return dashgrid.Subscription{}, err
	}
	return out, nil
}

// Subscribe opens the server-sent-events data stream for a dashboard.
func (c *HTTPClient) Subscribe(ctx context.Context, dashboardID string) (dashgrid.Stream, error) {
	path := "/dashboards/" + url.PathEscape(dashboardID) + "/data/stream"
	streamCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("journalapi: build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("journalapi: open stream: %w", err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("journalapi: stream rejected with status %d", resp.StatusCode)
	}
	return newSSEStream(resp.Body, cancel), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("journalapi: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("journalapi: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("journalapi: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("journalapi: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("journalapi: decode response: %w", err)
	}
	return nil
}
