package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/target/storefront-edge/internal/observability/statsd"
)

const streamPath = "/api/notifications/stream"

// Alert visibility by urgency. New orders stay on screen longest.
const (
	baseVisibility     = 4 * time.Second
	stockLowVisibility = 6 * time.Second
	newOrderVisibility = 8 * time.Second
)

// ChannelOptions groups dependencies for a Channel.
type ChannelOptions struct {
	BaseURL string // upstream origin, required
	Token   string // credential passed as a query parameter, required

	HTTPClient  *http.Client
	Alerts      AlertSink
	Broadcaster *Broadcaster
	Logger      *slog.Logger
	Metrics     statsd.Sink
}

// Channel is one long-lived server-push connection to the upstream
// notification stream. It is opened for an admin context holding a
// credential, and closed unconditionally on context cancellation or on
// the first transport error. There is no automatic reconnection: silent
// gaps are tolerated in exchange for not carrying backoff logic. A fresh
// Channel is built the next time the owning context opens.
type Channel struct {
	baseURL     string
	token       string
	http        *http.Client
	alerts      AlertSink
	broadcaster *Broadcaster
	logger      *slog.Logger
	metrics     statsd.Sink

	greeted bool
}

// NewChannel constructs a Channel. BaseURL and Token are required.
func NewChannel(opts ChannelOptions) (*Channel, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("notification channel base URL is required")
	}
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("notification channel requires a credential")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// No client timeout: the connection is expected to stay open.
		httpClient = &http.Client{}
	}
	alerts := opts.Alerts
	if alerts == nil {
		alerts = LogSink{Logger: opts.Logger}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Channel{
		baseURL:     base,
		token:       strings.TrimPrefix(opts.Token, "Bearer "),
		http:        httpClient,
		alerts:      alerts,
		broadcaster: opts.Broadcaster,
		logger:      logger.With("component", "notify_channel"),
		metrics:     opts.Metrics,
	}, nil
}

// Run connects and consumes events until the context is cancelled or the
// transport fails. Cancellation returns nil; a transport failure returns
// the underlying error. Internal event errors (unparseable payloads) are
// logged and swallowed, never propagated.
func (c *Channel) Run(ctx context.Context) error {
	// The streaming transport cannot carry custom headers, so the
	// credential travels as a query parameter.
	endpoint := c.baseURL + streamPath + "?token=" + url.QueryEscape(c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect notification stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification stream rejected: HTTP %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	var eventName string
	var data []string

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if eventName != "" || len(data) > 0 {
				c.dispatch(ctx, eventName, strings.Join(data, "\n"))
			}
			eventName = ""
			data = data[:0]
		case strings.HasPrefix(line, ":"):
			// Comment / keep-alive.
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("notification stream closed: %w", err)
	}
	// Upstream closed the stream cleanly. Still a terminal condition.
	return nil
}

func (c *Channel) dispatch(ctx context.Context, eventName, data string) {
	switch eventName {
	case "connected":
		if c.greeted {
			return
		}
		c.greeted = true
		c.observe("connected")
		c.alerts.Show(Alert{
			Title:      "Notifications",
			Message:    "notification stream connected",
			Style:      AlertInfo,
			Visibility: baseVisibility,
		})

	case "notification":
		var event Event
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Swallowed: a bad payload must never crash the owning view.
			c.logger.WarnContext(ctx, "unparseable notification payload", "error", err)
			c.observe("unparseable")
			return
		}
		c.dispatchEvent(event)

	default:
		c.logger.DebugContext(ctx, "ignoring unknown stream event", "event", eventName)
	}
}

// dispatchEvent applies the per-type rendering policy. Unrecognized types
// get a neutral rendering; the enumeration is open at this boundary.
func (c *Channel) dispatchEvent(event Event) {
	c.observe(string(event.Type))

	alert := Alert{
		Title:      event.Title,
		Message:    event.Message,
		Style:      AlertInfo,
		Visibility: baseVisibility,
	}

	switch event.Type {
	case EventOrderStatusChanged, EventSystem:
		// Neutral informational rendering.
	case EventDeliveryStarted:
		alert.Style = AlertSuccess
	case EventStockLow:
		alert.Style = AlertWarning
		alert.Visibility = stockLowVisibility
	case EventNewOrder:
		alert.Style = AlertSuccess
		alert.Visibility = newOrderVisibility
	}

	c.alerts.Show(alert)

	if event.Type == EventNewOrder && c.broadcaster != nil {
		c.broadcaster.Broadcast(TopicOrders)
	}
}

func (c *Channel) observe(eventType string) {
	if c.metrics == nil {
		return
	}
	c.metrics.Count("notify.event", 1, map[string]string{"type": eventType})
}
