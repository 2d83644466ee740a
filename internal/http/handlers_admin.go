package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/target/storefront-edge/internal/credential"
	"github.com/target/storefront-edge/internal/gateway"
	"github.com/target/storefront-edge/internal/notify"
	"github.com/target/storefront-edge/internal/observability/statsd"
	"github.com/target/storefront-edge/internal/service"
)

// OrdersServiceInterface defines the order listing the admin view needs.
type OrdersServiceInterface interface {
	List(ctx context.Context) ([]service.Order, error)
}

// AdminHandlers provides HTTP handlers for the admin namespace. All routes
// here sit behind the access guard.
type AdminHandlers struct {
	Orders      OrdersServiceInterface
	Store       *credential.Store
	Broadcaster *notify.Broadcaster

	// Upstream origin for the notification stream relay.
	UpstreamBaseURL string
	StreamClient    *http.Client // optional; no-timeout client when nil

	Logger  *slog.Logger
	Metrics statsd.Sink
}

func (h *AdminHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// ListOrders returns the current orders.
// GET /admin/orders.
func (h *AdminHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    upstreamFailureCode(err),
			ErrCode: "orders_unavailable",
			Err:     errors.New(gateway.DescribeError(err, "orders unavailable")),
		})
		return
	}
	WriteJSON(w, http.StatusOK, orders)
}

// NotificationsStream relays the upstream notification stream to one admin
// subscriber. Each subscriber owns exactly one upstream channel: opened
// here, torn down when the client disconnects or the upstream fails. There
// is no reconnection; the browser opens a fresh stream on its next mount.
// GET /admin/notifications/stream.
func (h *AdminHandlers) NotificationsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "streaming_unsupported",
			Err:     errors.New("response writer does not support streaming"),
		})
		return
	}

	cred, err := h.Store.Get(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "credential_required",
			Err:     errors.New("no credential available for the notification stream"),
		})
		return
	}

	connID := uuid.NewString()
	logger := h.logger().With("component", "notify_relay", "conn_id", connID)

	channel, err := notify.NewChannel(notify.ChannelOptions{
		BaseURL:     h.UpstreamBaseURL,
		Token:       cred.Token,
		HTTPClient:  h.StreamClient,
		Alerts:      &sseAlertSink{w: w, flusher: flusher},
		Broadcaster: h.Broadcaster,
		Logger:      logger,
		Metrics:     h.Metrics,
	})
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "stream_setup_failed", Err: err})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.InfoContext(r.Context(), "notification relay opened")
	if err := channel.Run(r.Context()); err != nil {
		logger.WarnContext(r.Context(), "notification relay closed on error", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "notification relay closed")
}

// sseAlertSink renders alerts as SSE frames on the downstream connection.
type sseAlertSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

type ssePayload struct {
	Title        string `json:"title"`
	Message      string `json:"message"`
	Style        string `json:"style"`
	VisibilityMs int64  `json:"visibility_ms"`
}

func (s *sseAlertSink) Show(alert notify.Alert) {
	data, err := json.Marshal(ssePayload{
		Title:        alert.Title,
		Message:      alert.Message,
		Style:        string(alert.Style),
		VisibilityMs: alert.Visibility.Milliseconds(),
	})
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "event: alert\ndata: %s\n\n", data)
	s.flusher.Flush()
}
