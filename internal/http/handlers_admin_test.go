package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/target/storefront-edge/internal/credential"
	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/gateway"
	"github.com/target/storefront-edge/internal/notify"
	"github.com/target/storefront-edge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrdersService struct {
	orders []service.Order
	err    error
}

func (s *stubOrdersService) List(context.Context) ([]service.Order, error) {
	return s.orders, s.err
}

func TestListOrders(t *testing.T) {
	h := &AdminHandlers{Orders: &stubOrdersService{orders: []service.Order{
		{ID: "ord-1", Status: "pending", Customer: "A. Operator", Total: 4999},
	}}}

	w := httptest.NewRecorder()
	h.ListOrders(w, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var orders []service.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "ord-1", orders[0].ID)
}

func TestListOrders_UpstreamFailure(t *testing.T) {
	h := &AdminHandlers{Orders: &stubOrdersService{
		err: &gateway.APIError{Status: http.StatusInternalServerError, Message: "boom"},
	}}

	w := httptest.NewRecorder()
	h.ListOrders(w, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "server error, retry later")
}

func TestNotificationsStream_RequiresCredential(t *testing.T) {
	backend := credential.NewMemoryBackend()
	store, err := credential.NewStore(credential.StoreOptions{Backend: backend})
	require.NoError(t, err)

	h := &AdminHandlers{Store: store, UpstreamBaseURL: "http://upstream.example"}

	srv := httptest.NewServer(http.HandlerFunc(h.NotificationsStream))
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestNotificationsStream_RelaysUpstreamEvents(t *testing.T) {
	// Upstream emits a connected frame and one notification, then holds the
	// stream open until the subscriber goes away.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.URL.Query().Get("token"))
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "event: connected\ndata: {}\n\n")
		fmt.Fprint(w, "event: notification\ndata: {\"title\":\"Order #42\",\"message\":\"placed\",\"type\":\"new-order\"}\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer upstream.Close()

	backend := credential.NewMemoryBackend()
	store, err := credential.NewStore(credential.StoreOptions{Backend: backend})
	require.NoError(t, err)
	require.NoError(t, backend.Save(context.Background(), domainauth.Credential{
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	broadcaster := notify.NewBroadcaster()
	defer broadcaster.StopAll()
	unsub, signals := broadcaster.Subscribe(notify.TopicOrders)
	defer unsub()

	h := &AdminHandlers{
		Store:           store,
		Broadcaster:     broadcaster,
		UpstreamBaseURL: upstream.URL,
	}
	edge := httptest.NewServer(http.HandlerFunc(h.NotificationsStream))
	defer edge.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, edge.URL, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	// Read relayed frames until both alerts have arrived.
	var payloads []ssePayload
	scanner := bufio.NewScanner(res.Body)
	for scanner.Scan() && len(payloads) < 2 {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var p ssePayload
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &p))
		payloads = append(payloads, p)
	}
	require.Len(t, payloads, 2)

	assert.Equal(t, "info", payloads[0].Style)
	assert.Equal(t, "Order #42", payloads[1].Title)
	assert.Equal(t, "success", payloads[1].Style)
	assert.Equal(t, int64(8000), payloads[1].VisibilityMs)

	select {
	case <-signals:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an order refresh signal from the relayed event")
	}
}

func TestNotificationsStream_UpstreamRejectionClosesRelay(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer upstream.Close()

	backend := credential.NewMemoryBackend()
	store, err := credential.NewStore(credential.StoreOptions{Backend: backend})
	require.NoError(t, err)
	require.NoError(t, backend.Save(context.Background(), domainauth.Credential{
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	h := &AdminHandlers{Store: store, UpstreamBaseURL: upstream.URL}
	edge := httptest.NewServer(http.HandlerFunc(h.NotificationsStream))
	defer edge.Close()

	res, err := http.Get(edge.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	// Headers were already streamed; the relay closes without delivering
	// any alert frames.
	body := make([]byte, 256)
	n, _ := res.Body.Read(body)
	assert.NotContains(t, string(body[:n]), "event: alert")
}
