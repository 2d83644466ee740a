package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectSink struct {
	mu     sync.Mutex
	alerts []Alert
}

func (s *collectSink) Show(alert Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
}

func (s *collectSink) all() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.alerts...)
}

// serveStream runs a channel against a server that writes the given SSE
// frames and then closes the stream.
func serveStream(t *testing.T, frames string, sink AlertSink, b *Broadcaster) error {
	t.Helper()

	var gotToken, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("token")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(frames))
	}))
	defer srv.Close()

	ch, err := NewChannel(ChannelOptions{
		BaseURL:     srv.URL,
		Token:       "tok-stream",
		Alerts:      sink,
		Broadcaster: b,
	})
	require.NoError(t, err)

	runErr := ch.Run(context.Background())

	assert.Equal(t, "tok-stream", gotToken, "credential must travel as a query parameter")
	assert.Equal(t, "text/event-stream", gotAccept)
	return runErr
}

func TestChannel_ConnectedAlertIsOneTime(t *testing.T) {
	sink := &collectSink{}
	err := serveStream(t, "event: connected\ndata: ok\n\nevent: connected\ndata: ok\n\n", sink, nil)
	require.NoError(t, err)

	alerts := sink.all()
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertInfo, alerts[0].Style)
}

func TestChannel_NewOrderAlertsAndSignalsExactlyOnce(t *testing.T) {
	sink := &collectSink{}
	b := NewBroadcaster()
	unsub, signals := b.Subscribe(TopicOrders)
	defer unsub()

	frames := "event: notification\ndata: {\"title\":\"New order\",\"message\":\"#1042\",\"type\":\"new-order\"}\n\n"
	require.NoError(t, serveStream(t, frames, sink, b))

	alerts := sink.all()
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertSuccess, alerts[0].Style)
	assert.Equal(t, newOrderVisibility, alerts[0].Visibility)
	assert.Equal(t, "New order", alerts[0].Title)

	select {
	case <-signals:
	default:
		t.Fatal("expected exactly one broadcast signal")
	}
	select {
	case <-signals:
		t.Fatal("unexpected second broadcast signal")
	default:
	}
}

func TestChannel_UnparseablePayloadIsSwallowed(t *testing.T) {
	sink := &collectSink{}
	b := NewBroadcaster()
	unsub, signals := b.Subscribe(TopicOrders)
	defer unsub()

	frames := "event: notification\ndata: {not json\n\n"
	require.NoError(t, serveStream(t, frames, sink, b))

	assert.Empty(t, sink.all())
	select {
	case <-signals:
		t.Fatal("unparseable payload must not signal")
	default:
	}
}

func TestChannel_DispatchPolicyByType(t *testing.T) {
	cases := []struct {
		eventType      string
		wantStyle      AlertStyle
		wantVisibility time.Duration
	}{
		{"order-status-changed", AlertInfo, baseVisibility},
		{"system", AlertInfo, baseVisibility},
		{"delivery-started", AlertSuccess, baseVisibility},
		{"stock-low", AlertWarning, stockLowVisibility},
		{"new-order", AlertSuccess, newOrderVisibility},
		{"flash-sale", AlertInfo, baseVisibility}, // unrecognized: neutral fallback
	}

	for _, tc := range cases {
		t.Run(tc.eventType, func(t *testing.T) {
			sink := &collectSink{}
			frames := "event: notification\ndata: {\"title\":\"t\",\"message\":\"m\",\"type\":\"" + tc.eventType + "\"}\n\n"
			require.NoError(t, serveStream(t, frames, sink, NewBroadcaster()))

			alerts := sink.all()
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.wantStyle, alerts[0].Style)
			assert.Equal(t, tc.wantVisibility, alerts[0].Visibility)
		})
	}
}

func TestChannel_OnlyNewOrderSignals(t *testing.T) {
	sink := &collectSink{}
	b := NewBroadcaster()
	unsub, signals := b.Subscribe(TopicOrders)
	defer unsub()

	frames := "event: notification\ndata: {\"title\":\"t\",\"message\":\"m\",\"type\":\"stock-low\"}\n\n"
	require.NoError(t, serveStream(t, frames, sink, b))

	select {
	case <-signals:
		t.Fatal("only new-order events may signal the orders topic")
	default:
	}
}

func TestChannel_RejectedHandshakeIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	ch, err := NewChannel(ChannelOptions{BaseURL: srv.URL, Token: "tok"})
	require.NoError(t, err)

	assert.Error(t, ch.Run(context.Background()))
}

func TestChannel_CancellationIsClean(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: connected\ndata: ok\n\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ch, err := NewChannel(ChannelOptions{BaseURL: srv.URL, Token: "tok", Alerts: &collectSink{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	<-started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close on cancellation")
	}
}

func TestChannel_StripsBearerPrefixFromToken(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("token")
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer srv.Close()

	ch, err := NewChannel(ChannelOptions{BaseURL: srv.URL, Token: "Bearer tok-9"})
	require.NoError(t, err)
	require.NoError(t, ch.Run(context.Background()))

	assert.Equal(t, "tok-9", gotToken)
}

func TestNewChannel_Validation(t *testing.T) {
	_, err := NewChannel(ChannelOptions{Token: "tok"})
	assert.Error(t, err)

	_, err = NewChannel(ChannelOptions{BaseURL: "http://upstream"})
	assert.Error(t, err)
}
