// Package notify consumes the upstream notification stream for admin
// contexts and turns events into alerts and in-process broadcast signals.
package notify

// EventType classifies a notification event. The enumeration is open at
// the consumption boundary: upstream may add types before the edge learns
// about them, and unrecognized values fall back to a neutral rendering.
type EventType string

const (
	EventOrderStatusChanged EventType = "order-status-changed"
	EventDeliveryStarted    EventType = "delivery-started"
	EventStockLow           EventType = "stock-low"
	EventNewOrder           EventType = "new-order"
	EventSystem             EventType = "system"
)

// Event is one notification pushed by the upstream. Consumed immediately
// and discarded; no history is kept.
type Event struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Type    EventType `json:"type"`
}
