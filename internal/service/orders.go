package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/target/storefront-edge/internal/gateway"
	"github.com/target/storefront-edge/internal/notify"
)

const ordersPath = "/api/orders"

// Order is one storefront order as listed in the admin view.
type Order struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Customer  string    `json:"customer"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrdersServiceOptions groups dependencies for OrdersService.
type OrdersServiceOptions struct {
	Gateway     *gateway.Client
	Broadcaster *notify.Broadcaster // optional; enables signal-driven cache invalidation
	CacheTTL    time.Duration       // defaults to 30s
	Logger      *slog.Logger
}

// OrdersService lists orders for the admin view. Results are cached for a
// short window; a new-order broadcast signal drops the cache immediately so
// open list views refresh without a dedicated poll.
type OrdersService struct {
	gw       *gateway.Client
	cacheTTL time.Duration
	logger   *slog.Logger

	unsub   func()
	signals <-chan struct{}

	mu        sync.Mutex
	cached    []Order
	fetchedAt time.Time
}

// NewOrdersService constructs an OrdersService. A gateway client is required.
func NewOrdersService(opts OrdersServiceOptions) (*OrdersService, error) {
	if opts.Gateway == nil {
		return nil, errors.New("gateway client is required")
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &OrdersService{
		gw:       opts.Gateway,
		cacheTTL: ttl,
		logger:   logger.With("component", "orders_service"),
	}
	if opts.Broadcaster != nil {
		s.unsub, s.signals = opts.Broadcaster.Subscribe(notify.TopicOrders)
	}
	return s, nil
}

// List returns the current orders, served from cache when fresh.
func (s *OrdersService) List(ctx context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drainSignals()

	if s.cached != nil && time.Since(s.fetchedAt) < s.cacheTTL {
		return s.cached, nil
	}

	var orders []Order
	_, err := s.gw.Do(ctx, ordersPath, gateway.Options{Auth: true, Out: &orders})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	s.cached = orders
	s.fetchedAt = time.Now()
	return orders, nil
}

// drainSignals consumes any pending new-order signal and drops the cache.
// Callers hold s.mu.
func (s *OrdersService) drainSignals() {
	if s.signals == nil {
		return
	}
	select {
	case _, ok := <-s.signals:
		s.cached = nil
		if !ok {
			s.signals = nil
		}
	default:
	}
}

// Close releases the broadcast subscription.
func (s *OrdersService) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}
