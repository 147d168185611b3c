// Package cart persists the shopping cart in a port.Store.
//
// The Ledger keeps no copy of the cart: every call reads the stored value,
// so all readers of the same store see the same cart. Mutations are
// serialized inside the process and committed with CompareAndSwap against
// the value they were computed from; a mutation that loses a race with
// another process is recomputed from the fresh value. Each mutation is
// therefore atomic with respect to every other writer of the store.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/storefront-client/internal/domain"
	"github.com/nikolayk812/storefront-client/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	CartKey = "cart"

	defaultMaxAttempts = 8
)

var (
	ErrConflict       = errors.New("cart changed concurrently")
	ErrInvalidProduct = errors.New("invalid product")
)

// Listener receives the cart committed by a mutation.
type Listener func(cart domain.Cart)

type Ledger struct {
	store       port.Store
	logger      *zap.Logger
	maxAttempts int

	writeMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []Listener
}

type Option func(*Ledger)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithMaxAttempts bounds how often a mutation is recomputed after losing a
// compare-and-swap race.
func WithMaxAttempts(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

func NewLedger(store port.Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}

	l := &Ledger{
		store:       store,
		logger:      zap.NewNop(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// OnChange registers fn to run after every successful mutation. fn runs
// while the ledger holds its write lock and must not mutate the ledger.
func (l *Ledger) OnChange(fn Listener) {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()

	l.listeners = append(l.listeners, fn)
}

// Cart returns the persisted cart, empty when nothing is stored.
func (l *Ledger) Cart(ctx context.Context) (domain.Cart, error) {
	cart, _, err := l.load(ctx)
	return cart, err
}

func (l *Ledger) Total(ctx context.Context) (decimal.Decimal, error) {
	cart, err := l.Cart(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total(), nil
}

func (l *Ledger) ItemCount(ctx context.Context) (int, error) {
	cart, err := l.Cart(ctx)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}

func (l *Ledger) AddItem(ctx context.Context, p domain.Product) error {
	if p.ID == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidProduct)
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: price %s is negative", ErrInvalidProduct, p.UnitPrice)
	}

	return l.mutate(ctx, "add", func(cart domain.Cart) (domain.Cart, bool) {
		return cart.Add(p), true
	})
}

func (l *Ledger) RemoveItem(ctx context.Context, id domain.ProductID) error {
	return l.mutate(ctx, "remove", func(cart domain.Cart) (domain.Cart, bool) {
		return cart.Remove(id), true
	})
}

// UpdateQuantity sets the quantity of an existing line item. A quantity <= 0
// removes it; an unknown id leaves the cart untouched.
func (l *Ledger) UpdateQuantity(ctx context.Context, id domain.ProductID, quantity int) error {
	if quantity <= 0 {
		return l.RemoveItem(ctx, id)
	}

	return l.mutate(ctx, "update_quantity", func(cart domain.Cart) (domain.Cart, bool) {
		return cart.SetQuantity(id, quantity)
	})
}

// Clear deletes the persisted cart. It does not read the stored value, so it
// also recovers a cart that no longer decodes.
func (l *Ledger) Clear(ctx context.Context) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if err := l.store.Remove(ctx, CartKey); err != nil {
		return fmt.Errorf("store.Remove: %w", err)
	}

	l.notify(domain.Cart{})
	return nil
}

// mutate runs fn against the stored cart and commits its result with
// CompareAndSwap. changed=false skips the write entirely.
func (l *Ledger) mutate(ctx context.Context, op string, fn func(domain.Cart) (next domain.Cart, changed bool)) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		cart, raw, err := l.load(ctx)
		if err != nil {
			return err
		}

		next, changed := fn(cart)
		if !changed {
			return nil
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		encoded := string(data)

		swapped, err := l.store.CompareAndSwap(ctx, CartKey, raw, &encoded)
		if err != nil {
			return fmt.Errorf("store.CompareAndSwap: %w", err)
		}
		if swapped {
			l.notify(next)
			return nil
		}

		l.logger.Debug("cart write lost a race, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt))
	}

	l.logger.Warn("cart write gave up",
		zap.String("op", op),
		zap.Int("attempts", l.maxAttempts))
	return fmt.Errorf("%s: %w", op, ErrConflict)
}

// load returns the decoded cart and the raw stored value it came from
// (nil when the key is absent).
func (l *Ledger) load(ctx context.Context) (domain.Cart, *string, error) {
	value, ok, err := l.store.Get(ctx, CartKey)
	if err != nil {
		return domain.Cart{}, nil, fmt.Errorf("store.Get: %w", err)
	}
	if !ok {
		return domain.Cart{}, nil, nil
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(value), &cart); err != nil {
		return domain.Cart{}, nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return cart, &value, nil
}

func (l *Ledger) notify(cart domain.Cart) {
	l.listenersMu.RLock()
	listeners := l.listeners
	l.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(cart)
	}
}
