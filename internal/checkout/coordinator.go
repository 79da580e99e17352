package checkout

import (
	"context"
	"fmt"
	"log"
	"sync"

	"storefront/internal/cart"
)

// State names the coordinator's position in the two-step checkout protocol.
type State string

const (
	StateIdle            State = "idle"
	StatePlacing         State = "placing"
	StateAwaitingPayment State = "awaiting_payment"
	StatePaying          State = "paying"
	StateCompleted       State = "completed"
	StateAbandoned       State = "abandoned"
)

// InFlight reports whether a remote request is outstanding for this state.
func (s State) InFlight() bool {
	return s == StatePlacing || s == StatePaying
}

// Coordinator drives order creation and payment confirmation against the
// remote order store. It owns no durable state: the cart store is the source
// of truth for contents, and the remote store for orders. At most one remote
// request is in flight at a time.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	orderID  string
	cart     *cart.Store
	orders   OrderService
	sessions SessionProvider
}

func NewCoordinator(store *cart.Store, orders OrderService, sessions SessionProvider) *Coordinator {
	return &Coordinator{
		state:    StateIdle,
		cart:     store,
		orders:   orders,
		sessions: sessions,
	}
}

// State returns the current protocol state.
func (co *Coordinator) State() State {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.state
}

// PendingOrderID returns the order captured at creation, or empty when no
// order awaits payment.
func (co *Coordinator) PendingOrderID() string {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.orderID
}

// PlaceOrder snapshots the cart, submits it to the order store, and on
// success clears the cart and captures the new order id. The cart is cleared
// only after the store confirms creation; any failure leaves it untouched so
// the user loses nothing and may retry. Starting a new checkout while a
// previous order awaits payment abandons that order client-side.
func (co *Coordinator) PlaceOrder(ctx context.Context) (string, error) {
	co.mu.Lock()
	if co.state.InFlight() {
		co.mu.Unlock()
		return "", ErrBusy
	}

	session := co.sessions.Current(ctx)
	if session == nil {
		co.mu.Unlock()
		return "", ErrUnauthenticated
	}

	items := co.cart.Items()
	if len(items) == 0 {
		co.mu.Unlock()
		return "", ErrEmptyCart
	}

	co.state = StatePlacing
	co.orderID = ""
	co.mu.Unlock()

	payload, err := buildPayload(items, co.cart.TotalPrice().InexactFloat64())
	if err != nil {
		co.setState(StateIdle)
		return "", err
	}

	order, err := co.orders.CreateOrder(ctx, session.AccessToken, payload)
	if err != nil {
		log.Println("[CHECKOUT] [ERROR] order creation failed:", err)
		co.setState(StateIdle)
		return "", err
	}

	co.cart.Clear()

	co.mu.Lock()
	co.orderID = order.ID
	co.state = StateAwaitingPayment
	co.mu.Unlock()

	log.Println("[CHECKOUT] [INFO] order created:", order.ID)
	return order.ID, nil
}

// ConfirmPayment advances the captured order to paid. It is only reachable
// from AwaitingPayment with a matching order id. A failure returns the
// coordinator to AwaitingPayment so confirmation can be retried without
// re-creating the order; the remote store treats a repeat confirmation of an
// already-paid order as success, and so does this method.
func (co *Coordinator) ConfirmPayment(ctx context.Context, orderID string) error {
	co.mu.Lock()
	if co.state.InFlight() {
		co.mu.Unlock()
		return ErrBusy
	}
	if co.state != StateAwaitingPayment || orderID == "" || orderID != co.orderID {
		co.mu.Unlock()
		return ErrNoPendingOrder
	}
	co.state = StatePaying
	co.mu.Unlock()

	session := co.sessions.Current(ctx)
	if session == nil {
		co.setState(StateAwaitingPayment)
		return ErrUnauthenticated
	}

	if _, err := co.orders.MarkOrderPaid(ctx, session.AccessToken, orderID); err != nil {
		log.Println("[CHECKOUT] [ERROR] payment confirmation failed:", err)
		co.setState(StateAwaitingPayment)
		return err
	}

	co.setState(StateCompleted)
	log.Println("[CHECKOUT] [INFO] order paid:", orderID)
	return nil
}

// Abandon discards the pending order id client-side. The remote order stays
// pending; nothing cancels it.
func (co *Coordinator) Abandon() {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.state != StateAwaitingPayment {
		return
	}
	log.Println("[CHECKOUT] [INFO] order abandoned:", co.orderID)
	co.orderID = ""
	co.state = StateAbandoned
}

func (co *Coordinator) setState(s State) {
	co.mu.Lock()
	co.state = s
	co.mu.Unlock()
}

func buildPayload(items []cart.LineItem, total float64) (CreateOrderRequest, error) {
	products := make([]OrderProduct, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return CreateOrderRequest{}, fmt.Errorf("%w: bad line item %q", ErrValidationFailed, item.ProductID)
		}
		products = append(products, OrderProduct{
			ID:       item.ProductID,
			Name:     item.Name,
			Price:    item.UnitPrice.InexactFloat64(),
			Image:    item.ImageRef,
			Quantity: item.Quantity,
		})
	}
	return CreateOrderRequest{Products: products, TotalAmount: total}, nil
}
