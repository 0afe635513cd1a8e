// Package cartsync owns the one mutable cart of a storefront session.
// It arbitrates between the remote commerce backend (authoritative), the
// durable local reference slot, and the best-effort per-user mirror.
package cartsync

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/repository/usercart"
)

type remoteCart interface {
	CreateCart(ctx context.Context, lines []domain.LineInput) (*domain.CartSnapshot, error)
	GetCart(ctx context.Context, cartID string) (*domain.CartSnapshot, error)
	AddLine(ctx context.Context, cartID, merchandiseID string, quantity int) (*domain.CartSnapshot, error)
	UpdateLine(ctx context.Context, cartID, lineID string, quantity int) (*domain.CartSnapshot, error)
	RemoveLine(ctx context.Context, cartID, lineID string) (*domain.CartSnapshot, error)
}

type refCache interface {
	Get() string
	Set(ref string) error
}

type mirrorStore interface {
	Fetch(ctx context.Context, userID string) (*usercart.Record, error)
	Upsert(ctx context.Context, userID, cartRef string, snapshot domain.CartSnapshot) error
}

// Generic failure messages. Backend-validated rejections surface their
// own message instead; transport details stay in the log.
const (
	msgCreateFailed  = "failed to create cart"
	msgAddFailed     = "failed to add item to cart"
	msgUpdateFailed  = "failed to update item quantity"
	msgRemoveFailed  = "failed to remove item"
	msgRefreshFailed = "failed to refresh cart"
)

const mirrorTimeout = 5 * time.Second

// Engine is the cart synchronization engine. Mutating operations are
// serialized through opMu, so a slow earlier response can never
// overwrite the state a later operation applied. Reads only take the
// state mutex and stay responsive while a mutation is in flight.
type Engine struct {
	remote remoteCart
	cache  refCache
	mirror mirrorStore
	logger *log.Logger
	userID string

	opMu sync.Mutex

	mu           sync.Mutex
	snapshot     *domain.CartSnapshot
	errMsg       string
	loading      bool
	initializing bool
	closed       bool

	mirrors sync.WaitGroup
}

// New builds an Engine for one session. userID may be empty for an
// anonymous session; the mirror store is then skipped silently.
func New(remote remoteCart, cache refCache, mirror mirrorStore, userID string, logger *log.Logger) *Engine {
	return &Engine{
		remote: remote,
		cache:  cache,
		mirror: mirror,
		userID: userID,
		logger: logger,
	}
}

// Initialize recovers a cart reference, preferring the user-scoped
// mirror over the local slot, and hydrates from the backend. It is
// meant to run once at session start; failures surface only through
// Err since there is no caller to hand a boolean to.
func (e *Engine) Initialize(ctx context.Context) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.initializing = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.initializing = false
		e.mu.Unlock()
	}()

	rec, err := e.mirror.Fetch(ctx, e.userID)
	switch {
	case err == nil && rec != nil && rec.ShopifyCartID != "":
		// The user-scoped reference wins over the local slot; no
		// reconciliation between the two candidates.
		if err := e.cache.Set(rec.ShopifyCartID); err != nil {
			e.logger.Printf("persist recovered cart ref: %v", err)
		}
		e.hydrate(ctx, rec.ShopifyCartID)
		return
	case err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrUnauthenticated):
		e.logger.Printf("fetch user cart: %v", err)
	}

	if ref := e.cache.Get(); ref != "" {
		e.hydrate(ctx, ref)
	}
}

// AddToCart adds quantity units of a variant, creating the remote cart
// first when no reference exists yet. Returns false and sets Err on
// failure; the current snapshot is never disturbed by a failed call.
func (e *Engine) AddToCart(ctx context.Context, merchandiseID string, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()
	if !e.begin() {
		return false
	}
	defer e.end()

	ref := e.currentRef()
	if ref == "" {
		created, err := e.remote.CreateCart(ctx, nil)
		if err != nil {
			e.fail(err, msgCreateFailed)
			e.logger.Printf("create cart: %v", err)
			return false
		}
		e.apply(created)
		if err := e.cache.Set(created.ID); err != nil {
			e.logger.Printf("persist cart ref: %v", err)
		}
		ref = created.ID
	}

	snap, err := e.remote.AddLine(ctx, ref, merchandiseID, quantity)
	if err != nil {
		e.fail(err, msgAddFailed)
		e.logger.Printf("add line: %v", err)
		return false
	}
	e.commit(snap)
	return true
}

// UpdateQuantity sets a line to quantity; zero routes to the removal
// path. Returns false when no cart reference exists.
func (e *Engine) UpdateQuantity(ctx context.Context, lineID string, quantity int) bool {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	ref := e.currentRef()
	if ref == "" {
		return false
	}
	if !e.begin() {
		return false
	}
	defer e.end()

	var snap *domain.CartSnapshot
	var err error
	if quantity == 0 {
		snap, err = e.remote.RemoveLine(ctx, ref, lineID)
	} else {
		snap, err = e.remote.UpdateLine(ctx, ref, lineID, quantity)
	}
	if err != nil {
		e.fail(err, msgUpdateFailed)
		e.logger.Printf("update line: %v", err)
		return false
	}
	e.commit(snap)
	return true
}

// RemoveItem deletes a line from the cart.
func (e *Engine) RemoveItem(ctx context.Context, lineID string) bool {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	ref := e.currentRef()
	if ref == "" {
		return false
	}
	if !e.begin() {
		return false
	}
	defer e.end()

	snap, err := e.remote.RemoveLine(ctx, ref, lineID)
	if err != nil {
		e.fail(err, msgRemoveFailed)
		e.logger.Printf("remove line: %v", err)
		return false
	}
	e.commit(snap)
	return true
}

// ClearCart wipes the in-memory snapshot and the local reference slot.
// The user mirror is left alone; it is only ever overwritten by the
// next successful mutation.
func (e *Engine) ClearCart() {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.snapshot = nil
	e.errMsg = ""
	e.mu.Unlock()

	if err := e.cache.Set(""); err != nil {
		e.logger.Printf("clear cart ref: %v", err)
	}
}

// RefreshCart re-fetches the current reference. A cart the backend no
// longer knows clears local state silently; a transport failure keeps
// the reference for a later retry.
func (e *Engine) RefreshCart(ctx context.Context) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	ref := e.currentRef()
	if ref == "" {
		return
	}
	if !e.begin() {
		return
	}
	defer e.end()

	e.hydrate(ctx, ref)
}

// Close disposes the engine. It queues behind any operation in flight,
// so that operation commits in full (snapshot, local slot, mirror
// dispatch) before the disposed mark lands and the mirror drain below
// sees every dispatched write. Operations arriving after Close return
// false without reaching the collaborators.
func (e *Engine) Close() {
	e.opMu.Lock()
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.opMu.Unlock()
	e.mirrors.Wait()
}

// Snapshot returns a copy of the current cart, or nil when empty.
func (e *Engine) Snapshot() *domain.CartSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSnapshot(e.snapshot)
}

// TotalItems is the backend-reported total quantity, 0 when no cart.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return 0
	}
	return e.snapshot.TotalQuantity
}

// Subtotal is the parsed decimal of the cart total, 0 when no cart.
func (e *Engine) Subtotal() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return 0
	}
	v, err := strconv.ParseFloat(e.snapshot.TotalAmount.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

// Err returns the message of the last failed operation, "" when the
// last operation succeeded.
func (e *Engine) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

func (e *Engine) IsInitializing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initializing
}

// hydrate fetches ref and applies the result per the hydration rules.
// Callers hold opMu.
func (e *Engine) hydrate(ctx context.Context, ref string) {
	snap, err := e.remote.GetCart(ctx, ref)
	switch {
	case err == nil:
		e.apply(snap)
	case errors.Is(err, domain.ErrNotFound):
		// Stale reference: recover silently to an empty cart.
		if cerr := e.cache.Set(""); cerr != nil {
			e.logger.Printf("clear stale cart ref: %v", cerr)
		}
		e.mu.Lock()
		e.snapshot = nil
		e.errMsg = ""
		e.mu.Unlock()
	default:
		// Possibly transient; keep the reference.
		e.setErr(msgRefreshFailed)
		e.logger.Printf("fetch cart %s: %v", ref, err)
	}
}

// begin marks the engine busy and clears the previous error. It reports
// false when the engine has been disposed. Callers hold opMu.
func (e *Engine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.loading = true
	e.errMsg = ""
	return true
}

func (e *Engine) end() {
	e.mu.Lock()
	e.loading = false
	e.mu.Unlock()
}

// currentRef resolves the reference for the next backend call: the live
// snapshot first, then the durable slot.
func (e *Engine) currentRef() string {
	e.mu.Lock()
	if e.snapshot != nil {
		id := e.snapshot.ID
		e.mu.Unlock()
		return id
	}
	e.mu.Unlock()
	return e.cache.Get()
}

// apply replaces the snapshot wholesale with the backend's response.
func (e *Engine) apply(snap *domain.CartSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.snapshot = snap
}

// commit applies a successful mutation result, persists the reference
// locally and dispatches the best-effort mirror write.
func (e *Engine) commit(snap *domain.CartSnapshot) {
	e.apply(snap)
	if err := e.cache.Set(snap.ID); err != nil {
		e.logger.Printf("persist cart ref: %v", err)
	}
	e.mirrorAsync(snap)
}

// mirrorAsync copies the snapshot to the user store without blocking
// the operation that produced it. Failures are logged and nothing else.
func (e *Engine) mirrorAsync(snap *domain.CartSnapshot) {
	copied := cloneSnapshot(snap)
	e.mirrors.Add(1)
	go func() {
		defer e.mirrors.Done()
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := e.mirror.Upsert(ctx, e.userID, copied.ID, *copied); err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return
			}
			e.logger.Printf("mirror cart to user store: %v", err)
		}
	}()
}

// fail records the operation's error: backend-validated rejections
// verbatim, everything else as the generic message.
func (e *Engine) fail(err error, generic string) {
	if msg, ok := domain.IsUserError(err); ok {
		e.setErr(msg)
		return
	}
	e.setErr(generic)
}

func (e *Engine) setErr(msg string) {
	e.mu.Lock()
	e.errMsg = msg
	e.mu.Unlock()
}

func cloneSnapshot(snap *domain.CartSnapshot) *domain.CartSnapshot {
	if snap == nil {
		return nil
	}
	out := *snap
	out.Lines = append([]domain.CartLine(nil), snap.Lines...)
	return &out
}
