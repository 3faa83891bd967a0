package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
	"github.com/polkiloo/tgmarket/internal/storage/memory"
)

type wakeCounter struct {
	n atomic.Int32
}

func (w *wakeCounter) Wake() { w.n.Add(1) }

func (w *wakeCounter) count() int { return int(w.n.Load()) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fixture struct {
	store     *memory.Store
	waker     *wakeCounter
	flow      *OrderFlow
	proposals *ProposalService
	ledger    *Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	waker := &wakeCounter{}
	logger := discardLogger()
	return &fixture{
		store:     store,
		waker:     waker,
		flow:      NewOrderFlow(store, store, waker, logger),
		proposals: NewProposalService(store, store, waker, logger),
		ledger:    NewLedger(store.Ledger()),
	}
}

func (f *fixture) user(t *testing.T, login string) int64 {
	t.Helper()
	u, err := f.store.Users().Create(context.Background(), login, "hash", 0)
	if err != nil {
		t.Fatalf("create user %s: %v", login, err)
	}
	return u.ID
}

func (f *fixture) fund(t *testing.T, userID, amount int64) {
	t.Helper()
	if err := f.ledger.Deposit(context.Background(), userID, amount, "test"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
}

func (f *fixture) service(t *testing.T, providerID, price, minPrice int64) *model.Service {
	t.Helper()
	s := &model.Service{ProviderID: providerID, Title: "logo design", Price: price, MinPrice: minPrice, Active: true}
	if err := f.store.Services().Create(context.Background(), s); err != nil {
		t.Fatalf("create service: %v", err)
	}
	return s
}

func (f *fixture) balance(t *testing.T, userID int64) model.Balance {
	t.Helper()
	b, err := f.ledger.Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return b
}

func (f *fixture) order(t *testing.T, clientID int64, serviceID string) *model.Order {
	t.Helper()
	o, err := f.flow.Create(context.Background(), CreateOrderInput{ClientID: clientID, ServiceID: serviceID})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func (f *fixture) step(t *testing.T, orderID string, actor model.Actor, action model.Action) *model.Order {
	t.Helper()
	o, err := f.flow.Transition(context.Background(), orderID, actor, action, TransitionPayload{})
	if err != nil {
		t.Fatalf("%s: %v", action, err)
	}
	return o
}

func (f *fixture) entryKinds(t *testing.T, orderID string) []model.EntryKind {
	t.Helper()
	entries, err := f.store.Ledger().EntriesByOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	kinds := make([]model.EntryKind, 0, len(entries))
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// barrierFactory makes racing callers read the order before any of them
// writes, which forces the conditional update to decide the winner.
type barrierFactory struct {
	repository.Factory
	barrier *sync.WaitGroup
}

func (b barrierFactory) Orders() repository.OrderRepository {
	return barrierOrders{OrderRepository: b.Factory.Orders(), barrier: b.barrier}
}

type barrierOrders struct {
	repository.OrderRepository
	barrier *sync.WaitGroup
}

func (o barrierOrders) Get(ctx context.Context, id string) (*model.Order, error) {
	order, err := o.OrderRepository.Get(ctx, id)
	o.barrier.Done()
	o.barrier.Wait()
	return order, err
}
