// Package memory implements the domain repositories in process memory.
// Transactions stage changes on a copy of the dataset and swap it in on
// success, so a failed transaction leaves no trace.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

type chatKey [2]int64

type dataset struct {
	users        map[int64]model.User
	logins       map[string]int64
	lastUserID   int64
	services     map[string]model.Service
	orders       map[string]model.Order
	entries      []model.LedgerEntry
	balances     map[int64]model.Balance
	proposals    map[string]model.PriceProposal
	reviews      map[string]model.Review
	outbox       map[string]model.Notification
	chats        map[chatKey]string
	messages     map[string][]model.ChatMessage
	notifiedMsgs map[string]struct{}
}

func newDataset() *dataset {
	return &dataset{
		users:        make(map[int64]model.User),
		logins:       make(map[string]int64),
		services:     make(map[string]model.Service),
		orders:       make(map[string]model.Order),
		balances:     make(map[int64]model.Balance),
		proposals:    make(map[string]model.PriceProposal),
		reviews:      make(map[string]model.Review),
		outbox:       make(map[string]model.Notification),
		chats:        make(map[chatKey]string),
		messages:     make(map[string][]model.ChatMessage),
		notifiedMsgs: make(map[string]struct{}),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	c.lastUserID = d.lastUserID
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.logins {
		c.logins[k] = v
	}
	for k, v := range d.services {
		c.services[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	c.entries = append(make([]model.LedgerEntry, 0, len(d.entries)), d.entries...)
	for k, v := range d.balances {
		c.balances[k] = v
	}
	for k, v := range d.proposals {
		c.proposals[k] = v
	}
	for k, v := range d.reviews {
		c.reviews[k] = v
	}
	for k, v := range d.outbox {
		c.outbox[k] = v
	}
	for k, v := range d.chats {
		c.chats[k] = v
	}
	for k, v := range d.messages {
		c.messages[k] = append([]model.ChatMessage(nil), v...)
	}
	for k := range d.notifiedMsgs {
		c.notifiedMsgs[k] = struct{}{}
	}
	return c
}

// Store is an in-memory repository factory and transactor.
type Store struct {
	mu   sync.Mutex
	data *dataset
	root *view

	// Now returns the store clock. Tests may replace it.
	Now func() time.Time
}

// New creates an empty store.
func New() *Store {
	s := &Store{data: newDataset(), Now: time.Now}
	s.root = &view{store: s}
	return s
}

// view routes repository calls either to the committed dataset (taking the
// store lock per call) or to the dataset staged by a running transaction.
type view struct {
	store  *Store
	staged *dataset
}

func (v *view) do(fn func(d *dataset) error) error {
	if v.staged != nil {
		return fn(v.staged)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

func (v *view) now() time.Time {
	return v.store.Now().UTC()
}

// WithinTransaction runs fn on a staged copy and commits it when fn succeeds.
// Transactions are serialized. fn must only use the factory it receives.
func (s *Store) WithinTransaction(ctx context.Context, fn func(context.Context, repository.Factory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(ctx, &view{store: s, staged: staged}); err != nil {
		return err
	}
	s.data = staged
	return nil
}

func (s *Store) Users() repository.UserRepository                 { return s.root.Users() }
func (s *Store) Services() repository.ServiceRepository           { return s.root.Services() }
func (s *Store) Orders() repository.OrderRepository               { return s.root.Orders() }
func (s *Store) Ledger() repository.LedgerRepository              { return s.root.Ledger() }
func (s *Store) Proposals() repository.ProposalRepository         { return s.root.Proposals() }
func (s *Store) Reviews() repository.ReviewRepository             { return s.root.Reviews() }
func (s *Store) Notifications() repository.NotificationRepository { return s.root.Notifications() }
func (s *Store) Chats() repository.ChatRepository                 { return s.root.Chats() }

func (v *view) Users() repository.UserRepository                 { return &userRepository{v} }
func (v *view) Services() repository.ServiceRepository           { return &serviceRepository{v} }
func (v *view) Orders() repository.OrderRepository               { return &orderRepository{v} }
func (v *view) Ledger() repository.LedgerRepository              { return &ledgerRepository{v} }
func (v *view) Proposals() repository.ProposalRepository         { return &proposalRepository{v} }
func (v *view) Reviews() repository.ReviewRepository             { return &reviewRepository{v} }
func (v *view) Notifications() repository.NotificationRepository { return &notificationRepository{v} }
func (v *view) Chats() repository.ChatRepository                 { return &chatRepository{v} }

func newID() string {
	return uuid.NewString()
}

var (
	_ repository.Factory    = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
	_ repository.Factory    = (*view)(nil)
)
