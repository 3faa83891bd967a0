package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
	"github.com/polkiloo/tgmarket/internal/storage/memory"
)

func TestLedgerHoldReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(memory.New().Ledger())

	if err := ledger.Deposit(ctx, 1, 100, "top-up"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := ledger.Hold(ctx, 1, "o-1", 40); err != nil {
			t.Fatalf("hold #%d: %v", i, err)
		}
	}
	b, _ := ledger.Balance(ctx, 1)
	if b.Total != 100 || b.Held != 40 || b.Available() != 60 {
		t.Fatalf("unexpected balance after hold %+v", b)
	}

	for i := 0; i < 2; i++ {
		if err := ledger.Release(ctx, 1, "o-1", 40); err != nil {
			t.Fatalf("release #%d: %v", i, err)
		}
	}
	b, _ = ledger.Balance(ctx, 1)
	if b.Held != 0 || b.Available() != 100 {
		t.Fatalf("unexpected balance after release %+v", b)
	}

	if err := ledger.Settle(ctx, 1, 2, "o-1", 40); !errors.Is(err, domainErrors.ErrEscrowClosed) {
		t.Fatalf("expected ErrEscrowClosed, got %v", err)
	}
}

func TestLedgerSettleMovesFundsOnce(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(memory.New().Ledger())

	_ = ledger.Deposit(ctx, 1, 100, "top-up")
	if err := ledger.Hold(ctx, 1, "o-1", 40); err != nil {
		t.Fatalf("hold: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := ledger.Settle(ctx, 1, 2, "o-1", 40); err != nil {
			t.Fatalf("settle #%d: %v", i, err)
		}
	}

	client, _ := ledger.Balance(ctx, 1)
	provider, _ := ledger.Balance(ctx, 2)
	if client.Total != 60 || client.Held != 0 || client.Available() != 60 {
		t.Fatalf("unexpected client balance %+v", client)
	}
	if provider.Total != 40 || provider.Available() != 40 {
		t.Fatalf("unexpected provider balance %+v", provider)
	}
	if err := ledger.Release(ctx, 1, "o-1", 40); !errors.Is(err, domainErrors.ErrEscrowClosed) {
		t.Fatalf("expected ErrEscrowClosed, got %v", err)
	}
	if _, err := ledger.Reconcile(ctx, 1); err != nil {
		t.Fatalf("reconcile client: %v", err)
	}
	if _, err := ledger.Reconcile(ctx, 2); err != nil {
		t.Fatalf("reconcile provider: %v", err)
	}
}

func TestLedgerGuards(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(memory.New().Ledger())

	if err := ledger.Hold(ctx, 1, "o-1", 0); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := ledger.Deposit(ctx, 1, -5, ""); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := ledger.Hold(ctx, 1, "o-1", 10); !errors.Is(err, domainErrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := ledger.Release(ctx, 1, "o-1", 10); !errors.Is(err, domainErrors.ErrEscrowNotHeld) {
		t.Fatalf("expected ErrEscrowNotHeld, got %v", err)
	}
	entries, _ := ledger.Entries(ctx, 1)
	if len(entries) != 0 {
		t.Fatalf("failed operations must not write entries, got %+v", entries)
	}
}

func TestLedgerEntriesHistory(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(memory.New().Ledger())

	_ = ledger.Deposit(ctx, 1, 100, "top-up")
	_ = ledger.Hold(ctx, 1, "o-1", 30)
	_ = ledger.Release(ctx, 1, "o-1", 30)

	entries, err := ledger.Entries(ctx, 1)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	want := []model.EntryKind{model.EntryDeposit, model.EntryHold, model.EntryRelease}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, k := range want {
		if entries[i].Kind != k {
			t.Fatalf("entry %d: expected %s, got %s", i, k, entries[i].Kind)
		}
	}
	if entries[0].Reference != "top-up" {
		t.Fatalf("expected deposit reference to be kept")
	}
}

type skewedLedger struct {
	repository.LedgerRepository
	skew int64
}

func (s skewedLedger) Balance(ctx context.Context, userID int64) (model.Balance, error) {
	b, err := s.LedgerRepository.Balance(ctx, userID)
	b.Total += s.skew
	return b, err
}

func TestLedgerReconcileReportsDrift(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Ledger()
	_ = NewLedger(repo).Deposit(ctx, 1, 100, "top-up")

	rebuilt, err := NewLedger(skewedLedger{LedgerRepository: repo, skew: 5}).Reconcile(ctx, 1)
	if !errors.Is(err, domainErrors.ErrLedgerDrift) {
		t.Fatalf("expected ErrLedgerDrift, got %v", err)
	}
	if rebuilt.Total != 100 {
		t.Fatalf("expected balance rebuilt from entries, got %+v", rebuilt)
	}
}
