package battle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-battle/internal/battle"
	"quiz-battle/internal/domain"
)

// fakeWallet mimics the backend's guarded decrement.
type fakeWallet struct {
	mu      sync.Mutex
	balance int
	calls   int
	fail    error
}

func (w *fakeWallet) Consume(_ context.Context, _ string, amount int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.fail != nil {
		return w.balance, w.fail
	}
	if w.balance < amount {
		return w.balance, domain.ErrInsufficientBalance
	}
	w.balance -= amount
	return w.balance, nil
}

func (w *fakeWallet) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

func TestLedgerUseSpendsAndMirrors(t *testing.T) {
	ctx := context.Background()
	wallet := &fakeWallet{balance: 10}
	ledger := battle.NewLedger(wallet, "p1", 10)

	effect, err := ledger.Use(ctx, domain.BoosterExtra20)
	if err != nil {
		t.Fatalf("use failed: %v", err)
	}
	if effect.ExtraTime != 20*time.Second {
		t.Fatalf("expected 20s effect, got %v", effect.ExtraTime)
	}
	if ledger.Balance() != 8 {
		t.Fatalf("expected mirrored balance 8, got %d", ledger.Balance())
	}
	if used := ledger.UsedTiers(); len(used) != 1 || used[0] != "extra20" {
		t.Fatalf("expected extra20 marked used, got %v", used)
	}
}

func TestLedgerRejectsDuplicateTierPerQuestion(t *testing.T) {
	ctx := context.Background()
	wallet := &fakeWallet{balance: 10}
	ledger := battle.NewLedger(wallet, "p1", 10)

	if _, err := ledger.Use(ctx, domain.BoosterExtra10); err != nil {
		t.Fatalf("first use failed: %v", err)
	}
	if _, err := ledger.Use(ctx, domain.BoosterExtra10); err != domain.ErrBoosterAlreadyUsed {
		t.Fatalf("expected already-used error, got %v", err)
	}
	if wallet.Calls() != 1 {
		t.Fatalf("rejected use reached the wallet")
	}

	// A different tier on the same question is fine.
	if _, err := ledger.Use(ctx, domain.BoosterExtra20); err != nil {
		t.Fatalf("second tier failed: %v", err)
	}
}

func TestLedgerRejectsInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	wallet := &fakeWallet{balance: 5}
	ledger := battle.NewLedger(wallet, "p1", 5)

	if _, err := ledger.Use(ctx, domain.BoosterReveal); err != domain.ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if wallet.Calls() != 0 {
		t.Fatalf("mirror check should short-circuit before the wallet")
	}
	if ledger.Balance() != 5 {
		t.Fatalf("balance changed on rejected use: %d", ledger.Balance())
	}
}

func TestLedgerRejectsUnknownTier(t *testing.T) {
	ledger := battle.NewLedger(&fakeWallet{balance: 10}, "p1", 10)
	if _, err := ledger.Use(context.Background(), "mega99"); err != domain.ErrUnknownBooster {
		t.Fatalf("expected unknown booster error, got %v", err)
	}
}

func TestLedgerWalletFailureLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")
	wallet := &fakeWallet{balance: 10, fail: boom}
	ledger := battle.NewLedger(wallet, "p1", 10)

	if _, err := ledger.Use(ctx, domain.BoosterFreeze); err != boom {
		t.Fatalf("expected wallet error, got %v", err)
	}
	if ledger.Balance() != 10 {
		t.Fatalf("mirror updated despite wallet failure: %d", ledger.Balance())
	}
	if ledger.UsedTiers() != nil {
		t.Fatalf("tier marked used despite wallet failure")
	}

	// The tier stays spendable once the backend recovers.
	wallet.fail = nil
	if _, err := ledger.Use(ctx, domain.BoosterFreeze); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
}

func TestLedgerResetQuestionFlags(t *testing.T) {
	ctx := context.Background()
	wallet := &fakeWallet{balance: 10}
	ledger := battle.NewLedger(wallet, "p1", 10)

	if _, err := ledger.Use(ctx, domain.BoosterExtra10); err != nil {
		t.Fatalf("use failed: %v", err)
	}
	ledger.ResetQuestionFlags()

	if ledger.UsedTiers() != nil {
		t.Fatalf("flags survived reset: %v", ledger.UsedTiers())
	}
	// Same tier usable on the next question; the balance carries over.
	if _, err := ledger.Use(ctx, domain.BoosterExtra10); err != nil {
		t.Fatalf("use after reset failed: %v", err)
	}
	if ledger.Balance() != 8 {
		t.Fatalf("expected balance 8 after two spends, got %d", ledger.Balance())
	}
}
