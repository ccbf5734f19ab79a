package battle

import (
	"context"
	"sort"

	"quiz-battle/internal/domain"
)

// Wallet is the externally held booster balance. Consume decrements it by
// amount and returns the new balance, failing without side effects when the
// balance cannot cover the amount.
type Wallet interface {
	Consume(ctx context.Context, playerID string, amount int) (int, error)
}

// Ledger tracks booster consumption for one match: a local mirror of the
// external balance plus a used-this-question flag per tier. The mirror is only
// updated after the wallet confirms the decrement, so a failed call never
// leaves a phantom spend. Not self-synchronized; the controller serializes all
// access.
type Ledger struct {
	wallet   Wallet
	playerID string
	balance  int
	used     map[domain.BoosterTier]bool
}

// NewLedger starts a ledger from the balance fetched at match start.
func NewLedger(wallet Wallet, playerID string, balance int) *Ledger {
	return &Ledger{
		wallet:   wallet,
		playerID: playerID,
		balance:  balance,
		used:     make(map[domain.BoosterTier]bool),
	}
}

// Balance is the mirrored external balance.
func (l *Ledger) Balance() int { return l.balance }

// CanUse reports whether a tier is spendable right now.
func (l *Ledger) CanUse(tier domain.BoosterTier) bool {
	effect, ok := domain.BoosterTable[tier]
	if !ok {
		return false
	}
	return !l.used[tier] && l.balance >= effect.Cost
}

// Use spends a tier: flag check, balance check, then the wallet decrement, in
// that order. Only a confirmed decrement marks the tier used and updates the
// mirror. Returns the tier's effect for the caller to apply.
func (l *Ledger) Use(ctx context.Context, tier domain.BoosterTier) (domain.BoosterEffect, error) {
	effect, ok := domain.BoosterTable[tier]
	if !ok {
		return domain.BoosterEffect{}, domain.ErrUnknownBooster
	}
	if l.used[tier] {
		return domain.BoosterEffect{}, domain.ErrBoosterAlreadyUsed
	}
	if l.balance < effect.Cost {
		return domain.BoosterEffect{}, domain.ErrInsufficientBalance
	}

	newBalance, err := l.wallet.Consume(ctx, l.playerID, effect.Cost)
	if err != nil {
		return domain.BoosterEffect{}, err
	}
	l.balance = newBalance
	l.used[tier] = true
	return effect, nil
}

// ResetQuestionFlags clears the per-question used flags. Called by the
// controller exactly once when a new question is presented.
func (l *Ledger) ResetQuestionFlags() {
	for tier := range l.used {
		delete(l.used, tier)
	}
}

// UsedTiers lists the tiers spent on the current question, sorted for stable
// snapshots.
func (l *Ledger) UsedTiers() []string {
	if len(l.used) == 0 {
		return nil
	}
	tiers := make([]string, 0, len(l.used))
	for tier := range l.used {
		tiers = append(tiers, string(tier))
	}
	sort.Strings(tiers)
	return tiers
}
