package battle

import (
	"context"
	"log"
	"sync"
	"time"

	"quiz-battle/internal/domain"
)

// Settlement is the external score/inventory backend. All calls are
// best-effort from the controller's perspective: failures are logged, never
// retried, and never block gameplay.
type Settlement interface {
	SubmitScore(ctx context.Context, playerID string, score int) error
	GrantCoins(ctx context.Context, playerID string, amount int) error
	UpdateBestStreak(ctx context.Context, playerID string, streak int) error
}

// Params wires one match's collaborators into a controller.
type Params struct {
	MatchID    string
	PlayerID   string
	Questions  []domain.Question
	Balance    int
	Wallet     Wallet
	Settlement Settlement
	// Reshuffle draws a fresh question set when the current one is exhausted
	// before either life reaches zero. Optional; without it the exhausted set
	// is re-prepared from itself.
	Reshuffle func() []domain.Question
	// OnFinished receives the ids answered during the match once it settles,
	// feeding the answered-question cooldown.
	OnFinished func(answeredIDs []string)
}

// Controller owns a single match's battle state. Every mutation happens under
// one mutex in response to an answer intent, a timer expiry, or a staged
// animation callback; stale callbacks are fenced off by a generation counter
// so nothing scheduled before a reset can touch state after it.
type Controller struct {
	mu  sync.Mutex
	cfg Config

	matchID  string
	playerID string

	questions    []domain.Question
	idx          int
	playerLife   int
	opponentLife int

	score          int
	correctCount   int
	incorrectCount int
	streak         int
	bestStreak     int
	coinsEarned    int

	selected *int
	revealed *int
	resolved bool // answer or timeout already landed for this question

	playerAnim   domain.Animation
	opponentAnim domain.Animation
	phase        domain.Phase
	outcome      domain.Outcome

	questionShownAt time.Time
	answeredIDs     []string
	settled         bool
	gen             int

	timer      *Countdown
	ledger     *Ledger
	settlement Settlement
	reshuffle  func() []domain.Question
	onFinished func([]string)

	now      func() time.Time
	schedule scheduleFunc

	subscribers map[chan domain.Snapshot]struct{}
}

// New builds a controller in the start phase. The question set must be
// non-empty; an empty set is a configuration error, not a playable match.
func New(cfg Config, p Params) (*Controller, error) {
	return NewWithClock(cfg, p, time.Now, time.AfterFunc)
}

// NewWithClock is test-only for deterministic time and scheduling.
func NewWithClock(cfg Config, p Params, now func() time.Time, schedule scheduleFunc) (*Controller, error) {
	if len(p.Questions) == 0 {
		return nil, domain.ErrEmptyQuestionSet
	}
	c := &Controller{
		cfg:          cfg,
		matchID:      p.MatchID,
		playerID:     p.PlayerID,
		questions:    p.Questions,
		playerLife:   cfg.MaxLife,
		opponentLife: cfg.MaxLife,
		playerAnim:   domain.AnimationIdle,
		opponentAnim: domain.AnimationIdle,
		phase:        domain.PhaseStart,
		settlement:   p.Settlement,
		reshuffle:    p.Reshuffle,
		onFinished:   p.OnFinished,
		now:          now,
		schedule:     schedule,
		subscribers:  make(map[chan domain.Snapshot]struct{}),
	}
	c.ledger = NewLedger(p.Wallet, p.PlayerID, p.Balance)
	c.timer = NewCountdownWithClock(c.onTimeout, now, schedule)
	return c, nil
}

// Start enters the playing phase and presents the first question.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhaseStart {
		return
	}
	c.phase = domain.PhasePlaying
	c.questionShownAt = c.now()
	c.timer.Start(c.cfg.QuestionDuration)
	c.broadcastLocked()
}

// SubmitAnswer resolves the player's answer for the current question.
// Duplicate submissions and submissions after timeout are rejected.
func (c *Controller) SubmitAnswer(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhasePlaying {
		return domain.ErrMatchNotActive
	}
	if c.resolved {
		return domain.ErrAnswerAlreadySubmitted
	}

	q := c.questions[c.idx]
	c.resolved = true
	idx := index
	c.selected = &idx
	c.timer.Pause()
	responseTime := c.now().Sub(c.questionShownAt)
	c.answeredIDs = append(c.answeredIDs, q.ID)

	if index == q.CorrectIndex {
		c.resolveCorrectLocked(responseTime)
	} else {
		c.resolveWrongLocked()
	}
	c.broadcastLocked()
	return nil
}

// onTimeout is the countdown's expiry callback. An answer already in flight
// suppresses it; the countdown's single-fire guarantee prevents doubles.
func (c *Controller) onTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhasePlaying || c.resolved {
		return
	}
	c.resolved = true
	c.answeredIDs = append(c.answeredIDs, c.questions[c.idx].ID)
	c.resolveWrongLocked()
	c.broadcastLocked()
}

func (c *Controller) resolveCorrectLocked(responseTime time.Duration) {
	c.correctCount++
	c.score += c.cfg.PointsPerCorrect
	c.coinsEarned += c.cfg.CoinsPerCorrect
	c.streak++
	if c.streak > c.bestStreak {
		c.bestStreak = c.streak
	}
	damage := c.cfg.damageFor(responseTime)

	c.stage(c.cfg.AttackDelay, func() {
		c.playerAnim = domain.AnimationAttack
	})
	c.stage(c.cfg.HitDelay, func() {
		c.opponentAnim = domain.AnimationHit
	})
	c.stage(c.cfg.DamageDelay, func() {
		c.opponentLife = clampLife(c.opponentLife-damage, c.cfg.MaxLife)
		c.playerAnim = domain.AnimationIdle
		c.opponentAnim = domain.AnimationIdle
		c.checkTerminalLocked()
	})
	c.stage(c.cfg.AdvanceDelay, func() {
		c.advanceLocked()
	})
}

func (c *Controller) resolveWrongLocked() {
	c.incorrectCount++
	if c.streak > 0 {
		// Persist the broken streak before it resets; the backend applies a
		// server-side max so lower values are harmless.
		c.persistStreak(c.streak)
		c.streak = 0
	}

	c.stage(c.cfg.AttackDelay, func() {
		c.opponentAnim = domain.AnimationAttack
	})
	c.stage(c.cfg.HitDelay, func() {
		c.playerAnim = domain.AnimationHit
	})
	c.stage(c.cfg.DamageDelay, func() {
		c.playerLife = clampLife(c.playerLife-c.cfg.WrongAnswerDamage, c.cfg.MaxLife)
		c.playerAnim = domain.AnimationIdle
		c.opponentAnim = domain.AnimationIdle
		c.checkTerminalLocked()
	})
	c.stage(c.cfg.AdvanceDelay, func() {
		c.advanceLocked()
	})
}

// stage schedules a state mutation after the given delay. The callback
// re-checks the generation under the lock so a quit, restart, or game over
// issued in the meantime voids it.
func (c *Controller) stage(delay time.Duration, apply func()) {
	gen := c.gen
	c.schedule(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			return
		}
		apply()
		c.broadcastLocked()
	})
}

// checkTerminalLocked runs after every life mutation. Defeat is evaluated
// first: a resolution that zeroes both lives counts as a loss.
func (c *Controller) checkTerminalLocked() {
	if c.phase != domain.PhasePlaying {
		return
	}
	switch {
	case c.playerLife == 0:
		c.finishLocked(domain.OutcomeDefeat)
	case c.opponentLife == 0:
		c.playerAnim = domain.AnimationVictory
		c.finishLocked(domain.OutcomeVictory)
	}
}

func (c *Controller) finishLocked(outcome domain.Outcome) {
	c.gen++ // voids the pending advance
	c.phase = domain.PhaseGameOver
	c.outcome = outcome
	c.timer.Stop()
	c.settleLocked()
}

// settleLocked submits the final score, coins, and any pending best streak
// exactly once, guarded against the terminal condition being observed more
// than once. Coins are additive server-side and must never double-apply.
func (c *Controller) settleLocked() {
	if c.settled {
		return
	}
	c.settled = true

	if c.outcome == domain.OutcomeVictory {
		c.coinsEarned += c.cfg.VictoryBonus
	}
	score := c.score
	coins := c.coinsEarned
	best := c.bestStreak
	answered := make([]string, len(c.answeredIDs))
	copy(answered, c.answeredIDs)

	go func() {
		ctx := context.Background()
		if err := c.settlement.SubmitScore(ctx, c.playerID, score); err != nil {
			log.Printf("failed to submit score for %s: %v", c.playerID, err)
		}
		if coins > 0 {
			if err := c.settlement.GrantCoins(ctx, c.playerID, coins); err != nil {
				log.Printf("failed to grant coins for %s: %v", c.playerID, err)
			}
		}
		if best > 0 {
			if err := c.settlement.UpdateBestStreak(ctx, c.playerID, best); err != nil {
				log.Printf("failed to update best streak for %s: %v", c.playerID, err)
			}
		}
		if c.onFinished != nil {
			c.onFinished(answered)
		}
	}()
}

func (c *Controller) persistStreak(streak int) {
	go func() {
		if err := c.settlement.UpdateBestStreak(context.Background(), c.playerID, streak); err != nil {
			log.Printf("failed to persist streak for %s: %v", c.playerID, err)
		}
	}()
}

// advanceLocked presents the next question. An exhausted set is replaced by a
// freshly drawn one rather than wrapping back through answered questions.
func (c *Controller) advanceLocked() {
	if c.phase != domain.PhasePlaying {
		return
	}
	c.idx++
	if c.idx >= len(c.questions) {
		if c.reshuffle != nil {
			if fresh := c.reshuffle(); len(fresh) > 0 {
				c.questions = fresh
			}
		}
		c.idx = 0
	}
	c.selected = nil
	c.revealed = nil
	c.resolved = false
	c.ledger.ResetQuestionFlags()
	c.questionShownAt = c.now()
	c.timer.Reset(c.cfg.QuestionDuration)
}

// UseBooster consumes a tier and applies its effect. Consumption completes
// strictly before the timer is touched, so an extension can never outrun its
// balance deduction.
func (c *Controller) UseBooster(ctx context.Context, tier domain.BoosterTier) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhasePlaying {
		return domain.ErrMatchNotActive
	}
	if c.resolved {
		return domain.ErrAnswerAlreadySubmitted
	}

	effect, err := c.ledger.Use(ctx, tier)
	if err != nil {
		return err
	}

	switch {
	case effect.ExtraTime > 0:
		c.timer.Extend(effect.ExtraTime)
	case effect.Freeze:
		c.timer.Pause()
	case effect.Reveal:
		correct := c.questions[c.idx].CorrectIndex
		c.revealed = &correct
	}
	c.broadcastLocked()
	return nil
}

// Quit abandons the match: every pending staged callback is voided, the
// countdown stops, and nothing is persisted. Abandonment forfeits progress.
func (c *Controller) Quit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == domain.PhaseStart {
		return
	}
	c.gen++
	c.timer.Stop()
	c.phase = domain.PhaseStart
	c.outcome = domain.OutcomeNone
	c.broadcastLocked()
}

// Close voids pending work and closes all subscriber channels.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.timer.Stop()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

// Snapshot returns the current render-facing state.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel of state snapshots plus a cancel func the
// caller must invoke to avoid leaks.
func (c *Controller) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	initial := c.snapshotLocked()
	c.mu.Unlock()

	ch <- initial

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) broadcastLocked() {
	snap := c.snapshotLocked()
	for ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow consumer never blocks the match.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		MatchID:           c.matchID,
		Phase:             c.phase,
		Outcome:           c.outcome,
		PlayerLife:        c.playerLife,
		OpponentLife:      c.opponentLife,
		MaxLife:           c.cfg.MaxLife,
		QuestionIndex:     c.idx,
		TotalQuestions:    len(c.questions),
		Score:             c.score,
		CorrectCount:      c.correctCount,
		IncorrectCount:    c.incorrectCount,
		Streak:            c.streak,
		BestStreak:        c.bestStreak,
		PlayerAnimation:   c.playerAnim,
		OpponentAnimation: c.opponentAnim,
		TimeLeft:          c.timer.TimeLeft().Seconds(),
		LowTime:           c.timer.LowTime(),
		TimerPaused:       c.timer.Paused(),
		BoosterBalance:    c.ledger.Balance(),
		UsedBoosters:      c.ledger.UsedTiers(),
		CoinsEarned:       c.coinsEarned,
	}
	if c.phase == domain.PhasePlaying {
		q := c.questions[c.idx]
		snap.Question = &q
	}
	if c.selected != nil {
		v := *c.selected
		snap.SelectedAnswer = &v
	}
	if c.revealed != nil {
		v := *c.revealed
		snap.RevealedIndex = &v
	}
	return snap
}

func clampLife(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
