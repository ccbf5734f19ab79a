package domain

import "time"

// Difficulty partitions the question bank.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty tags.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a four-option multiple choice question. Instances drawn into a
// match are derived copies with re-shuffled options; the bank itself is never
// mutated.
type Question struct {
	ID           string     `json:"id"`
	Prompt       string     `json:"prompt"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Difficulty   Difficulty `json:"difficulty"`
}

// QuestionBank is the full static question set the preparer draws from.
type QuestionBank struct {
	Questions []Question `json:"questions"`
}

// Phase is the top-level match lifecycle.
type Phase string

const (
	PhaseStart    Phase = "start"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "gameover"
)

// Animation is a presentation hint emitted by the controller; how it is drawn
// is entirely the client's concern.
type Animation string

const (
	AnimationIdle    Animation = "idle"
	AnimationAttack  Animation = "attack"
	AnimationHit     Animation = "hit"
	AnimationVictory Animation = "victory"
)

// BoosterTier is the closed set of one-shot in-match consumables.
type BoosterTier string

const (
	BoosterExtra10 BoosterTier = "extra10"
	BoosterExtra20 BoosterTier = "extra20"
	BoosterExtra30 BoosterTier = "extra30"
	BoosterFreeze  BoosterTier = "freeze"
	BoosterReveal  BoosterTier = "reveal"
)

// Valid reports whether t names a known booster tier.
func (t BoosterTier) Valid() bool {
	switch t {
	case BoosterExtra10, BoosterExtra20, BoosterExtra30, BoosterFreeze, BoosterReveal:
		return true
	}
	return false
}

// BoosterEffect describes what a tier does when consumed.
type BoosterEffect struct {
	Cost      int
	ExtraTime time.Duration // extra-time tiers only
	Freeze    bool          // pauses the countdown until the next question
	Reveal    bool          // reveals the correct option, no life/score effect
}

// BoosterTable is the declarative cost/effect table for all tiers.
var BoosterTable = map[BoosterTier]BoosterEffect{
	BoosterExtra10: {Cost: 1, ExtraTime: 10 * time.Second},
	BoosterExtra20: {Cost: 2, ExtraTime: 20 * time.Second},
	BoosterExtra30: {Cost: 3, ExtraTime: 30 * time.Second},
	BoosterFreeze:  {Cost: 8, Freeze: true},
	BoosterReveal:  {Cost: 10, Reveal: true},
}

// Outcome is the terminal result of a match.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
)

// Snapshot is the render-facing view of a match, re-emitted on every state
// change. The controller owns the underlying state exclusively; snapshots are
// value copies safe to hand to any consumer.
type Snapshot struct {
	MatchID           string    `json:"matchId"`
	Phase             Phase     `json:"phase"`
	Outcome           Outcome   `json:"outcome,omitempty"`
	PlayerLife        int       `json:"playerLife"`
	OpponentLife      int       `json:"opponentLife"`
	MaxLife           int       `json:"maxLife"`
	QuestionIndex     int       `json:"questionIndex"`
	TotalQuestions    int       `json:"totalQuestions"`
	Question          *Question `json:"question,omitempty"`
	SelectedAnswer    *int      `json:"selectedAnswer,omitempty"`
	RevealedIndex     *int      `json:"revealedIndex,omitempty"`
	Score             int       `json:"score"`
	CorrectCount      int       `json:"correctCount"`
	IncorrectCount    int       `json:"incorrectCount"`
	Streak            int       `json:"streak"`
	BestStreak        int       `json:"bestStreak"`
	PlayerAnimation   Animation `json:"playerAnimation"`
	OpponentAnimation Animation `json:"opponentAnimation"`
	TimeLeft          float64   `json:"timeLeft"`
	LowTime           bool      `json:"lowTime"`
	TimerPaused       bool      `json:"timerPaused"`
	BoosterBalance    int       `json:"boosterBalance"`
	UsedBoosters      []string  `json:"usedBoosters,omitempty"`
	CoinsEarned       int       `json:"coinsEarned"`
}

// Player is the identity/profile view the core needs.
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// RankingEntry is one row of the global score leaderboard.
type RankingEntry struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}
