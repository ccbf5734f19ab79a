package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-battle/internal/battle"
	"quiz-battle/internal/domain"
)

// QuestionRepository loads the question bank (from cache/backing store).
type QuestionRepository interface {
	GetBank(ctx context.Context) (domain.QuestionBank, error)
}

// PlayerRepository is the hosted backend's row-level surface: profile upsert,
// additive score/coin accumulation, server-side-max streaks, and the guarded
// booster decrement.
type PlayerRepository interface {
	EnsurePlayer(ctx context.Context, player domain.Player) error
	BoosterBalance(ctx context.Context, playerID string) (int, error)
	ConsumeBoosters(ctx context.Context, playerID string, amount int) (int, error)
	SubmitScore(ctx context.Context, playerID string, score int) error
	GrantCoins(ctx context.Context, playerID string, amount int) error
	UpdateBestStreak(ctx context.Context, playerID string, streak int) error
	Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error)
}

// ProgressStore remembers which question ids a player answered recently, so
// the preparer can keep them out of the next match.
type ProgressStore interface {
	Recent(ctx context.Context, playerID string) (map[string]bool, error)
	MarkAnswered(ctx context.Context, playerID string, questionIDs []string) error
}

// MatchStore holds the live match controllers, one per player.
type MatchStore interface {
	Put(playerID string, c *battle.Controller)
	Get(playerID string) (*battle.Controller, bool)
	Delete(playerID string)
}

// MatchService owns the match lifecycle: it prepares question sets, spins up
// battle controllers, and routes player intents to them.
type MatchService struct {
	cfg      battle.Config
	bank     QuestionRepository
	players  PlayerRepository
	progress ProgressStore
	matches  MatchStore

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewMatchService(cfg battle.Config, bank QuestionRepository, players PlayerRepository, progress ProgressStore, matches MatchStore) *MatchService {
	return NewMatchServiceWithSeed(cfg, bank, players, progress, matches, time.Now().UnixNano())
}

// NewMatchServiceWithSeed is test-only for deterministic shuffling.
func NewMatchServiceWithSeed(cfg battle.Config, bank QuestionRepository, players PlayerRepository, progress ProgressStore, matches MatchStore, seed int64) *MatchService {
	return &MatchService{
		cfg:      cfg,
		bank:     bank,
		players:  players,
		progress: progress,
		matches:  matches,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

// Connect upserts the player profile. Called once per presentation session.
func (s *MatchService) Connect(ctx context.Context, player domain.Player) error {
	return s.players.EnsurePlayer(ctx, player)
}

// StartMatch draws a fresh question set and enters the playing phase. An
// existing match for the player is abandoned first, restart included.
func (s *MatchService) StartMatch(ctx context.Context, playerID string, difficulty domain.Difficulty) (domain.Snapshot, error) {
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	excluded := s.recentAnswered(ctx, playerID)
	questions := s.prepare(bank, difficulty, excluded)
	if len(questions) == 0 {
		return domain.Snapshot{}, domain.ErrEmptyQuestionSet
	}

	balance, err := s.players.BoosterBalance(ctx, playerID)
	if err != nil {
		log.Printf("failed to load booster balance for %s: %v", playerID, err)
		balance = 0
	}

	controller, err := battle.New(s.cfg, battle.Params{
		MatchID:    uuid.NewString(),
		PlayerID:   playerID,
		Questions:  questions,
		Balance:    balance,
		Wallet:     walletFunc(s.players.ConsumeBoosters),
		Settlement: s.players,
		Reshuffle: func() []domain.Question {
			return s.prepare(bank, difficulty, nil)
		},
		OnFinished: func(answered []string) {
			if err := s.progress.MarkAnswered(context.Background(), playerID, answered); err != nil {
				log.Printf("failed to record answered questions for %s: %v", playerID, err)
			}
		},
	})
	if err != nil {
		return domain.Snapshot{}, err
	}

	if old, ok := s.matches.Get(playerID); ok {
		old.Quit()
		old.Close()
	}
	s.matches.Put(playerID, controller)
	controller.Start()
	return controller.Snapshot(), nil
}

// SubmitAnswer forwards an answer tap to the player's controller.
func (s *MatchService) SubmitAnswer(playerID string, index int) error {
	controller, ok := s.matches.Get(playerID)
	if !ok {
		return domain.ErrMatchNotFound
	}
	return controller.SubmitAnswer(index)
}

// UseBooster consumes a booster tier for the current question.
func (s *MatchService) UseBooster(ctx context.Context, playerID string, tier domain.BoosterTier) error {
	controller, ok := s.matches.Get(playerID)
	if !ok {
		return domain.ErrMatchNotFound
	}
	return controller.UseBooster(ctx, tier)
}

// QuitMatch abandons the player's match and discards its state. Nothing is
// persisted for an abandoned match.
func (s *MatchService) QuitMatch(playerID string) {
	controller, ok := s.matches.Get(playerID)
	if !ok {
		return
	}
	controller.Quit()
	controller.Close()
	s.matches.Delete(playerID)
}

// Subscribe returns a snapshot stream for the player's match. The caller must
// invoke the cancel func to avoid leaks.
func (s *MatchService) Subscribe(playerID string) (<-chan domain.Snapshot, func(), error) {
	controller, ok := s.matches.Get(playerID)
	if !ok {
		return nil, nil, domain.ErrMatchNotFound
	}
	ch, cancel := controller.Subscribe()
	return ch, cancel, nil
}

// Snapshot returns the current state of the player's match.
func (s *MatchService) Snapshot(playerID string) (domain.Snapshot, error) {
	controller, ok := s.matches.Get(playerID)
	if !ok {
		return domain.Snapshot{}, domain.ErrMatchNotFound
	}
	return controller.Snapshot(), nil
}

// Ranking reads the global score leaderboard.
func (s *MatchService) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	return s.players.Ranking(ctx, limit)
}

func (s *MatchService) prepare(bank domain.QuestionBank, difficulty domain.Difficulty, excluded map[string]bool) []domain.Question {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return battle.Prepare(s.rnd, bank, difficulty, excluded, s.cfg.QuestionsPerMatch)
}

// recentAnswered is best-effort; a cooldown miss only means a repeat question.
func (s *MatchService) recentAnswered(ctx context.Context, playerID string) map[string]bool {
	recent, err := s.progress.Recent(ctx, playerID)
	if err != nil {
		log.Printf("failed to load answered questions for %s: %v", playerID, err)
		return nil
	}
	return recent
}

// walletFunc adapts the player repository's booster decrement to the battle
// wallet contract.
type walletFunc func(ctx context.Context, playerID string, amount int) (int, error)

func (f walletFunc) Consume(ctx context.Context, playerID string, amount int) (int, error) {
	return f(ctx, playerID, amount)
}
