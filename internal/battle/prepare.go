package battle

import (
	"math/rand"

	"quiz-battle/internal/domain"
)

// Prepare selects an ordered question set for one match. It filters the bank
// by difficulty when given, drops recently answered ids, shuffles, truncates
// to amount, and re-shuffles each question's options so that option position
// carries no signal from the bank's authoring order.
//
// A difficulty slice too thin to fill the request falls back to the full
// bank rather than shorting the match; the cooldown filter falls back only
// when it empties the pool, so a short fresh set stays fresh. A match is
// never prepared empty unless the bank itself is empty. Pure over its inputs
// and the given randomness source; the bank is never mutated.
func Prepare(rnd *rand.Rand, bank domain.QuestionBank, difficulty domain.Difficulty, excluded map[string]bool, amount int) []domain.Question {
	pool := bank.Questions
	if difficulty.Valid() {
		filtered := make([]domain.Question, 0, len(pool))
		for _, q := range pool {
			if q.Difficulty == difficulty {
				filtered = append(filtered, q)
			}
		}
		if len(filtered) > 0 && (amount <= 0 || len(filtered) >= amount) {
			pool = filtered
		}
	}

	if len(excluded) > 0 {
		fresh := make([]domain.Question, 0, len(pool))
		for _, q := range pool {
			if !excluded[q.ID] {
				fresh = append(fresh, q)
			}
		}
		if len(fresh) > 0 {
			pool = fresh
		}
	}

	// Fisher-Yates over a copy; the pool may alias the bank slice.
	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if amount > 0 && amount < len(shuffled) {
		shuffled = shuffled[:amount]
	}

	selected := make([]domain.Question, len(shuffled))
	for i, q := range shuffled {
		selected[i] = shuffleOptions(rnd, q)
	}
	return selected
}

// shuffleOptions returns a copy of q with its options permuted and
// CorrectIndex re-pointed at the same answer text.
func shuffleOptions(rnd *rand.Rand, q domain.Question) domain.Question {
	correct := ""
	if q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) {
		correct = q.Options[q.CorrectIndex]
	}

	options := make([]string, len(q.Options))
	copy(options, q.Options)
	for i := len(options) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	out := q
	out.Options = options
	for i, opt := range options {
		if opt == correct {
			out.CorrectIndex = i
			break
		}
	}
	return out
}
