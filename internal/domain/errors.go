package domain

import "errors"

var (
	// ErrMatchNotFound is returned when no match exists for the player.
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchNotActive is returned for intents that require a running match.
	ErrMatchNotActive = errors.New("match not active")
	// ErrAnswerAlreadySubmitted marks a duplicate answer for the same question.
	ErrAnswerAlreadySubmitted = errors.New("answer already submitted")
	// ErrBoosterAlreadyUsed marks a booster tier already spent this question.
	ErrBoosterAlreadyUsed = errors.New("booster already used this question")
	// ErrInsufficientBalance is returned when the booster balance cannot cover the cost.
	ErrInsufficientBalance = errors.New("insufficient booster balance")
	// ErrUnknownBooster indicates an unrecognized booster tier.
	ErrUnknownBooster = errors.New("unknown booster tier")
	// ErrEmptyQuestionSet marks a zero-length match set, a fatal configuration error.
	ErrEmptyQuestionSet = errors.New("empty question set")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrPlayerNotFound indicates an unknown player id.
	ErrPlayerNotFound = errors.New("player not found")
)
