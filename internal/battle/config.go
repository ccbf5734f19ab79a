package battle

import "time"

// DamageStep maps a response-time bound to the damage dealt on a correct
// answer. Steps are evaluated in order; the first step whose upper bound
// exceeds the response time wins.
type DamageStep struct {
	Under  time.Duration
	Damage int
}

// Config carries the gameplay tunables for one match. Thresholds and rewards
// are data, not law; the config layer overrides any of them.
type Config struct {
	MaxLife           int
	QuestionsPerMatch int
	QuestionDuration  time.Duration
	PointsPerCorrect  int
	WrongAnswerDamage int
	DamageSteps       []DamageStep
	DefaultDamage     int
	CoinsPerCorrect   int
	VictoryBonus      int

	// Animation staging delays. The attacker winds up, the target flinches,
	// the damage lands, then the next question is presented.
	AttackDelay  time.Duration
	HitDelay     time.Duration
	DamageDelay  time.Duration
	AdvanceDelay time.Duration
}

// DefaultConfig mirrors the shipped game balance: 100 life, 10s questions,
// faster answers hit harder.
func DefaultConfig() Config {
	return Config{
		MaxLife:           100,
		QuestionsPerMatch: 20,
		QuestionDuration:  10 * time.Second,
		PointsPerCorrect:  100,
		WrongAnswerDamage: 10,
		DamageSteps: []DamageStep{
			{Under: 3 * time.Second, Damage: 10},
			{Under: 6 * time.Second, Damage: 6},
			{Under: 8 * time.Second, Damage: 4},
		},
		DefaultDamage:   3,
		CoinsPerCorrect: 2,
		VictoryBonus:    50,
		AttackDelay:     200 * time.Millisecond,
		HitDelay:        500 * time.Millisecond,
		DamageDelay:     900 * time.Millisecond,
		AdvanceDelay:    1800 * time.Millisecond,
	}
}

// damageFor resolves the step function for a correct answer's response time.
func (c Config) damageFor(responseTime time.Duration) int {
	for _, step := range c.DamageSteps {
		if responseTime < step.Under {
			return step.Damage
		}
	}
	return c.DefaultDamage
}
