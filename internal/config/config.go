package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"quiz-battle/internal/battle"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Bank struct {
		TTL string `yaml:"ttl"`
	} `yaml:"bank"`
	Progress struct {
		TTL string `yaml:"ttl"`
	} `yaml:"progress"`
	Battle struct {
		MaxLife           int    `yaml:"max_life"`
		QuestionsPerMatch int    `yaml:"questions_per_match"`
		QuestionDuration  string `yaml:"question_duration"`
		PointsPerCorrect  int    `yaml:"points_per_correct"`
		WrongAnswerDamage int    `yaml:"wrong_answer_damage"`
		CoinsPerCorrect   int    `yaml:"coins_per_correct"`
		VictoryBonus      int    `yaml:"victory_bonus"`
		StartingBoosters  int    `yaml:"starting_boosters"`
	} `yaml:"battle"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// BattleConfig maps the YAML overrides onto the default game balance. Zero
// values keep the defaults; damage steps and animation delays are code-owned.
func (c Config) BattleConfig() battle.Config {
	out := battle.DefaultConfig()
	if c.Battle.MaxLife > 0 {
		out.MaxLife = c.Battle.MaxLife
	}
	if c.Battle.QuestionsPerMatch > 0 {
		out.QuestionsPerMatch = c.Battle.QuestionsPerMatch
	}
	out.QuestionDuration = TTLDuration(c.Battle.QuestionDuration, out.QuestionDuration)
	if c.Battle.PointsPerCorrect > 0 {
		out.PointsPerCorrect = c.Battle.PointsPerCorrect
	}
	if c.Battle.WrongAnswerDamage > 0 {
		out.WrongAnswerDamage = c.Battle.WrongAnswerDamage
	}
	if c.Battle.CoinsPerCorrect > 0 {
		out.CoinsPerCorrect = c.Battle.CoinsPerCorrect
	}
	if c.Battle.VictoryBonus > 0 {
		out.VictoryBonus = c.Battle.VictoryBonus
	}
	return out
}
