package service

import (
	"subway_roulette_backend/internal/config"
	"time"
)

const (
	DefaultVerificationRadius = 100.0
	DefaultTimeLimit          = 3 * time.Hour
	DefaultScorePerCompletion = 100
	MaxStationsPerChallenge   = 10
)

// GameSettings 挑战规则
type GameSettings struct {
	VerificationRadius float64
	TimeLimit          time.Duration
	ScorePerCompletion int
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		VerificationRadius: DefaultVerificationRadius,
		TimeLimit:          DefaultTimeLimit,
		ScorePerCompletion: DefaultScorePerCompletion,
	}
}

func NewGameSettings(cfg config.GameConfig) GameSettings {
	s := DefaultGameSettings()
	if cfg.VerificationRadiusM > 0 {
		s.VerificationRadius = cfg.VerificationRadiusM
	}
	if cfg.TimeLimitMinutes > 0 {
		s.TimeLimit = cfg.TimeLimit()
	}
	if cfg.ScorePerCompletion > 0 {
		s.ScorePerCompletion = cfg.ScorePerCompletion
	}
	return s
}

// Clock 可注入的时间源，测试中替换
type Clock func() time.Time
