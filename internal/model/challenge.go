package model

import "time"

type ChallengeStatus string

const (
	ChallengeInProgress ChallengeStatus = "in_progress"
	ChallengeCompleted  ChallengeStatus = "completed"
	ChallengeFailed     ChallengeStatus = "failed"
	ChallengeCancelled  ChallengeStatus = "cancelled"
)

func (s ChallengeStatus) Valid() bool {
	switch s {
	case ChallengeInProgress, ChallengeCompleted, ChallengeFailed, ChallengeCancelled:
		return true
	}
	return false
}

// IsTerminal 终态不可再迁移
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeCompleted || s == ChallengeFailed || s == ChallengeCancelled
}

// Challenge 一次轮盘挑战：某条线路上分配给用户的 N 个车站
type Challenge struct {
	ID                uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint            `gorm:"index:idx_challenge_user_status;not null" json:"userId"`
	LineName          string          `gorm:"size:50;not null" json:"lineName"`
	TotalStations     int             `gorm:"not null" json:"totalStations"`
	CompletedStations int             `gorm:"default:0;not null" json:"completedStations"`
	Status            ChallengeStatus `gorm:"size:20;default:'in_progress';index:idx_challenge_user_status;not null" json:"status"`
	CreatedAt         time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	CompletedAt       *time.Time      `gorm:"index" json:"completedAt,omitempty"`
	FinalStationID    *uint           `json:"finalStationId,omitempty"`

	Visits []Visit `gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE" json:"visits,omitempty"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// CanTransitionTo 只允许 in_progress -> 终态
func (c *Challenge) CanTransitionTo(next ChallengeStatus) bool {
	return c.Status == ChallengeInProgress && next.IsTerminal()
}

func (c *Challenge) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}

// PlayTimeSeconds 完成用时（秒），未完成为 0
func (c *Challenge) PlayTimeSeconds() int64 {
	if c.CompletedAt == nil {
		return 0
	}
	secs := int64(c.CompletedAt.Sub(c.CreatedAt) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}
