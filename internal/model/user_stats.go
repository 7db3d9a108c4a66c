package model

import (
	"math"
	"time"
)

// UserStats 用户统计汇总，只由统计聚合在行锁下修改
type UserStats struct {
	UserID                uint       `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	TotalChallenges       int        `gorm:"default:0;not null" json:"totalChallenges"`
	CompletedChallenges   int        `gorm:"default:0;not null" json:"completedChallenges"`
	FailedChallenges      int        `gorm:"default:0;not null" json:"failedChallenges"`
	SuccessRate           float64    `gorm:"default:0;not null" json:"successRate"`
	TotalVisitedStations  int        `gorm:"default:0;not null" json:"totalVisitedStations"`
	UniqueVisitedStations int        `gorm:"default:0;not null" json:"uniqueVisitedStations"`
	TotalPlayTime         int64      `gorm:"default:0;not null" json:"totalPlayTime"` // 秒
	BestTime              int64      `gorm:"default:0;not null" json:"bestTime"`      // 秒，0 表示暂无记录
	CurrentStreak         int        `gorm:"default:0;not null" json:"currentStreak"`
	MaxStreak             int        `gorm:"default:0;not null" json:"maxStreak"`
	TotalScore            int        `gorm:"default:0;not null;index" json:"totalScore"`
	FirstChallengeAt      *time.Time `json:"firstChallengeAt,omitempty"`
	LastChallengeAt       *time.Time `json:"lastChallengeAt,omitempty"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// RecomputeSuccessRate success_rate 始终由 completed/total 推导，保留两位小数
func (s *UserStats) RecomputeSuccessRate() {
	if s.TotalChallenges == 0 {
		s.SuccessRate = 0
		return
	}
	rate := float64(s.CompletedChallenges) * 100 / float64(s.TotalChallenges)
	s.SuccessRate = math.Round(rate*100) / 100
}

// UserVisitedStation 用户-车站访问计数
type UserVisitedStation struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"uniqueIndex:idx_user_station;not null" json:"userId"`
	StationID    uint      `gorm:"uniqueIndex:idx_user_station;not null" json:"stationId"`
	FirstVisitAt time.Time `json:"firstVisitAt"`
	LastVisitAt  time.Time `json:"lastVisitAt"`
	VisitCount   int       `gorm:"default:1;not null" json:"visitCount"`

	Station *Station `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (UserVisitedStation) TableName() string {
	return "user_visited_stations"
}
