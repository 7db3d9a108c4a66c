package model

import "time"

// ConditionType 成就条件种类（封闭集合）
type ConditionType string

const (
	ConditionChallengeCount ConditionType = "challenge_count"
	ConditionSuccessCount   ConditionType = "success_count"
	ConditionStreak         ConditionType = "streak"
	ConditionStationCount   ConditionType = "station_count"
	ConditionTime           ConditionType = "time"
	ConditionLineComplete   ConditionType = "line_complete"
)

// Achievement 成就目录（静态数据）
type Achievement struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string        `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name           string        `gorm:"size:100;not null" json:"name"`
	Description    string        `gorm:"size:255" json:"description"`
	Category       string        `gorm:"size:30;not null" json:"category"`
	Tier           string        `gorm:"size:20;not null" json:"tier"`
	ConditionType  ConditionType `gorm:"size:30;not null" json:"conditionType"`
	ConditionValue int           `gorm:"not null" json:"conditionValue"`
	Points         int           `gorm:"default:0;not null" json:"points"`
	Icon           string        `gorm:"size:255" json:"icon,omitempty"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 解锁记录，(user_id, achievement_id) 唯一
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"userId"`
	AchievementID uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievementId"`
	AchievedAt    time.Time `json:"achievedAt"`
	Progress      int       `gorm:"default:100;not null" json:"progress"`

	Achievement *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
