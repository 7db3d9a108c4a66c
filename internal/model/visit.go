package model

import "time"

// Visit 挑战中分配的一个车站及其验证状态
type Visit struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ChallengeID       uint       `gorm:"uniqueIndex:idx_visit_challenge_station;not null" json:"challengeId"`
	UserID            uint       `gorm:"index;not null" json:"userId"`
	StationID         uint       `gorm:"uniqueIndex:idx_visit_challenge_station;not null" json:"stationId"`
	IsVerified        bool       `gorm:"default:false;not null" json:"isVerified"`
	VisitedAt         *time.Time `json:"visitedAt,omitempty"`
	VerifiedLatitude  *float64   `json:"verifiedLatitude,omitempty"`
	VerifiedLongitude *float64   `json:"verifiedLongitude,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`

	Station *Station `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (Visit) TableName() string {
	return "visits"
}
