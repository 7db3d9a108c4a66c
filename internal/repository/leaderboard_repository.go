package repository

import (
	"fmt"
	"subway_roulette_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

// RankingType 排行榜种类
type RankingType string

const (
	RankByScore       RankingType = "score"
	RankByStreak      RankingType = "streak"
	RankByStations    RankingType = "stations"
	RankBySuccessRate RankingType = "success_rate"
)

// MinChallengesForSuccessRate 成功率榜的最低挑战次数，排除小样本
const MinChallengesForSuccessRate = 10

// rankingSpec 排序主键与平局键（均为降序）及额外筛选
type rankingSpec struct {
	primary    string
	tieBreak   string
	minimumSQL string
	values     func(s *model.UserStats) (primary, tieBreak interface{})
	qualifies  func(s *model.UserStats) bool
}

func hasPlayed(s *model.UserStats) bool { return s.TotalChallenges > 0 }

var rankingSpecs = map[RankingType]rankingSpec{
	RankByScore: {
		primary: "total_score", tieBreak: "completed_challenges", minimumSQL: "total_challenges > 0",
		values:    func(s *model.UserStats) (interface{}, interface{}) { return s.TotalScore, s.CompletedChallenges },
		qualifies: hasPlayed,
	},
	RankByStreak: {
		primary: "max_streak", tieBreak: "total_score", minimumSQL: "total_challenges > 0",
		values:    func(s *model.UserStats) (interface{}, interface{}) { return s.MaxStreak, s.TotalScore },
		qualifies: hasPlayed,
	},
	RankByStations: {
		primary: "unique_visited_stations", tieBreak: "total_score", minimumSQL: "total_challenges > 0",
		values:    func(s *model.UserStats) (interface{}, interface{}) { return s.UniqueVisitedStations, s.TotalScore },
		qualifies: hasPlayed,
	},
	RankBySuccessRate: {
		primary: "success_rate", tieBreak: "total_challenges",
		minimumSQL: fmt.Sprintf("total_challenges >= %d", MinChallengesForSuccessRate),
		values:     func(s *model.UserStats) (interface{}, interface{}) { return s.SuccessRate, s.TotalChallenges },
		qualifies:  func(s *model.UserStats) bool { return s.TotalChallenges >= MinChallengesForSuccessRate },
	},
}

func (t RankingType) Valid() bool {
	_, ok := rankingSpecs[t]
	return ok
}

// LeaderboardRow 排行榜一行（不含名次，名次由 service 计算）
type LeaderboardRow struct {
	UserID                uint    `json:"userId"`
	UserName              string  `json:"userName"`
	TotalScore            int     `json:"totalScore"`
	MaxStreak             int     `json:"maxStreak"`
	CurrentStreak         int     `json:"currentStreak"`
	UniqueVisitedStations int     `json:"uniqueVisitedStations"`
	SuccessRate           float64 `json:"successRate"`
	TotalChallenges       int     `json:"totalChallenges"`
	CompletedChallenges   int     `json:"completedChallenges"`
}

// WeeklyRow 最近 7 天按原始挑战记录统计
type WeeklyRow struct {
	UserID          uint   `json:"userId"`
	UserName        string `json:"userName"`
	CompletedCount  int    `json:"completedCount"`
	StationsVisited int    `json:"stationsVisited"`
}

func (r *LeaderboardRepository) Top(kind RankingType, limit int) ([]LeaderboardRow, error) {
	spec, ok := rankingSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown ranking type %q", kind)
	}

	var rows []LeaderboardRow
	err := r.DB.Table("user_stats AS us").
		Select("us.user_id, u.name AS user_name, us.total_score, us.max_streak, us.current_streak, " +
			"us.unique_visited_stations, us.success_rate, us.total_challenges, us.completed_challenges").
		Joins("JOIN users u ON u.id = us.user_id AND u.deleted_at IS NULL").
		Where("us." + spec.minimumSQL).
		Order(fmt.Sprintf("us.%s DESC, us.%s DESC, us.user_id ASC", spec.primary, spec.tieBreak)).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// RankOf 返回用户名次（并列同名次）；不满足榜单条件时返回 nil
func (r *LeaderboardRepository) RankOf(kind RankingType, stats *model.UserStats) (*int, error) {
	spec, ok := rankingSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown ranking type %q", kind)
	}
	if stats == nil || !spec.qualifies(stats) {
		return nil, nil
	}

	primary, tieBreak := spec.values(stats)

	var ahead int64
	err := r.DB.Table("user_stats AS us").
		Joins("JOIN users u ON u.id = us.user_id AND u.deleted_at IS NULL").
		Where("us."+spec.minimumSQL).
		Where(fmt.Sprintf("(us.%[1]s > ? OR (us.%[1]s = ? AND us.%[2]s > ?))", spec.primary, spec.tieBreak),
			primary, primary, tieBreak).
		Count(&ahead).Error
	if err != nil {
		return nil, err
	}

	rank := int(ahead) + 1
	return &rank, nil
}

// Weekly 以 since 之后完成的挑战为准
func (r *LeaderboardRepository) Weekly(since time.Time, limit int) ([]WeeklyRow, error) {
	var rows []WeeklyRow
	err := r.DB.Table("challenges AS c").
		Select("c.user_id, u.name AS user_name, COUNT(c.id) AS completed_count, "+
			"COALESCE(SUM(c.total_stations), 0) AS stations_visited").
		Joins("JOIN users u ON u.id = c.user_id AND u.deleted_at IS NULL").
		Where("c.status = ? AND c.completed_at >= ?", model.ChallengeCompleted, since).
		Group("c.user_id, u.name").
		Order("completed_count DESC, stations_visited DESC, c.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
