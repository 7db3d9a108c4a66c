package service

import (
	"context"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/internal/seed"
	"subway_roulette_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	line1 = "1호선"
	line2 = "2호선"
	line3 = "3호선"
)

type fixture struct {
	db  *gorm.DB
	now time.Time

	repos struct {
		user        *repository.UserRepository
		station     *repository.StationRepository
		challenge   *repository.ChallengeRepository
		visit       *repository.VisitRepository
		stats       *repository.StatsRepository
		achievement *repository.AchievementRepository
		leaderboard *repository.LeaderboardRepository
	}

	stats        *StatsService
	achievements *AchievementService
	challenges   *ChallengeService
	visits       *VisitService
	leaderboard  *LeaderboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	require.NoError(t, seed.SeedIfEmpty(db))

	f := &fixture{db: db, now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.repos.user = repository.NewUserRepository(db)
	f.repos.station = repository.NewStationRepository(db)
	f.repos.challenge = repository.NewChallengeRepository(db)
	f.repos.visit = repository.NewVisitRepository(db)
	f.repos.stats = repository.NewStatsRepository(db)
	f.repos.achievement = repository.NewAchievementRepository(db)
	f.repos.leaderboard = repository.NewLeaderboardRepository(db)

	settings := DefaultGameSettings()
	f.stats = NewStatsService(db, f.repos.stats, f.repos.visit, f.repos.station, settings)
	f.achievements = NewAchievementService(db, f.repos.achievement, f.repos.stats, f.repos.station)
	f.achievements.Now = clock
	f.challenges = NewChallengeService(db, f.repos.challenge, f.repos.visit, f.repos.station, f.stats, f.achievements, settings)
	f.challenges.Now = clock
	// 不打乱：按 id 顺序取前 N 个车站
	f.challenges.Shuffle = func(int, func(i, j int)) {}
	f.visits = NewVisitService(db, f.repos.challenge, f.repos.visit, f.repos.station, f.challenges, settings)
	f.visits.Now = clock
	f.leaderboard = NewLeaderboardService(f.repos.leaderboard, f.repos.stats, settings)
	f.leaderboard.Now = clock

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) createUser(t *testing.T, name string) uint {
	t.Helper()
	user := &model.User{Name: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, f.repos.user.Create(user))
	return user.ID
}

func (f *fixture) start(t *testing.T, userID uint, line string, count int) *CreateChallengeResult {
	t.Helper()
	result, err := f.challenges.Create(context.Background(), CreateChallengeRequest{
		UserID:       userID,
		LineName:     line,
		StationCount: count,
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) verifyFrom(userID, challengeID, stationID uint, lat, lng float64) (*VerifyVisitResult, error) {
	return f.visits.Verify(context.Background(), VerifyVisitInput{
		ChallengeID: &challengeID,
		UserID:      &userID,
		StationID:   &stationID,
		Latitude:    &lat,
		Longitude:   &lng,
	})
}

func (f *fixture) verifyAt(userID, challengeID uint, station model.Station) (*VerifyVisitResult, error) {
	return f.verifyFrom(userID, challengeID, station.ID, station.Latitude, station.Longitude)
}

// completeOne 开始一个单站挑战并在 elapsed 后到站
func (f *fixture) completeOne(t *testing.T, userID uint, line string, elapsed time.Duration) *VerifyVisitResult {
	t.Helper()
	created := f.start(t, userID, line, 1)
	f.advance(elapsed)
	result, err := f.verifyAt(userID, created.ChallengeID, created.Stations[0])
	require.NoError(t, err)
	require.True(t, result.IsAllCompleted)
	return result
}

func (f *fixture) failOne(t *testing.T, userID uint, line string) {
	t.Helper()
	created := f.start(t, userID, line, 1)
	_, err := f.challenges.Fail(context.Background(), created.ChallengeID, userID)
	require.NoError(t, err)
}

func (f *fixture) challengeByID(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	if err := f.db.First(&challenge, id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (f *fixture) stationByCode(t *testing.T, code string) model.Station {
	t.Helper()
	var station model.Station
	require.NoError(t, f.db.Where("code = ?", code).First(&station).Error)
	return station
}

func (f *fixture) userStats(t *testing.T, userID uint) *model.UserStats {
	t.Helper()
	stats, err := f.repos.stats.FindByUserID(userID)
	require.NoError(t, err)
	return stats
}

func codesOf(achievements []model.Achievement) []string {
	codes := make([]string, 0, len(achievements))
	for _, a := range achievements {
		codes = append(codes, a.Code)
	}
	return codes
}
