package repository

import (
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestStatsRepository_UpsertVisitedStation(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStatsRepository(db)

	count, err := repo.UpsertVisitedStation(1, 10, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.UpsertVisitedStation(1, 10, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.UpsertVisitedStation(2, 10, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unique, err := repo.CountUniqueVisited(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unique)

	var row model.UserVisitedStation
	require.NoError(t, db.Where("user_id = ? AND station_id = ?", 1, 10).First(&row).Error)
	assert.True(t, row.FirstVisitAt.Equal(t0))
	assert.True(t, row.LastVisitAt.Equal(t0.Add(time.Hour)))
}

func TestStatsRepository_LockForUpdateCreatesRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStatsRepository(db)

	stats, err := repo.LockForUpdate(5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), stats.UserID)
	assert.Zero(t, stats.TotalChallenges)

	stats.TotalChallenges = 3
	require.NoError(t, repo.Save(stats))

	again, err := repo.LockForUpdate(5)
	require.NoError(t, err)
	assert.Equal(t, 3, again.TotalChallenges)
}

func TestAchievementRepository_UnlockOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAchievementRepository(db)

	a := &model.Achievement{Code: "FIRST_SUCCESS", Name: "Arrived", Category: "success", Tier: "bronze",
		ConditionType: model.ConditionSuccessCount, ConditionValue: 1, Points: 10}
	require.NoError(t, repo.UpsertCatalogEntry(a))

	inserted, err := repo.Unlock(&model.UserAchievement{UserID: 1, AchievementID: a.ID, AchievedAt: t0, Progress: 100})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Unlock(&model.UserAchievement{UserID: 1, AchievementID: a.ID, AchievedAt: t0.Add(time.Hour), Progress: 100})
	require.NoError(t, err)
	assert.False(t, inserted)

	unlocked, err := repo.UnlockedIDs(1)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{a.ID: true}, unlocked)

	rows, err := repo.FindByUserID(1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Achievement)
	assert.Equal(t, "FIRST_SUCCESS", rows[0].Achievement.Code)
	assert.True(t, rows[0].AchievedAt.Equal(t0))
}

func TestVisitRepository_MarkVerifiedOnlyOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewVisitRepository(db)

	require.NoError(t, repo.CreateBatch([]model.Visit{
		{ChallengeID: 1, UserID: 1, StationID: 10, CreatedAt: t0},
		{ChallengeID: 1, UserID: 1, StationID: 11, CreatedAt: t0},
	}))

	visit, err := repo.FindForUpdate(1, 10)
	require.NoError(t, err)

	ok, err := repo.MarkVerified(visit.ID, t0.Add(time.Minute), 37.55, 126.97)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkVerified(visit.ID, t0.Add(2*time.Minute), 37.55, 126.97)
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := repo.CountVerified(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestChallengeRepository_FindOverdueIDs(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChallengeRepository(db)

	mk := func(status model.ChallengeStatus, created time.Time) uint {
		ch := &model.Challenge{UserID: 1, LineName: "1호선", TotalStations: 1, Status: status, CreatedAt: created, UpdatedAt: created}
		require.NoError(t, repo.Create(ch))
		return ch.ID
	}
	old := mk(model.ChallengeInProgress, t0)
	mk(model.ChallengeCompleted, t0)
	mk(model.ChallengeInProgress, t0.Add(2*time.Hour))

	ids, err := repo.FindOverdueIDs(t0.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{old}, ids)
}
