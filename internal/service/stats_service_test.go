package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_StreakAndSuccessRate(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "mia")

	f.completeOne(t, userID, line1, 10*time.Minute)
	f.completeOne(t, userID, line1, 20*time.Minute)

	stats := f.userStats(t, userID)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.MaxStreak)
	assert.Equal(t, int64(600), stats.BestTime)
	assert.Equal(t, int64(1800), stats.TotalPlayTime)

	f.failOne(t, userID, line1)

	stats = f.userStats(t, userID)
	assert.Equal(t, 3, stats.TotalChallenges)
	assert.Equal(t, 2, stats.CompletedChallenges)
	assert.Equal(t, 1, stats.FailedChallenges)
	assert.Equal(t, stats.TotalChallenges, stats.CompletedChallenges+stats.FailedChallenges)
	assert.InDelta(t, 66.67, stats.SuccessRate, 0.001)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 2, stats.MaxStreak)
	// 失败不改变分数：200 完成分 + 170 成就分
	assert.Equal(t, 370, stats.TotalScore)
	require.NotNil(t, stats.FirstChallengeAt)
	require.NotNil(t, stats.LastChallengeAt)
	assert.True(t, stats.LastChallengeAt.After(*stats.FirstChallengeAt))
}

func TestStats_UniqueStationsCountedOnce(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "noah")

	// 固定抽取顺序下两次都是 150 서울역
	f.completeOne(t, userID, line1, time.Minute)
	f.completeOne(t, userID, line1, time.Minute)

	stats := f.userStats(t, userID)
	assert.Equal(t, 2, stats.TotalVisitedStations)
	assert.Equal(t, 1, stats.UniqueVisitedStations)

	visited, err := f.stats.GetVisitedStations(userID)
	require.NoError(t, err)
	require.Len(t, visited, 1)
	assert.Equal(t, 2, visited[0].VisitCount)
	assert.Equal(t, "150", visited[0].StationCode)
}

func TestStats_LineStats(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "olivia")

	f.completeOne(t, userID, line3, time.Minute)

	lines, err := f.stats.GetLineStats(userID)
	require.NoError(t, err)
	require.Len(t, lines, 4)

	byName := map[string]LineStat{}
	for _, l := range lines {
		byName[l.LineName] = l
	}
	assert.Equal(t, 5, byName[line3].TotalStations)
	assert.Equal(t, 1, byName[line3].VisitedStations)
	assert.Equal(t, 0, byName[line1].VisitedStations)
}

func TestStats_GetUserStatsWithoutRow(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "paul")

	stats, err := f.stats.GetUserStats(userID)
	require.NoError(t, err)
	assert.Equal(t, userID, stats.UserID)
	assert.Zero(t, stats.TotalChallenges)
	assert.Zero(t, stats.SuccessRate)
}
