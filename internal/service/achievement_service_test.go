package service

import (
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievements_EvaluateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "quinn")

	f.completeOne(t, userID, line1, 5*time.Minute)
	before := f.userStats(t, userID)

	for i := 0; i < 2; i++ {
		newly, err := f.achievements.Evaluate(userID)
		require.NoError(t, err)
		assert.Empty(t, newly)
	}

	after := f.userStats(t, userID)
	assert.Equal(t, before.TotalScore, after.TotalScore)

	unlocked, err := f.achievements.GetUserAchievements(userID)
	require.NoError(t, err)
	assert.Len(t, unlocked, 4)
}

func TestAchievements_EvaluateBackfillsNewCatalogEntry(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "rita")

	f.completeOne(t, userID, line1, 5*time.Minute)
	before := f.userStats(t, userID)

	require.NoError(t, f.repos.achievement.UpsertCatalogEntry(&model.Achievement{
		Code: "SPEED_10", Name: "Sprinter", Category: "time", Tier: "gold",
		ConditionType: model.ConditionTime, ConditionValue: 600, Points: 40,
	}))

	newly, err := f.achievements.Evaluate(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPEED_10"}, codesOf(newly))
	assert.Equal(t, before.TotalScore+40, f.userStats(t, userID).TotalScore)
}

func TestAchievements_LineMaster(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "ruby")

	created := f.start(t, userID, line1, 6)
	require.Len(t, created.Stations, 6)

	var last *VerifyVisitResult
	for i, station := range created.Stations {
		f.advance(time.Minute)
		result, err := f.verifyAt(userID, created.ChallengeID, station)
		require.NoError(t, err)
		assert.Equal(t, i+1, result.CompletedStations)
		last = result
	}

	require.True(t, last.IsAllCompleted)
	assert.ElementsMatch(t,
		[]string{"FIRST_CHALLENGE", "FIRST_SUCCESS", "SPEED_60", "SPEED_30", "LINE_1_MASTER"},
		codesOf(last.NewAchievements))

	stats := f.userStats(t, userID)
	assert.Equal(t, 6, stats.UniqueVisitedStations)
	// 100 + 10 + 10 + 50 + 100 + 100
	assert.Equal(t, 370, stats.TotalScore)
}

func TestAchievements_AllLinesIgnoresEmptyLine(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "una")

	require.NoError(t, f.repos.station.UpsertLine(&model.Line{Name: "5호선", Number: 5, SortOrder: 5}))

	var stations []model.Station
	require.NoError(t, f.db.Find(&stations).Error)
	require.Len(t, stations, 23)
	for _, st := range stations {
		_, err := f.repos.stats.UpsertVisitedStation(userID, st.ID, f.now)
		require.NoError(t, err)
	}

	result := f.completeOne(t, userID, line1, time.Hour)
	assert.Contains(t, codesOf(result.NewAchievements), "ALL_LINES_MASTER")
}

func TestAchievements_FailureStillCountsChallenge(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "sam")

	created := f.start(t, userID, line1, 1)
	result, err := f.challenges.Fail(t.Context(), created.ChallengeID, userID)
	require.NoError(t, err)

	assert.Equal(t, []string{"FIRST_CHALLENGE"}, codesOf(result.NewAchievements))
	assert.Equal(t, 10, result.Stats.TotalScore)
}

func TestAchievements_Progress(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "tara")

	progress, err := f.achievements.GetProgress(userID)
	require.NoError(t, err)
	require.Len(t, progress, 17)
	for _, p := range progress {
		assert.False(t, p.IsUnlocked, p.Code)
		assert.Zero(t, p.Progress, p.Code)
	}

	f.completeOne(t, userID, line1, 2*time.Hour)

	byCode := progressByCode(mustProgress(t, f, userID))
	assert.True(t, byCode["FIRST_SUCCESS"].IsUnlocked)
	assert.Equal(t, 100, byCode["FIRST_SUCCESS"].Progress)
	assert.NotNil(t, byCode["FIRST_SUCCESS"].AchievedAt)

	assert.False(t, byCode["STATIONS_10"].IsUnlocked)
	assert.Equal(t, 10, byCode["STATIONS_10"].Progress)
	assert.Equal(t, 10, byCode["CHALLENGER_10"].Progress)
	// 1/6 车站
	assert.Equal(t, 16, byCode["LINE_1_MASTER"].Progress)
	// 用时 7200 秒，目标 3600 秒
	assert.False(t, byCode["SPEED_60"].IsUnlocked)
	assert.Equal(t, 50, byCode["SPEED_60"].Progress)
}

func mustProgress(t *testing.T, f *fixture, userID uint) []AchievementProgress {
	t.Helper()
	progress, err := f.achievements.GetProgress(userID)
	require.NoError(t, err)
	return progress
}

func progressByCode(progress []AchievementProgress) map[string]AchievementProgress {
	m := make(map[string]AchievementProgress, len(progress))
	for _, p := range progress {
		m[p.Code] = p
	}
	return m
}

func TestConditions(t *testing.T) {
	stats := &model.UserStats{
		TotalChallenges:     12,
		CompletedChallenges: 9,
		CurrentStreak:       4,
		BestTime:            2400,
	}
	cctx := &ConditionContext{
		Stats:          stats,
		UniqueStations: 25,
		Lines: []repository.LineCoverage{
			{LineName: "1호선", LineNumber: 1, TotalStations: 6, VisitedStations: 6},
			{LineName: "2호선", LineNumber: 2, TotalStations: 8, VisitedStations: 2},
		},
	}

	cases := []struct {
		name      string
		a         model.Achievement
		satisfied bool
		progress  int
	}{
		{"challenge count reached", model.Achievement{ConditionType: model.ConditionChallengeCount, ConditionValue: 10}, true, 100},
		{"success count partial", model.Achievement{ConditionType: model.ConditionSuccessCount, ConditionValue: 30}, false, 30},
		{"streak partial", model.Achievement{ConditionType: model.ConditionStreak, ConditionValue: 7}, false, 57},
		{"stations partial", model.Achievement{ConditionType: model.ConditionStationCount, ConditionValue: 50}, false, 50},
		{"time within limit", model.Achievement{ConditionType: model.ConditionTime, ConditionValue: 3600}, true, 100},
		{"time over limit", model.Achievement{ConditionType: model.ConditionTime, ConditionValue: 1800}, false, 75},
		{"line complete", model.Achievement{Code: "LINE_1_MASTER", ConditionType: model.ConditionLineComplete, ConditionValue: 1}, true, 100},
		{"line partial", model.Achievement{Code: "LINE_2_MASTER", ConditionType: model.ConditionLineComplete, ConditionValue: 2}, false, 25},
		{"unknown line", model.Achievement{Code: "LINE_9_MASTER", ConditionType: model.ConditionLineComplete, ConditionValue: 9}, false, 0},
		{"all lines", model.Achievement{Code: "ALL_LINES_MASTER", ConditionType: model.ConditionLineComplete}, false, 50},
		{"unknown type", model.Achievement{ConditionType: "weather"}, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluateCondition(&tc.a, cctx)
			assert.Equal(t, tc.satisfied, got.Satisfied)
			assert.Equal(t, tc.progress, got.Progress)
		})
	}
}

func TestConditions_AllLinesSkipsEmptyLines(t *testing.T) {
	all := &model.Achievement{Code: "ALL_LINES_MASTER", ConditionType: model.ConditionLineComplete}

	got := lineCompleteCondition(all, &ConditionContext{
		Stats: &model.UserStats{},
		Lines: []repository.LineCoverage{
			{LineName: "1호선", LineNumber: 1, TotalStations: 6, VisitedStations: 6},
			{LineName: "5호선", LineNumber: 5},
		},
	})
	assert.True(t, got.Satisfied)
	assert.Equal(t, 100, got.Progress)

	// 只有空线路时不算完成
	got = lineCompleteCondition(all, &ConditionContext{
		Stats: &model.UserStats{},
		Lines: []repository.LineCoverage{{LineName: "5호선", LineNumber: 5}},
	})
	assert.False(t, got.Satisfied)
	assert.Zero(t, got.Progress)
}

func TestConditions_NoBestTimeYet(t *testing.T) {
	cctx := &ConditionContext{Stats: &model.UserStats{}}
	got := timeCondition(&model.Achievement{ConditionType: model.ConditionTime, ConditionValue: 3600}, cctx)
	assert.False(t, got.Satisfied)
	assert.Zero(t, got.Progress)
}

func TestLineNumberOf(t *testing.T) {
	assert.Equal(t, 2, LineNumberOf(&model.Achievement{Code: "LINE_2_MASTER", ConditionValue: 7}))
	assert.Equal(t, 7, LineNumberOf(&model.Achievement{Code: "CUSTOM", ConditionValue: 7}))
	assert.Equal(t, 0, LineNumberOf(&model.Achievement{Code: "ALL_LINES_MASTER"}))
}
