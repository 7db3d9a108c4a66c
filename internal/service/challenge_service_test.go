package service

import (
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChallenge_Validation(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "uma")

	cases := []struct {
		name  string
		line  string
		count int
		want  error
	}{
		{"too many stations", line1, MaxStationsPerChallenge + 1, util.ErrInvalidStationCount},
		{"negative count", line1, -1, util.ErrInvalidStationCount},
		{"unknown line", "9호선", 1, util.ErrLineNotFound},
		{"line shorter than count", line3, 6, util.ErrInsufficientStations},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.challenges.Create(t.Context(), CreateChallengeRequest{
				UserID: userID, LineName: tc.line, StationCount: tc.count,
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateChallenge_DefaultsToOneStation(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "vera")

	created := f.start(t, userID, line2, 0)
	assert.Len(t, created.Stations, 1)
	assert.Equal(t, (3 * time.Hour).Milliseconds(), created.TimeLimitMs)

	detail, err := f.challenges.Get(created.ChallengeID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.TotalStations)
	require.Len(t, detail.Visits, 1)
	assert.False(t, detail.Visits[0].IsVerified)
	require.NotNil(t, detail.Visits[0].Station)
	assert.Equal(t, created.Stations[0].Code, detail.Visits[0].Station.Code)
}

func TestCreateChallenge_DistinctStations(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "will")
	f.challenges.Shuffle = func(n int, swap func(i, j int)) {
		// 倒序
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}

	created := f.start(t, userID, line3, 5)
	seen := map[uint]bool{}
	for _, s := range created.Stations {
		assert.False(t, seen[s.ID], "duplicate station %s", s.Code)
		seen[s.ID] = true
		assert.Equal(t, line3, s.LineName)
	}
	assert.Equal(t, "339", created.Stations[0].Code)
}

func TestCreateChallenge_OnlyOneActive(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "xena")

	first := f.start(t, userID, line1, 1)

	_, err := f.challenges.Create(t.Context(), CreateChallengeRequest{UserID: userID, LineName: line2, StationCount: 1})
	assert.ErrorIs(t, err, util.ErrActiveChallengeExists)

	// 超时后再开新挑战，旧挑战按失败结算
	f.advance(3*time.Hour + time.Minute)
	second := f.start(t, userID, line2, 1)
	assert.NotEqual(t, first.ChallengeID, second.ChallengeID)

	old, err := f.challengeByID(first.ChallengeID)
	require.NoError(t, err)
	assert.Equal(t, model.ChallengeFailed, old.Status)

	stats := f.userStats(t, userID)
	assert.Equal(t, 1, stats.FailedChallenges)
	assert.Equal(t, 1, stats.TotalChallenges)
}

func TestChallenge_GetRemainingTime(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "yuri")
	other := f.createUser(t, "zoe")

	created := f.start(t, userID, line1, 1)
	f.advance(time.Hour)

	detail, err := f.challenges.Get(created.ChallengeID, userID)
	require.NoError(t, err)
	assert.Equal(t, (2 * time.Hour).Milliseconds(), detail.RemainingMs)

	f.advance(5 * time.Hour)
	detail, err = f.challenges.Get(created.ChallengeID, userID)
	require.NoError(t, err)
	assert.Zero(t, detail.RemainingMs)

	_, err = f.challenges.Get(created.ChallengeID, other)
	assert.ErrorIs(t, err, util.ErrChallengeNotFound)
}

func TestChallenge_CancelDoesNotTouchStats(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "adam")

	created := f.start(t, userID, line1, 1)
	cancelled, err := f.challenges.Cancel(t.Context(), created.ChallengeID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.ChallengeCancelled, cancelled.Status)

	_, err = f.repos.stats.FindByUserID(userID)
	assert.Error(t, err)

	t.Run("terminal challenge cannot move again", func(t *testing.T) {
		_, err := f.challenges.Cancel(t.Context(), created.ChallengeID, userID)
		assert.ErrorIs(t, err, util.ErrInvalidStatusTransition)

		_, err = f.challenges.Fail(t.Context(), created.ChallengeID, userID)
		assert.ErrorIs(t, err, util.ErrInvalidStatusTransition)
	})

	t.Run("new challenge allowed after cancel", func(t *testing.T) {
		f.start(t, userID, line1, 1)
	})
}

func TestChallenge_FailUnknown(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "bella")

	_, err := f.challenges.Fail(t.Context(), 42, userID)
	assert.ErrorIs(t, err, util.ErrChallengeNotFound)
}

func TestChallenge_ExpireOverdue(t *testing.T) {
	f := newFixture(t)
	u1 := f.createUser(t, "cody")
	u2 := f.createUser(t, "dina")
	u3 := f.createUser(t, "eli")

	c1 := f.start(t, u1, line1, 1)
	c2 := f.start(t, u2, line2, 2)
	f.advance(2 * time.Hour)
	c3 := f.start(t, u3, line3, 1)

	f.advance(time.Hour + time.Minute)
	expired, err := f.challenges.ExpireOverdue(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	for _, id := range []uint{c1.ChallengeID, c2.ChallengeID} {
		ch, err := f.challengeByID(id)
		require.NoError(t, err)
		assert.Equal(t, model.ChallengeFailed, ch.Status)
	}
	ch, err := f.challengeByID(c3.ChallengeID)
	require.NoError(t, err)
	assert.Equal(t, model.ChallengeInProgress, ch.Status)

	assert.Equal(t, 1, f.userStats(t, u1).FailedChallenges)
	assert.Equal(t, 1, f.userStats(t, u2).FailedChallenges)

	expired, err = f.challenges.ExpireOverdue(t.Context())
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestChallenge_ListAndRecent(t *testing.T) {
	f := newFixture(t)
	userID := f.createUser(t, "fred")

	f.completeOne(t, userID, line1, time.Minute)
	f.failOne(t, userID, line2)
	f.advance(time.Minute)
	f.completeOne(t, userID, line3, time.Minute)

	page, err := f.challenges.List(userID, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	list, ok := page.List.([]model.Challenge)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, line3, list[0].LineName)

	page, err = f.challenges.List(userID, model.ChallengeFailed, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	recent, err := f.challenges.RecentActivities(userID, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, line3, recent[0].LineName)
}
