package service

import (
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/internal/seed"
	"subway_roulette_backend/internal/testutil"
	"subway_roulette_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationService(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewStationService(repository.NewStationRepository(db))

	_, err := s.Spin()
	assert.ErrorIs(t, err, util.ErrInsufficientStations)

	require.NoError(t, seed.SeedIfEmpty(db))

	lines, err := s.ListLines()
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, line1, lines[0].Name)
	assert.Equal(t, 6, lines[0].StationCount)

	stations, err := s.StationsOfLine(line2)
	require.NoError(t, err)
	assert.Len(t, stations, 7)

	_, err = s.StationsOfLine("없는선")
	assert.ErrorIs(t, err, util.ErrLineNotFound)

	// 第二条线路的最后一个车站
	s.Pick = func(n int) int {
		if n == 4 {
			return 1
		}
		return n - 1
	}
	spin, err := s.Spin()
	require.NoError(t, err)
	assert.Equal(t, line2, spin.Line.Name)
	assert.Equal(t, "239", spin.Station.Code)
}
