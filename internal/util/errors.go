package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrLineNotFound            = errors.New("line not found")
	ErrStationNotFound         = errors.New("station not found")
	ErrChallengeNotFound       = errors.New("challenge not found")
	ErrInsufficientStations    = errors.New("not enough stations on this line")
	ErrInvalidStationCount     = errors.New("invalid station count")
	ErrActiveChallengeExists   = errors.New("an in-progress challenge already exists")
	ErrInvalidStatusTransition = errors.New("challenge is not in progress")
	ErrUnknownLeaderboardType  = errors.New("unknown leaderboard type")
)
