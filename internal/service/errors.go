package service

import (
	"fmt"
	"time"
)

// VerifyErrorKind 到站验证失败种类
type VerifyErrorKind string

const (
	VerifyValidation      VerifyErrorKind = "validation"
	VerifyNotFound        VerifyErrorKind = "not_found"
	VerifyExpired         VerifyErrorKind = "expired"
	VerifyTooFar          VerifyErrorKind = "too_far"
	VerifyAlreadyVerified VerifyErrorKind = "already_verified"
)

// VerifyError 业务规则拒绝，携带前端展示用的辅助字段
type VerifyError struct {
	Kind    VerifyErrorKind
	Message string

	Distance    float64
	MaxDistance float64
	StationName string
	ElapsedMs   int64
	LimitMs     int64
	VisitedAt   *time.Time
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func validationError(msg string) *VerifyError {
	return &VerifyError{Kind: VerifyValidation, Message: msg}
}

func notFoundError(what string) *VerifyError {
	return &VerifyError{Kind: VerifyNotFound, Message: what + " not found"}
}

func expiredError(elapsed, limit time.Duration) *VerifyError {
	return &VerifyError{
		Kind:      VerifyExpired,
		Message:   "challenge time limit exceeded",
		ElapsedMs: elapsed.Milliseconds(),
		LimitMs:   limit.Milliseconds(),
	}
}

func tooFarError(distance, max float64, stationName string) *VerifyError {
	return &VerifyError{
		Kind:        VerifyTooFar,
		Message:     fmt.Sprintf("too far from %s", stationName),
		Distance:    distance,
		MaxDistance: max,
		StationName: stationName,
	}
}

func alreadyVerifiedError(visitedAt *time.Time) *VerifyError {
	return &VerifyError{
		Kind:      VerifyAlreadyVerified,
		Message:   "station already verified",
		VisitedAt: visitedAt,
	}
}
