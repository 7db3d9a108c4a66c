package controller

import (
	"errors"
	"net/http"
	"subway_roulette_backend/internal/service"
	"subway_roulette_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把业务错误映射为 HTTP 状态码，未识别的错误记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	var verr *service.VerifyError
	if errors.As(err, &verr) {
		respondVerifyError(ctx, verr)
		return
	}

	switch {
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrLineNotFound),
		errors.Is(err, util.ErrStationNotFound),
		errors.Is(err, util.ErrChallengeNotFound):
		util.NotFoundWithMessage(ctx, err.Error())
	case errors.Is(err, util.ErrInsufficientStations),
		errors.Is(err, util.ErrInvalidStationCount),
		errors.Is(err, util.ErrUnknownLeaderboardType):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrActiveChallengeExists),
		errors.Is(err, util.ErrInvalidStatusTransition):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

func respondVerifyError(ctx *gin.Context, verr *service.VerifyError) {
	switch verr.Kind {
	case service.VerifyNotFound:
		util.NotFoundWithMessage(ctx, verr.Message)
	case service.VerifyTooFar:
		util.ErrorWithData(ctx, http.StatusBadRequest, verr.Message, gin.H{
			"distance":    verr.Distance,
			"maxDistance": verr.MaxDistance,
			"stationName": verr.StationName,
		})
	case service.VerifyExpired:
		util.ErrorWithData(ctx, http.StatusBadRequest, verr.Message, gin.H{
			"elapsedMs": verr.ElapsedMs,
			"limitMs":   verr.LimitMs,
		})
	case service.VerifyAlreadyVerified:
		util.ErrorWithData(ctx, http.StatusBadRequest, verr.Message, gin.H{
			"visitedAt": verr.VisitedAt,
		})
	default:
		util.BadRequest(ctx, verr.Message)
	}
}

// currentUserID 从上下文取登录用户，未登录时已写出 401
func currentUserID(ctx *gin.Context) (uint, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return user.UserID, true
}

// pathUserID 读取 :userId；RequireSelf 已校验过归属
func pathUserID(ctx *gin.Context) uint {
	return util.MustParseUint(ctx.Param("userId"))
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}
