package controller

import (
	"subway_roulette_backend/internal/service"
	"subway_roulette_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// StatsController 用户统计相关的只读接口
type StatsController struct {
	StatsService     *service.StatsService
	ChallengeService *service.ChallengeService
}

func NewStatsController(statsService *service.StatsService, challengeService *service.ChallengeService) *StatsController {
	return &StatsController{StatsService: statsService, ChallengeService: challengeService}
}

// @Summary 用户统计
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=model.UserStats}
// @Router /users/{userId}/stats [get]
func (c *StatsController) GetStats(ctx *gin.Context) {
	stats, err := c.StatsService.GetUserStats(pathUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 线路完成度
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=[]service.LineStat}
// @Router /users/{userId}/line-stats [get]
func (c *StatsController) GetLineStats(ctx *gin.Context) {
	stats, err := c.StatsService.GetLineStats(pathUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 已访问车站
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=[]repository.VisitedStationRecord}
// @Router /users/{userId}/visited-stations [get]
func (c *StatsController) GetVisitedStations(ctx *gin.Context) {
	stations, err := c.StatsService.GetVisitedStations(pathUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stations)
}

// @Summary 最近活动
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response{data=[]model.Challenge}
// @Router /users/{userId}/recent-activities [get]
func (c *StatsController) GetRecentActivities(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), 10, util.MaxPageSize)
	activities, err := c.ChallengeService.RecentActivities(pathUserID(ctx), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, activities)
}
