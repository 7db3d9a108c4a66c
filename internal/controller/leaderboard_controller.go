package controller

import (
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/internal/service"
	"subway_roulette_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// @Summary 获取排行榜
// @Description 按积分、最长连胜、车站数或成功率排序；成功率榜要求至少 10 次挑战
// @Tags 排行榜
// @Produce json
// @Security ApiKeyAuth
// @Param type query string false "榜单类型" Enums(score, streak, stations, success_rate) default(score)
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Failure 400 {object} util.Response
// @Router /leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	kind := repository.RankingType(ctx.DefaultQuery("type", string(repository.RankByScore)))
	limit := util.ParseLimit(ctx.Query("limit"), service.DefaultLeaderboardLimit, service.MaxLeaderboardLimit)

	entries, err := c.LeaderboardService.Top(kind, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 周排行榜
// @Description 最近 7 天完成的挑战数
// @Tags 排行榜
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response{data=[]service.WeeklyEntry}
// @Router /leaderboard/weekly [get]
func (c *LeaderboardController) GetWeekly(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), service.DefaultLeaderboardLimit, service.MaxLeaderboardLimit)

	entries, err := c.LeaderboardService.Weekly(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 用户名次
// @Description 各榜单名次，未上榜为 null
// @Tags 排行榜
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=service.UserRank}
// @Router /users/{userId}/rank [get]
func (c *LeaderboardController) GetUserRank(ctx *gin.Context) {
	rank, err := c.LeaderboardService.UserRank(pathUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rank)
}
