package controller

import (
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/service"
	"subway_roulette_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary 成就目录
// @Description 全部可解锁成就
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Achievement}
// @Router /achievements [get]
func (c *AchievementController) GetCatalog(ctx *gin.Context) {
	catalog, err := c.AchievementService.GetCatalog()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, catalog)
}

// @Summary 获取用户成就
// @Description 用户已解锁的成就
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=[]model.UserAchievement}
// @Router /users/{userId}/achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	achievements, err := c.AchievementService.GetUserAchievements(pathUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

// @Summary 成就进度
// @Description 每个成就 0~100 的进度，只读
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=[]service.AchievementProgress}
// @Router /users/{userId}/achievements/progress [get]
func (c *AchievementController) GetProgress(ctx *gin.Context) {
	progress, err := c.AchievementService.GetProgress(pathUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 重新评估成就
// @Description 目录新增成就后，按当前统计补发已满足条件的成就；没有新进展时为空操作
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response{data=[]model.Achievement}
// @Router /users/{userId}/achievements/sync [post]
func (c *AchievementController) SyncAchievements(ctx *gin.Context) {
	newly, err := c.AchievementService.Evaluate(pathUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if newly == nil {
		newly = []model.Achievement{}
	}
	util.Success(ctx, newly)
}
