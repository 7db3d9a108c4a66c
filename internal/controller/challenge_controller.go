package controller

import (
	"strconv"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/service"
	"subway_roulette_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
}

func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{ChallengeService: challengeService}
}

// CreateChallenge godoc
// @Summary 开始挑战
// @Description 在指定线路上随机抽取车站并开始计时
// @Tags 挑战
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateChallengeRequest true "挑战参数"
// @Success 201 {object} util.Response{data=service.CreateChallengeResult}
// @Failure 400 {object} util.Response "车站数量不足"
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response "已有进行中的挑战"
// @Router /challenges [post]
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CreateChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.UserID != userID {
		util.Forbidden(ctx)
		return
	}

	result, err := c.ChallengeService.Create(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary 挑战详情
// @Tags 挑战
// @Produce json
// @Security ApiKeyAuth
// @Param challengeId path int true "挑战ID"
// @Success 200 {object} util.Response{data=service.ChallengeDetail}
// @Failure 404 {object} util.Response
// @Router /challenges/{challengeId} [get]
func (c *ChallengeController) GetChallenge(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	challengeID, ok := pathID(ctx, "challengeId")
	if !ok {
		return
	}

	detail, err := c.ChallengeService.Get(challengeID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 挑战历史
// @Tags 挑战
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Param status query string false "状态过滤" Enums(in_progress, completed, failed, cancelled)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /users/{userId}/challenges [get]
func (c *ChallengeController) ListChallenges(ctx *gin.Context) {
	status := model.ChallengeStatus(ctx.Query("status"))
	if status != "" && !status.Valid() {
		util.BadRequest(ctx, "invalid status")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit := util.ParseLimit(ctx.Query("limit"), util.DefaultPageSize, util.MaxPageSize)

	result, err := c.ChallengeService.List(pathUserID(ctx), status, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 放弃挑战
// @Description 进行中的挑战记为失败，连胜清零
// @Tags 挑战
// @Produce json
// @Security ApiKeyAuth
// @Param challengeId path int true "挑战ID"
// @Success 200 {object} util.Response{data=service.ResolutionResult}
// @Failure 409 {object} util.Response "挑战已结束"
// @Router /challenges/{challengeId}/fail [post]
func (c *ChallengeController) FailChallenge(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	challengeID, ok := pathID(ctx, "challengeId")
	if !ok {
		return
	}

	result, err := c.ChallengeService.Fail(ctx.Request.Context(), challengeID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 取消挑战
// @Description 取消不计入统计
// @Tags 挑战
// @Produce json
// @Security ApiKeyAuth
// @Param challengeId path int true "挑战ID"
// @Success 200 {object} util.Response{data=model.Challenge}
// @Failure 409 {object} util.Response "挑战已结束"
// @Router /challenges/{challengeId}/cancel [post]
func (c *ChallengeController) CancelChallenge(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	challengeID, ok := pathID(ctx, "challengeId")
	if !ok {
		return
	}

	challenge, err := c.ChallengeService.Cancel(ctx.Request.Context(), challengeID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, challenge)
}
