package controller

import (
	"subway_roulette_backend/internal/service"
	"subway_roulette_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VisitController struct {
	VisitService *service.VisitService
}

func NewVisitController(visitService *service.VisitService) *VisitController {
	return &VisitController{VisitService: visitService}
}

// VerifyVisit godoc
// @Summary 到站验证
// @Description 提交 GPS 坐标，距离车站 100 米内且未超时则验证成功
// @Tags 到站
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.VerifyVisitInput true "坐标"
// @Success 200 {object} util.Response{data=service.VerifyVisitResult}
// @Failure 400 {object} util.Response "距离过远、已超时或重复验证"
// @Failure 404 {object} util.Response "挑战、车站或访问记录不存在"
// @Failure 429 {object} util.Response
// @Router /visits [post]
func (c *VisitController) VerifyVisit(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var in service.VerifyVisitInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if in.UserID != nil && *in.UserID != userID {
		util.Forbidden(ctx)
		return
	}

	result, err := c.VisitService.Verify(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 到站记录
// @Tags 到站
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Param limit query int false "返回数量" default(100)
// @Success 200 {object} util.Response{data=[]repository.VisitRecord}
// @Router /visits/{userId} [get]
func (c *VisitController) GetUserVisits(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), 100, 500)
	visits, err := c.VisitService.GetUserVisits(pathUserID(ctx), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, visits)
}
