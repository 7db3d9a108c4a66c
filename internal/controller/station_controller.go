package controller

import (
	"subway_roulette_backend/internal/service"
	"subway_roulette_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StationController struct {
	StationService *service.StationService
}

func NewStationController(stationService *service.StationService) *StationController {
	return &StationController{StationService: stationService}
}

// @Summary 线路列表
// @Description 全部线路及车站数量
// @Tags 线路
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]repository.LineSummary}
// @Router /lines [get]
func (c *StationController) ListLines(ctx *gin.Context) {
	lines, err := c.StationService.ListLines()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, lines)
}

// @Summary 线路车站
// @Tags 线路
// @Produce json
// @Security ApiKeyAuth
// @Param lineName path string true "线路名称"
// @Success 200 {object} util.Response{data=[]model.Station}
// @Failure 404 {object} util.Response
// @Router /lines/{lineName}/stations [get]
func (c *StationController) ListStations(ctx *gin.Context) {
	stations, err := c.StationService.StationsOfLine(ctx.Param("lineName"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stations)
}

// @Summary 转动轮盘
// @Description 随机选择一条线路及其上的一个车站，不创建挑战
// @Tags 线路
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SpinResult}
// @Router /roulette/spin [post]
func (c *StationController) Spin(ctx *gin.Context) {
	result, err := c.StationService.Spin()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
