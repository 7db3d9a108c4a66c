package service

import (
	"errors"
	"math/rand/v2"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/internal/util"

	"gorm.io/gorm"
)

type StationService struct {
	StationRepo *repository.StationRepository
	// Pick 返回 [0,n) 的随机下标，测试中可替换
	Pick func(n int) int
}

func NewStationService(stationRepo *repository.StationRepository) *StationService {
	return &StationService{StationRepo: stationRepo, Pick: rand.IntN}
}

// SpinResult 轮盘结果：随机线路上的随机车站
type SpinResult struct {
	Line    model.Line    `json:"line"`
	Station model.Station `json:"station"`
}

func (s *StationService) ListLines() ([]repository.LineSummary, error) {
	return s.StationRepo.ListLines()
}

func (s *StationService) StationsOfLine(lineName string) ([]model.Station, error) {
	if _, err := s.StationRepo.FindLineByName(lineName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLineNotFound
		}
		return nil, err
	}
	return s.StationRepo.FindByLine(lineName)
}

// Spin 只在有车站的线路中抽取
func (s *StationService) Spin() (*SpinResult, error) {
	lines, err := s.StationRepo.ListLines()
	if err != nil {
		return nil, err
	}

	candidates := lines[:0]
	for _, l := range lines {
		if l.StationCount > 0 {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return nil, util.ErrInsufficientStations
	}

	line := candidates[s.Pick(len(candidates))]
	stations, err := s.StationRepo.FindByLine(line.Name)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, util.ErrInsufficientStations
	}

	return &SpinResult{Line: line.Line, Station: stations[s.Pick(len(stations))]}, nil
}
