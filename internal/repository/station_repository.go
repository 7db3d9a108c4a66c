package repository

import (
	"subway_roulette_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StationRepository struct {
	DB *gorm.DB
}

func NewStationRepository(db *gorm.DB) *StationRepository {
	return &StationRepository{DB: db}
}

func (r *StationRepository) WithTx(tx *gorm.DB) *StationRepository {
	return &StationRepository{DB: tx}
}

// LineSummary 线路及其车站数
type LineSummary struct {
	model.Line
	StationCount int `json:"stationCount"`
}

// LineCoverage 用户在某条线路上的访问覆盖
type LineCoverage struct {
	LineName        string `json:"lineName"`
	LineNumber      int    `json:"lineNumber"`
	Color           string `json:"color"`
	TotalStations   int    `json:"totalStations"`
	VisitedStations int    `json:"visitedStations"`
}

func (c LineCoverage) Complete() bool {
	return c.TotalStations > 0 && c.VisitedStations >= c.TotalStations
}

func (r *StationRepository) FindByID(id uint) (*model.Station, error) {
	var station model.Station
	if err := r.DB.First(&station, id).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *StationRepository) FindByLine(lineName string) ([]model.Station, error) {
	var stations []model.Station
	err := r.DB.Where("line_name = ?", lineName).Order("id ASC").Find(&stations).Error
	return stations, err
}

func (r *StationRepository) FindLineByName(name string) (*model.Line, error) {
	var line model.Line
	if err := r.DB.Where("name = ?", name).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *StationRepository) ListLines() ([]LineSummary, error) {
	var lines []LineSummary
	err := r.DB.Table("subway_lines AS l").
		Select("l.*, COUNT(s.id) AS station_count").
		Joins("LEFT JOIN stations s ON s.line_name = l.name").
		Group("l.id").
		Order("l.sort_order ASC, l.id ASC").
		Scan(&lines).Error
	return lines, err
}

func (r *StationRepository) CountStations() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Station{}).Count(&count).Error
	return count, err
}

// LineCoverage 每条线路的车站总数与该用户已访问的不同车站数
func (r *StationRepository) LineCoverage(userID uint) ([]LineCoverage, error) {
	var rows []LineCoverage
	err := r.DB.Table("subway_lines AS l").
		Select("l.name AS line_name, l.number AS line_number, l.color AS color, "+
			"COUNT(s.id) AS total_stations, COUNT(uvs.id) AS visited_stations").
		Joins("LEFT JOIN stations s ON s.line_name = l.name").
		Joins("LEFT JOIN user_visited_stations uvs ON uvs.station_id = s.id AND uvs.user_id = ?", userID).
		Group("l.id, l.name, l.number, l.color, l.sort_order").
		Order("l.sort_order ASC, l.id ASC").
		Scan(&rows).Error
	return rows, err
}

// UpsertLine 按名称写入线路
func (r *StationRepository) UpsertLine(line *model.Line) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"number", "color", "sort_order"}),
	}).Create(line).Error
}

// UpsertStation 按车站编码写入
func (r *StationRepository) UpsertStation(station *model.Station) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "line_name", "latitude", "longitude"}),
	}).Create(station).Error
}
