package seed

import (
	_ "embed"
	"fmt"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed data/stations.yaml
var defaultStations []byte

type Dataset struct {
	Lines []LineData `yaml:"lines"`
}

type LineData struct {
	Name      string        `yaml:"name"`
	Number    int           `yaml:"number"`
	Color     string        `yaml:"color"`
	SortOrder int           `yaml:"sort_order"`
	Stations  []StationData `yaml:"stations"`
}

type StationData struct {
	Code      string  `yaml:"code"`
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// LoadDataset 解析 YAML 格式的线路数据
func LoadDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse station data: %w", err)
	}
	for _, l := range ds.Lines {
		if l.Name == "" {
			return nil, fmt.Errorf("line without name")
		}
		for _, s := range l.Stations {
			if s.Code == "" || s.Name == "" {
				return nil, fmt.Errorf("line %s: station without code or name", l.Name)
			}
		}
	}
	return &ds, nil
}

func DefaultDataset() (*Dataset, error) {
	return LoadDataset(defaultStations)
}

// Apply 按名称/编码写入线路与车站
func (ds *Dataset) Apply(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewStationRepository(tx)
		for _, l := range ds.Lines {
			line := &model.Line{Name: l.Name, Number: l.Number, Color: l.Color, SortOrder: l.SortOrder}
			if err := repo.UpsertLine(line); err != nil {
				return fmt.Errorf("upsert line %s: %w", l.Name, err)
			}
			for _, s := range l.Stations {
				station := &model.Station{
					Code:      s.Code,
					Name:      s.Name,
					LineName:  l.Name,
					Latitude:  s.Latitude,
					Longitude: s.Longitude,
				}
				if err := repo.UpsertStation(station); err != nil {
					return fmt.Errorf("upsert station %s: %w", s.Code, err)
				}
			}
		}
		return nil
	})
}

// SeedIfEmpty 车站表为空时写入内置数据；成就目录每次启动都按 code 同步
func SeedIfEmpty(db *gorm.DB) error {
	count, err := repository.NewStationRepository(db).CountStations()
	if err != nil {
		return err
	}
	if count == 0 {
		ds, err := DefaultDataset()
		if err != nil {
			return err
		}
		if err := ds.Apply(db); err != nil {
			return err
		}
		logger.Log.Info("seeded default stations", zap.Int("lines", len(ds.Lines)))
	}

	return SeedAchievements(db)
}

func SeedAchievements(db *gorm.DB) error {
	repo := repository.NewAchievementRepository(db)
	for _, a := range Catalog() {
		entry := a
		if err := repo.UpsertCatalogEntry(&entry); err != nil {
			return fmt.Errorf("upsert achievement %s: %w", a.Code, err)
		}
	}
	return nil
}
