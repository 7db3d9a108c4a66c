package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportResult 导入统计
type ImportResult struct {
	TotalProcessed int
	LinesCreated   int
	Imported       int
	Skipped        int
	Errors         []string
}

// 列顺序：code, name, line, latitude, longitude；首行为表头
const stationColumns = 5

// ImportStations 从 xlsx 或 csv 导入车站，按 code 覆盖写入
func ImportStations(db *gorm.DB, path string) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(path)
	default:
		return nil, fmt.Errorf("unsupported station file type: %s", path)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	err = db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewStationRepository(tx)
		knownLines := make(map[string]bool)

		for i, row := range rows {
			if i == 0 {
				continue
			}
			if isBlank(row) {
				continue
			}
			result.TotalProcessed++

			station, err := parseStationRow(row)
			if err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
				continue
			}

			if !knownLines[station.LineName] {
				created, err := ensureLine(repo, station.LineName)
				if err != nil {
					return err
				}
				if created {
					result.LinesCreated++
				}
				knownLines[station.LineName] = true
			}

			if err := repo.UpsertStation(station); err != nil {
				return fmt.Errorf("row %d: upsert station %s: %w", i+1, station.Code, err)
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return parseCSV(file)
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseStationRow(row []string) (*model.Station, error) {
	if len(row) < stationColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", stationColumns, len(row))
	}
	code := strings.TrimSpace(row[0])
	name := strings.TrimSpace(row[1])
	line := strings.TrimSpace(row[2])
	if code == "" || name == "" || line == "" {
		return nil, errors.New("code, name and line are required")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude %q", row[3])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("invalid longitude %q", row[4])
	}

	return &model.Station{Code: code, Name: name, LineName: line, Latitude: lat, Longitude: lng}, nil
}

var lineNumberPattern = regexp.MustCompile(`^(?:Line\s*)?(\d+)(?:호선)?$`)

// LineNumberFromName "2호선" / "Line 2" -> 2，其他名称为 0
func LineNumberFromName(name string) int {
	m := lineNumberPattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// ensureLine 线路不存在时创建，已有线路保持原有颜色与排序
func ensureLine(repo *repository.StationRepository, name string) (bool, error) {
	_, err := repo.FindLineByName(name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	number := LineNumberFromName(name)
	line := &model.Line{Name: name, Number: number, SortOrder: number}
	if err := repo.UpsertLine(line); err != nil {
		return false, fmt.Errorf("create line %s: %w", name, err)
	}
	return true, nil
}
