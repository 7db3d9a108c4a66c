package model

// Line 地铁线路（参考数据）
type Line struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Number    int    `gorm:"default:0;index" json:"number"` // 编号线路的数字，非编号线路为 0
	Color     string `gorm:"size:16" json:"color"`
	SortOrder int    `gorm:"default:0" json:"sortOrder"`
}

func (Line) TableName() string {
	return "subway_lines"
}

// Station 车站，种子导入后只读
type Station struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string  `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string  `gorm:"size:100;not null" json:"name"`
	LineName  string  `gorm:"size:50;index;not null" json:"lineName"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
}

func (Station) TableName() string {
	return "stations"
}
