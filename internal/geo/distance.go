// Package geo 提供 GPS 坐标之间的距离计算。
package geo

import "math"

// EarthRadiusMeters 地球平均半径（米）
const EarthRadiusMeters = 6371000.0

// Point WGS84 坐标（度）
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// DistanceMeters 使用 haversine 公式计算两点间的大圆距离（米）。
// NaN 或越界坐标由调用方负责。
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	φ1 := toRadians(lat1)
	φ2 := toRadians(lat2)
	dφ := toRadians(lat2 - lat1)
	dλ := toRadians(lng2 - lng1)

	sinDφ := math.Sin(dφ / 2)
	sinDλ := math.Sin(dλ / 2)

	a := sinDφ*sinDφ + math.Cos(φ1)*math.Cos(φ2)*sinDλ*sinDλ
	// 浮点误差可能让 a 略大于 1
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

func Distance(a, b Point) float64 {
	return DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Within 判断两点距离是否不超过 radius，同时返回距离
func Within(a, b Point, radius float64) (float64, bool) {
	d := Distance(a, b)
	return d, d <= radius
}
