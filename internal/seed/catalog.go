package seed

import "subway_roulette_backend/internal/model"

// Catalog 内置成就目录。线路成就通过 code 中的 LINE_<n> 指定线路编号，0 表示全部线路。
func Catalog() []model.Achievement {
	return []model.Achievement{
		{Code: "FIRST_CHALLENGE", Name: "First Ride", Description: "Start your first challenge", Category: "challenge", Tier: "bronze", ConditionType: model.ConditionChallengeCount, ConditionValue: 1, Points: 10},
		{Code: "CHALLENGER_10", Name: "Regular Rider", Description: "Take on 10 challenges", Category: "challenge", Tier: "silver", ConditionType: model.ConditionChallengeCount, ConditionValue: 10, Points: 30},
		{Code: "CHALLENGER_50", Name: "Commuter", Description: "Take on 50 challenges", Category: "challenge", Tier: "gold", ConditionType: model.ConditionChallengeCount, ConditionValue: 50, Points: 100},

		{Code: "FIRST_SUCCESS", Name: "Arrived", Description: "Complete your first challenge", Category: "success", Tier: "bronze", ConditionType: model.ConditionSuccessCount, ConditionValue: 1, Points: 10},
		{Code: "SUCCESS_10", Name: "Navigator", Description: "Complete 10 challenges", Category: "success", Tier: "silver", ConditionType: model.ConditionSuccessCount, ConditionValue: 10, Points: 50},
		{Code: "SUCCESS_30", Name: "Pathfinder", Description: "Complete 30 challenges", Category: "success", Tier: "gold", ConditionType: model.ConditionSuccessCount, ConditionValue: 30, Points: 150},

		{Code: "STREAK_3", Name: "On a Roll", Description: "Complete 3 challenges in a row", Category: "streak", Tier: "bronze", ConditionType: model.ConditionStreak, ConditionValue: 3, Points: 30},
		{Code: "STREAK_7", Name: "Unstoppable", Description: "Complete 7 challenges in a row", Category: "streak", Tier: "silver", ConditionType: model.ConditionStreak, ConditionValue: 7, Points: 70},
		{Code: "STREAK_15", Name: "Express Line", Description: "Complete 15 challenges in a row", Category: "streak", Tier: "gold", ConditionType: model.ConditionStreak, ConditionValue: 15, Points: 150},

		{Code: "STATIONS_10", Name: "Explorer", Description: "Visit 10 different stations", Category: "station", Tier: "bronze", ConditionType: model.ConditionStationCount, ConditionValue: 10, Points: 30},
		{Code: "STATIONS_50", Name: "Cartographer", Description: "Visit 50 different stations", Category: "station", Tier: "silver", ConditionType: model.ConditionStationCount, ConditionValue: 50, Points: 100},
		{Code: "STATIONS_100", Name: "Living Map", Description: "Visit 100 different stations", Category: "station", Tier: "gold", ConditionType: model.ConditionStationCount, ConditionValue: 100, Points: 200},

		{Code: "SPEED_60", Name: "Quick Trip", Description: "Complete a challenge within 60 minutes", Category: "speed", Tier: "silver", ConditionType: model.ConditionTime, ConditionValue: 3600, Points: 50},
		{Code: "SPEED_30", Name: "Rush Hour", Description: "Complete a challenge within 30 minutes", Category: "speed", Tier: "gold", ConditionType: model.ConditionTime, ConditionValue: 1800, Points: 100},

		{Code: "LINE_1_MASTER", Name: "Line 1 Master", Description: "Visit every station on line 1", Category: "line", Tier: "gold", ConditionType: model.ConditionLineComplete, ConditionValue: 1, Points: 100},
		{Code: "LINE_2_MASTER", Name: "Line 2 Master", Description: "Visit every station on line 2", Category: "line", Tier: "gold", ConditionType: model.ConditionLineComplete, ConditionValue: 2, Points: 150},
		{Code: "ALL_LINES_MASTER", Name: "Network Master", Description: "Visit every station on every line", Category: "line", Tier: "platinum", ConditionType: model.ConditionLineComplete, ConditionValue: 0, Points: 500},
	}
}
