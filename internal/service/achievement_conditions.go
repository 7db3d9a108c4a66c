package service

import (
	"regexp"
	"strconv"
	"subway_roulette_backend/internal/model"
	"subway_roulette_backend/internal/repository"
)

// ConditionContext 评估成就条件所需的数据快照
type ConditionContext struct {
	Stats *model.UserStats
	// UniqueStations 实时统计的不同车站数
	UniqueStations int
	// Lines 为 nil 表示尚未加载；只有线路类成就需要它
	Lines []repository.LineCoverage
}

// conditionResult 条件是否满足以及 0..100 的进度
type conditionResult struct {
	Satisfied bool
	Progress  int
}

type conditionFunc func(a *model.Achievement, c *ConditionContext) conditionResult

var conditionEvaluators = map[model.ConditionType]conditionFunc{
	model.ConditionChallengeCount: thresholdCondition(func(c *ConditionContext) int { return c.Stats.TotalChallenges }),
	model.ConditionSuccessCount:   thresholdCondition(func(c *ConditionContext) int { return c.Stats.CompletedChallenges }),
	model.ConditionStreak:         thresholdCondition(func(c *ConditionContext) int { return c.Stats.CurrentStreak }),
	model.ConditionStationCount:   thresholdCondition(func(c *ConditionContext) int { return c.UniqueStations }),
	model.ConditionTime:           timeCondition,
	model.ConditionLineComplete:   lineCompleteCondition,
}

// needsLines 该条件是否需要线路覆盖数据
func needsLines(t model.ConditionType) bool {
	return t == model.ConditionLineComplete
}

func evaluateCondition(a *model.Achievement, c *ConditionContext) conditionResult {
	fn, ok := conditionEvaluators[a.ConditionType]
	if !ok {
		return conditionResult{}
	}
	return fn(a, c)
}

func percent(current, target int) int {
	if target <= 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	p := current * 100 / target
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

func thresholdCondition(value func(*ConditionContext) int) conditionFunc {
	return func(a *model.Achievement, c *ConditionContext) conditionResult {
		current := value(c)
		return conditionResult{
			Satisfied: current >= a.ConditionValue,
			Progress:  percent(current, a.ConditionValue),
		}
	}
}

// timeCondition 任一完成挑战的用时（秒）不超过 condition_value。
// best_time 是所有完成挑战用时的最小值，0 表示还没有记录。
func timeCondition(a *model.Achievement, c *ConditionContext) conditionResult {
	best := c.Stats.BestTime
	if best <= 0 {
		return conditionResult{}
	}
	if best <= int64(a.ConditionValue) {
		return conditionResult{Satisfied: true, Progress: 100}
	}
	return conditionResult{Progress: percent(a.ConditionValue, int(best))}
}

var lineCodePattern = regexp.MustCompile(`^LINE_(\d+)_`)

// LineNumberOf 线路成就对应的线路编号：优先从 code 解析，其次取 condition_value；0 表示全部线路
func LineNumberOf(a *model.Achievement) int {
	if m := lineCodePattern.FindStringSubmatch(a.Code); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return a.ConditionValue
}

func lineCompleteCondition(a *model.Achievement, c *ConditionContext) conditionResult {
	number := LineNumberOf(a)

	if number == 0 {
		// 没有车站的线路不参与全线路判定
		total, completed := 0, 0
		for _, l := range c.Lines {
			if l.TotalStations == 0 {
				continue
			}
			total++
			if l.Complete() {
				completed++
			}
		}
		if total == 0 {
			return conditionResult{}
		}
		return conditionResult{
			Satisfied: completed == total,
			Progress:  percent(completed, total),
		}
	}

	for _, l := range c.Lines {
		if l.LineNumber == number {
			return conditionResult{
				Satisfied: l.Complete(),
				Progress:  percent(l.VisitedStations, l.TotalStations),
			}
		}
	}
	return conditionResult{}
}
