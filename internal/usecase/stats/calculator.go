package stats

import (
	"tg-insights/internal/domain"
)

// Compute строит статистику по полному журналу пользователя. Чистая функция:
// пустой журнал даёт нулевой снимок, а не ошибку.
func Compute(records []domain.MessageRecord) domain.StatisticsSnapshot {
	if len(records) == 0 {
		return domain.StatisticsSnapshot{}
	}

	var totalLength int
	var withMedia int
	hours := make(map[int]int)
	weekdays := make(map[int]int)
	dates := make(map[string]struct{})
	for _, rec := range records {
		totalLength += rec.TextLength
		if rec.HasMedia {
			withMedia++
		}
		hours[rec.Hour]++
		weekdays[rec.Weekday]++
		dates[rec.Timestamp.Format("2006-01-02")] = struct{}{}
	}

	total := len(records)
	distinctDates := len(dates)
	if distinctDates < 1 {
		distinctDates = 1
	}

	return domain.StatisticsSnapshot{
		TotalMessages:     total,
		AvgMessageLength:  float64(totalLength) / float64(total),
		MostActiveHour:    mode(hours),
		MostActiveWeekday: mode(weekdays),
		MediaPercentage:   float64(withMedia) / float64(total) * 100,
		DailyAvg:          float64(total) / float64(distinctDates),
	}
}

// mode возвращает самое частое значение; при равной частоте — наименьшее.
func mode(counts map[int]int) int {
	best := 0
	bestCount := -1
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value < best) {
			best = value
			bestCount = count
		}
	}
	return best
}
