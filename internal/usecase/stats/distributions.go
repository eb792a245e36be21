package stats

import (
	"fmt"
	"sort"
	"strconv"

	"tg-insights/internal/domain"
)

// weekdayLabels — подписи дней недели в порядке Пн..Вс.
var weekdayLabels = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// HourDistribution считает сообщения по часам суток. В результат попадают
// только часы, встречающиеся в журнале, по возрастанию.
func HourDistribution(records []domain.MessageRecord) []domain.Bucket {
	if len(records) == 0 {
		return nil
	}
	counts := make(map[int]int)
	for _, rec := range records {
		counts[rec.Hour]++
	}
	hours := make([]int, 0, len(counts))
	for hour := range counts {
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	buckets := make([]domain.Bucket, 0, len(hours))
	for _, hour := range hours {
		buckets = append(buckets, domain.Bucket{Label: strconv.Itoa(hour), Count: counts[hour]})
	}
	return buckets
}

// WeekdayDistribution считает сообщения по дням недели. Возвращаются все семь
// дней в порядке Пн..Вс, в том числе с нулевым счётчиком.
func WeekdayDistribution(records []domain.MessageRecord) []domain.Bucket {
	if len(records) == 0 {
		return nil
	}
	var counts [7]int
	for _, rec := range records {
		if rec.Weekday < 0 || rec.Weekday > 6 {
			continue
		}
		counts[rec.Weekday]++
	}
	buckets := make([]domain.Bucket, 0, len(weekdayLabels))
	for i, label := range weekdayLabels {
		buckets = append(buckets, domain.Bucket{Label: label, Count: counts[i]})
	}
	return buckets
}

// LengthHistogram разбивает длины сообщений на корзины равной ширины.
func LengthHistogram(records []domain.MessageRecord, bins int) []domain.Bucket {
	if len(records) == 0 || bins <= 0 {
		return nil
	}
	minLen := records[0].TextLength
	maxLen := records[0].TextLength
	for _, rec := range records {
		if rec.TextLength < minLen {
			minLen = rec.TextLength
		}
		if rec.TextLength > maxLen {
			maxLen = rec.TextLength
		}
	}
	if minLen == maxLen {
		return []domain.Bucket{{Label: strconv.Itoa(minLen), Count: len(records)}}
	}

	width := float64(maxLen-minLen) / float64(bins)
	counts := make([]int, bins)
	for _, rec := range records {
		idx := int(float64(rec.TextLength-minLen) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	buckets := make([]domain.Bucket, 0, bins)
	for i, count := range counts {
		lo := minLen + int(float64(i)*width)
		hi := minLen + int(float64(i+1)*width)
		buckets = append(buckets, domain.Bucket{Label: fmt.Sprintf("%d-%d", lo, hi), Count: count})
	}
	return buckets
}
