package stats

import (
	"testing"
	"time"

	"tg-insights/internal/domain"
)

func TestHourDistributionSorted(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.MessageRecord{
		recordAt(ts, 22, 5, 10, false),
		recordAt(ts, 9, 5, 10, false),
		recordAt(ts, 22, 5, 10, false),
	}
	buckets := HourDistribution(records)
	if len(buckets) != 2 {
		t.Fatalf("ожидали 2 корзины, получили %d", len(buckets))
	}
	if buckets[0].Label != "9" || buckets[0].Count != 1 {
		t.Fatalf("ожидали первым час 9 с одним сообщением, получили %+v", buckets[0])
	}
	if buckets[1].Label != "22" || buckets[1].Count != 2 {
		t.Fatalf("ожидали час 22 с двумя сообщениями, получили %+v", buckets[1])
	}
}

func TestWeekdayDistributionAllDays(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.MessageRecord{
		recordAt(ts, 12, 0, 10, false),
		recordAt(ts, 12, 6, 10, false),
		recordAt(ts, 12, 6, 10, false),
	}
	buckets := WeekdayDistribution(records)
	if len(buckets) != 7 {
		t.Fatalf("ожидали 7 дней недели, получили %d", len(buckets))
	}
	if buckets[0].Label != "Пн" || buckets[0].Count != 1 {
		t.Fatalf("ожидали понедельник с одним сообщением, получили %+v", buckets[0])
	}
	if buckets[6].Label != "Вс" || buckets[6].Count != 2 {
		t.Fatalf("ожидали воскресенье с двумя сообщениями, получили %+v", buckets[6])
	}
}

func TestLengthHistogramSingleValue(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.MessageRecord{
		recordAt(ts, 12, 0, 50, false),
		recordAt(ts, 12, 0, 50, false),
	}
	buckets := LengthHistogram(records, 30)
	if len(buckets) != 1 {
		t.Fatalf("ожидали одну корзину при одинаковой длине, получили %d", len(buckets))
	}
	if buckets[0].Label != "50" || buckets[0].Count != 2 {
		t.Fatalf("неожиданная корзина: %+v", buckets[0])
	}
}

func TestLengthHistogramBins(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var records []domain.MessageRecord
	for length := 0; length <= 300; length += 10 {
		records = append(records, recordAt(ts, 12, 0, length, false))
	}
	buckets := LengthHistogram(records, 30)
	if len(buckets) != 30 {
		t.Fatalf("ожидали 30 корзин, получили %d", len(buckets))
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	if total != len(records) {
		t.Fatalf("корзины потеряли записи: %d != %d", total, len(records))
	}
}

func TestLengthHistogramEmpty(t *testing.T) {
	if buckets := LengthHistogram(nil, 30); buckets != nil {
		t.Fatalf("ожидали nil для пустого журнала, получили %+v", buckets)
	}
}
