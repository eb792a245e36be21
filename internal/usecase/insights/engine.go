package insights

import (
	"fmt"

	"tg-insights/internal/domain"
)

// rule — пара «условие, текст». Правила независимы, выполняются строго
// в порядке объявления, без раннего выхода; сработавшие дописывают
// по одной строке.
type rule struct {
	match func(domain.StatisticsSnapshot) bool
	text  func(domain.StatisticsSnapshot) string
}

func always(domain.StatisticsSnapshot) bool { return true }

func staticText(s string) func(domain.StatisticsSnapshot) string {
	return func(domain.StatisticsSnapshot) string { return s }
}

var insightRules = []rule{
	{
		match: func(s domain.StatisticsSnapshot) bool { return s.TotalMessages > 100 },
		text: func(s domain.StatisticsSnapshot) string {
			return fmt.Sprintf("Вы очень активны! %d сообщений обработано", s.TotalMessages)
		},
	},
	{
		match: func(s domain.StatisticsSnapshot) bool { return s.MediaPercentage > 30 },
		text:  staticText("Вы часто отправляете медиафайлы"),
	},
	{
		match: func(s domain.StatisticsSnapshot) bool { return s.MostActiveHour >= 22 || s.MostActiveHour <= 6 },
		text:  staticText("Пик вашей активности приходится на ночное время"),
	},
	{
		match: func(s domain.StatisticsSnapshot) bool {
			return s.MostActiveWeekday == 5 || s.MostActiveWeekday == 6
		},
		text: staticText("Вы наиболее активны в выходные дни"),
	},
	{match: always, text: staticText("Рекомендуем делать перерывы в общении каждый час")},
	{match: always, text: staticText("Попробуйте использовать голосовые сообщения для экономии времени")},
}

var recommendationRules = []rule{
	{
		match: func(s domain.StatisticsSnapshot) bool { return s.AvgMessageLength < 10 },
		text:  staticText("Попробуйте писать более развернутые сообщения"),
	},
	{
		match: func(s domain.StatisticsSnapshot) bool { return s.MediaPercentage < 10 },
		text:  staticText("Используйте больше визуального контента в общении"),
	},
	{match: always, text: staticText("Планируйте важные разговоры на часы пиковой активности")},
	{match: always, text: staticText("Используйте шаблоны для часто повторяющихся сообщений")},
}

// DeriveInsights строит упорядоченный список инсайтов по снимку статистики.
func DeriveInsights(s domain.StatisticsSnapshot) []string {
	return evaluate(insightRules, s)
}

// DeriveRecommendations строит упорядоченный список рекомендаций.
// Набор правил не пересекается с инсайтами.
func DeriveRecommendations(s domain.StatisticsSnapshot) []string {
	return evaluate(recommendationRules, s)
}

func evaluate(rules []rule, s domain.StatisticsSnapshot) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.match(s) {
			out = append(out, r.text(s))
		}
	}
	return out
}
