package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"tg-insights/internal/domain"
)

const reportsDir = "analytics_reports"

// ReportStore хранит артефакты отчётов: один файл на пару (пользователь, дата).
// Артефакт записывается одной атомарной операцией.
type ReportStore struct {
	root string
	log  zerolog.Logger
}

var _ domain.ReportStore = (*ReportStore)(nil)

// NewReportStore создаёт хранилище отчётов.
func NewReportStore(root string, logger zerolog.Logger) *ReportStore {
	return &ReportStore{root: root, log: logger}
}

func (s *ReportStore) reportPath(userID int64, date time.Time) string {
	name := fmt.Sprintf("%d_%s.json", userID, date.Format("2006-01-02"))
	return filepath.Join(s.root, reportsDir, name)
}

// Save сохраняет отчёт по ключу (пользователь, дата генерации) и возвращает
// расположение артефакта.
func (s *ReportStore) Save(ctx context.Context, report domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, reportsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("каталог отчётов: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("кодирование отчёта: %w", err)
	}
	path := s.reportPath(report.UserID, report.GeneratedAt)
	tmp, err := os.CreateTemp(dir, "report-*.json")
	if err != nil {
		return "", fmt.Errorf("временный файл: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("запись отчёта: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("запись отчёта: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("подмена отчёта: %w", err)
	}
	return path, nil
}

// Get возвращает отчёт за указанную дату или domain.ErrReportNotFound.
func (s *ReportStore) Get(userID int64, date time.Time) (domain.Report, error) {
	data, err := os.ReadFile(s.reportPath(userID, date))
	if errors.Is(err, os.ErrNotExist) {
		return domain.Report{}, domain.ErrReportNotFound
	}
	if err != nil {
		return domain.Report{}, fmt.Errorf("чтение отчёта: %w", err)
	}
	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.Report{}, fmt.Errorf("разбор отчёта: %w", err)
	}
	return report, nil
}

// List возвращает краткие описания всех сохранённых отчётов,
// отсортированные по времени генерации.
func (s *ReportStore) List() ([]domain.ReportSummary, error) {
	pattern := filepath.Join(s.root, reportsDir, "*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("поиск отчётов: %w", err)
	}
	summaries := make([]domain.ReportSummary, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("отчёт пропущен")
			continue
		}
		var report domain.Report
		if err := json.Unmarshal(data, &report); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("нечитаемый отчёт пропущен")
			continue
		}
		summaries = append(summaries, domain.ReportSummary{
			UserID:      report.UserID,
			GeneratedAt: report.GeneratedAt,
			Statistics:  report.Statistics,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].GeneratedAt.Before(summaries[j].GeneratedAt)
	})
	return summaries, nil
}

// PurgeUser удаляет все артефакты отчётов пользователя.
func (s *ReportStore) PurgeUser(userID int64) error {
	pattern := filepath.Join(s.root, reportsDir, fmt.Sprintf("%d_*.json", userID))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("поиск отчётов: %w", err)
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("удаление отчёта: %w", err)
		}
	}
	return nil
}
