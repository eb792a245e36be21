package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tg-insights/internal/domain"
	"tg-insights/internal/infra/metrics"
)

// RetentionPolicy определяет судьбу данных пользователя при отключении.
type RetentionPolicy string

const (
	// RetentionRetain — журнал и отчёты остаются на диске.
	RetentionRetain RetentionPolicy = "retain"
	// RetentionPurge — журнал и отчёты удаляются.
	RetentionPurge RetentionPolicy = "purge"
)

// ParseRetention разбирает политику из конфигурации; неизвестное значение
// трактуется как retain.
func ParseRetention(raw string) RetentionPolicy {
	if RetentionPolicy(raw) == RetentionPurge {
		return RetentionPurge
	}
	return RetentionRetain
}

// Registry — таблица активных пользователей процесса. Создаётся на старте,
// передаётся явно шлюзу приёма и сборщику отчётов, очищается на остановке.
type Registry struct {
	store     domain.MessageStore
	reports   domain.ReportStore
	retention RetentionPolicy
	log       zerolog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	users map[int64]*domain.UserProfile
}

var _ domain.UserRegistry = (*Registry)(nil)

// NewRegistry создаёт пустой реестр.
func NewRegistry(store domain.MessageStore, reports domain.ReportStore, retention RetentionPolicy, logger zerolog.Logger) *Registry {
	return &Registry{
		store:     store,
		reports:   reports,
		retention: retention,
		log:       logger,
		now:       func() time.Time { return time.Now().UTC() },
		users:     make(map[int64]*domain.UserProfile),
	}
}

// Register идемпотентно подключает пользователя к аналитике
// и подготавливает его область хранения.
func (r *Registry) Register(userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; ok {
		return nil
	}
	if err := r.store.Provision(userID); err != nil {
		return fmt.Errorf("подготовка хранилища: %w", err)
	}
	r.users[userID] = &domain.UserProfile{
		UserID:           userID,
		JoinedAt:         r.now(),
		AnalyticsEnabled: true,
	}
	metrics.ActiveUsers.Set(float64(len(r.users)))
	r.log.Info().Int64("user", userID).Msg("пользователь подключён к аналитике")
	return nil
}

// Deregister убирает пользователя из активного набора. Данные на диске
// удаляются или остаются согласно настроенной политике хранения.
func (r *Registry) Deregister(userID int64) error {
	r.mu.Lock()
	if _, ok := r.users[userID]; !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.users, userID)
	metrics.ActiveUsers.Set(float64(len(r.users)))
	r.mu.Unlock()

	if r.retention == RetentionPurge {
		if err := r.store.Purge(userID); err != nil {
			r.log.Error().Err(err).Int64("user", userID).Msg("не удалось удалить журнал")
		}
		if err := r.reports.PurgeUser(userID); err != nil {
			r.log.Error().Err(err).Int64("user", userID).Msg("не удалось удалить отчёты")
		}
	}
	r.log.Info().Int64("user", userID).Msg("пользователь отключён от аналитики")
	return nil
}

// IsActive сообщает, подключён ли пользователь.
func (r *Registry) IsActive(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok
}

// ActiveCount возвращает число подключённых пользователей.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// ActiveIDs возвращает идентификаторы подключённых пользователей
// в детерминированном порядке.
func (r *Registry) ActiveIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Profile возвращает копию профиля пользователя.
func (r *Registry) Profile(userID int64) (domain.UserProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.users[userID]
	if !ok {
		return domain.UserProfile{}, false
	}
	out := *profile
	out.ReportHistory = append([]string(nil), profile.ReportHistory...)
	return out, true
}

// AppendReportHistory дописывает расположение сохранённого отчёта в историю
// пользователя. История только растёт; порядок равен порядку генерации.
func (r *Registry) AppendReportHistory(userID int64, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.users[userID]
	if !ok {
		return
	}
	profile.ReportHistory = append(profile.ReportHistory, location)
}

// Shutdown очищает активный набор при остановке процесса.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[int64]*domain.UserProfile)
	metrics.ActiveUsers.Set(0)
}
