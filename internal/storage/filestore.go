package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"tg-insights/internal/domain"
)

const userStatsDir = "user_stats"

// FileStore хранит журналы сообщений пользователей, один JSON-файл на пользователя.
// Запись защищена пофайловым мьютексом: для одного пользователя пишет не больше
// одного потока, журналы разных пользователей не блокируют друг друга.
type FileStore struct {
	root string
	log  zerolog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

var _ domain.MessageStore = (*FileStore)(nil)

// NewFileStore создаёт хранилище с корнем в указанном каталоге данных.
func NewFileStore(root string, logger zerolog.Logger) *FileStore {
	return &FileStore{root: root, log: logger, locks: make(map[int64]*sync.Mutex)}
}

func (s *FileStore) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func (s *FileStore) userDir(userID int64) string {
	return filepath.Join(s.root, userStatsDir, strconv.FormatInt(userID, 10))
}

func (s *FileStore) logPath(userID int64) string {
	return filepath.Join(s.userDir(userID), "messages.json")
}

// Provision создаёт каталог пользователя.
func (s *FileStore) Provision(userID int64) error {
	return os.MkdirAll(s.userDir(userID), 0o755)
}

// Purge удаляет журнал и каталог пользователя.
func (s *FileStore) Purge(userID int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return os.RemoveAll(s.userDir(userID))
}

// Append дописывает одну запись в журнал пользователя. Файл переписывается
// целиком во временный файл и атомарно подменяется: читатель видит либо
// прежний, либо дополненный журнал, но не промежуточное состояние.
func (s *FileStore) Append(ctx context.Context, userID int64, rec domain.MessageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readLocked(userID)
	if err != nil {
		return err
	}
	records = append(records, rec)
	return s.writeLocked(userID, records)
}

// ReadAll возвращает журнал пользователя в порядке поступления записей.
// Отсутствие файла — пустой журнал, не ошибка.
func (s *FileStore) ReadAll(ctx context.Context, userID int64) ([]domain.MessageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.readLocked(userID)
}

func (s *FileStore) readLocked(userID int64) ([]domain.MessageRecord, error) {
	path := s.logPath(userID)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение журнала: %w", err)
	}
	var records []domain.MessageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &domain.CorruptStoreError{UserID: userID, Path: path, Err: err}
	}
	return records, nil
}

func (s *FileStore) writeLocked(userID int64, records []domain.MessageRecord) error {
	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("каталог пользователя: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("кодирование журнала: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "messages-*.json")
	if err != nil {
		return fmt.Errorf("временный файл: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("запись журнала: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("запись журнала: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.logPath(userID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("подмена журнала: %w", err)
	}
	return nil
}
