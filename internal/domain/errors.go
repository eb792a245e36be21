package domain

import (
	"errors"
	"fmt"
)

// ErrNotRegistered возвращается при обращении к неподключённому пользователю.
var ErrNotRegistered = errors.New("пользователь не подключён к аналитике")

// ErrReportNotFound возвращается, если отчёт за указанную дату не сохранён.
var ErrReportNotFound = errors.New("отчёт не найден")

// CorruptStoreError сигнализирует, что журнал на диске присутствует,
// но не разбирается. Хранилище не пытается чинить такой файл.
type CorruptStoreError struct {
	UserID int64
	Path   string
	Err    error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("журнал пользователя %d повреждён (%s): %v", e.UserID, e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }
