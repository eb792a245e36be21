package queue

import (
	"context"

	"tg-insights/internal/domain"
)

// MemoryReportQueue — внутрипроцессная очередь для запуска без Redis и RabbitMQ.
type MemoryReportQueue struct {
	jobs chan domain.ReportJob
}

// NewMemoryReportQueue создаёт очередь с указанной ёмкостью буфера.
func NewMemoryReportQueue(size int) *MemoryReportQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryReportQueue{jobs: make(chan domain.ReportJob, size)}
}

// Enqueue публикует задачу в очередь.
func (q *MemoryReportQueue) Enqueue(ctx context.Context, job domain.ReportJob) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop блокирующе читает задачу из очереди.
func (q *MemoryReportQueue) Pop(ctx context.Context) (domain.ReportJob, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return domain.ReportJob{}, ctx.Err()
	}
}
