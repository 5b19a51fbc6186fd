package employee

import (
	"context"
	"time"
)

// EventKind は社員イベントの種別です。
type EventKind string

const (
	EventCreated EventKind = "employee.created"
	EventUpdated EventKind = "employee.updated"
	EventDeleted EventKind = "employee.deleted"
)

// Event はコミット済みの社員の変更を表します。削除イベントでは Employee は nil です。
type Event struct {
	Kind       EventKind
	EmployeeID int64
	Employee   *Employee
	OccurredAt time.Time
}

// EventPublisher は社員イベントの発行先です。
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}
