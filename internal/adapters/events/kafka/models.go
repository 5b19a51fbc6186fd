package kafka

import (
	"time"

	"github.com/google/uuid"
)

// Envelope はトピックに書き込まれるイベントの共通形式です。
type Envelope[T any] struct {
	Kind       string    `json:"kind"`
	MessageID  uuid.UUID `json:"message_id"`
	EmployeeID string    `json:"employee_id"`
	Payload    T         `json:"payload"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

// EmployeePayload は作成・更新イベントの社員スナップショットです。写真は含めません。
type EmployeePayload struct {
	ID                   int64      `json:"id"`
	FirstName            string     `json:"first_name"`
	OtherNames           string     `json:"other_names,omitempty"`
	FirstSurname         string     `json:"first_surname"`
	SecondSurname        string     `json:"second_surname"`
	IdentificationType   string     `json:"identification_type"`
	IdentificationNumber string     `json:"identification_number"`
	Country              string     `json:"country"`
	Area                 string     `json:"area"`
	Email                string     `json:"email"`
	Status               string     `json:"status"`
	HireDate             string     `json:"hire_date"`
	RegisteredAt         time.Time  `json:"registered_at"`
	EditedAt             *time.Time `json:"edited_at,omitempty"`
}
