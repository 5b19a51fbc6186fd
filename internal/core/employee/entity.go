package employee

import (
	"time"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
)

// Status は社員の状態を表します。
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// EmailTokens は社用メールアドレスの生成に使った名・姓のトークンです。
// メールアドレス文字列を解析せずに改名を検出するためにレコードと一緒に保存します。
type EmailTokens struct {
	Name    string
	Surname string
}

// IsZero はトークンが保存されていない (移行前のレコード) かを返します。
func (t EmailTokens) IsZero() bool {
	return t.Name == "" && t.Surname == ""
}

// Employee は社員エンティティです。
type Employee struct {
	ID                   int64
	FirstName            string
	OtherNames           string
	FirstSurname         string
	SecondSurname        string
	IdentificationNumber string
	Email                string
	EmailTokens          EmailTokens
	Status               Status
	HireDate             time.Time
	RegisteredAt         time.Time
	EditedAt             *time.Time
	Photo                *string
	IdentificationType   catalog.IdentificationType
	Country              catalog.Country
	Area                 catalog.Area
}

// Filter は一覧取得時の検索条件です。空文字列と 0 は条件なしを表します。
type Filter struct {
	FirstName            string
	OtherNames           string
	FirstSurname         string
	SecondSurname        string
	IdentificationTypeID int64
	IdentificationNumber string
	CountryID            int64
	Email                string
	Status               Status
}
