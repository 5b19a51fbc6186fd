package employee

import (
	"errors"
	"fmt"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
)

var (
	ErrInvalidID           = errors.New("employee: invalid id")
	ErrInvalidPage         = errors.New("employee: invalid page")
	ErrInvalidPageSize     = errors.New("employee: invalid page size")
	ErrInvalidStatus       = errors.New("employee: invalid status")
	ErrEmployeeNotFound    = errors.New("employee: not found")
	ErrValidation          = errors.New("employee: validation failed")
	ErrReferenceNotFound   = errors.New("employee: reference not found")
	ErrInvalidHireDate     = errors.New("employee: hire date must be within the last month and not in the future")
	ErrUnsupportedCountry  = errors.New("employee: unsupported country for email domain")
	ErrMalformedImage      = errors.New("employee: malformed image payload")
	ErrUniquenessConflict  = errors.New("employee: uniqueness conflict")
	ErrEmailSpaceExhausted = errors.New("employee: email collision limit reached")
)

// Field は検証対象の項目です。
type Field string

const (
	FieldFirstName            Field = "firstName"
	FieldOtherNames           Field = "otherNames"
	FieldFirstSurname         Field = "firstSurname"
	FieldSecondSurname        Field = "secondSurname"
	FieldIdentificationNumber Field = "identificationNumber"
	FieldEmail                Field = "email"
)

// ValidationError は入力項目の形式違反です。
type ValidationError struct {
	Field     Field
	Reason    string
	MaxLength int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("employee: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ReferenceNotFoundError は存在しない参照データが指定された場合のエラーです。
type ReferenceNotFoundError struct {
	Kind catalog.Kind
	ID   int64
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("employee: %s %d not found", e.Kind, e.ID)
}

func (e *ReferenceNotFoundError) Unwrap() error {
	return ErrReferenceNotFound
}

// UnsupportedCountryError はドメインが設定されていない国を表します。
type UnsupportedCountryError struct {
	Country string
}

func (e *UnsupportedCountryError) Error() string {
	return fmt.Sprintf("employee: no email domain configured for country %q", e.Country)
}

func (e *UnsupportedCountryError) Unwrap() error {
	return ErrUnsupportedCountry
}

// ConflictError は一意制約違反です。永続化時の制約違反もこの型に変換されます。
type ConflictError struct {
	Field Field
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("employee: %s already exists", e.Field)
}

func (e *ConflictError) Unwrap() error {
	return ErrUniquenessConflict
}
