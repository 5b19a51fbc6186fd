package employee

import (
	"regexp"
	"unicode/utf8"
)

const (
	maxNameLength                 = 20
	maxOtherNamesLength           = 50
	maxIdentificationNumberLength = 20
)

var (
	singleNamePattern           = regexp.MustCompile(`^[A-Z]{1,20}$`)
	otherNamesPattern           = regexp.MustCompile(`^[A-Z ]{0,50}$`)
	identificationNumberPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{1,20}$`)
)

// Draft は作成・更新時に検証される入力項目です。
type Draft struct {
	FirstName            string
	OtherNames           string
	FirstSurname         string
	SecondSurname        string
	IdentificationNumber string
}

// Validate は入力を順番に検証し、最初の違反を *ValidationError として返します。
func Validate(d Draft) error {
	if err := validateSingleName(FieldFirstName, d.FirstName); err != nil {
		return err
	}

	if d.OtherNames != "" {
		if utf8.RuneCountInString(d.OtherNames) > maxOtherNamesLength {
			return &ValidationError{Field: FieldOtherNames, Reason: "exceeds 50 characters", MaxLength: maxOtherNamesLength}
		}
		if !otherNamesPattern.MatchString(d.OtherNames) {
			return &ValidationError{Field: FieldOtherNames, Reason: "only uppercase letters A-Z and spaces are allowed", MaxLength: maxOtherNamesLength}
		}
	}

	if err := validateSingleName(FieldFirstSurname, d.FirstSurname); err != nil {
		return err
	}

	if err := validateSingleName(FieldSecondSurname, d.SecondSurname); err != nil {
		return err
	}

	if d.IdentificationNumber == "" {
		return &ValidationError{Field: FieldIdentificationNumber, Reason: "is required", MaxLength: maxIdentificationNumberLength}
	}
	if !identificationNumberPattern.MatchString(d.IdentificationNumber) {
		return &ValidationError{Field: FieldIdentificationNumber, Reason: "only letters, digits and hyphens are allowed", MaxLength: maxIdentificationNumberLength}
	}

	return nil
}

func validateSingleName(field Field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required", MaxLength: maxNameLength}
	}
	if !singleNamePattern.MatchString(value) {
		return &ValidationError{Field: field, Reason: "only uppercase letters A-Z are allowed, max 20", MaxLength: maxNameLength}
	}
	return nil
}
