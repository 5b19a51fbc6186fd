package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
	"github.com/ogurasousui/hr-records/internal/core/employee"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "02/01/2006 15:04:05"
)

var errInvalidHireDateFormat = errors.New("fechaIngreso must use the yyyy-MM-dd format")

// employeeRequest は作成・更新リクエストのボディです。
type employeeRequest struct {
	FirstName            string  `json:"primerNombre"`
	OtherNames           string  `json:"otrosNombres"`
	FirstSurname         string  `json:"primerApellido"`
	SecondSurname        string  `json:"segundoApellido"`
	IdentificationNumber string  `json:"numeroIdentificacion"`
	IdentificationTypeID int64   `json:"idTipoIdentificacion"`
	CountryID            int64   `json:"idPais"`
	AreaID               int64   `json:"idArea"`
	HireDate             string  `json:"fechaIngreso"`
	Photo                *string `json:"foto"`
}

func (req employeeRequest) toCreateInput() (employee.CreateEmployeeInput, error) {
	hireDate, err := parseHireDate(req.HireDate)
	if err != nil {
		return employee.CreateEmployeeInput{}, err
	}

	in := employee.CreateEmployeeInput{
		FirstName:            req.FirstName,
		OtherNames:           req.OtherNames,
		FirstSurname:         req.FirstSurname,
		SecondSurname:        req.SecondSurname,
		IdentificationNumber: req.IdentificationNumber,
		IdentificationTypeID: req.IdentificationTypeID,
		CountryID:            req.CountryID,
		AreaID:               req.AreaID,
		HireDate:             hireDate,
	}
	if req.Photo != nil {
		in.Photo = *req.Photo
	}
	return in, nil
}

func (req employeeRequest) toUpdateInput(id int64) employee.UpdateEmployeeInput {
	return employee.UpdateEmployeeInput{
		ID:                   id,
		FirstName:            req.FirstName,
		OtherNames:           req.OtherNames,
		FirstSurname:         req.FirstSurname,
		SecondSurname:        req.SecondSurname,
		IdentificationNumber: req.IdentificationNumber,
		IdentificationTypeID: req.IdentificationTypeID,
		CountryID:            req.CountryID,
		Photo:                req.Photo,
	}
}

// parseHireDate は yyyy-MM-dd 形式、または日時付きの RFC3339 形式を受け付けます。
// 空の場合はゼロ値を返し、入社日の判定はサービスに任せます。
func parseHireDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errInvalidHireDateFormat
}

// employeeResponse は社員の JSON 表現です。
type employeeResponse struct {
	ID                   int64                      `json:"id"`
	FirstName            string                     `json:"primerNombre"`
	OtherNames           string                     `json:"otrosNombres"`
	FirstSurname         string                     `json:"primerApellido"`
	SecondSurname        string                     `json:"segundoApellido"`
	Email                string                     `json:"correo"`
	IdentificationNumber string                     `json:"numeroIdentificacion"`
	Status               string                     `json:"estado"`
	HireDate             string                     `json:"fechaIngreso"`
	RegisteredAt         string                     `json:"fechaRegistro"`
	EditedAt             *string                    `json:"fechaEdicion"`
	Photo                *string                    `json:"foto"`
	IdentificationType   catalog.IdentificationType `json:"tipoIdentificacion"`
	Country              catalog.Country            `json:"pais"`
	Area                 catalog.Area               `json:"area"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	var edited *string
	if e.EditedAt != nil {
		s := e.EditedAt.UTC().Format(timestampLayout)
		edited = &s
	}

	return employeeResponse{
		ID:                   e.ID,
		FirstName:            e.FirstName,
		OtherNames:           e.OtherNames,
		FirstSurname:         e.FirstSurname,
		SecondSurname:        e.SecondSurname,
		Email:                e.Email,
		IdentificationNumber: e.IdentificationNumber,
		Status:               string(e.Status),
		HireDate:             e.HireDate.Format(dateLayout),
		RegisteredAt:         e.RegisteredAt.UTC().Format(timestampLayout),
		EditedAt:             edited,
		Photo:                e.Photo,
		IdentificationType:   e.IdentificationType,
		Country:              e.Country,
		Area:                 e.Area,
	}
}

// pageResponse はページングされた一覧の JSON 表現です。
type pageResponse struct {
	Content       []employeeResponse `json:"content"`
	Page          int                `json:"page"`
	Size          int                `json:"size"`
	TotalElements int64              `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
}

func toPageResponse(result *employee.ListEmployeesResult) pageResponse {
	content := make([]employeeResponse, 0, len(result.Employees))
	for _, e := range result.Employees {
		content = append(content, toEmployeeResponse(e))
	}
	return pageResponse{
		Content:       content,
		Page:          result.Page,
		Size:          result.Size,
		TotalElements: result.Total,
		TotalPages:    result.TotalPages(),
	}
}
