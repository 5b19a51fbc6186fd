package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	pgdb "github.com/ogurasousui/hr-records/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

const (
	employeeEmailConstraint              = "employees_email_key"
	employeeIdentificationConstraint     = "employees_identification_number_key"
	employeeIdentificationTypeConstraint = "employees_identification_type_id_fkey"
	employeeCountryConstraint            = "employees_country_id_fkey"
	employeeAreaConstraint               = "employees_area_id_fkey"
)

const employeeColumns = `
        SELECT e.id,
               e.first_name,
               e.other_names,
               e.first_surname,
               e.second_surname,
               e.identification_number,
               e.email,
               e.email_name,
               e.email_surname,
               e.status,
               e.hire_date,
               e.registered_at,
               e.edited_at,
               e.photo,
               it.id,
               it.abbreviation,
               it.name,
               c.id,
               c.code,
               c.name,
               a.id,
               a.name`

const employeeReferenceJoins = `
          JOIN identification_types it ON it.id = e.identification_type_id
          JOIN countries c ON c.id = e.country_id
          JOIN areas a ON a.id = e.area_id`

var uniqueColumns = map[employee.UniqueField]string{
	employee.UniqueEmail:                "email",
	employee.UniqueIdentificationNumber: "identification_number",
}

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成し、参照データを結合した結果を返します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO employees (first_name, other_names, first_surname, second_surname,
                                   identification_type_id, identification_number, country_id, area_id,
                                   email, email_name, email_surname, status, hire_date, registered_at, edited_at, photo)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
            RETURNING *
        )`+employeeColumns+`
          FROM inserted e`+employeeReferenceJoins,
		e.FirstName,
		nullableString(e.OtherNames),
		e.FirstSurname,
		e.SecondSurname,
		e.IdentificationType.ID,
		e.IdentificationNumber,
		e.Country.ID,
		e.Area.ID,
		e.Email,
		nullableString(e.EmailTokens.Name),
		nullableString(e.EmailTokens.Surname),
		string(e.Status),
		dateOnly(e.HireDate),
		e.RegisteredAt,
		nullableTimestamp(e.EditedAt),
		e.Photo,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeeWriteError(err, e)
	}
	return created, nil
}

// Update は社員情報を更新します。所属部署・入社日・登録日時は変更しません。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE employees
               SET first_name = $1,
                   other_names = $2,
                   first_surname = $3,
                   second_surname = $4,
                   identification_type_id = $5,
                   identification_number = $6,
                   country_id = $7,
                   email = $8,
                   email_name = $9,
                   email_surname = $10,
                   status = $11,
                   edited_at = $12,
                   photo = $13
             WHERE id = $14
            RETURNING *
        )`+employeeColumns+`
          FROM updated e`+employeeReferenceJoins,
		e.FirstName,
		nullableString(e.OtherNames),
		e.FirstSurname,
		e.SecondSurname,
		e.IdentificationType.ID,
		e.IdentificationNumber,
		e.Country.ID,
		e.Email,
		nullableString(e.EmailTokens.Name),
		nullableString(e.EmailTokens.Surname),
		string(e.Status),
		nullableTimestamp(e.EditedAt),
		e.Photo,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeeWriteError(err, e)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	return r.findByID(ctx, id, "")
}

// FindByIDForUpdate は社員行をロックして取得します。トランザクション外で呼ばれた場合ロックは文の終了で解放されます。
func (r *EmployeeRepository) FindByIDForUpdate(ctx context.Context, id int64) (*employee.Employee, error) {
	return r.findByID(ctx, id, " FOR UPDATE OF e")
}

func (r *EmployeeRepository) findByID(ctx context.Context, id int64, lock string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, employeeColumns+`
          FROM employees e`+employeeReferenceJoins+`
         WHERE e.id = $1`+lock, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// ExistsByField は excludeID 以外の社員が value を使っているかを返します。
func (r *EmployeeRepository) ExistsByField(ctx context.Context, field employee.UniqueField, value string, excludeID int64) (bool, error) {
	column, ok := uniqueColumns[field]
	if !ok {
		return false, fmt.Errorf("postgres: unsupported unique field %q", field)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE `+column+` = $1 AND id <> $2)`,
		value, excludeID,
	).Scan(&exists); err != nil {
		return false, translateEmployeePgError(err)
	}
	return exists, nil
}

// List は条件に一致する社員と総件数を返します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, int64, error) {
	if filter.Limit <= 0 {
		return nil, 0, employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, 0, employee.ErrInvalidPage
	}

	whereClause, args := buildEmployeeWhere(filter.Filter)

	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var total int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM employees e`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, translateEmployeePgError(err)
	}
	if total == 0 {
		return []*employee.Employee{}, 0, nil
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := employeeColumns + `
          FROM employees e` + employeeReferenceJoins + whereClause + `
         ORDER BY e.id
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, translateEmployeePgError(err)
	}

	return employees, total, nil
}

func buildEmployeeWhere(f employee.Filter) (string, []any) {
	args := make([]any, 0, 9)
	conditions := make([]string, 0, 9)

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}

	if f.FirstName != "" {
		add("e.first_name", f.FirstName)
	}
	if f.OtherNames != "" {
		add("e.other_names", f.OtherNames)
	}
	if f.FirstSurname != "" {
		add("e.first_surname", f.FirstSurname)
	}
	if f.SecondSurname != "" {
		add("e.second_surname", f.SecondSurname)
	}
	if f.IdentificationTypeID != 0 {
		add("e.identification_type_id", f.IdentificationTypeID)
	}
	if f.IdentificationNumber != "" {
		add("e.identification_number", f.IdentificationNumber)
	}
	if f.CountryID != 0 {
		add("e.country_id", f.CountryID)
	}
	if f.Email != "" {
		add("e.email", f.Email)
	}
	if f.Status != "" {
		add("e.status", string(f.Status))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return `
         WHERE ` + strings.Join(conditions, " AND "), args
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id            int64
		firstName     string
		otherNames    sql.NullString
		firstSurname  string
		secondSurname string
		idNumber      string
		email         string
		emailName     sql.NullString
		emailSurname  sql.NullString
		status        string
		hireDate      time.Time
		registeredAt  time.Time
		editedAt      sql.NullTime
		photo         sql.NullString
		idTypeID      int64
		idTypeAbbrev  string
		idTypeName    string
		countryID     int64
		countryCode   string
		countryName   string
		areaID        int64
		areaName      string
	)

	if err := row.Scan(
		&id,
		&firstName,
		&otherNames,
		&firstSurname,
		&secondSurname,
		&idNumber,
		&email,
		&emailName,
		&emailSurname,
		&status,
		&hireDate,
		&registeredAt,
		&editedAt,
		&photo,
		&idTypeID,
		&idTypeAbbrev,
		&idTypeName,
		&countryID,
		&countryCode,
		&countryName,
		&areaID,
		&areaName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var editedPtr *time.Time
	if editedAt.Valid {
		t := editedAt.Time.UTC()
		editedPtr = &t
	}

	var photoPtr *string
	if photo.Valid {
		p := photo.String
		photoPtr = &p
	}

	return &employee.Employee{
		ID:                   id,
		FirstName:            firstName,
		OtherNames:           otherNames.String,
		FirstSurname:         firstSurname,
		SecondSurname:        secondSurname,
		IdentificationNumber: idNumber,
		Email:                email,
		EmailTokens:          employee.EmailTokens{Name: emailName.String, Surname: emailSurname.String},
		Status:               employee.Status(status),
		HireDate:             dateOnly(hireDate),
		RegisteredAt:         registeredAt.UTC(),
		EditedAt:             editedPtr,
		Photo:                photoPtr,
		IdentificationType: catalog.IdentificationType{
			ID:           idTypeID,
			Abbreviation: idTypeAbbrev,
			Name:         idTypeName,
		},
		Country: catalog.Country{
			ID:   countryID,
			Code: countryCode,
			Name: countryName,
		},
		Area: catalog.Area{
			ID:   areaID,
			Name: areaName,
		},
	}, nil
}

// translateEmployeeWriteError は書き込み時の外部キー違反を、書き込もうとした参照 ID 付きのエラーに変換します。
func translateEmployeeWriteError(err error, e *employee.Employee) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		switch pgErr.ConstraintName {
		case employeeIdentificationTypeConstraint:
			return &employee.ReferenceNotFoundError{Kind: catalog.KindIdentificationType, ID: e.IdentificationType.ID}
		case employeeCountryConstraint:
			return &employee.ReferenceNotFoundError{Kind: catalog.KindCountry, ID: e.Country.ID}
		case employeeAreaConstraint:
			return &employee.ReferenceNotFoundError{Kind: catalog.KindArea, ID: e.Area.ID}
		}
	}
	return translateEmployeePgError(err)
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case employeeEmailConstraint:
				return &employee.ConflictError{Field: employee.FieldEmail}
			case employeeIdentificationConstraint:
				return &employee.ConflictError{Field: employee.FieldIdentificationNumber}
			default:
				return fmt.Errorf("%w: %s", employee.ErrUniquenessConflict, pgErr.ConstraintName)
			}
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: %s", employee.ErrReferenceNotFound, pgErr.ConstraintName)
		case checkViolationCode:
			return employee.ErrInvalidStatus
		}
	}

	return err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTimestamp(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
