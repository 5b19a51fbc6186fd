package employee

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultPageSize = 10
	maxPageSize     = 200
)

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	refs      catalog.Repository
	synth     *Synthesizer
	clock     Clock
	tx        TransactionManager
	publisher EventPublisher
	logger    zerolog.Logger
}

// Option は Service の任意の依存を設定します。
type Option func(*Service)

// WithPublisher はコミット後に社員イベントを発行する先を設定します。
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger はロガーを設定します。
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l.With().Str("component", "employee.Service").Logger()
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, refs catalog.Repository, synth *Synthesizer, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repo:      repo,
		refs:      refs,
		synth:     synth,
		clock:     clock,
		tx:        tx,
		publisher: noopPublisher{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	FirstName            string
	OtherNames           string
	FirstSurname         string
	SecondSurname        string
	IdentificationNumber string
	IdentificationTypeID int64
	CountryID            int64
	AreaID               int64
	HireDate             time.Time
	// Photo は base64 エンコードされた画像です。空の場合は写真なしで登録します。
	Photo string
}

func (in CreateEmployeeInput) draft() Draft {
	return Draft{
		FirstName:            in.FirstName,
		OtherNames:           in.OtherNames,
		FirstSurname:         in.FirstSurname,
		SecondSurname:        in.SecondSurname,
		IdentificationNumber: in.IdentificationNumber,
	}
}

// UpdateEmployeeInput は社員更新時の入力です。
// IdentificationTypeID / CountryID が 0 の場合は現在の参照を維持します。所属部署はこの操作では変更しません。
type UpdateEmployeeInput struct {
	ID                   int64
	FirstName            string
	OtherNames           string
	FirstSurname         string
	SecondSurname        string
	IdentificationNumber string
	IdentificationTypeID int64
	CountryID            int64
	Photo                *string
}

func (in UpdateEmployeeInput) draft() Draft {
	return Draft{
		FirstName:            in.FirstName,
		OtherNames:           in.OtherNames,
		FirstSurname:         in.FirstSurname,
		SecondSurname:        in.SecondSurname,
		IdentificationNumber: in.IdentificationNumber,
	}
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID int64
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID int64
}

// ListEmployeesInput は一覧取得時の入力です。Page は 0 始まりです。
type ListEmployeesInput struct {
	Filter Filter
	Page   int
	Size   int
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees []*Employee
	Total     int64
	Page      int
	Size      int
}

// TotalPages は総ページ数を返します。
func (r *ListEmployeesResult) TotalPages() int {
	if r.Size <= 0 {
		return 0
	}
	pages := int(r.Total) / r.Size
	if int(r.Total)%r.Size > 0 {
		pages++
	}
	return pages
}

// CreateEmployee は新しい社員を登録し、社用メールアドレスを割り当てます。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	if err := Validate(in.draft()); err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		idType, err := s.resolveIdentificationType(txCtx, in.IdentificationTypeID)
		if err != nil {
			return err
		}
		country, err := s.resolveCountry(txCtx, in.CountryID)
		if err != nil {
			return err
		}
		area, err := s.resolveArea(txCtx, in.AreaID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := checkHireDate(in.HireDate, now); err != nil {
			return err
		}

		if err := s.ensureUnique(txCtx, UniqueIdentificationNumber, in.IdentificationNumber, 0); err != nil {
			return err
		}

		emp := &Employee{
			FirstName:            in.FirstName,
			OtherNames:           in.OtherNames,
			FirstSurname:         in.FirstSurname,
			SecondSurname:        in.SecondSurname,
			IdentificationNumber: in.IdentificationNumber,
			Status:               StatusActive,
			HireDate:             normalizeDate(in.HireDate),
			RegisteredAt:         now,
			IdentificationType:   *idType,
			Country:              *country,
			Area:                 *area,
		}

		addr, err := s.synth.Synthesize(txCtx, emp.FirstName, emp.FirstSurname, country.Name, s.emailExists(0))
		if err != nil {
			return err
		}
		emp.Email = addr.Email
		emp.EmailTokens = addr.Tokens

		photo, err := EncodePhoto(in.Photo)
		if err != nil {
			return err
		}
		emp.Photo = photo

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Kind: EventCreated, EmployeeID: created.ID, Employee: created, OccurredAt: created.RegisteredAt})
	return created, nil
}

// UpdateEmployee は社員情報を更新します。名・姓が変わった場合、または国のドメインが変わった場合に限りメールアドレスを再生成します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}

		if err := Validate(in.draft()); err != nil {
			return err
		}

		idTypeID := in.IdentificationTypeID
		if idTypeID == 0 {
			idTypeID = existing.IdentificationType.ID
		}
		idType, err := s.resolveIdentificationType(txCtx, idTypeID)
		if err != nil {
			return err
		}

		countryID := in.CountryID
		if countryID == 0 {
			countryID = existing.Country.ID
		}
		country, err := s.resolveCountry(txCtx, countryID)
		if err != nil {
			return err
		}

		if in.IdentificationNumber != existing.IdentificationNumber {
			if err := s.ensureUnique(txCtx, UniqueIdentificationNumber, in.IdentificationNumber, existing.ID); err != nil {
				return err
			}
		}

		previousEmail := existing.Email
		existing.FirstName = in.FirstName
		existing.OtherNames = in.OtherNames
		existing.FirstSurname = in.FirstSurname
		existing.SecondSurname = in.SecondSurname
		existing.IdentificationNumber = in.IdentificationNumber
		existing.IdentificationType = *idType
		existing.Country = *country

		domain, err := s.synth.Domain(country.Name)
		if err != nil {
			return err
		}

		if existing.EmailTokens.Changed(previousEmail, existing.FirstName, existing.FirstSurname) || DomainOf(previousEmail) != domain {
			addr, err := s.synth.Synthesize(txCtx, existing.FirstName, existing.FirstSurname, country.Name, s.emailExists(existing.ID))
			if err != nil {
				return err
			}
			existing.Email = addr.Email
			existing.EmailTokens = addr.Tokens
			s.logger.Debug().
				Int64("employee_id", existing.ID).
				Str("previous_email", previousEmail).
				Str("email", addr.Email).
				Msg("corporate email regenerated")
		} else if existing.EmailTokens.IsZero() {
			existing.EmailTokens = TokensFor(existing.FirstName, existing.FirstSurname)
		}

		if in.Photo != nil {
			photo, err := EncodePhoto(*in.Photo)
			if err != nil {
				return err
			}
			if photo != nil {
				existing.Photo = photo
			}
		}

		now := s.clock.Now()
		existing.EditedAt = &now

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	occurredAt := s.clock.Now()
	if updated.EditedAt != nil {
		occurredAt = *updated.EditedAt
	}
	s.publish(ctx, Event{Kind: EventUpdated, EmployeeID: updated.ID, Employee: updated, OccurredAt: occurredAt})
	return updated, nil
}

// DeleteEmployee は社員を削除します。存在確認は呼び出し側の責務です。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if in.ID <= 0 {
		return ErrInvalidID
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	}); err != nil {
		return err
	}

	s.publish(ctx, Event{Kind: EventDeleted, EmployeeID: in.ID, OccurredAt: s.clock.Now()})
	return nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は条件に一致する社員をページ単位で取得します。指定された条件はすべて AND で結合されます。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	if in.Page < 0 {
		return nil, ErrInvalidPage
	}

	size, err := normalizePageSize(in.Size)
	if err != nil {
		return nil, err
	}

	filter := normalizeFilter(in.Filter)
	if filter.Status != "" && !isValidStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}

	var (
		employees []*Employee
		total     int64
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, count, err := s.repo.List(txCtx, ListEmployeesFilter{
			Filter: filter,
			Limit:  size,
			Offset: in.Page * size,
		})
		if err != nil {
			return err
		}
		employees = found
		total = count
		return nil
	}); err != nil {
		return nil, err
	}

	if employees == nil {
		employees = []*Employee{}
	}
	return &ListEmployeesResult{Employees: employees, Total: total, Page: in.Page, Size: size}, nil
}

func (s *Service) resolveIdentificationType(ctx context.Context, id int64) (*catalog.IdentificationType, error) {
	if id <= 0 {
		return nil, &ReferenceNotFoundError{Kind: catalog.KindIdentificationType, ID: id}
	}
	found, err := s.refs.FindIdentificationTypeByID(ctx, id)
	if err != nil || found == nil {
		return nil, referenceError(catalog.KindIdentificationType, id, err)
	}
	return found, nil
}

func (s *Service) resolveCountry(ctx context.Context, id int64) (*catalog.Country, error) {
	if id <= 0 {
		return nil, &ReferenceNotFoundError{Kind: catalog.KindCountry, ID: id}
	}
	found, err := s.refs.FindCountryByID(ctx, id)
	if err != nil || found == nil {
		return nil, referenceError(catalog.KindCountry, id, err)
	}
	return found, nil
}

func (s *Service) resolveArea(ctx context.Context, id int64) (*catalog.Area, error) {
	if id <= 0 {
		return nil, &ReferenceNotFoundError{Kind: catalog.KindArea, ID: id}
	}
	found, err := s.refs.FindAreaByID(ctx, id)
	if err != nil || found == nil {
		return nil, referenceError(catalog.KindArea, id, err)
	}
	return found, nil
}

func referenceError(kind catalog.Kind, id int64, err error) error {
	if err == nil || errors.Is(err, catalog.ErrNotFound) {
		return &ReferenceNotFoundError{Kind: kind, ID: id}
	}
	return err
}

func (s *Service) ensureUnique(ctx context.Context, field UniqueField, value string, excludeID int64) error {
	exists, err := s.repo.ExistsByField(ctx, field, value, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return &ConflictError{Field: conflictField(field)}
	}
	return nil
}

func (s *Service) emailExists(excludeID int64) ExistsFunc {
	return func(ctx context.Context, email string) (bool, error) {
		return s.repo.ExistsByField(ctx, UniqueEmail, email, excludeID)
	}
}

func (s *Service) publish(ctx context.Context, event Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("kind", string(event.Kind)).
			Int64("employee_id", event.EmployeeID).
			Msg("failed to publish employee event")
	}
}

func conflictField(field UniqueField) Field {
	if field == UniqueIdentificationNumber {
		return FieldIdentificationNumber
	}
	return FieldEmail
}

// checkHireDate は入社日が (今日 - 1 か月, 今日] に含まれるかを確認します。
func checkHireDate(hireDate, now time.Time) error {
	today := normalizeDate(now)
	hired := normalizeDate(hireDate)
	lowerBound := oneMonthBefore(today)
	if hired.After(today) || !hired.After(lowerBound) {
		return ErrInvalidHireDate
	}
	return nil
}

// oneMonthBefore は前月の同じ日を返します。前月に同じ日が無い場合は前月末日に丸めます (3/31 -> 2/28)。
func oneMonthBefore(day time.Time) time.Time {
	firstOfPrev := time.Date(day.Year(), day.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	lastOfPrev := firstOfPrev.AddDate(0, 1, -1).Day()
	return firstOfPrev.AddDate(0, 0, min(day.Day(), lastOfPrev)-1)
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeFilter(f Filter) Filter {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.OtherNames = strings.TrimSpace(f.OtherNames)
	f.FirstSurname = strings.TrimSpace(f.FirstSurname)
	f.SecondSurname = strings.TrimSpace(f.SecondSurname)
	f.IdentificationNumber = strings.TrimSpace(f.IdentificationNumber)
	f.Email = strings.TrimSpace(f.Email)
	f.Status = Status(strings.ToUpper(strings.TrimSpace(string(f.Status))))
	if f.IdentificationTypeID < 0 {
		f.IdentificationTypeID = 0
	}
	if f.CountryID < 0 {
		f.CountryID = 0
	}
	return f
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

func normalizePageSize(size int) (int, error) {
	if size <= 0 {
		return defaultPageSize, nil
	}
	if size > maxPageSize {
		return 0, ErrInvalidPageSize
	}
	return size, nil
}
