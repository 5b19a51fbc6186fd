package employee

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[int64]*Employee
	sequence  int64
	lockCalls int
	listCalls []ListEmployeesFilter
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[int64]*Employee)}
}

func (r *fakeEmployeeRepo) seed(e *Employee) *Employee {
	r.sequence++
	clone := cloneEmployee(e)
	clone.ID = r.sequence
	r.employees[clone.ID] = clone
	return cloneEmployee(clone)
}

func (r *fakeEmployeeRepo) conflict(e *Employee) error {
	for _, existing := range r.employees {
		if existing.ID == e.ID {
			continue
		}
		if existing.Email == e.Email {
			return &ConflictError{Field: FieldEmail}
		}
		if existing.IdentificationNumber == e.IdentificationNumber {
			return &ConflictError{Field: FieldIdentificationNumber}
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	if err := r.conflict(e); err != nil {
		return nil, err
	}
	return r.seed(e), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	if err := r.conflict(e); err != nil {
		return nil, err
	}
	r.employees[e.ID] = cloneEmployee(e)
	return cloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id int64) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(emp), nil
}

func (r *fakeEmployeeRepo) FindByIDForUpdate(ctx context.Context, id int64) (*Employee, error) {
	r.lockCalls++
	return r.FindByID(ctx, id)
}

func (r *fakeEmployeeRepo) ExistsByField(_ context.Context, field UniqueField, value string, excludeID int64) (bool, error) {
	for _, e := range r.employees {
		if e.ID == excludeID {
			continue
		}
		switch field {
		case UniqueEmail:
			if e.Email == value {
				return true, nil
			}
		case UniqueIdentificationNumber:
			if e.IdentificationNumber == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, int64, error) {
	r.listCalls = append(r.listCalls, filter)

	ids := make([]int64, 0, len(r.employees))
	for id := range r.employees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var matched []*Employee
	for _, id := range ids {
		e := r.employees[id]
		if filter.FirstName != "" && e.FirstName != filter.FirstName {
			continue
		}
		if filter.CountryID != 0 && e.Country.ID != filter.CountryID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneEmployee(e))
	}

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

func cloneEmployee(e *Employee) *Employee {
	if e == nil {
		return nil
	}
	clone := *e
	if e.EditedAt != nil {
		edited := *e.EditedAt
		clone.EditedAt = &edited
	}
	if e.Photo != nil {
		photo := *e.Photo
		clone.Photo = &photo
	}
	return &clone
}

type fakeCatalog struct {
	countries map[int64]catalog.Country
	areas     map[int64]catalog.Area
	types     map[int64]catalog.IdentificationType
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		countries: map[int64]catalog.Country{
			1: {ID: 1, Code: "CO", Name: "COLOMBIA"},
			2: {ID: 2, Code: "VE", Name: "VENEZUELA"},
			3: {ID: 3, Code: "PE", Name: "PERU"},
		},
		areas: map[int64]catalog.Area{
			1: {ID: 1, Name: "ADMINISTRACION"},
		},
		types: map[int64]catalog.IdentificationType{
			1: {ID: 1, Abbreviation: "CC", Name: "CEDULA DE CIUDADANIA"},
			2: {ID: 2, Abbreviation: "PA", Name: "PASAPORTE"},
		},
	}
}

func (f *fakeCatalog) FindCountryByID(_ context.Context, id int64) (*catalog.Country, error) {
	c, ok := f.countries[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCatalog) FindAreaByID(_ context.Context, id int64) (*catalog.Area, error) {
	a, ok := f.areas[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &a, nil
}

func (f *fakeCatalog) FindIdentificationTypeByID(_ context.Context, id int64) (*catalog.IdentificationType, error) {
	it, ok := f.types[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &it, nil
}

func (f *fakeCatalog) ListCountries(context.Context) ([]catalog.Country, error) {
	return nil, nil
}

func (f *fakeCatalog) ListAreas(context.Context) ([]catalog.Area, error) {
	return nil, nil
}

func (f *fakeCatalog) ListIdentificationTypes(context.Context) ([]catalog.IdentificationType, error) {
	return nil, nil
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}

type recordingTxManager struct {
	readOnly  int
	readWrite int
}

func (m *recordingTxManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	m.readOnly++
	return fn(ctx)
}

func (m *recordingTxManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	m.readWrite++
	return fn(ctx)
}

type serviceFixture struct {
	svc       *Service
	repo      *fakeEmployeeRepo
	catalog   *fakeCatalog
	publisher *recordingPublisher
	tx        *recordingTxManager
	clock     *stubClock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		repo:      newFakeEmployeeRepo(),
		catalog:   newFakeCatalog(),
		publisher: &recordingPublisher{},
		tx:        &recordingTxManager{},
		clock:     &stubClock{now: time.Date(2025, 10, 17, 15, 30, 0, 0, time.UTC)},
	}
	f.svc = NewService(f.repo, f.catalog, NewSynthesizer(testDomains, 0), f.clock, f.tx, WithPublisher(f.publisher))
	return f
}

func (f *serviceFixture) seed(first, surname, email string, countryID int64, idNumber string) *Employee {
	country := f.catalog.countries[countryID]
	return f.repo.seed(&Employee{
		FirstName:            first,
		FirstSurname:         surname,
		SecondSurname:        "DIAZ",
		IdentificationNumber: idNumber,
		Email:                email,
		EmailTokens:          TokensFor(first, surname),
		Status:               StatusActive,
		HireDate:             time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		RegisteredAt:         time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC),
		IdentificationType:   f.catalog.types[1],
		Country:              country,
		Area:                 f.catalog.areas[1],
	})
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func validCreateInput() CreateEmployeeInput {
	return CreateEmployeeInput{
		FirstName:            "JUAN",
		FirstSurname:         "PEREZ",
		SecondSurname:        "GOMEZ",
		IdentificationNumber: "1001",
		IdentificationTypeID: 1,
		CountryID:            1,
		AreaID:               1,
		HireDate:             date(2025, 10, 10),
	}
}

func updateInputFrom(e *Employee) UpdateEmployeeInput {
	return UpdateEmployeeInput{
		ID:                   e.ID,
		FirstName:            e.FirstName,
		OtherNames:           e.OtherNames,
		FirstSurname:         e.FirstSurname,
		SecondSurname:        e.SecondSurname,
		IdentificationNumber: e.IdentificationNumber,
		IdentificationTypeID: e.IdentificationType.ID,
		CountryID:            e.Country.ID,
	}
}

func TestService_CreateEmployee(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	created, err := f.svc.CreateEmployee(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if created.Email != "juan.perez@tuarmi.com.co" {
		t.Errorf("unexpected email: %s", created.Email)
	}
	if created.EmailTokens != (EmailTokens{Name: "juan", Surname: "perez"}) {
		t.Errorf("unexpected tokens: %+v", created.EmailTokens)
	}
	if created.Status != StatusActive {
		t.Errorf("expected ACTIVE status, got %s", created.Status)
	}
	if !created.RegisteredAt.Equal(f.clock.now) {
		t.Errorf("expected registered at %v, got %v", f.clock.now, created.RegisteredAt)
	}
	if created.EditedAt != nil {
		t.Errorf("expected no edit timestamp on creation")
	}
	if created.Photo != nil {
		t.Errorf("expected no photo")
	}
	if created.Country.Name != "COLOMBIA" || created.Area.Name != "ADMINISTRACION" || created.IdentificationType.Abbreviation != "CC" {
		t.Errorf("expected resolved references, got %+v", created)
	}
	if f.tx.readWrite != 1 {
		t.Errorf("expected one read-write transaction, got %d", f.tx.readWrite)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Kind != EventCreated || f.publisher.events[0].EmployeeID != created.ID {
		t.Errorf("unexpected events: %+v", f.publisher.events)
	}
}

func TestService_CreateEmployee_EmailCollisions(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "2001")
	f.seed("JUAN", "PEREZ", "juan.perez.1@tuarmi.com.co", 1, "2002")

	created, err := f.svc.CreateEmployee(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if created.Email != "juan.perez.2@tuarmi.com.co" {
		t.Fatalf("expected suffix 2, got %s", created.Email)
	}
}

func TestService_CreateEmployee_CountryDomain(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	in := validCreateInput()
	in.CountryID = 2

	created, err := f.svc.CreateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if created.Email != "juan.perez@armirene.com.ve" {
		t.Fatalf("unexpected email: %s", created.Email)
	}
}

func TestService_CreateEmployee_ValidationError(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	in := validCreateInput()
	in.FirstSurname = "Pérez"

	_, err := f.svc.CreateEmployee(context.Background(), in)

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != FieldFirstSurname {
		t.Fatalf("expected first surname validation error, got %v", err)
	}
	if len(f.repo.employees) != 0 {
		t.Fatalf("expected nothing to be persisted")
	}
	if len(f.publisher.events) != 0 {
		t.Fatalf("expected no events")
	}
}

func TestService_CreateEmployee_ReferenceNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*CreateEmployeeInput)
		kind   catalog.Kind
	}{
		{name: "identification type", mutate: func(in *CreateEmployeeInput) { in.IdentificationTypeID = 99 }, kind: catalog.KindIdentificationType},
		{name: "country", mutate: func(in *CreateEmployeeInput) { in.CountryID = 99 }, kind: catalog.KindCountry},
		{name: "area", mutate: func(in *CreateEmployeeInput) { in.AreaID = 99 }, kind: catalog.KindArea},
		{name: "missing area", mutate: func(in *CreateEmployeeInput) { in.AreaID = 0 }, kind: catalog.KindArea},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			in := validCreateInput()
			tt.mutate(&in)

			_, err := f.svc.CreateEmployee(context.Background(), in)

			var rerr *ReferenceNotFoundError
			if !errors.As(err, &rerr) || rerr.Kind != tt.kind {
				t.Fatalf("expected reference error for %s, got %v", tt.kind, err)
			}
			if !errors.Is(err, ErrReferenceNotFound) {
				t.Fatalf("expected ErrReferenceNotFound in chain")
			}
		})
	}
}

func TestService_CreateEmployee_HireDateWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hire    time.Time
		wantErr bool
	}{
		{name: "today", hire: date(2025, 10, 17)},
		{name: "today with time of day", hire: time.Date(2025, 10, 17, 23, 59, 0, 0, time.UTC)},
		{name: "yesterday", hire: date(2025, 10, 16)},
		{name: "one month minus one day", hire: date(2025, 9, 18)},
		{name: "exactly one month ago", hire: date(2025, 9, 17), wantErr: true},
		{name: "older", hire: date(2025, 8, 1), wantErr: true},
		{name: "tomorrow", hire: date(2025, 10, 18), wantErr: true},
		{name: "zero", hire: time.Time{}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			in := validCreateInput()
			in.HireDate = tt.hire

			_, err := f.svc.CreateEmployee(context.Background(), in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHireDate) {
					t.Fatalf("expected ErrInvalidHireDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateEmployee returned error: %v", err)
			}
		})
	}
}

func TestService_CreateEmployee_HireDateWindowAtMonthEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		now     time.Time
		hire    time.Time
		wantErr bool
	}{
		{name: "31 march accepts 29 days ago", now: date(2026, 3, 31), hire: date(2026, 3, 2)},
		{name: "31 march accepts 28 days ago", now: date(2026, 3, 31), hire: date(2026, 3, 3)},
		{name: "31 march accepts 1 march", now: date(2026, 3, 31), hire: date(2026, 3, 1)},
		{name: "31 march rejects last day of february", now: date(2026, 3, 31), hire: date(2026, 2, 28), wantErr: true},
		{name: "30 march accepts 29 days ago", now: date(2026, 3, 30), hire: date(2026, 3, 1)},
		{name: "30 march rejects 28 february", now: date(2026, 3, 30), hire: date(2026, 2, 28), wantErr: true},
		{name: "leap year 31 march accepts 29 february", now: date(2028, 3, 31), hire: date(2028, 3, 1)},
		{name: "leap year 31 march rejects 29 february", now: date(2028, 3, 31), hire: date(2028, 2, 29), wantErr: true},
		{name: "31 may accepts 2 may", now: date(2026, 5, 31), hire: date(2026, 5, 2)},
		{name: "31 may rejects 30 april", now: date(2026, 5, 31), hire: date(2026, 4, 30), wantErr: true},
		{name: "15 january accepts 16 december", now: date(2026, 1, 15), hire: date(2025, 12, 16)},
		{name: "15 january rejects 15 december", now: date(2026, 1, 15), hire: date(2025, 12, 15), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			f.clock.now = tt.now.Add(15 * time.Hour)
			in := validCreateInput()
			in.HireDate = tt.hire

			_, err := f.svc.CreateEmployee(context.Background(), in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHireDate) {
					t.Fatalf("expected ErrInvalidHireDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateEmployee returned error: %v", err)
			}
		})
	}
}

func TestOneMonthBefore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		day  time.Time
		want time.Time
	}{
		{day: date(2026, 3, 31), want: date(2026, 2, 28)},
		{day: date(2028, 3, 31), want: date(2028, 2, 29)},
		{day: date(2026, 5, 31), want: date(2026, 4, 30)},
		{day: date(2026, 1, 31), want: date(2025, 12, 31)},
		{day: date(2025, 10, 17), want: date(2025, 9, 17)},
	}

	for _, tt := range tests {
		if got := oneMonthBefore(tt.day); !got.Equal(tt.want) {
			t.Errorf("oneMonthBefore(%s) = %s, want %s", tt.day.Format("2006-01-02"), got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestService_CreateEmployee_DuplicateIdentification(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seed("ANA", "RUIZ", "ana.ruiz@tuarmi.com.co", 1, "1001")

	_, err := f.svc.CreateEmployee(context.Background(), validCreateInput())

	var cerr *ConflictError
	if !errors.As(err, &cerr) || cerr.Field != FieldIdentificationNumber {
		t.Fatalf("expected identification conflict, got %v", err)
	}
}

func TestService_CreateEmployee_UnsupportedCountry(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	in := validCreateInput()
	in.CountryID = 3

	_, err := f.svc.CreateEmployee(context.Background(), in)
	if !errors.Is(err, ErrUnsupportedCountry) {
		t.Fatalf("expected ErrUnsupportedCountry, got %v", err)
	}
}

func TestService_CreateEmployee_Photo(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	in := validCreateInput()
	in.Photo = "aGVsbG8="

	created, err := f.svc.CreateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if created.Photo == nil || *created.Photo != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("unexpected photo: %v", created.Photo)
	}

	in.IdentificationNumber = "1002"
	in.Photo = "%%%"
	if _, err := f.svc.CreateEmployee(context.Background(), in); !errors.Is(err, ErrMalformedImage) {
		t.Fatalf("expected ErrMalformedImage, got %v", err)
	}
}

func TestService_UpdateEmployee_KeepsEmailWhenNamesUnchanged(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez.4@tuarmi.com.co", 1, "1001")
	f.repo.employees[existing.ID].Status = StatusInactive

	in := updateInputFrom(existing)
	in.SecondSurname = "LOPEZ"
	in.OtherNames = "CARLOS"

	updated, err := f.svc.UpdateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Email != "juan.perez.4@tuarmi.com.co" {
		t.Errorf("expected email to be kept, got %s", updated.Email)
	}
	if updated.SecondSurname != "LOPEZ" || updated.OtherNames != "CARLOS" {
		t.Errorf("expected fields to be applied: %+v", updated)
	}
	if updated.Status != StatusInactive {
		t.Errorf("expected status to be kept, got %s", updated.Status)
	}
	if updated.EditedAt == nil || !updated.EditedAt.Equal(f.clock.now) {
		t.Errorf("expected edit timestamp %v, got %v", f.clock.now, updated.EditedAt)
	}
	if !updated.RegisteredAt.Equal(existing.RegisteredAt) {
		t.Errorf("expected registration timestamp to be kept")
	}
	if f.repo.lockCalls != 1 {
		t.Errorf("expected row lock to be taken once, got %d", f.repo.lockCalls)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Kind != EventUpdated {
		t.Errorf("unexpected events: %+v", f.publisher.events)
	}
}

func TestService_UpdateEmployee_RegeneratesEmailOnRename(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")

	in := updateInputFrom(existing)
	in.FirstSurname = "GOMEZ"

	updated, err := f.svc.UpdateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Email != "juan.gomez@tuarmi.com.co" {
		t.Fatalf("expected regenerated email, got %s", updated.Email)
	}
	if updated.EmailTokens != (EmailTokens{Name: "juan", Surname: "gomez"}) {
		t.Fatalf("expected tokens to follow the rename, got %+v", updated.EmailTokens)
	}
}

func TestService_UpdateEmployee_RenameIntoCollision(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")
	f.seed("JUAN", "GOMEZ", "juan.gomez@tuarmi.com.co", 1, "1002")

	in := updateInputFrom(existing)
	in.FirstSurname = "GOMEZ"

	updated, err := f.svc.UpdateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Email != "juan.gomez.1@tuarmi.com.co" {
		t.Fatalf("expected suffixed email, got %s", updated.Email)
	}
}

func TestService_UpdateEmployee_CountryChangeSwitchesDomain(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")

	in := updateInputFrom(existing)
	in.CountryID = 2

	updated, err := f.svc.UpdateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Email != "juan.perez@armirene.com.ve" {
		t.Fatalf("expected venezuelan domain, got %s", updated.Email)
	}
	if updated.Country.Name != "VENEZUELA" {
		t.Fatalf("expected country to be updated, got %+v", updated.Country)
	}
}

func TestService_UpdateEmployee_LegacyRecordBackfillsTokens(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez.2@tuarmi.com.co", 1, "1001")
	f.repo.employees[existing.ID].EmailTokens = EmailTokens{}

	updated, err := f.svc.UpdateEmployee(context.Background(), updateInputFrom(existing))
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Email != "juan.perez.2@tuarmi.com.co" {
		t.Fatalf("expected email to be kept, got %s", updated.Email)
	}
	if updated.EmailTokens != (EmailTokens{Name: "juan", Surname: "perez"}) {
		t.Fatalf("expected tokens to be backfilled, got %+v", updated.EmailTokens)
	}
}

func TestService_UpdateEmployee_KeepsReferencesWhenOmitted(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")

	in := updateInputFrom(existing)
	in.IdentificationTypeID = 0
	in.CountryID = 0

	updated, err := f.svc.UpdateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Country.ID != 1 || updated.IdentificationType.ID != 1 {
		t.Fatalf("expected references to be kept, got %+v / %+v", updated.Country, updated.IdentificationType)
	}
}

func TestService_UpdateEmployee_Photo(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")
	stored := "data:image/png;base64,b2xk"
	f.repo.employees[existing.ID].Photo = &stored

	in := updateInputFrom(existing)
	empty := ""
	in.Photo = &empty

	updated, err := f.svc.UpdateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Photo == nil || *updated.Photo != stored {
		t.Fatalf("expected empty payload to keep the photo, got %v", updated.Photo)
	}

	replacement := "bmV3"
	in.Photo = &replacement
	updated, err = f.svc.UpdateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Photo == nil || *updated.Photo != "data:image/png;base64,bmV3" {
		t.Fatalf("expected photo to be replaced, got %v", updated.Photo)
	}
}

func TestService_UpdateEmployee_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		if _, err := f.svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{}); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("not found is reported before validation", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		_, err := f.svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: 42, FirstName: "bad"})
		if !errors.Is(err, ErrEmployeeNotFound) {
			t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")
		in := updateInputFrom(existing)
		in.FirstName = "JUAN1"

		_, err := f.svc.UpdateEmployee(context.Background(), in)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != FieldFirstName {
			t.Fatalf("expected first name validation error, got %v", err)
		}
		if len(f.publisher.events) != 0 {
			t.Fatalf("expected no events on failure")
		}
	})

	t.Run("unknown country", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")
		in := updateInputFrom(existing)
		in.CountryID = 99

		_, err := f.svc.UpdateEmployee(context.Background(), in)
		var rerr *ReferenceNotFoundError
		if !errors.As(err, &rerr) || rerr.Kind != catalog.KindCountry {
			t.Fatalf("expected country reference error, got %v", err)
		}
	})

	t.Run("unsupported country", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")
		in := updateInputFrom(existing)
		in.CountryID = 3

		if _, err := f.svc.UpdateEmployee(context.Background(), in); !errors.Is(err, ErrUnsupportedCountry) {
			t.Fatalf("expected ErrUnsupportedCountry, got %v", err)
		}
	})

	t.Run("duplicate identification", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")
		f.seed("ANA", "RUIZ", "ana.ruiz@tuarmi.com.co", 1, "1002")
		in := updateInputFrom(existing)
		in.IdentificationNumber = "1002"

		_, err := f.svc.UpdateEmployee(context.Background(), in)
		var cerr *ConflictError
		if !errors.As(err, &cerr) || cerr.Field != FieldIdentificationNumber {
			t.Fatalf("expected identification conflict, got %v", err)
		}
	})
}

func TestService_DeleteEmployee(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")

	if err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: existing.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if _, err := f.svc.GetEmployee(context.Background(), GetEmployeeInput{ID: existing.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound after delete, got %v", err)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Kind != EventDeleted || f.publisher.events[0].Employee != nil {
		t.Fatalf("unexpected events: %+v", f.publisher.events)
	}

	if err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: existing.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := f.svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_GetEmployee(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	existing := f.seed("JUAN", "PEREZ", "juan.perez@tuarmi.com.co", 1, "1001")

	got, err := f.svc.GetEmployee(context.Background(), GetEmployeeInput{ID: existing.ID})
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if got.Email != existing.Email {
		t.Fatalf("unexpected employee: %+v", got)
	}
	if f.tx.readOnly != 1 {
		t.Fatalf("expected one read-only transaction, got %d", f.tx.readOnly)
	}
}

func TestService_ListEmployees(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	for i, name := range []string{"ANA", "BEATRIZ", "CARLOS"} {
		f.seed(name, "RUIZ", name+"@tuarmi.com.co", 1, string(rune('1'+i)))
	}
	f.seed("DIANA", "RUIZ", "diana.ruiz@armirene.com.ve", 2, "9")

	result, err := f.svc.ListEmployees(context.Background(), ListEmployeesInput{Filter: Filter{CountryID: 1}, Size: 2})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if result.Total != 3 || len(result.Employees) != 2 {
		t.Fatalf("unexpected result: total=%d len=%d", result.Total, len(result.Employees))
	}
	if result.TotalPages() != 2 {
		t.Fatalf("expected 2 pages, got %d", result.TotalPages())
	}

	result, err = f.svc.ListEmployees(context.Background(), ListEmployeesInput{Filter: Filter{CountryID: 1}, Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(result.Employees) != 1 || result.Employees[0].FirstName != "CARLOS" {
		t.Fatalf("unexpected second page: %+v", result.Employees)
	}
	last := f.repo.listCalls[len(f.repo.listCalls)-1]
	if last.Limit != 2 || last.Offset != 2 {
		t.Fatalf("unexpected pagination: %+v", last)
	}
}

func TestService_ListEmployees_Defaults(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	result, err := f.svc.ListEmployees(context.Background(), ListEmployeesInput{Filter: Filter{Status: " active "}})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if result.Size != defaultPageSize {
		t.Fatalf("expected default size, got %d", result.Size)
	}
	if result.Employees == nil {
		t.Fatalf("expected empty, non-nil slice")
	}
	if f.repo.listCalls[0].Status != StatusActive {
		t.Fatalf("expected normalized status filter, got %q", f.repo.listCalls[0].Status)
	}
}

func TestService_ListEmployees_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   ListEmployeesInput
		want error
	}{
		{name: "negative page", in: ListEmployeesInput{Page: -1}, want: ErrInvalidPage},
		{name: "size too large", in: ListEmployeesInput{Size: maxPageSize + 1}, want: ErrInvalidPageSize},
		{name: "unknown status", in: ListEmployeesInput{Filter: Filter{Status: "RETIRED"}}, want: ErrInvalidStatus},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			if _, err := f.svc.ListEmployees(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_PublishFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.publisher.err = errors.New("broker down")

	created, err := f.svc.CreateEmployee(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if _, ok := f.repo.employees[created.ID]; !ok {
		t.Fatalf("expected employee to be persisted")
	}
}

func TestNewService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), newFakeCatalog(), NewSynthesizer(testDomains, 0), nil, nil)
	if svc.clock == nil || svc.tx == nil || svc.publisher == nil {
		t.Fatalf("expected defaults to be set: %+v", svc)
	}
}
