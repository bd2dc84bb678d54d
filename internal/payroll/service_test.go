package payroll

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/notify"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

type memRepo struct {
	slips  map[int64]Slip
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{slips: map[int64]Slip{}, nextID: 1}
}

func (m *memRepo) insert(input CreateInput, net float64) Slip {
	slip := Slip{
		ID:          m.nextID,
		EmployeeID:  input.EmployeeID,
		Month:       input.Month,
		Year:        input.Year,
		BasicSalary: input.BasicSalary,
		Allowances:  input.Allowances,
		Deductions:  input.Deductions,
		Tax:         input.Tax,
		NetSalary:   net,
		Status:      StatusPending,
		PaymentDate: input.PaymentDate,
		Notes:       input.Notes,
	}
	m.slips[slip.ID] = slip
	m.nextID++
	return slip
}

func (m *memRepo) Create(_ context.Context, input CreateInput, net float64) (Slip, error) {
	return m.insert(input, net), nil
}

func (m *memRepo) CreateBatch(_ context.Context, inputs []CreateInput) ([]Slip, error) {
	slips := make([]Slip, 0, len(inputs))
	for _, input := range inputs {
		net := ComputeNet(input.BasicSalary, input.Allowances, input.Deductions, input.Tax)
		slips = append(slips, m.insert(input, net))
	}
	return slips, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (Slip, error) {
	slip, ok := m.slips[id]
	if !ok {
		return Slip{}, httpx.ErrNotFound
	}
	return slip, nil
}

func (m *memRepo) Update(_ context.Context, id int64, patch UpdateInput) (Slip, error) {
	slip, ok := m.slips[id]
	if !ok {
		return Slip{}, httpx.ErrNotFound
	}
	if patch.Month != nil {
		slip.Month = *patch.Month
	}
	if patch.Year != nil {
		slip.Year = *patch.Year
	}
	if patch.BasicSalary != nil {
		slip.BasicSalary = *patch.BasicSalary
	}
	if patch.Allowances != nil {
		slip.Allowances = *patch.Allowances
	}
	if patch.Deductions != nil {
		slip.Deductions = *patch.Deductions
	}
	if patch.Tax != nil {
		slip.Tax = *patch.Tax
	}
	if patch.PaymentDate != nil {
		slip.PaymentDate = patch.PaymentDate
	}
	if patch.Status != nil {
		slip.Status = *patch.Status
	}
	if patch.Notes != nil {
		slip.Notes = *patch.Notes
	}
	slip.NetSalary = ComputeNet(slip.BasicSalary, slip.Allowances, slip.Deductions, slip.Tax)
	m.slips[id] = slip
	return slip, nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.slips[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.slips, id)
	return nil
}

func (m *memRepo) ListForAdmin(_ context.Context, filter AdminFilter, page shared.Page) ([]Slip, error) {
	var out []Slip
	for _, slip := range m.slips {
		if filter.EmployeeID != 0 && slip.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Month != 0 && slip.Month != filter.Month {
			continue
		}
		if filter.Year != 0 && slip.Year != filter.Year {
			continue
		}
		out = append(out, slip)
	}
	return paginate(out, page), nil
}

func (m *memRepo) ListForEmployee(_ context.Context, employeeID int64, page shared.Page) ([]Slip, error) {
	var out []Slip
	for _, slip := range m.slips {
		if slip.EmployeeID == employeeID {
			out = append(out, slip)
		}
	}
	return paginate(out, page), nil
}

func paginate(slips []Slip, page shared.Page) []Slip {
	sort.Slice(slips, func(i, j int) bool {
		if slips[i].Year != slips[j].Year {
			return slips[i].Year > slips[j].Year
		}
		return slips[i].Month > slips[j].Month
	})
	page = page.Normalize()
	if page.Offset >= len(slips) {
		return nil
	}
	slips = slips[page.Offset:]
	if len(slips) > page.Limit {
		slips = slips[:page.Limit]
	}
	return slips
}

type memDirectory struct {
	users map[int64]identity.User
}

func (d *memDirectory) FindByID(_ context.Context, id int64) (identity.User, error) {
	user, ok := d.users[id]
	if !ok {
		return identity.User{}, httpx.ErrNotFound
	}
	return user, nil
}

type recordingSink struct {
	messages []notify.Message
	fail     bool
}

func (s *recordingSink) Notify(_ context.Context, msg notify.Message) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.messages = append(s.messages, msg)
	return nil
}

func testAdmin() guard.Admin {
	return guard.Admin{User: identity.User{ID: 99, Email: "admin@meridian.dev", Role: identity.RoleAdmin, IsActive: true}}
}

func testEmployee(id int64) guard.Employee {
	return guard.Employee{User: identity.User{ID: id, Role: identity.RoleEmployee, IsActive: true}}
}

func newTestService(users ...identity.User) (*Service, *memRepo, *recordingSink) {
	dir := &memDirectory{users: map[int64]identity.User{}}
	for _, u := range users {
		dir.users[u.ID] = u
	}
	repo := newMemRepo()
	sink := &recordingSink{}
	svc := NewService(repo, dir, sink, slog.New(slog.DiscardHandler))
	return svc, repo, sink
}

func employeeUser(id int64) identity.User {
	return identity.User{ID: id, Role: identity.RoleEmployee, IsActive: true}
}

func TestComputeNet(t *testing.T) {
	cases := []struct {
		name                               string
		basic, allowances, deductions, tax float64
		want                               float64
	}{
		{"typical", 5000, 500, 200, 300, 5000},
		{"zero components", 0, 0, 0, 0, 0},
		{"deductions exceed earnings", 1000, 0, 1500, 200, -700},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComputeNet(tc.basic, tc.allowances, tc.deductions, tc.tax))
		})
	}
}

func TestCreateComputesNet(t *testing.T) {
	svc, _, sink := newTestService(employeeUser(1))

	slip, err := svc.Create(context.Background(), testAdmin(), CreateInput{
		EmployeeID:  1,
		Month:       3,
		Year:        2025,
		BasicSalary: 5000,
		Allowances:  500,
		Deductions:  200,
		Tax:         300,
	})
	require.NoError(t, err)
	require.Equal(t, 5000.0, slip.NetSalary)
	require.Equal(t, StatusPending, slip.Status)

	require.Len(t, sink.messages, 1)
	require.Equal(t, int64(1), sink.messages[0].UserID)
	require.Equal(t, notify.TypeSalarySlip, sink.messages[0].Type)
}

func TestCreateUnknownEmployee(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), testAdmin(), CreateInput{
		EmployeeID: 42, Month: 1, Year: 2025, BasicSalary: 1000,
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateForAdminTargetIsNotFound(t *testing.T) {
	admin := identity.User{ID: 7, Role: identity.RoleAdmin, IsActive: true}
	svc, _, _ := newTestService(admin)

	_, err := svc.Create(context.Background(), testAdmin(), CreateInput{
		EmployeeID: 7, Month: 1, Year: 2025, BasicSalary: 1000,
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateRejectsBadMonth(t *testing.T) {
	svc, _, _ := newTestService(employeeUser(1))

	_, err := svc.Create(context.Background(), testAdmin(), CreateInput{
		EmployeeID: 1, Month: 13, Year: 2025, BasicSalary: 1000,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBulkCreateSkipsUnknownEmployees(t *testing.T) {
	svc, repo, sink := newTestService(employeeUser(1), employeeUser(2))

	slips, err := svc.BulkCreate(context.Background(), testAdmin(), []CreateInput{
		{EmployeeID: 1, Month: 4, Year: 2025, BasicSalary: 4000},
		{EmployeeID: 999, Month: 4, Year: 2025, BasicSalary: 4000},
		{EmployeeID: 2, Month: 4, Year: 2025, BasicSalary: 6000},
	})
	require.NoError(t, err)
	require.Len(t, slips, 2)
	require.Len(t, repo.slips, 2)
	require.Len(t, sink.messages, 2)
}

func TestBulkCreateInvalidInputRejectsWholeBatch(t *testing.T) {
	svc, repo, _ := newTestService(employeeUser(1), employeeUser(2))

	_, err := svc.BulkCreate(context.Background(), testAdmin(), []CreateInput{
		{EmployeeID: 1, Month: 4, Year: 2025, BasicSalary: 4000},
		{EmployeeID: 2, Month: 0, Year: 2025, BasicSalary: 6000},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.slips)
}

func TestUpdateRecomputesNetFromStoredValues(t *testing.T) {
	svc, _, _ := newTestService(employeeUser(1))

	slip, err := svc.Create(context.Background(), testAdmin(), CreateInput{
		EmployeeID: 1, Month: 5, Year: 2025,
		BasicSalary: 5000, Allowances: 500, Deductions: 200, Tax: 300,
	})
	require.NoError(t, err)

	deductions := 700.0
	updated, err := svc.Update(context.Background(), testAdmin(), slip.ID, UpdateInput{Deductions: &deductions})
	require.NoError(t, err)
	require.Equal(t, 5000.0, updated.BasicSalary)
	require.Equal(t, 4500.0, updated.NetSalary)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(employeeUser(1))

	slip, err := svc.Create(context.Background(), testAdmin(), CreateInput{
		EmployeeID: 1, Month: 5, Year: 2025, BasicSalary: 5000,
	})
	require.NoError(t, err)

	bogus := Status("archived")
	_, err = svc.Update(context.Background(), testAdmin(), slip.ID, UpdateInput{Status: &bogus})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSinkFailureDoesNotFailCreate(t *testing.T) {
	svc, repo, sink := newTestService(employeeUser(1))
	sink.fail = true

	_, err := svc.Create(context.Background(), testAdmin(), CreateInput{
		EmployeeID: 1, Month: 6, Year: 2025, BasicSalary: 3000,
	})
	require.NoError(t, err)
	require.Len(t, repo.slips, 1)
}

func TestGetOwnScopedToEmployee(t *testing.T) {
	svc, _, _ := newTestService(employeeUser(1), employeeUser(2))

	slip, err := svc.Create(context.Background(), testAdmin(), CreateInput{
		EmployeeID: 1, Month: 7, Year: 2025, BasicSalary: 3000,
	})
	require.NoError(t, err)

	got, err := svc.GetOwn(context.Background(), testEmployee(1), slip.ID)
	require.NoError(t, err)
	require.Equal(t, slip.ID, got.ID)

	_, err = svc.GetOwn(context.Background(), testEmployee(2), slip.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteMissingSlip(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), testAdmin(), 404)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListOwnOnlyOwnSlips(t *testing.T) {
	svc, _, _ := newTestService(employeeUser(1), employeeUser(2))

	for _, id := range []int64{1, 2} {
		_, err := svc.Create(context.Background(), testAdmin(), CreateInput{
			EmployeeID: id, Month: 8, Year: 2025, BasicSalary: 3000,
		})
		require.NoError(t, err)
	}

	slips, err := svc.ListOwn(context.Background(), testEmployee(1), shared.Page{})
	require.NoError(t, err)
	require.Len(t, slips, 1)
	require.Equal(t, int64(1), slips[0].EmployeeID)
}
