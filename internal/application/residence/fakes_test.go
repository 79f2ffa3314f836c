package residence

import (
	"context"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type fakeTxManager struct{}

func (m *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopCache struct{}

func (noopCache) GetReport(ctx context.Context, key string, out interface{}) (bool, error) {
	return false, nil
}
func (noopCache) SetReport(ctx context.Context, key string, value interface{}) error { return nil }
func (noopCache) InvalidateReports(ctx context.Context) error                        { return nil }

type fakeAccountRepo struct {
	accounts map[string]*accounting.Account
}

func newFakeAccountRepo(accounts ...*accounting.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[string]*accounting.Account)}
	for _, a := range accounts {
		repo.accounts[a.Code] = a
	}
	return repo
}

func (r *fakeAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindByCode(ctx context.Context, code string) (*accounting.Account, error) {
	if a, ok := r.accounts[code]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindAll(ctx context.Context, filter accounting.AccountFilter) ([]accounting.Account, error) {
	var out []accounting.Account
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAccountRepo) FindByParent(ctx context.Context, parentCode string) ([]accounting.Account, error) {
	var out []accounting.Account
	for _, a := range r.accounts {
		if a.ParentCode == parentCode {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListCodes(ctx context.Context) ([]string, error) {
	codes := make([]string, 0, len(r.accounts))
	for code := range r.accounts {
		codes = append(codes, code)
	}
	return codes, nil
}

func (r *fakeAccountRepo) Save(ctx context.Context, account *accounting.Account) error {
	if existing, ok := r.accounts[account.Code]; ok && existing.ID != account.ID {
		return shared.ErrDuplicateCode
	}
	r.accounts[account.Code] = account
	return nil
}

func (r *fakeAccountRepo) Count(ctx context.Context, filter accounting.AccountFilter) (int64, error) {
	return int64(len(r.accounts)), nil
}

type fakeEntryRepo struct {
	entries []*accounting.TransactionEntry
}

func (r *fakeEntryRepo) FindByID(ctx context.Context, id uuid.UUID) (*accounting.TransactionEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEntryRepo) FindByTransactionID(ctx context.Context, transactionID string) (*accounting.TransactionEntry, error) {
	for _, e := range r.entries {
		if e.TransactionID == transactionID {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEntryRepo) FindBySource(ctx context.Context, source accounting.EntrySource, sourceID uuid.UUID) ([]accounting.TransactionEntry, error) {
	var out []accounting.TransactionEntry
	for _, e := range r.entries {
		if e.Source == source && e.SourceID != nil && *e.SourceID == sourceID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindByAccountAndDateRange(ctx context.Context, accountCode string, from, to time.Time) ([]accounting.TransactionEntry, error) {
	var out []accounting.TransactionEntry
	for _, e := range r.entries {
		if e.TouchesAccount(accountCode) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindPostedBefore(ctx context.Context, asOf time.Time, residenceID *uuid.UUID) ([]accounting.TransactionEntry, error) {
	var out []accounting.TransactionEntry
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEntryRepo) FindAll(ctx context.Context, filter accounting.EntryFilter) ([]accounting.TransactionEntry, error) {
	var out []accounting.TransactionEntry
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEntryRepo) Save(ctx context.Context, entry *accounting.TransactionEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeEntryRepo) SaveStatus(ctx context.Context, entry *accounting.TransactionEntry) error {
	return nil
}

func (r *fakeEntryRepo) Count(ctx context.Context, filter accounting.EntryFilter) (int64, error) {
	return int64(len(r.entries)), nil
}

type fakeStudentRepo struct {
	students map[uuid.UUID]*residence.Student
}

func newFakeStudentRepo(students ...*residence.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[uuid.UUID]*residence.Student)}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (r *fakeStudentRepo) FindByID(ctx context.Context, id uuid.UUID) (*residence.Student, error) {
	if s, ok := r.students[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStudentRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]residence.Student, error) {
	out := make(map[uuid.UUID]residence.Student)
	for _, id := range ids {
		if s, ok := r.students[id]; ok {
			out[id] = *s
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) Save(ctx context.Context, student *residence.Student) error {
	r.students[student.ID] = student
	return nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*residence.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*residence.Payment)}
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*residence.Payment, error) {
	if p, ok := r.payments[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakePaymentRepo) FindByReference(ctx context.Context, reference string) (*residence.Payment, error) {
	for _, p := range r.payments {
		if p.Reference == reference {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePaymentRepo) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]residence.Payment, error) {
	var out []residence.Payment
	for _, p := range r.payments {
		if p.StudentID == studentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Save(ctx context.Context, payment *residence.Payment) error {
	r.payments[payment.ID] = payment
	return nil
}

type fakeLeaseRepo struct {
	leases map[uuid.UUID]*residence.Lease
}

func newFakeLeaseRepo(leases ...*residence.Lease) *fakeLeaseRepo {
	repo := &fakeLeaseRepo{leases: make(map[uuid.UUID]*residence.Lease)}
	for _, l := range leases {
		repo.leases[l.ID] = l
	}
	return repo
}

func (r *fakeLeaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*residence.Lease, error) {
	if l, ok := r.leases[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLeaseRepo) FindAll(ctx context.Context, filter residence.LeaseFilter) ([]residence.Lease, error) {
	var out []residence.Lease
	for _, l := range r.leases {
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (r *fakeLeaseRepo) FindAccruable(ctx context.Context, residenceID uuid.UUID, from, to time.Time) ([]residence.Lease, error) {
	var out []residence.Lease
	for _, l := range r.leases {
		if l.ResidenceID == residenceID && l.Status.IsAccruable() {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) Save(ctx context.Context, lease *residence.Lease) error {
	r.leases[lease.ID] = lease
	return nil
}

func (r *fakeLeaseRepo) Count(ctx context.Context, filter residence.LeaseFilter) (int64, error) {
	all, err := r.FindAll(ctx, filter)
	return int64(len(all)), err
}

type fakePlanRepo struct {
	plans map[uuid.UUID]*residence.InstallmentPlan
}

func newFakePlanRepo(plans ...*residence.InstallmentPlan) *fakePlanRepo {
	repo := &fakePlanRepo{plans: make(map[uuid.UUID]*residence.InstallmentPlan)}
	for _, p := range plans {
		repo.plans[p.ID] = p
	}
	return repo
}

func (r *fakePlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*residence.InstallmentPlan, error) {
	if p, ok := r.plans[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakePlanRepo) FindByRequestItem(ctx context.Context, monthlyRequestID uuid.UUID, itemIndex int) (*residence.InstallmentPlan, error) {
	for _, p := range r.plans {
		if p.MonthlyRequestID == monthlyRequestID && p.ItemIndex == itemIndex {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePlanRepo) FindByRequest(ctx context.Context, monthlyRequestID uuid.UUID) ([]residence.InstallmentPlan, error) {
	var out []residence.InstallmentPlan
	for _, p := range r.plans {
		if p.MonthlyRequestID == monthlyRequestID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Save(ctx context.Context, plan *residence.InstallmentPlan) error {
	r.plans[plan.ID] = plan
	return nil
}

type fakeVendorRepo struct {
	vendors map[uuid.UUID]*residence.Vendor
}

func newFakeVendorRepo(vendors ...*residence.Vendor) *fakeVendorRepo {
	repo := &fakeVendorRepo{vendors: make(map[uuid.UUID]*residence.Vendor)}
	for _, v := range vendors {
		repo.vendors[v.ID] = v
	}
	return repo
}

func (r *fakeVendorRepo) FindByID(ctx context.Context, id uuid.UUID) (*residence.Vendor, error) {
	if v, ok := r.vendors[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeVendorRepo) FindByVendorCode(ctx context.Context, vendorCode string) (*residence.Vendor, error) {
	for _, v := range r.vendors {
		if v.VendorCode == vendorCode {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeVendorRepo) FindAllActive(ctx context.Context) ([]residence.Vendor, error) {
	var out []residence.Vendor
	for _, v := range r.vendors {
		if v.IsActive {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVendorRepo) FindByAccountCode(ctx context.Context, accountCode string) (*residence.Vendor, error) {
	for _, v := range r.vendors {
		if v.ChartOfAccountsCode == accountCode {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeVendorRepo) Save(ctx context.Context, vendor *residence.Vendor) error {
	r.vendors[vendor.ID] = vendor
	return nil
}
