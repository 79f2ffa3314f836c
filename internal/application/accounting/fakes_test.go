package accounting

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/alamait/backend/internal/domain/accounting"
	"github.com/alamait/backend/internal/domain/residence"
	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// In-memory fakes backing the service tests. They implement the repository
// contracts closely enough for behaviour the services rely on, including the
// duplicate-code and source-idempotency errors the real indexes raise.

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type fakeReportCache struct {
	store         map[string][]byte
	invalidations int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{store: make(map[string][]byte)}
}

func (c *fakeReportCache) GetReport(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (c *fakeReportCache) SetReport(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *fakeReportCache) InvalidateReports(ctx context.Context) error {
	c.store = make(map[string][]byte)
	c.invalidations++
	return nil
}

type recordingListener struct {
	entries []*accounting.TransactionEntry
}

func (l *recordingListener) EntryPosted(ctx context.Context, entry *accounting.TransactionEntry) {
	l.entries = append(l.entries, entry)
}

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
		if filter.Type != nil && a.Type != *filter.Type {
			continue
		}
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if !filter.IncludeInactive && !a.IsActive {
			continue
		}
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
	all, err := r.FindAll(ctx, filter)
	return int64(len(all)), err
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
		if !e.TouchesAccount(accountCode) {
			continue
		}
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEntryRepo) FindPostedBefore(ctx context.Context, asOf time.Time, residenceID *uuid.UUID) ([]accounting.TransactionEntry, error) {
	var out []accounting.TransactionEntry
	for _, e := range r.entries {
		if e.Status != accounting.EntryStatusPosted || e.Date.After(asOf) {
			continue
		}
		if residenceID != nil && (e.ResidenceID == nil || *e.ResidenceID != *residenceID) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEntryRepo) FindAll(ctx context.Context, filter accounting.EntryFilter) ([]accounting.TransactionEntry, error) {
	var out []accounting.TransactionEntry
	for _, e := range r.entries {
		if filter.AccountCode != "" && !e.TouchesAccount(filter.AccountCode) {
			continue
		}
		if filter.Source != nil && e.Source != *filter.Source {
			continue
		}
		if len(filter.Sources) > 0 && !containsSource(filter.Sources, e.Source) {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.ResidenceID != nil && (e.ResidenceID == nil || *e.ResidenceID != *filter.ResidenceID) {
			continue
		}
		if filter.FromDate != nil && e.Date.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && e.Date.After(*filter.ToDate) {
			continue
		}
		if filter.Year != 0 && e.Date.Year() != filter.Year {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func containsSource(sources []accounting.EntrySource, s accounting.EntrySource) bool {
	for _, candidate := range sources {
		if candidate == s {
			return true
		}
	}
	return false
}

func (r *fakeEntryRepo) Save(ctx context.Context, entry *accounting.TransactionEntry) error {
	if strings.HasSuffix(string(entry.Source), "accrual") && entry.SourceID != nil {
		for _, e := range r.entries {
			if e.Source == entry.Source && e.SourceID != nil && *e.SourceID == *entry.SourceID &&
				e.AccountingPeriod == entry.AccountingPeriod {
				return shared.ErrAlreadyAccrued
			}
		}
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeEntryRepo) SaveStatus(ctx context.Context, entry *accounting.TransactionEntry) error {
	for _, e := range r.entries {
		if e.ID == entry.ID {
			e.Status = entry.Status
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *fakeEntryRepo) Count(ctx context.Context, filter accounting.EntryFilter) (int64, error) {
	all, err := r.FindAll(ctx, filter)
	return int64(len(all)), err
}

type fakePaymentResolver struct {
	payments map[string]*residence.Payment
}

func newFakePaymentResolver() *fakePaymentResolver {
	return &fakePaymentResolver{payments: make(map[string]*residence.Payment)}
}

func (r *fakePaymentResolver) add(payment *residence.Payment) {
	r.payments[payment.Reference] = payment
}

func (r *fakePaymentResolver) FindByReference(ctx context.Context, reference string) (*residence.Payment, error) {
	if p, ok := r.payments[reference]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
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
		out = append(out, *l)
	}
	return out, nil
}

func (r *fakeLeaseRepo) FindAccruable(ctx context.Context, residenceID uuid.UUID, from, to time.Time) ([]residence.Lease, error) {
	var out []residence.Lease
	for _, l := range r.leases {
		if l.ResidenceID == residenceID && l.Status.IsAccruable() &&
			!l.StartDate.After(to) && !l.EndDate.Before(from) {
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
	return int64(len(r.leases)), nil
}

type fakeVendorRepo struct {
	vendors map[uuid.UUID]*residence.Vendor
	saves   int
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
	r.saves++
	r.vendors[vendor.ID] = vendor
	return nil
}
