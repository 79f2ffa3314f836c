package residence

import (
	"strings"
	"time"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Vendor is a supplier of goods or services to the residences. Each vendor
// owns exactly one generated liability account in the chart of accounts;
// CurrentBalance is a cached projection recomputed from the ledger, never an
// independently mutable figure - the ledger stays authoritative.
type Vendor struct {
	shared.BaseAggregateRoot
	VendorCode          string
	Name                string
	ContactEmail        string
	ChartOfAccountsCode string
	CurrentBalance      decimal.Decimal
	BalanceSyncedAt     *time.Time
	IsActive            bool
}

// NewVendor creates a new vendor bound to its generated payable account
func NewVendor(vendorCode, name, chartOfAccountsCode string) (*Vendor, error) {
	if strings.TrimSpace(vendorCode) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Vendor code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Vendor name is required")
	}
	if chartOfAccountsCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Vendor requires a chart of accounts code")
	}
	return &Vendor{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		VendorCode:          strings.TrimSpace(vendorCode),
		Name:                strings.TrimSpace(name),
		ChartOfAccountsCode: chartOfAccountsCode,
		CurrentBalance:      decimal.Zero,
		IsActive:            true,
	}, nil
}

// ApplySyncedBalance records a ledger-derived balance on the projection
func (v *Vendor) ApplySyncedBalance(balance decimal.Decimal, syncedAt time.Time) {
	v.CurrentBalance = balance
	v.BalanceSyncedAt = &syncedAt
	v.UpdatedAt = time.Now()
}

// Deactivate soft-deletes the vendor
func (v *Vendor) Deactivate() error {
	if !v.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Vendor is already inactive")
	}
	v.IsActive = false
	v.UpdatedAt = time.Now()
	return nil
}
