package accounting

import (
	"context"
	"fmt"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChartMap holds the well-known account codes the services post against.
// The codes are resolved from configuration at startup instead of being
// scattered through the services as literals, and every mapped account must
// exist in the registry before the server accepts traffic.
type ChartMap struct {
	Cash              string // bank/cash asset account (1000 band)
	ReceivableControl string // accounts receivable control account; student sub-accounts hang off it
	RentalIncome      string // rental income account (4000 band)
	OwnerCapital      string // owner capital equity account (3000 band)
	DefaultExpense    string // fallback expense account for uncategorised spend
	PayableControl    string // accounts payable control account; vendor sub-accounts hang off it
}

// Validate checks the mapped codes are well-formed and in the expected bands
func (c ChartMap) Validate() error {
	checks := []struct {
		field string
		code  string
		want  AccountType
	}{
		{"cash", c.Cash, AccountTypeAsset},
		{"receivable_control", c.ReceivableControl, AccountTypeAsset},
		{"rental_income", c.RentalIncome, AccountTypeIncome},
		{"owner_capital", c.OwnerCapital, AccountTypeEquity},
		{"default_expense", c.DefaultExpense, AccountTypeExpense},
		{"payable_control", c.PayableControl, AccountTypeLiability},
	}
	for _, check := range checks {
		if check.code == "" {
			return shared.NewDomainError("CHART_NOT_CONFIGURED",
				fmt.Sprintf("Chart mapping %q is not configured", check.field))
		}
		if err := ValidateCodeFormat(check.code); err != nil {
			return shared.NewDomainError("CHART_NOT_CONFIGURED",
				fmt.Sprintf("Chart mapping %q has invalid code %q", check.field, check.code))
		}
		if implied, ok := TypeForCode(check.code); !ok || implied != check.want {
			return shared.NewDomainError("CHART_NOT_CONFIGURED",
				fmt.Sprintf("Chart mapping %q code %q is outside the %s band", check.field, check.code, check.want))
		}
	}
	return nil
}

// SubAccountSuffix renders an aggregate ID as the compact sub-account suffix,
// the first twelve hex characters of the uuid.
func SubAccountSuffix(id uuid.UUID) string {
	raw := id.String()
	return raw[:8] + raw[9:13]
}

// StudentReceivableCode returns the per-student receivable sub-account code
// under the receivable control account.
func (c ChartMap) StudentReceivableCode(studentID uuid.UUID) string {
	return c.ReceivableControl + "-" + SubAccountSuffix(studentID)
}

// VendorPayableCode returns the per-vendor payable sub-account code under the
// payable control account. Vendor codes are short and human-assigned, so they
// double as the suffix.
func (c ChartMap) VendorPayableCode(vendorCode string) string {
	return c.PayableControl + "-" + vendorCode
}

// codes returns the mapped codes in a stable order
func (c ChartMap) codes() []string {
	return []string{c.Cash, c.ReceivableControl, c.RentalIncome, c.OwnerCapital, c.DefaultExpense, c.PayableControl}
}

// EnsureChartAccounts verifies that every mapped account exists and is active.
// Chart-of-accounts setup is a deployment precondition; a missing mapped
// account fails startup rather than surfacing as a 500 on first posting.
func EnsureChartAccounts(ctx context.Context, chart ChartMap, repo AccountRepository) error {
	if err := chart.Validate(); err != nil {
		return err
	}
	for _, code := range chart.codes() {
		account, err := repo.FindByCode(ctx, code)
		if err != nil {
			return shared.NewDomainError("CHART_NOT_CONFIGURED",
				fmt.Sprintf("Mapped account %q does not exist in the registry", code))
		}
		if !account.IsActive {
			return shared.NewDomainError("CHART_NOT_CONFIGURED",
				fmt.Sprintf("Mapped account %q is inactive", code))
		}
	}
	return nil
}
