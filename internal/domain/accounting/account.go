package accounting

import (
	"regexp"
	"strings"
	"time"

	"github.com/alamait/backend/internal/domain/shared"
	"github.com/alamait/backend/internal/domain/shared/valueobject"
)

// AccountType represents the fundamental accounting classification of an account
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeIncome    AccountType = "Income"
	AccountTypeExpense   AccountType = "Expense"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation
func (t AccountType) String() string {
	return string(t)
}

// CodeBand returns the inclusive numeric range account codes of this type live in.
// 1xxx Asset, 2xxx Liability, 3xxx Equity, 4xxx Income, 5xxx Expense.
func (t AccountType) CodeBand() (low, high int) {
	switch t {
	case AccountTypeAsset:
		return 1000, 1999
	case AccountTypeLiability:
		return 2000, 2999
	case AccountTypeEquity:
		return 3000, 3999
	case AccountTypeIncome:
		return 4000, 4999
	case AccountTypeExpense:
		return 5000, 5999
	}
	return 0, 0
}

// NormalBalance returns whether accounts of this type carry a debit or credit balance
func (t AccountType) NormalBalance() string {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return "debit"
	default:
		return "credit"
	}
}

// accountCodePattern matches a 4-digit base code with an optional sub-account
// suffix, e.g. "1000" or "1100-68a3f2c1".
var accountCodePattern = regexp.MustCompile(`^\d{4}(-[A-Za-z0-9]+)?$`)

// ValidateCodeFormat checks that a code matches the chart pattern.
// It does not check uniqueness; that is enforced by the storage layer.
func ValidateCodeFormat(code string) error {
	if !accountCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_INPUT", "Account code must be a 4-digit code with an optional sub-account suffix")
	}
	return nil
}

// TypeForCode derives the account type implied by a code's leading digit
func TypeForCode(code string) (AccountType, bool) {
	if len(code) == 0 {
		return "", false
	}
	switch code[0] {
	case '1':
		return AccountTypeAsset, true
	case '2':
		return AccountTypeLiability, true
	case '3':
		return AccountTypeEquity, true
	case '4':
		return AccountTypeIncome, true
	case '5':
		return AccountTypeExpense, true
	}
	return "", false
}

// Account represents a node in the chart of accounts.
// The code is immutable after creation and encodes the account type;
// accounts are never hard-deleted because historical ledger entries reference them.
type Account struct {
	shared.BaseAggregateRoot
	Code               string
	Name               string
	Type               AccountType
	Category           string
	Subcategory        string
	ParentCode         string
	Level              int
	IsActive           bool
	OpeningBalance     valueobject.Money
	OpeningBalanceDate *time.Time
}

// NewAccount creates a new account after validating code format and type consistency
func NewAccount(code, name string, accountType AccountType, category string) (*Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account name is required")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid account type")
	}
	if err := ValidateCodeFormat(code); err != nil {
		return nil, err
	}
	if implied, ok := TypeForCode(code); !ok || implied != accountType {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account code is outside the numeric band for its type")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		Type:              accountType,
		Category:          category,
		Level:             1,
		IsActive:          true,
		OpeningBalance:    valueobject.ZeroUSD(),
	}, nil
}

// NewSubAccount creates a child account under a parent, e.g. a per-student
// receivable account "1100-<studentID>" beneath the receivable control account.
func NewSubAccount(parent *Account, suffix, name string) (*Account, error) {
	code := parent.Code + "-" + suffix
	account, err := NewAccount(code, name, parent.Type, parent.Category)
	if err != nil {
		return nil, err
	}
	account.ParentCode = parent.Code
	account.Level = parent.Level + 1
	account.Subcategory = parent.Subcategory
	return account, nil
}

// Update changes the mutable attributes of the account.
// The code is immutable; an attempt to change it is rejected.
func (a *Account) Update(code, name, category, subcategory string) error {
	if code != "" && code != a.Code {
		return shared.NewDomainError("INVALID_STATE", "Account code cannot be changed after creation")
	}
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Account name is required")
	}
	a.Name = strings.TrimSpace(name)
	a.Category = category
	a.Subcategory = subcategory
	a.UpdatedAt = time.Now()
	return nil
}

// SetOpeningBalance records the account's opening balance as of a date
func (a *Account) SetOpeningBalance(amount valueobject.Money, asOf time.Time) {
	a.OpeningBalance = amount
	a.OpeningBalanceDate = &asOf
	a.UpdatedAt = time.Now()
}

// Currency returns the account's currency, carried on its opening balance
func (a *Account) Currency() valueobject.Currency {
	return a.OpeningBalance.Currency()
}

// Deactivate soft-deletes the account. Historical entries keep referencing it.
func (a *Account) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Account is already inactive")
	}
	a.IsActive = false
	a.UpdatedAt = time.Now()
	return nil
}

// Reactivate restores a soft-deleted account
func (a *Account) Reactivate() {
	a.IsActive = true
	a.UpdatedAt = time.Now()
}

// IsSubAccount returns true if the account is a generated sub-account
func (a *Account) IsSubAccount() bool {
	return strings.Contains(a.Code, "-")
}

// BaseCode returns the 4-digit base code without any sub-account suffix
func (a *Account) BaseCode() string {
	if i := strings.Index(a.Code, "-"); i >= 0 {
		return a.Code[:i]
	}
	return a.Code
}

// SubAccountSuffix returns the sub-account suffix, or "" for base accounts
func (a *Account) SubAccountSuffix() string {
	if i := strings.Index(a.Code, "-"); i >= 0 {
		return a.Code[i+1:]
	}
	return ""
}
