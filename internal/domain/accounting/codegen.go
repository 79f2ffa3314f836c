package accounting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alamait/backend/internal/domain/shared"
)

// categoryBand is a reserved sub-range of an account type's code band
type categoryBand struct {
	start int
	end   int
}

// categoryBands reserves sub-ranges within each type band for known categories.
// Codes for unknown categories fall back to the full type band.
var categoryBands = map[AccountType]map[string]categoryBand{
	AccountTypeAsset: {
		"Current Assets": {1000, 1499},
		"Fixed Assets":   {1500, 1999},
	},
	AccountTypeLiability: {
		"Current Liabilities": {2000, 2499},
		"Tenant Deposits":     {2500, 2599},
		"Long-term":           {2600, 2999},
	},
	AccountTypeIncome: {
		"Operational Income": {4000, 4499},
		"Management Fees":    {4600, 4699},
		"Other Income":       {4700, 4999},
	},
	AccountTypeExpense: {
		"Operational Expenses": {5000, 5499},
		"Maintenance":          {5500, 5799},
		"Other Expenses":       {5800, 5999},
	},
}

// nameHintBands routes accounts whose name matches a keyword to a non-standard
// sub-range regardless of the requested category.
var nameHintBands = []struct {
	keyword string
	band    categoryBand
}{
	{"management fee", categoryBand{4600, 4699}},
	{"deposit", categoryBand{2500, 2599}},
}

// CodeGenerator picks the next unused account code in the numeric band for a
// type and category. Generated codes are not reserved; concurrent creation is
// resolved by the unique index on accounts.code, and the caller retries on a
// duplicate-code rejection.
type CodeGenerator struct{}

// NewCodeGenerator creates a new CodeGenerator
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// bandFor resolves the sub-range to allocate from
func (g *CodeGenerator) bandFor(accountType AccountType, category, nameHint string) (categoryBand, error) {
	low, high := accountType.CodeBand()
	if low == 0 {
		return categoryBand{}, shared.NewDomainError("INVALID_INPUT", "Invalid account type")
	}

	lower := strings.ToLower(nameHint)
	for _, hint := range nameHintBands {
		if strings.Contains(lower, hint.keyword) {
			hintType, _ := TypeForCode(strconv.Itoa(hint.band.start))
			if hintType == accountType {
				return hint.band, nil
			}
		}
	}

	if bands, ok := categoryBands[accountType]; ok {
		if band, ok := bands[category]; ok {
			return band, nil
		}
	}
	return categoryBand{low, high}, nil
}

// NextCode returns the lowest unused code in the resolved band.
// takenCodes holds every existing base code (sub-account suffixes excluded).
func (g *CodeGenerator) NextCode(accountType AccountType, category, nameHint string, takenCodes []string) (string, error) {
	band, err := g.bandFor(accountType, category, nameHint)
	if err != nil {
		return "", err
	}

	taken := make(map[int]bool, len(takenCodes))
	for _, code := range takenCodes {
		base := code
		if i := strings.Index(base, "-"); i >= 0 {
			base = base[:i]
		}
		if n, err := strconv.Atoi(base); err == nil {
			taken[n] = true
		}
	}

	for candidate := band.start; candidate <= band.end; candidate++ {
		if !taken[candidate] {
			return strconv.Itoa(candidate), nil
		}
	}
	return "", shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("No free account codes remain in band %d-%d", band.start, band.end))
}
