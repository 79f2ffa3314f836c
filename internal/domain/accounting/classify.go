package accounting

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The classifiers in this file are the legacy string-matching fallbacks.
// Entries posted by this system carry explicit AccountingPeriod and
// CashFlowCategory fields; these heuristics only interpret rows that
// predate those fields, and serve as the backfill path for migrated data.

var (
	// "for 2024-3" / "for 2024-03"
	forYearMonthPattern = regexp.MustCompile(`for\s+(\d{4})-(\d{1,2})`)
	// "3/2024" / "03/2024"
	monthSlashYearPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{4})\b`)
)

// ResolveMonth determines the calendar month (1-12) an entry belongs to within
// its year, using the layered fallback chain:
// explicit period field, metadata monthSettled, metadata accrualMonth/accrualYear,
// description patterns, and finally the entry date. The boolean reports whether
// any signal other than the entry date was found; callers keep unknown-month
// entries rather than dropping them.
func ResolveMonth(e *TransactionEntry) (int, bool) {
	if e.AccountingPeriod != "" {
		if t, err := time.Parse("2006-01", e.AccountingPeriod); err == nil {
			return int(t.Month()), true
		}
	}

	if settled := e.Metadata.GetString(MetaMonthSettled); settled != "" {
		if t, err := time.Parse("2006-01", settled); err == nil {
			return int(t.Month()), true
		}
	}

	if rawMonth, ok := e.Metadata[MetaAccrualMonth]; ok {
		if month := toInt(rawMonth); month >= 1 && month <= 12 {
			return month, true
		}
	}

	if m := forYearMonthPattern.FindStringSubmatch(e.Description); m != nil {
		if month, err := strconv.Atoi(m[2]); err == nil && month >= 1 && month <= 12 {
			return month, true
		}
	}
	if m := monthSlashYearPattern.FindStringSubmatch(e.Description); m != nil {
		if month, err := strconv.Atoi(m[1]); err == nil && month >= 1 && month <= 12 {
			return month, true
		}
	}

	return int(e.Date.Month()), false
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

// operatingKeywords map an account display name fragment to the description
// fragments that confirm an operating classification.
var operatingKeywords = map[string][]string{
	"rental":      {"rent", "rental", "accommodation"},
	"rent":        {"rent", "rental", "accommodation"},
	"maintenance": {"maintenance", "repair"},
	"utilities":   {"utility", "utilities", "water", "electricity"},
	"admin":       {"admin", "management"},
}

// ClassifyCashFlow determines the cash flow category for a line within an
// entry. The explicit CashFlowCategory on the entry wins; otherwise the
// account-code prefix and keyword matching decide.
func ClassifyCashFlow(e *TransactionEntry, line EntryLine) CashFlowCategory {
	if e.CashFlowCategory != CashFlowUnclassified {
		return e.CashFlowCategory
	}
	return classifyCashFlowHeuristic(line.AccountCode, line.AccountName, e.Description)
}

// classifyCashFlowHeuristic is the legacy prefix + keyword classifier
func classifyCashFlowHeuristic(accountCode, accountName, description string) CashFlowCategory {
	name := strings.ToLower(accountName)
	desc := strings.ToLower(description)

	// Fixed assets move in investing; equity and long-term liabilities in financing.
	switch {
	case strings.HasPrefix(accountCode, "15"), strings.HasPrefix(accountCode, "16"):
		return CashFlowInvesting
	case strings.HasPrefix(accountCode, "3"), strings.HasPrefix(accountCode, "26"):
		return CashFlowFinancing
	}

	for nameKey, descKeys := range operatingKeywords {
		if !strings.Contains(name, nameKey) {
			continue
		}
		for _, key := range descKeys {
			if strings.Contains(desc, key) {
				return CashFlowOperating
			}
		}
	}

	// Income, expense and current asset/liability movement defaults to operating.
	if accountCode != "" {
		switch accountCode[0] {
		case '4', '5', '1', '2':
			return CashFlowOperating
		}
	}
	return CashFlowUnclassified
}

var (
	// "Accounts Receivable - John Dube"
	accountNameStudentPattern = regexp.MustCompile(`(?i)accounts\s+receivable\s*-\s*(.+)$`)
	// trailing " - John Dube" in a free-text description
	descriptionStudentPattern = regexp.MustCompile(`-\s*([A-Za-z][A-Za-z'’.\- ]+)$`)
)

// ResolveStudent identifies the student behind a receivable line, trying the
// account-code suffix ("1100-<id>"), the account name, and finally the
// free-text description. The returned key is the sub-account suffix when
// available, otherwise the extracted name; name may be empty when only an ID
// could be recovered.
func ResolveStudent(line EntryLine, description string) (key, name string, ok bool) {
	if i := strings.Index(line.AccountCode, "-"); i >= 0 {
		key = line.AccountCode[i+1:]
	}

	if m := accountNameStudentPattern.FindStringSubmatch(line.AccountName); m != nil {
		name = strings.TrimSpace(m[1])
	} else if m := descriptionStudentPattern.FindStringSubmatch(description); m != nil {
		name = strings.TrimSpace(m[1])
	}

	if key == "" {
		key = name
	}
	return key, name, key != ""
}

// IsNegotiatedAdjustment reports whether a manual entry records a negotiated
// payment adjustment (rent discount agreed with a student).
func IsNegotiatedAdjustment(e *TransactionEntry) bool {
	if e.Source != SourceManual {
		return false
	}
	if e.Metadata.GetString(MetaType) == MetaNegotiatedAdjustment {
		return true
	}
	haystack := strings.ToLower(e.Description + " " + e.Metadata.GetString("reason"))
	return strings.Contains(haystack, "negotiated") || strings.Contains(haystack, "discount")
}
