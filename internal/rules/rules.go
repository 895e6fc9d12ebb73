// Package rules implements the deterministic taggers: pure functions from
// a single profile field to zero or more tags. No I/O, no side effects.
package rules

import (
	"strings"
	"time"

	"github.com/avoronov/smb-tagger/internal/model"
	"github.com/avoronov/smb-tagger/internal/parse"
)

// sizeBuckets are ordered; the first bucket with a matching pattern wins.
var sizeBuckets = []struct {
	tag      string
	patterns []string
}{
	{model.TagCompanySizeMicro, []string{"1-24", "до 15", "микро", "micro"}},
	{model.TagCompanySizeSmall, []string{"25-100", "16-100", "малое", "small"}},
	{model.TagCompanySizeMedium, []string{"101-250", "среднее", "medium"}},
}

// CompanySize maps the free-text staff-size category onto a size bucket.
func CompanySize(staffGroup string) []string {
	s := strings.ToLower(strings.TrimSpace(staffGroup))
	if s == "" {
		return nil
	}
	for _, bucket := range sizeBuckets {
		for _, p := range bucket.patterns {
			if strings.Contains(s, p) {
				return []string{bucket.tag}
			}
		}
	}
	return nil
}

// ageYears is the conventional year length used for company age.
const ageYears = 365.25

// CompanyAge tags a client as new or established from the relationship
// open date. Under 3 years is new; exactly 3 years is established.
func CompanyAge(bankOpen any, today time.Time) []string {
	opened, ok := parse.Date(bankOpen)
	if !ok {
		return nil
	}
	age := today.Sub(opened).Hours() / 24 / ageYears
	if age < 3 {
		return []string{model.TagCompanyAgeNew}
	}
	return []string{model.TagCompanyAgeEstablished}
}

// Loyalty derives the long-term-client tag from company age; there is no
// independent loyalty signal.
func Loyalty(bankOpen any, today time.Time) []string {
	for _, tag := range CompanyAge(bankOpen, today) {
		if tag == model.TagCompanyAgeEstablished {
			return []string{model.TagLoyaltyLongTerm}
		}
	}
	return nil
}

// Geo splits clients into metro and regional by city text.
func Geo(city string) []string {
	s := strings.ToLower(strings.TrimSpace(city))
	if s == "" {
		return nil
	}
	if strings.Contains(s, "москва") || strings.Contains(s, "moscow") {
		return []string{model.TagGeoMoscow}
	}
	return []string{model.TagGeoRegion}
}

// Acquiring reduces the card-acquiring flag to a present/absent tag pair.
func Acquiring(flag any) []string {
	if parse.BoolFlag(flag) {
		return []string{model.TagAcquiringActive}
	}
	return []string{model.TagAcquiringAbsent}
}

// SalaryProject tags salary-project enrollment; no tag when unenrolled.
func SalaryProject(flag any) []string {
	if parse.BoolFlag(flag) {
		return []string{model.TagSalaryProjectUser}
	}
	return nil
}

var creditPatterns = []string{"кредит", "credit", "loan"}

// DebtLoad reduces the active-credit flag to a present/absent tag pair.
// A contract whose type text matches a credit pattern escalates to present
// even when the flag itself is down.
func DebtLoad(flag any, contracts []model.ContractRecord) []string {
	hasCredit := parse.BoolFlag(flag)

	if !hasCredit {
		for _, c := range contracts {
			t := strings.ToLower(c.Type)
			for _, p := range creditPatterns {
				if strings.Contains(t, p) {
					hasCredit = true
					break
				}
			}
			if hasCredit {
				break
			}
		}
	}

	if hasCredit {
		return []string{model.TagDebtLoadPresent}
	}
	return []string{model.TagDebtLoadAbsent}
}
