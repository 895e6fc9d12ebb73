package model

import "sort"

// Tag vocabulary. Tags are short canonical labels; a client may hold any
// number of them.
const (
	TagCompanySizeMicro  = "company_size_micro"
	TagCompanySizeSmall  = "company_size_small"
	TagCompanySizeMedium = "company_size_medium"

	TagCompanyAgeNew         = "company_age_new"
	TagCompanyAgeEstablished = "company_age_established"

	TagLoyaltyLongTerm = "loyalty_long_term_client_smb"

	TagGeoMoscow = "geo_moscow_smb"
	TagGeoRegion = "geo_region_smb"

	TagPaymentsToSuppliers   = "payments_to_suppliers"
	TagPaymentsSalaryRelated = "payments_salary_related"
	TagPaymentsTax           = "payments_tax"

	TagCashOperationsHigh = "cash_operations_high"
	TagCashOperationsLow  = "cash_operations_low"

	TagVEDActive = "ved_active"
	TagVEDAbsent = "ved_absent"

	TagAcquiringActive = "acquiring_user_active"
	TagAcquiringAbsent = "acquiring_absent_or_low"

	TagDebtLoadPresent = "debt_load_present"
	TagDebtLoadAbsent  = "debt_load_absent"

	TagSalaryProjectUser = "salary_project_user"
)

// TagSet is a deduplicated, order-irrelevant set of tags.
type TagSet map[string]struct{}

// NewTagSet builds a set from the given tags.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	s.Add(tags...)
	return s
}

// Add inserts tags into the set.
func (s TagSet) Add(tags ...string) {
	for _, t := range tags {
		s[t] = struct{}{}
	}
}

// Has reports whether the set contains tag.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexicographic order for deterministic output.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
