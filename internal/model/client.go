// Package model defines the data entities flowing through the tagging pipeline.
package model

import "time"

// ClientProfile is one row of the products/profile table. Flag and date
// fields keep their raw source values; the parse package resolves them on
// demand so that inconsistent encodings ("да", 1, "1.0", excel serials)
// never fail a run.
type ClientProfile struct {
	BankOpen       any
	IsVED          any
	IsAcquiring    any
	IsCredit       any
	IsSalary       any
	ID             string
	Name           string
	StaffGroup     string
	City           string
	CashCommission float64
}

// TransactionRecord is one monetary movement, outgoing or incoming.
// Directionality is not distinguished downstream.
type TransactionRecord struct {
	Date        *time.Time
	ClientID    string
	Description string
}

// ContractRecord is one client contract. Only the type label is used,
// to corroborate debt-load tagging.
type ContractRecord struct {
	ClientID string
	Type     string
}

// ClientTagResult is the per-client pipeline output.
type ClientTagResult struct {
	ClientID string
	Name     string
	Tags     TagSet
}
