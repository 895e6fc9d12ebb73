package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avoronov/smb-tagger/internal/common"
	"github.com/avoronov/smb-tagger/internal/model"
	"github.com/avoronov/smb-tagger/internal/parse"
)

// NormalizeID canonicalizes a client identifier across all sources.
// Spreadsheet numeric-to-text coercion leaves a trailing ".00" artifact
// that must not break the join.
func NormalizeID(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), ".00")
}

// Assembler holds the joined, per-client view of all four sources for one
// pipeline run. It is immutable after New.
type Assembler struct {
	transactions map[string][]model.TransactionRecord
	contracts    map[string][]model.ContractRecord
	profiles     []model.ClientProfile
}

// New joins the source tables. Outgoing and incoming transactions are
// concatenated before grouping; directionality is not distinguished
// downstream. A duplicate client identifier in the profile table is a
// data-quality error that fails the run.
func New(t *Tables) (*Assembler, error) {
	a := &Assembler{
		transactions: make(map[string][]model.TransactionRecord),
		contracts:    make(map[string][]model.ContractRecord),
		profiles:     make([]model.ClientProfile, 0, len(t.Profiles)),
	}

	seen := make(map[string]struct{}, len(t.Profiles))
	for _, row := range t.Profiles {
		id := NormalizeID(row[ColClientID])
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", common.ErrDuplicateProfile, id)
		}
		seen[id] = struct{}{}

		a.profiles = append(a.profiles, model.ClientProfile{
			ID:             id,
			Name:           row[ColClientName],
			StaffGroup:     row[ColStaffGroup],
			BankOpen:       cell(row, ColBankOpen),
			City:           row[ColCity],
			IsVED:          cell(row, ColIsVED),
			IsAcquiring:    cell(row, ColIsAcquiring),
			IsCredit:       cell(row, ColIsCredit),
			IsSalary:       cell(row, ColIsSalary),
			CashCommission: parse.Float(row[ColCashCommission]),
		})
	}

	for _, rows := range [][]Row{t.Outgoing, t.Incoming} {
		for _, row := range rows {
			descr := strings.TrimSpace(row[ColDescription])
			if descr == "" {
				continue
			}
			id := NormalizeID(row[ColClientID])
			rec := model.TransactionRecord{ClientID: id, Description: descr}
			if d, ok := parse.Date(row[ColEntryDate]); ok {
				rec.Date = &d
			}
			a.transactions[id] = append(a.transactions[id], rec)
		}
	}

	// Most-recent-first where entry dates parse; undated rows keep source
	// order after the dated ones.
	for _, recs := range a.transactions {
		sort.SliceStable(recs, func(i, j int) bool {
			di, dj := recs[i].Date, recs[j].Date
			switch {
			case di != nil && dj != nil:
				return di.After(*dj)
			case di != nil:
				return true
			default:
				return false
			}
		})
	}

	for _, row := range t.Contracts {
		id := NormalizeID(row[ColClientID])
		a.contracts[id] = append(a.contracts[id], model.ContractRecord{
			ClientID: id,
			Type:     row[ColContractType],
		})
	}

	return a, nil
}

// Profiles returns the profile rows in source order.
func (a *Assembler) Profiles() []model.ClientProfile {
	return a.profiles
}

// Descriptions returns the client's transaction description texts,
// most-recent-first when ordering was available.
func (a *Assembler) Descriptions(clientID string) []string {
	recs := a.transactions[clientID]
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Description)
	}
	return out
}

// Contracts returns the client's contract records.
func (a *Assembler) Contracts(clientID string) []model.ContractRecord {
	return a.contracts[clientID]
}

// cell returns the raw cell value, or nil when the cell is empty so that
// the parsers see a genuinely missing value.
func cell(row Row, col string) any {
	v, ok := row[col]
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
