// Package assemble loads the four source tables and joins them into
// per-client bundles on a normalized client identifier.
package assemble

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/avoronov/smb-tagger/internal/common"
	"github.com/avoronov/smb-tagger/internal/config"
)

// Source column names. The external tables use these exact headers.
const (
	ColClientID       = "CLI_ID"
	ColClientName     = "CLN_NAME"
	ColStaffGroup     = "STAFF_GROUP"
	ColBankOpen       = "DT_BANK_OPEN"
	ColCity           = "CITY"
	ColIsVED          = "IS_VED"
	ColIsAcquiring    = "IS_ACQ"
	ColIsCredit       = "IS_CREDIT"
	ColIsSalary       = "IS_SAL"
	ColCashCommission = "KASSA_COMIS"
	ColDescription    = "ENTRY_DESCR"
	ColEntryDate      = "DT_ENTRY"
	ColContractType   = "CON_TYPE"
)

// Row is one record of a source table, keyed by column header.
type Row map[string]string

// Tables holds the raw rows of all four sources.
type Tables struct {
	Profiles  []Row
	Outgoing  []Row
	Incoming  []Row
	Contracts []Row
}

// LoadTables reads the four XLSX sources. Any missing or unreadable table
// fails the whole run; no partial results are produced.
func LoadTables(src config.Sources) (*Tables, error) {
	profiles, err := readSheet(src.Products, ColClientID, ColClientName)
	if err != nil {
		return nil, fmt.Errorf("products table: %w", err)
	}
	outgoing, err := readSheet(src.Outgoing, ColClientID, ColDescription)
	if err != nil {
		return nil, fmt.Errorf("outgoing transactions table: %w", err)
	}
	incoming, err := readSheet(src.Incoming, ColClientID, ColDescription)
	if err != nil {
		return nil, fmt.Errorf("incoming transactions table: %w", err)
	}
	contracts, err := readSheet(src.Contracts, ColClientID, ColContractType)
	if err != nil {
		return nil, fmt.Errorf("contracts table: %w", err)
	}

	return &Tables{
		Profiles:  profiles,
		Outgoing:  outgoing,
		Incoming:  incoming,
		Contracts: contracts,
	}, nil
}

// readSheet reads the first sheet of an XLSX file into header-keyed rows.
// The first row is the header; required columns must all be present.
func readSheet(path string, required ...string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMissingSource, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMissingSource, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", common.ErrMissingSource, path)
	}

	headers := rows[0]
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s in %s", common.ErrMissingColumn, col, path)
		}
	}

	out := make([]Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(Row, len(headers))
		for col, i := range index {
			if i < len(raw) {
				row[col] = raw[i]
			}
		}
		out = append(out, row)
	}
	return out, nil
}
