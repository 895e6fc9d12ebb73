package assemble

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/avoronov/smb-tagger/internal/common"
	"github.com/avoronov/smb-tagger/internal/config"
)

// writeXLSX creates a one-sheet workbook with a header row and data rows.
func writeXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for rowIdx, row := range rows {
		for col, v := range row {
			cellName, err := excelize.CoordinatesToCellName(col+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func writeSources(t *testing.T) config.Sources {
	t.Helper()
	dir := t.TempDir()
	src := config.Sources{
		Products:  filepath.Join(dir, "products.xlsx"),
		Outgoing:  filepath.Join(dir, "outgoing.xlsx"),
		Incoming:  filepath.Join(dir, "incoming.xlsx"),
		Contracts: filepath.Join(dir, "contracts.xlsx"),
	}

	writeXLSX(t, src.Products, [][]any{
		{ColClientID, ColClientName, ColStaffGroup, ColBankOpen, ColCity, ColIsVED, ColIsAcquiring, ColIsCredit, ColIsSalary, ColCashCommission},
		{"12345.00", "ООО Ромашка", "1-24", "15.06.2019", "Москва", 0, 1, 0, 0, 0},
	})
	writeXLSX(t, src.Outgoing, [][]any{
		{ColClientID, ColDescription, ColEntryDate},
		{"12345", "оплата по счету за материалы", "10.01.2024"},
	})
	writeXLSX(t, src.Incoming, [][]any{
		{ColClientID, ColDescription, ColEntryDate},
		{"12345", "поступление выручки", "12.01.2024"},
	})
	writeXLSX(t, src.Contracts, [][]any{
		{ColClientID, ColContractType},
		{"12345", "Депозит"},
	})
	return src
}

func TestLoadTables(t *testing.T) {
	src := writeSources(t)

	tables, err := LoadTables(src)
	require.NoError(t, err)

	require.Len(t, tables.Profiles, 1)
	assert.Equal(t, "ООО Ромашка", tables.Profiles[0][ColClientName])
	require.Len(t, tables.Outgoing, 1)
	require.Len(t, tables.Incoming, 1)
	require.Len(t, tables.Contracts, 1)

	// End of the path: the loaded tables assemble and join.
	a, err := New(tables)
	require.NoError(t, err)
	assert.Len(t, a.Descriptions("12345"), 2)
}

func TestLoadTablesMissingFileFailsRun(t *testing.T) {
	src := writeSources(t)
	src.Incoming = filepath.Join(t.TempDir(), "nope.xlsx")

	_, err := LoadTables(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMissingSource))
}

func TestLoadTablesMissingColumnFailsRun(t *testing.T) {
	src := writeSources(t)
	writeXLSX(t, src.Contracts, [][]any{
		{ColClientID, "WRONG_HEADER"},
		{"12345", "Депозит"},
	})

	_, err := LoadTables(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMissingColumn))
}
