package importer

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"example.com/conecar/services/fletes/config"
	"example.com/conecar/services/fletes/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBuildExportWorkbookNativeDates(t *testing.T) {
	fecha := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	byEstado := map[string][]models.Flete{
		models.EstadoTransporte: {
			{
				Fecha:           &fecha,
				Dia:             strPtr("martes"),
				OCarga:          "OC-1",
				AnioMes:         strPtr("2024.03"),
				TransportistaID: 7,
				FleteCobrado:    decPtr("1500.00"),
				FletePagado:     decPtr("1200.00"),
			},
		},
	}

	content, err := buildExportWorkbook(byEstado, map[uint]string{7: "Transporte Sur"})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer wb.Close()

	require.Equal(t, exportSheets, wb.GetSheetList())

	// FECHA is a real date cell: a numeric serial under a date format, not
	// preformatted text
	raw, err := wb.GetCellValue(models.EstadoTransporte, "A2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	serial, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	parsed, err := excelize.ExcelDateToTime(serial, false)
	require.NoError(t, err)
	require.Equal(t, "2024-03-05", parsed.Format("2006-01-02"))

	shown, err := wb.GetCellValue(models.EstadoTransporte, "A2")
	require.NoError(t, err)
	require.Equal(t, "05/03/2024", shown)

	// Diferencia is recomputed on the way out
	dif, err := wb.GetCellValue(models.EstadoTransporte, "Q2")
	require.NoError(t, err)
	require.Equal(t, "300", dif)
}

func TestExportedWorkbookRoundTrips(t *testing.T) {
	fecha := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	byEstado := map[string][]models.Flete{
		models.EstadoTransporte: {
			{
				Fecha:           &fecha,
				OCarga:          "OC-1",
				TransportistaID: 7,
				FleteCobrado:    decPtr("1500.00"),
			},
		},
	}

	content, err := buildExportWorkbook(byEstado, map[uint]string{7: "Transporte Sur"})
	require.NoError(t, err)

	st := newMemStore()
	summary, err := testService(t, config.ImportConfig{}).importWithStore(context.Background(), content, st)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Inserted)

	got := st.fletes["OC-1"]
	require.NotNil(t, got.Fecha)
	require.Equal(t, "2024-03-05", got.Fecha.Format("2006-01-02"))
	require.True(t, decimal.RequireFromString("1500").Equal(*got.FleteCobrado))
}
