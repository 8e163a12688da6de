package importer

import (
	"bytes"
	"context"
	"time"

	"example.com/conecar/services/fletes/internal/models"
	"example.com/conecar/services/fletes/internal/repositories"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportFilename is the attachment name of the generated workbook
const ExportFilename = "FLETES_COBRADOS_PAGADOS_EXPORT.xlsx"

// exportDateFormat renders FECHA cells as dd/mm/yyyy while the stored value
// stays a native date, so the workbook survives a round-trip re-import.
const exportDateFormat = "dd/mm/yyyy"

// exportHeaders is the fixed column layout the business expects back, in the
// wording of the original planilla.
var exportHeaders = []interface{}{
	"FECHA",
	"Día",
	"O.Carga",
	"AÑO.MES",
	"CLIENTE / DESTINO",
	"TRANSPORTISTA",
	"Cod. Transporte",
	"INGRESE TRANSPORTE",
	"KM",
	"TN ORDEN DE CARGA",
	"TN CARGADAS",
	"AFORO",
	"TARIFA ASIGN",
	"FLETE COBRADO",
	"TARIFA TTE.",
	"FLETE PAGADO",
	"DIFERENCIA",
	"OBSERVACION",
}

// exportSheets lists the generated sheets and the estado each one holds
var exportSheets = []string{
	models.EstadoTransporte,
	models.EstadoViajesEnCamino,
	models.EstadoViajesConcretados,
}

// ExportWorkbook serializes all fletes into a three-sheet workbook, one
// sheet per lifecycle state, rows ordered by fecha ascending (nulls last)
// then O.Carga.
func (s *Service) ExportWorkbook(ctx context.Context) ([]byte, error) {
	fleteRepo := repositories.NewFleteRepository(s.db)
	transportistaRepo := repositories.NewTransportistaRepository(s.db)

	transportistas, err := transportistaRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	nombres := make(map[uint]string, len(transportistas))
	for _, t := range transportistas {
		nombres[t.ID] = t.Nombre
	}

	byEstado := make(map[string][]models.Flete, len(exportSheets))
	for _, estado := range exportSheets {
		fletes, err := fleteRepo.ListByEstado(ctx, estado)
		if err != nil {
			return nil, err
		}
		byEstado[estado] = fletes
	}

	return buildExportWorkbook(byEstado, nombres)
}

// buildExportWorkbook writes the estado sheets from already-fetched rows.
func buildExportWorkbook(byEstado map[string][]models.Flete, nombres map[uint]string) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	dateFmt := exportDateFormat
	dateStyle, err := wb.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create date style")
	}

	for _, estado := range exportSheets {
		if _, err := wb.NewSheet(estado); err != nil {
			return nil, errors.Wrap(err, "failed to create export sheet")
		}
		if err := wb.SetSheetRow(estado, "A1", &exportHeaders); err != nil {
			return nil, errors.Wrap(err, "failed to write export header")
		}

		for i, f := range byEstado[estado] {
			diferencia := models.ComputeDiferencia(f.FleteCobrado, f.FletePagado)
			row := []interface{}{
				dateCell(f.Fecha),
				textCell(f.Dia),
				f.OCarga,
				textCell(f.AnioMes),
				textCell(f.ClienteDestino),
				nombres[f.TransportistaID],
				textCell(f.CodTransporte),
				textCell(f.IngreseTransporte),
				numberCell(f.Km),
				numberCell(f.TnOrdenCarga),
				numberCell(f.TnCargadas),
				numberCell(f.Aforo),
				numberCell(f.TarifaAsign),
				numberCell(f.FleteCobrado),
				numberCell(f.TarifaTte),
				numberCell(f.FletePagado),
				numberCell(&diferencia),
				textCell(f.Observacion),
			}

			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return nil, errors.Wrap(err, "failed to compute export cell")
			}
			if err := wb.SetSheetRow(estado, cell, &row); err != nil {
				return nil, errors.Wrap(err, "failed to write export row")
			}
			if f.Fecha != nil {
				if err := wb.SetCellStyle(estado, cell, cell, dateStyle); err != nil {
					return nil, errors.Wrap(err, "failed to style date cell")
				}
			}
		}
	}

	// Drop the default sheet so exactly the three estado sheets remain
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "failed to drop default sheet")
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to serialize export workbook")
	}
	return buf.Bytes(), nil
}

func textCell(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// dateCell emits the value as a native date, not preformatted text, so
// downstream tools and a re-import see a real date cell.
func dateCell(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func numberCell(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}
