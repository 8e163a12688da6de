package importer

import "strings"

// Canonical field identifiers produced by the header lookup. They double as
// the keys of a located sheet's column map.
const (
	FieldFecha             = "fecha"
	FieldDia               = "dia"
	FieldOCarga            = "o_carga"
	FieldAnioMes           = "anio_mes"
	FieldClienteDestino    = "cliente_destino"
	FieldTransportista     = "transportista"
	FieldCodTransporte     = "cod_transporte"
	FieldIngreseTransporte = "ingrese_transporte"
	FieldKm                = "km"
	FieldTnOrdenCarga      = "tn_orden_carga"
	FieldTnCargadas        = "tn_cargadas"
	FieldAforo             = "aforo"
	FieldTarifaAsign       = "tarifa_asign"
	FieldFleteCobrado      = "flete_cobrado"
	FieldTarifaTte         = "tarifa_tte"
	FieldFletePagado       = "flete_pagado"
	FieldDiferencia        = "diferencia"
	FieldObservacion       = "observacion"
)

// expectedCols maps normalized header text to its field. Keys are already
// normalized, so the accent, punctuation and line-break variants seen in the
// planillas ("AÑO.MES", "TARIFA TTE.", "OBSERVACIÓN", "CLIENTE / DESTINO")
// collapse onto these entries via Normalize.
var expectedCols = map[string]string{
	"FECHA": FieldFecha,
	"DIA":   FieldDia,

	"O CARGA": FieldOCarga,
	"ANO MES": FieldAnioMes,

	"CLIENTE DESTINO":    FieldClienteDestino,
	"TRANSPORTISTA":      FieldTransportista,
	"COD TRANSPORTE":     FieldCodTransporte,
	"INGRESE TRANSPORTE": FieldIngreseTransporte,

	"KM":                 FieldKm,
	"TN ORDEN DE CARGA":  FieldTnOrdenCarga,
	"TN ORDEN CARGA":     FieldTnOrdenCarga,
	"TN CARGADAS":        FieldTnCargadas,
	"AFORO":              FieldAforo,

	"TARIFA ASIGN":  FieldTarifaAsign,
	"FLETE COBRADO": FieldFleteCobrado,
	"TARIFA TTE":    FieldTarifaTte,
	"FLETE PAGADO":  FieldFletePagado,

	"DIFERENCIA":  FieldDiferencia,
	"OBSERVACION": FieldObservacion,
}

// lookupField resolves normalized header text to a field identifier in two
// stages: exact match against the variant table, then the substring
// heuristic for the destination-client column, whose wording drifts the
// most between planillas.
func lookupField(normalized string) (string, bool) {
	if field, ok := expectedCols[normalized]; ok {
		return field, true
	}
	return fuzzyField(normalized)
}

// fuzzyField is the second lookup stage, kept separate from the exact table
// so each stage can be exercised on its own.
func fuzzyField(normalized string) (string, bool) {
	if strings.Contains(normalized, "CLIENTE") && strings.Contains(normalized, "DESTINO") {
		return FieldClienteDestino, true
	}
	return "", false
}

// LocateHeader scans the top region of a sheet for the header row. A row
// qualifies only when it maps both the O.Carga and TRANSPORTISTA columns;
// production spreadsheets carry title rows, logos and merged banners above
// the real header at unpredictable offsets, so the first qualifying row
// top-to-bottom wins. Returns the 0-based header row index, the
// field-to-column map, and whether a header was found.
func LocateHeader(rows [][]string, maxScanRows int) (int, map[string]int, bool) {
	limit := len(rows)
	if limit > maxScanRows {
		limit = maxScanRows
	}

	for r := 0; r < limit; r++ {
		colMap := make(map[string]int)
		for c, raw := range rows[r] {
			key := Normalize(raw)
			if key == "" {
				continue
			}
			if field, ok := lookupField(key); ok {
				colMap[field] = c
			}
		}

		if _, hasOCarga := colMap[FieldOCarga]; !hasOCarga {
			continue
		}
		if _, hasTransportista := colMap[FieldTransportista]; !hasTransportista {
			continue
		}
		return r, colMap, true
	}

	return 0, nil, false
}
