package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"spaces only", "   ", ""},
		{"accents and slash", "  Año/Mes  ", "ANO MES"},
		{"dots", "Cod. Transporte", "COD TRANSPORTE"},
		{"trailing dot", "TARIFA TTE.", "TARIFA TTE"},
		{"accented upper", "OBSERVACIÓN", "OBSERVACION"},
		{"slash with spaces", "CLIENTE / DESTINO", "CLIENTE DESTINO"},
		{"o carga", "O.Carga", "O CARGA"},
		{"line breaks and tabs", "TN ORDEN\nDE\tCARGA", "TN ORDEN DE CARGA"},
		{"parens and dash", "KM (ida-vuelta)", "KM IDA VUELTA"},
		{"collapses runs", "FLETE    COBRADO", "FLETE COBRADO"},
		{"already canonical", "TRANSPORTISTA", "TRANSPORTISTA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}
