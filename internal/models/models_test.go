package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestComputeDiferencia(t *testing.T) {
	tests := []struct {
		name    string
		cobrado *decimal.Decimal
		pagado  *decimal.Decimal
		want    string
	}{
		{"both present", dec("1500.00"), dec("1200.00"), "300.00"},
		{"pagado missing", dec("1500.00"), nil, "1500.00"},
		{"cobrado missing", nil, dec("1200.00"), "-1200.00"},
		{"both missing", nil, nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDiferencia(tt.cobrado, tt.pagado)
			require.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestValidEstados(t *testing.T) {
	require.True(t, ValidEstados[EstadoTransporte])
	require.True(t, ValidEstados[EstadoViajesEnCamino])
	require.True(t, ValidEstados[EstadoViajesConcretados])
	require.False(t, ValidEstados["en transito"])
	require.False(t, ValidEstados["Transporte"])
}
