package services

import (
	"testing"

	"example.com/conecar/services/fletes/internal/repositories"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEstado(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		fails bool
	}{
		{"canonical", "transporte", "transporte", false},
		{"upper with spaces", "  Viajes En Camino  ", "viajes en camino", false},
		{"concretados", "VIAJES CONCRETADOS", "viajes concretados", false},
		{"unknown state", "en transito", "", true},
		{"empty", "", "", true},
		{"legacy sheet label is not a state", "base datos", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeEstado(tt.input)
			if tt.fails {
				require.ErrorIs(t, err, ErrInvalidEstado)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClampFilter(t *testing.T) {
	got := clampFilter(repositories.FleteFilter{Limit: 0, Offset: -3, Estado: " Transporte "})
	require.Equal(t, 200, got.Limit)
	require.Equal(t, 0, got.Offset)
	require.Equal(t, "transporte", got.Estado)

	got = clampFilter(repositories.FleteFilter{Limit: 99999, Offset: 40, Query: "  acme "})
	require.Equal(t, 2000, got.Limit)
	require.Equal(t, 40, got.Offset)
	require.Equal(t, "acme", got.Query)
}
