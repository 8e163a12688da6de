package handlers

import (
	"net/http"

	"example.com/conecar/services/fletes/internal/importer"
	"example.com/conecar/services/fletes/internal/services"

	"github.com/pkg/errors"
)

// statusForError maps business failures onto HTTP statuses: not-found to
// 404, conflicts on the direct creation paths to 409, validation failures
// (including the import-level ones) to 400, anything else to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrTransportistaNotFound),
		errors.Is(err, services.ErrFleteNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTransportistaExists),
		errors.Is(err, services.ErrFleteExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrOCargaRequired),
		errors.Is(err, services.ErrNombreRequired),
		errors.Is(err, services.ErrInvalidEstado),
		errors.Is(err, importer.ErrNoMatchingSheet),
		errors.Is(err, importer.ErrMissingTransportista):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
