package handlers

import (
	"fmt"
	"io"
	"net/http"

	"example.com/conecar/services/fletes/internal/importer"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportHandler handles the Excel import and export endpoints
type ImportHandler struct {
	importService *importer.Service
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *importer.Service) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// RegisterRoutes registers the import/export routes
func (h *ImportHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/import-excel", h.ImportExcel)
	router.GET("/export-excel", h.ExportExcel)
}

// ImportExcel ingests an uploaded workbook and reports the run summary
func (h *ImportHandler) ImportExcel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "archivo no recibido"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo abrir el archivo"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo leer el archivo"})
		return
	}

	summary, err := h.importService.ImportWorkbook(c.Request.Context(), content)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Workbook import failed")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":                     true,
		"processed_sheets":       summary.ProcessedSheets,
		"inserted":               summary.Inserted,
		"skipped":                summary.Skipped,
		"transportistas_created": summary.TransportistasCreated,
	})
}

// ExportExcel serializes all fletes into a three-sheet workbook download
func (h *ImportHandler) ExportExcel(c *gin.Context) {
	content, err := h.importService.ExportWorkbook(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Workbook export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", importer.ExportFilename))
	c.Data(http.StatusOK, xlsxContentType, content)
}
