package handlers

import (
	"net/http"

	"example.com/conecar/services/fletes/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// TransportistaHandler handles transportista HTTP requests
type TransportistaHandler struct {
	fleteService *services.FleteService
}

// NewTransportistaHandler creates a new transportista handler
func NewTransportistaHandler(fleteService *services.FleteService) *TransportistaHandler {
	return &TransportistaHandler{fleteService: fleteService}
}

// RegisterRoutes registers the transportista routes
func (h *TransportistaHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/transportistas", h.Create)
	router.GET("/transportistas", h.List)
}

// TransportistaCreateRequest is the creation payload
type TransportistaCreateRequest struct {
	Nombre string `json:"nombre" binding:"required,min=1,max=255"`
}

// Create registers a new transportista
func (h *TransportistaHandler) Create(c *gin.Context) {
	var req TransportistaCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.fleteService.CreateTransportista(c.Request.Context(), req.Nombre)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to create transportista")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, t)
}

// List returns all transportistas ordered by name
func (h *TransportistaHandler) List(c *gin.Context) {
	rows, err := h.fleteService.ListTransportistas(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transportistas")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rows)
}
