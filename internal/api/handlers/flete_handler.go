package handlers

import (
	"net/http"
	"strconv"
	"time"

	"example.com/conecar/services/fletes/internal/repositories"
	"example.com/conecar/services/fletes/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// FleteHandler handles flete HTTP requests
type FleteHandler struct {
	fleteService *services.FleteService
}

// NewFleteHandler creates a new flete handler
func NewFleteHandler(fleteService *services.FleteService) *FleteHandler {
	return &FleteHandler{fleteService: fleteService}
}

// RegisterRoutes registers the flete routes
func (h *FleteHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/fletes", h.Create)
	router.POST("/fletes-web", h.CreateWeb)
	router.GET("/fletes", h.List)
	router.PATCH("/fletes/:o_carga/estado", h.CambiarEstado)
	router.GET("/analytics", h.Analytics)
}

// FleteCreateRequest is the legacy creation payload; estado is assigned
// later, by import or through the UI
type FleteCreateRequest struct {
	Fecha   *string `json:"fecha"`
	Dia     *string `json:"dia"`
	OCarga  string  `json:"o_carga" binding:"required,min=1,max=80"`
	AnioMes *string `json:"anio_mes"`

	ClienteDestino *string `json:"cliente_destino"`

	TransportistaID uint `json:"transportista_id" binding:"required"`

	CodTransporte     *string `json:"cod_transporte"`
	IngreseTransporte *string `json:"ingrese_transporte"`

	Km           *decimal.Decimal `json:"km"`
	TnOrdenCarga *decimal.Decimal `json:"tn_orden_carga"`
	TnCargadas   *decimal.Decimal `json:"tn_cargadas"`
	Aforo        *decimal.Decimal `json:"aforo"`

	TarifaAsign  *decimal.Decimal `json:"tarifa_asign"`
	FleteCobrado *decimal.Decimal `json:"flete_cobrado"`
	TarifaTte    *decimal.Decimal `json:"tarifa_tte"`
	FletePagado  *decimal.Decimal `json:"flete_pagado"`

	Observacion *string `json:"observacion"`
}

// FleteWebCreateRequest is the UI creation payload, which assigns a
// lifecycle state up front
type FleteWebCreateRequest struct {
	FleteCreateRequest
	Estado string `json:"estado" binding:"required,min=1,max=60"`
}

func (r *FleteCreateRequest) toInput() (services.CreateFleteInput, error) {
	in := services.CreateFleteInput{
		Dia:               r.Dia,
		OCarga:            r.OCarga,
		AnioMes:           r.AnioMes,
		ClienteDestino:    r.ClienteDestino,
		TransportistaID:   r.TransportistaID,
		CodTransporte:     r.CodTransporte,
		IngreseTransporte: r.IngreseTransporte,
		Km:                r.Km,
		TnOrdenCarga:      r.TnOrdenCarga,
		TnCargadas:        r.TnCargadas,
		Aforo:             r.Aforo,
		TarifaAsign:       r.TarifaAsign,
		FleteCobrado:      r.FleteCobrado,
		TarifaTte:         r.TarifaTte,
		FletePagado:       r.FletePagado,
		Observacion:       r.Observacion,
	}

	if r.Fecha != nil && *r.Fecha != "" {
		fecha, err := time.Parse("2006-01-02", *r.Fecha)
		if err != nil {
			return in, err
		}
		in.Fecha = &fecha
	}

	return in, nil
}

// Create registers a flete without a lifecycle state
func (h *FleteHandler) Create(c *gin.Context) {
	var req FleteCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fecha inválida, formato esperado YYYY-MM-DD"})
		return
	}

	h.create(c, in)
}

// CreateWeb registers a flete with a validated lifecycle state
func (h *FleteHandler) CreateWeb(c *gin.Context) {
	var req FleteWebCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fecha inválida, formato esperado YYYY-MM-DD"})
		return
	}
	in.Estado = &req.Estado

	h.create(c, in)
}

func (h *FleteHandler) create(c *gin.Context, in services.CreateFleteInput) {
	f, err := h.fleteService.CreateFlete(c.Request.Context(), in)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to create flete")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, f)
}

// List returns fletes matching the query filters
func (h *FleteHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	transportistaID, _ := strconv.ParseUint(c.Query("transportista_id"), 10, 64)

	filter := repositories.FleteFilter{
		Estado:          c.Query("estado"),
		AnioMes:         c.Query("anio_mes"),
		TransportistaID: uint(transportistaID),
		Query:           c.Query("q"),
		Limit:           limit,
		Offset:          offset,
	}

	rows, err := h.fleteService.ListFletes(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list fletes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// EstadoUpdateRequest asks for a lifecycle state change
type EstadoUpdateRequest struct {
	Estado string `json:"estado" binding:"required,min=1,max=60"`
}

// CambiarEstado moves a flete to a new lifecycle state
func (h *FleteHandler) CambiarEstado(c *gin.Context) {
	var req EstadoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	oCarga := c.Param("o_carga")
	estado, err := h.fleteService.CambiarEstado(c.Request.Context(), oCarga, req.Estado)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("o_carga", oCarga).Msg("Failed to update flete estado")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "o_carga": oCarga, "estado": estado})
}

// Analytics returns the aggregate cobrado/pagado/diferencia report
func (h *FleteHandler) Analytics(c *gin.Context) {
	resp, err := h.fleteService.Analytics(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
