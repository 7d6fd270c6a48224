package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/apierror"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/dto"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FechamentoHandler serves the restaurant-facing settlement routes.
type FechamentoHandler struct{ svc service.FechamentoService }

func NewFechamentoHandler(svc service.FechamentoService) *FechamentoHandler {
	return &FechamentoHandler{svc: svc}
}

// Resumo godoc
// @Summary Prévia do próximo fechamento (não persiste nada)
// @Tags fechamentos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResumoFechamentoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/fechamentos/resumo [get]
func (h *FechamentoHandler) Resumo(c *gin.Context) {
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resumo(c.Request.Context(), restauranteID)
	if err != nil {
		c.JSON(fechamentoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Solicitar godoc
// @Summary Solicita o fechamento do período corrente
// @Tags fechamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SolicitarFechamentoRequest true "Observação opcional"
// @Success 201 {object} dto.FechamentoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/fechamentos [post]
func (h *FechamentoHandler) Solicitar(c *gin.Context) {
	var req dto.SolicitarFechamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Solicitar(c.Request.Context(), restauranteID, req)
	if err != nil {
		c.JSON(fechamentoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar returns the restaurant's own settlement history.
func (h *FechamentoHandler) Listar(c *gin.Context) {
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorRestaurante(c.Request.Context(), restauranteID, parseFechamentoFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter returns one settlement request, scoped to the caller's tenant.
func (h *FechamentoHandler) Obter(c *gin.Context) {
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	// A tenant must not learn whether other tenants' ids exist.
	if resp.RestauranteID != restauranteID.String() {
		c.JSON(http.StatusNotFound, apierror.New(service.ErrFechamentoNaoEncontrado.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// fechamentoStatus maps service errors onto HTTP codes: state conflicts are
// 409, unmet preconditions 422, unknown ids 404, the rest 500.
func fechamentoStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrJaPago),
		errors.Is(err, service.ErrNaoAprovado),
		errors.Is(err, service.ErrNaoPendente):
		return http.StatusConflict
	case errors.Is(err, service.ErrPedidosEmAndamento),
		errors.Is(err, service.ErrSemChavePix),
		errors.Is(err, service.ErrNadaParaFechar),
		errors.Is(err, service.ErrValorLiquidoNegativo):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrFechamentoNaoEncontrado),
		errors.Is(err, service.ErrCarteiraNaoEncontrada),
		errors.Is(err, service.ErrRestauranteNaoEncontrado):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func parseFechamentoFilter(c *gin.Context) repository.FechamentoFilter {
	filter := repository.FechamentoFilter{Status: c.Query("status")}
	if v := c.Query("data_inicio"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DataInicio = &t
		}
	}
	if v := c.Query("data_fim"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DataFim = &t
		}
	}
	return filter
}
