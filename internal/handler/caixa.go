package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/apierror"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/dto"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre uma nova sessão de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Dados de abertura"
// @Success 201 {object} dto.SessaoCaixaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	opID, ok := operadorID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Abrir(c.Request.Context(), restauranteID, opID, req)
	if err != nil {
		c.JSON(caixaStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha a sessão de caixa e registra a diferença
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Valor contado"
// @Success 200 {object} dto.RelatorioCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), restauranteID, req)
	if err != nil {
		c.JSON(caixaStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimentacao godoc
// @Summary Registra uma sangria ou reforço na sessão aberta
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimentacaoManualRequest true "Movimentação manual"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/movimentacao [post]
func (h *CaixaHandler) RegistrarMovimentacao(c *gin.Context) {
	var req dto.MovimentacaoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	opID, ok := operadorID(c)
	if !ok {
		return
	}
	if err := h.svc.RegistrarMovimentacao(c.Request.Context(), restauranteID, opID, req); err != nil {
		c.JSON(caixaStatus(err), apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Atual returns the operator's open session, 404 when none.
func (h *CaixaHandler) Atual(c *gin.Context) {
	opID, ok := operadorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Atual(c.Request.Context(), opID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("Sem caixa aberto"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status is the status-bar read model: always 200, aberto=false when closed.
func (h *CaixaHandler) Status(c *gin.Context) {
	opID, ok := operadorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Status(c.Request.Context(), opID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Relatorio godoc
// @Summary Relatório de uma sessão de caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.RelatorioCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/{id}/relatorio [get]
func (h *CaixaHandler) Relatorio(c *gin.Context) {
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Relatorio(c.Request.Context(), restauranteID, id)
	if err != nil {
		c.JSON(caixaStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// caixaStatus maps service errors onto HTTP codes, mirroring the settlement
// routes: state conflicts are 409, invalid amounts 422, unknown ids 404, the
// rest 500.
func caixaStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrCaixaJaAberto),
		errors.Is(err, service.ErrSemCaixaAberto):
		return http.StatusConflict
	case errors.Is(err, service.ErrValorInvalido):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSessaoNaoEncontrada):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Historico returns a paginated list of the restaurant's sessions.
func (h *CaixaHandler) Historico(c *gin.Context) {
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, total, err := h.svc.Historico(c.Request.Context(), restauranteID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": total, "page": page, "limit": limit})
}
