package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/apierror"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/dto"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/infra"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminFechamentoHandler serves the admin console: the approval state machine
// plus listing and export across all restaurants.
type AdminFechamentoHandler struct {
	svc  service.FechamentoService
	repo repository.FechamentoRepository // raw rows for the XLSX export
}

func NewAdminFechamentoHandler(svc service.FechamentoService, repo repository.FechamentoRepository) *AdminFechamentoHandler {
	return &AdminFechamentoHandler{svc: svc, repo: repo}
}

// Listar returns settlement requests across all restaurants.
func (h *AdminFechamentoHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarTodos(c.Request.Context(), parseFechamentoFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Aprovar godoc
// @Summary Aprova um fechamento pendente (idempotente)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do fechamento"
// @Param body body dto.AprovarFechamentoRequest false "Observações"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/admin/fechamentos/{id}/aprovar [post]
func (h *AdminFechamentoHandler) Aprovar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AprovarFechamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Aprovar(c.Request.Context(), id, req.Observacoes)
	if err != nil {
		c.JSON(fechamentoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarcarPago godoc
// @Summary Confirma o repasse de um fechamento aprovado
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do fechamento"
// @Param body body dto.MarcarPagoRequest false "Comprovante"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/admin/fechamentos/{id}/pagar [post]
func (h *AdminFechamentoHandler) MarcarPago(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.MarcarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.MarcarPago(c.Request.Context(), id, req.ComprovanteURL, req.Observacoes)
	if err != nil {
		c.JSON(fechamentoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rejeitar godoc
// @Summary Devolve um fechamento para revisão com o motivo
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do fechamento"
// @Param body body dto.RejeitarFechamentoRequest true "Motivo"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/admin/fechamentos/{id}/rejeitar [post]
func (h *AdminFechamentoHandler) Rejeitar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.RejeitarFechamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Rejeitar(c.Request.Context(), id, req.Motivo)
	if err != nil {
		c.JSON(fechamentoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Exportar streams the filtered settlement list as an XLSX workbook.
func (h *AdminFechamentoHandler) Exportar(c *gin.Context) {
	fechamentos, err := h.repo.ListAll(c.Request.Context(), parseFechamentoFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	buf, err := infra.GerarRelatorioXLSX(fechamentos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao gerar planilha"))
		return
	}
	fileName := fmt.Sprintf("fechamentos_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
