package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/dto"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/handler"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/middleware"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Full in-memory CaixaRepository ───────────────────────────────────────────

type fakeCaixaRepo struct {
	sessoes       map[uuid.UUID]*model.SessaoCaixa
	movimentacoes []model.MovimentacaoCaixa
}

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{sessoes: make(map[uuid.UUID]*model.SessaoCaixa)}
}

func (r *fakeCaixaRepo) CreateSessao(_ context.Context, s *model.SessaoCaixa) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessoes[s.ID] = s
	return nil
}

func (r *fakeCaixaRepo) FindAbertaPorOperador(_ context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error) {
	for _, s := range r.sessoes {
		if s.OperadorID == operadorID && s.Status == "aberta" {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeCaixaRepo) FindSessaoByID(_ context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	s, ok := r.sessoes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	s.Movimentacoes = nil
	for _, m := range r.movimentacoes {
		if m.SessaoID == id {
			s.Movimentacoes = append(s.Movimentacoes, m)
		}
	}
	return s, nil
}

func (r *fakeCaixaRepo) UpdateSessao(_ context.Context, s *model.SessaoCaixa) error {
	r.sessoes[s.ID] = s
	return nil
}

func (r *fakeCaixaRepo) CreateMovimentacao(_ context.Context, m *model.MovimentacaoCaixa) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimentacoes = append(r.movimentacoes, *m)
	return nil
}

func (r *fakeCaixaRepo) ListMovimentacoes(_ context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	var result []model.MovimentacaoCaixa
	for _, m := range r.movimentacoes {
		if m.SessaoID == sessaoID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeCaixaRepo) SumMovimentacoes(_ context.Context, sessaoID uuid.UUID) (repository.TotaisMovimentacao, error) {
	t := repository.TotaisMovimentacao{
		Saldo:    decimal.Zero,
		Sangrias: decimal.Zero,
		Reforcos: decimal.Zero,
	}
	for _, m := range r.movimentacoes {
		if m.SessaoID != sessaoID {
			continue
		}
		t.Saldo = t.Saldo.Add(m.Valor)
		switch m.Tipo {
		case "sangria":
			t.Sangrias = t.Sangrias.Add(m.Valor.Neg())
		case "reforco":
			t.Reforcos = t.Reforcos.Add(m.Valor)
		}
	}
	return t, nil
}

func (r *fakeCaixaRepo) ListSessoes(_ context.Context, restauranteID uuid.UUID, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var all []model.SessaoCaixa
	for _, s := range r.sessoes {
		if s.RestauranteID == restauranteID {
			all = append(all, *s)
		}
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

var _ repository.CaixaRepository = (*fakeCaixaRepo)(nil)

// ── In-memory CarteiraRepository ─────────────────────────────────────────────

type fakeCarteiraRepo struct {
	carteiras map[uuid.UUID]*model.Carteira // keyed by restaurante_id
	entradas  []model.MovimentacaoCarteira
}

func newFakeCarteiraRepo() *fakeCarteiraRepo {
	return &fakeCarteiraRepo{carteiras: make(map[uuid.UUID]*model.Carteira)}
}

func (r *fakeCarteiraRepo) addCarteira(restauranteID uuid.UUID) *model.Carteira {
	c := &model.Carteira{ID: uuid.New(), RestauranteID: restauranteID}
	r.carteiras[restauranteID] = c
	return c
}

func (r *fakeCarteiraRepo) addEntrada(carteiraID, restauranteID uuid.UUID, valor, taxaEntrega float64, criadoEm time.Time) {
	r.entradas = append(r.entradas, model.MovimentacaoCarteira{
		ID:            uuid.New(),
		CarteiraID:    carteiraID,
		RestauranteID: restauranteID,
		Valor:         decimal.NewFromFloat(valor),
		TaxaEntrega:   decimal.NewFromFloat(taxaEntrega),
		Tipo:          "entrada",
		Origem:        "pedido",
		Status:        "confirmado",
		CreatedAt:     criadoEm,
	})
}

func (r *fakeCarteiraRepo) FindByRestaurante(_ context.Context, restauranteID uuid.UUID) (*model.Carteira, error) {
	c, ok := r.carteiras[restauranteID]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *fakeCarteiraRepo) ListEntradasConfirmadas(_ context.Context, carteiraID uuid.UUID, desde, ate time.Time) ([]model.MovimentacaoCarteira, error) {
	var result []model.MovimentacaoCarteira
	for _, m := range r.entradas {
		if m.CarteiraID == carteiraID && !m.CreatedAt.Before(desde) && m.CreatedAt.Before(ate) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeCarteiraRepo) SumVendasConfirmadas(_ context.Context, restauranteID uuid.UUID, desde, ate time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.entradas {
		if m.RestauranteID == restauranteID && !m.CreatedAt.Before(desde) && m.CreatedAt.Before(ate) {
			total = total.Add(m.Valor)
		}
	}
	return total, nil
}

var _ repository.CarteiraRepository = (*fakeCarteiraRepo)(nil)

// ── Tests ─────────────────────────────────────────────────────────────────────

func newCaixaService() (service.CaixaService, *fakeCaixaRepo, *fakeCarteiraRepo) {
	repo := newFakeCaixaRepo()
	carteira := newFakeCarteiraRepo()
	return service.NewCaixaService(repo, carteira, nil), repo, carteira
}

func TestAbrirCaixa(t *testing.T) {
	svc, _, _ := newCaixaService()

	resp, err := svc.Abrir(context.Background(), uuid.New(), uuid.New(), dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(100),
	})

	require.NoError(t, err)
	assert.Equal(t, "aberta", resp.Status)
	assert.Equal(t, "100", resp.ValorAbertura.String())
	assert.Nil(t, resp.FechadoEm)
}

func TestAbrirCaixaDuplicado(t *testing.T) {
	svc, _, _ := newCaixaService()
	operador := uuid.New()

	_, err := svc.Abrir(context.Background(), uuid.New(), operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	// Second open for the same operator must be rejected
	_, err = svc.Abrir(context.Background(), uuid.New(), operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(50),
	})
	assert.ErrorIs(t, err, service.ErrCaixaJaAberto)
}

func TestAbrirCaixaValorNegativo(t *testing.T) {
	svc, _, _ := newCaixaService()

	_, err := svc.Abrir(context.Background(), uuid.New(), uuid.New(), dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(-10),
	})
	assert.ErrorIs(t, err, service.ErrValorInvalido)
}

func TestSangriaArmazenadaNegativa(t *testing.T) {
	svc, repo, _ := newCaixaService()
	restaurante := uuid.New()
	operador := uuid.New()

	resp, err := svc.Abrir(context.Background(), restaurante, operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(200),
	})
	require.NoError(t, err)

	err = svc.RegistrarMovimentacao(context.Background(), restaurante, operador, dto.MovimentacaoManualRequest{
		SessaoID: resp.SessaoID,
		Tipo:     "sangria",
		Valor:    decimal.NewFromFloat(30),
		Motivo:   "Pagamento do entregador",
	})
	require.NoError(t, err)

	require.Len(t, repo.movimentacoes, 1)
	assert.Equal(t, "sangria", repo.movimentacoes[0].Tipo)
	assert.Equal(t, "-30", repo.movimentacoes[0].Valor.String())
}

func TestMovimentacaoSessaoFechada(t *testing.T) {
	svc, repo, _ := newCaixaService()
	restaurante := uuid.New()
	operador := uuid.New()

	resp, err := svc.Abrir(context.Background(), restaurante, operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	sessaoID := uuid.MustParse(resp.SessaoID)
	repo.sessoes[sessaoID].Status = "fechada"

	err = svc.RegistrarMovimentacao(context.Background(), restaurante, operador, dto.MovimentacaoManualRequest{
		SessaoID: resp.SessaoID,
		Tipo:     "reforco",
		Valor:    decimal.NewFromFloat(10),
		Motivo:   "Troco extra",
	})
	assert.ErrorIs(t, err, service.ErrSemCaixaAberto)
}

func TestFecharCaixaValorEsperado(t *testing.T) {
	// esperado = abertura (100) + vendas (200) − sangria (30) + reforço (50) = 320
	svc, _, carteira := newCaixaService()
	restaurante := uuid.New()
	operador := uuid.New()
	wallet := carteira.addCarteira(restaurante)

	resp, err := svc.Abrir(context.Background(), restaurante, operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	carteira.addEntrada(wallet.ID, restaurante, 120, 5, time.Now())
	carteira.addEntrada(wallet.ID, restaurante, 80, 5, time.Now())

	require.NoError(t, svc.RegistrarMovimentacao(context.Background(), restaurante, operador, dto.MovimentacaoManualRequest{
		SessaoID: resp.SessaoID, Tipo: "sangria",
		Valor: decimal.NewFromFloat(30), Motivo: "Pagamento fornecedor",
	}))
	require.NoError(t, svc.RegistrarMovimentacao(context.Background(), restaurante, operador, dto.MovimentacaoManualRequest{
		SessaoID: resp.SessaoID, Tipo: "reforco",
		Valor: decimal.NewFromFloat(50), Motivo: "Troco",
	}))

	relatorio, err := svc.Fechar(context.Background(), restaurante, dto.FecharCaixaRequest{
		SessaoID:        resp.SessaoID,
		ValorFechamento: decimal.NewFromFloat(310),
	})
	require.NoError(t, err)

	assert.Equal(t, "320", relatorio.ValorEsperado.String())
	assert.Equal(t, "200", relatorio.TotalVendas.String())
	assert.Equal(t, "30", relatorio.TotalSangrias.String())
	assert.Equal(t, "50", relatorio.TotalReforcos.String())
	// Shortage of 10 is recorded, never an error
	require.NotNil(t, relatorio.Diferenca)
	assert.Equal(t, "-10", relatorio.Diferenca.String())
	assert.Equal(t, "fechada", relatorio.Sessao.Status)
}

func TestFecharCaixaJaFechada(t *testing.T) {
	svc, _, _ := newCaixaService()
	restaurante := uuid.New()
	operador := uuid.New()

	resp, err := svc.Abrir(context.Background(), restaurante, operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), restaurante, dto.FecharCaixaRequest{
		SessaoID:        resp.SessaoID,
		ValorFechamento: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), restaurante, dto.FecharCaixaRequest{
		SessaoID:        resp.SessaoID,
		ValorFechamento: decimal.NewFromFloat(100),
	})
	assert.ErrorIs(t, err, service.ErrSemCaixaAberto)
}

func TestStatusCaixa(t *testing.T) {
	svc, _, _ := newCaixaService()
	operador := uuid.New()

	status, err := svc.Status(context.Background(), operador)
	require.NoError(t, err)
	assert.False(t, status.Aberto)
	assert.Nil(t, status.SessaoID)

	_, err = svc.Abrir(context.Background(), uuid.New(), operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(75),
	})
	require.NoError(t, err)

	status, err = svc.Status(context.Background(), operador)
	require.NoError(t, err)
	assert.True(t, status.Aberto)
	require.NotNil(t, status.ValorAbertura)
	assert.Equal(t, "75", status.ValorAbertura.String())
}

func TestRelatorioRecalculado(t *testing.T) {
	// The report recomputes the expected value on demand: wallet entries
	// confirmed after a first read must show up on the next one.
	svc, _, carteira := newCaixaService()
	restaurante := uuid.New()
	operador := uuid.New()
	wallet := carteira.addCarteira(restaurante)

	resp, err := svc.Abrir(context.Background(), restaurante, operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)
	sessaoID := uuid.MustParse(resp.SessaoID)

	relatorio, err := svc.Relatorio(context.Background(), restaurante, sessaoID)
	require.NoError(t, err)
	assert.Equal(t, "100", relatorio.ValorEsperado.String())

	carteira.addEntrada(wallet.ID, restaurante, 60, 5, time.Now())

	relatorio, err = svc.Relatorio(context.Background(), restaurante, sessaoID)
	require.NoError(t, err)
	assert.Equal(t, "160", relatorio.ValorEsperado.String())
}

func TestSessaoDeOutroRestauranteInvisivel(t *testing.T) {
	// A tenant holding another restaurant's session id must get the same
	// answer as for an id that does not exist.
	svc, _, _ := newCaixaService()
	dono := uuid.New()
	intruso := uuid.New()
	operador := uuid.New()

	resp, err := svc.Abrir(context.Background(), dono, operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)
	sessaoID := uuid.MustParse(resp.SessaoID)

	err = svc.RegistrarMovimentacao(context.Background(), intruso, operador, dto.MovimentacaoManualRequest{
		SessaoID: resp.SessaoID, Tipo: "sangria",
		Valor: decimal.NewFromFloat(10), Motivo: "Tentativa externa",
	})
	assert.ErrorIs(t, err, service.ErrSessaoNaoEncontrada)

	_, err = svc.Fechar(context.Background(), intruso, dto.FecharCaixaRequest{
		SessaoID:        resp.SessaoID,
		ValorFechamento: decimal.NewFromFloat(100),
	})
	assert.ErrorIs(t, err, service.ErrSessaoNaoEncontrada)

	_, err = svc.Relatorio(context.Background(), intruso, sessaoID)
	assert.ErrorIs(t, err, service.ErrSessaoNaoEncontrada)

	// The owner's session is untouched by the failed attempts
	relatorio, err := svc.Relatorio(context.Background(), dono, sessaoID)
	require.NoError(t, err)
	assert.Equal(t, "aberta", relatorio.Sessao.Status)
	assert.Empty(t, relatorio.Movimentacoes)
}

// ── HTTP status mapping ──────────────────────────────────────────────────────

func caixaTestRouter(svc service.CaixaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewCaixaHandler(svc)
	caixa := r.Group("/v1/caixa", middleware.JWTAuth(testSecret), middleware.RequireRole("restaurante"))
	caixa.POST("/fechar", h.Fechar)
	caixa.POST("/movimentacao", h.RegistrarMovimentacao)
	caixa.GET("/:id/relatorio", h.Relatorio)
	return r
}

func TestCaixaStatusHTTP(t *testing.T) {
	svc, _, _ := newCaixaService()
	restaurante := uuid.New()
	operador := uuid.New()

	resp, err := svc.Abrir(context.Background(), restaurante, operador, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)
	_, err = svc.Fechar(context.Background(), restaurante, dto.FecharCaixaRequest{
		SessaoID:        resp.SessaoID,
		ValorFechamento: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	r := caixaTestRouter(svc)
	restID := restaurante.String()
	token := signToken(t, operador.String(), "restaurante", &restID, time.Hour)

	// Closing an already-closed session is a state conflict, not a bad request
	body, _ := json.Marshal(dto.FecharCaixaRequest{
		SessaoID:        resp.SessaoID,
		ValorFechamento: decimal.NewFromFloat(100),
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/caixa/fechar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// A movement on the closed session conflicts too
	body, _ = json.Marshal(dto.MovimentacaoManualRequest{
		SessaoID: resp.SessaoID, Tipo: "sangria",
		Valor: decimal.NewFromFloat(10), Motivo: "Pagamento fornecedor",
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/v1/caixa/movimentacao", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Another tenant's token reads the session as missing
	outroID := uuid.New().String()
	outroToken := signToken(t, uuid.New().String(), "restaurante", &outroID, time.Hour)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/v1/caixa/"+resp.SessaoID+"/relatorio", nil)
	req.Header.Set("Authorization", "Bearer "+outroToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
