package service

import "errors"

// Precondition violations — surfaced verbatim to the initiating actor and
// never retried automatically: the caller must resolve the underlying
// condition before repeating the call.
var (
	ErrCaixaJaAberto      = errors.New("já existe um caixa aberto; feche o caixa atual antes de abrir um novo")
	ErrSemCaixaAberto     = errors.New("não há caixa aberto")
	ErrPedidosEmAndamento = errors.New("há pedidos em andamento que precisam ser finalizados primeiro")
	ErrSemChavePix        = errors.New("chave PIX não cadastrada")
	ErrNadaParaFechar     = errors.New("não há vendas para fechar no período atual")
	ErrNaoPendente        = errors.New("fechamento não está pendente")
	ErrNaoAprovado        = errors.New("fechamento não está aprovado")
	ErrJaPago             = errors.New("fechamento já foi pago; nenhuma transição é permitida")
)

// Validation errors — rejected before any store mutation.
var (
	ErrValorInvalido        = errors.New("valor deve ser maior que zero")
	ErrValorLiquidoNegativo = errors.New("total líquido não pode ser negativo")
)

// Not-found errors.
var (
	ErrSessaoNaoEncontrada      = errors.New("sessão de caixa não encontrada")
	ErrFechamentoNaoEncontrado  = errors.New("fechamento não encontrado")
	ErrCarteiraNaoEncontrada    = errors.New("carteira não encontrada; entre em contato com o suporte")
	ErrRestauranteNaoEncontrado = errors.New("restaurante não encontrado")
)
