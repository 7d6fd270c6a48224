package tests

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/relay"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestauranteChannel(t *testing.T) {
	assert.Equal(t, "realtime:restaurante:abc-123", relay.RestauranteChannel("abc-123"))
	assert.Equal(t, "realtime:admin", relay.AdminChannel)
}

func TestInvalidationEvent(t *testing.T) {
	ev := relay.Invalidation("fechamento", "f1", "r1")

	assert.Equal(t, relay.TypeInvalidate, ev.Type)
	assert.Equal(t, "fechamento", ev.Entity)
	assert.Equal(t, "f1", ev.ID)
	assert.Equal(t, "r1", ev.RestauranteID)
	// Invalidations carry no figures — they only trigger a re-fetch
	assert.Nil(t, ev.Valor)
	assert.Empty(t, ev.FechamentoID)
}

func TestNotificationEvent(t *testing.T) {
	ev := relay.Notification(relay.TypeFechamentoAprovado, "f1", "r1", decimal.NewFromFloat(131.66))

	assert.Equal(t, "fechamento.aprovado", ev.Type)
	assert.Equal(t, "f1", ev.FechamentoID)
	assert.Equal(t, "r1", ev.RestauranteID)
	require.NotNil(t, ev.Valor)
	assert.Equal(t, "131.66", ev.Valor.String())
}

func TestEventWireFormat(t *testing.T) {
	data, err := json.Marshal(relay.Invalidation("caixa_sessao", "s1", "r1"))
	require.NoError(t, err)

	// Optional fields must be omitted so consumers can switch on presence
	assert.JSONEq(t, `{"type":"invalidate","entity":"caixa_sessao","id":"s1","restaurante_id":"r1"}`, string(data))

	var ev relay.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, relay.TypeInvalidate, ev.Type)
}

func TestNilPublisherIsNoop(t *testing.T) {
	// Workers and tests run without Redis; a nil publisher must be safe
	var p *relay.Publisher
	p.Publish(context.Background(), relay.Invalidation("fechamento", "f1", "r1"))

	relay.NewPublisher(nil).Publish(context.Background(), relay.Notification(relay.TypeFechamentoPago, "f1", "r1", decimal.Zero))
}
