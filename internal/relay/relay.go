// Package relay fans out row-level change notifications to the dashboards.
//
// Mutations on fechamentos (and cash sessions) publish events on Redis
// pub/sub: the owning restaurant's channel plus the admin channel, which sees
// all restaurants. Delivery is best-effort/at-least-once — consumers treat
// every event as a trigger to re-fetch authoritative state, never as the
// state itself.
package relay

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Event types. "invalidate" is the opaque refetch trigger; the
// "fechamento.*" types are user-facing notifications so UIs can distinguish
// "data changed" from "alert the user".
const (
	TypeInvalidate          = "invalidate"
	TypeFechamentoAprovado  = "fechamento.aprovado"
	TypeFechamentoPago      = "fechamento.pago"
	TypeFechamentoRejeitado = "fechamento.rejeitado"
)

const AdminChannel = "realtime:admin"

// RestauranteChannel is the per-tenant channel name.
func RestauranteChannel(restauranteID string) string {
	return "realtime:restaurante:" + restauranteID
}

// Event is the wire format for both event kinds.
type Event struct {
	Type          string           `json:"type"`
	Entity        string           `json:"entity,omitempty"`
	ID            string           `json:"id,omitempty"`
	RestauranteID string           `json:"restaurante_id"`
	FechamentoID  string           `json:"fechamento_id,omitempty"`
	Valor         *decimal.Decimal `json:"valor,omitempty"`
}

// Invalidation builds an opaque "re-fetch this entity" token.
func Invalidation(entity, id, restauranteID string) Event {
	return Event{Type: TypeInvalidate, Entity: entity, ID: id, RestauranteID: restauranteID}
}

// Notification builds a user-facing event for an approval transition.
func Notification(tipo, fechamentoID, restauranteID string, valor decimal.Decimal) Event {
	return Event{Type: tipo, FechamentoID: fechamentoID, RestauranteID: restauranteID, Valor: &valor}
}

// Publisher pushes events to Redis pub/sub.
type Publisher struct{ rdb *redis.Client }

func NewPublisher(rdb *redis.Client) *Publisher { return &Publisher{rdb: rdb} }

// Publish fans ev out to the restaurant channel and the admin channel.
// Best-effort: failures are logged and dropped, never returned — the store
// stays the single source of truth and clients reconcile on reconnect.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	if p == nil || p.rdb == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("relay: marshal event")
		return
	}
	for _, channel := range []string{RestauranteChannel(ev.RestauranteID), AdminChannel} {
		if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
			log.Warn().Err(err).Str("channel", channel).Str("type", ev.Type).Msg("relay: publish failed")
		}
	}
}

// Subscriber consumes one channel and decodes events.
type Subscriber struct{ rdb *redis.Client }

func NewSubscriber(rdb *redis.Client) *Subscriber { return &Subscriber{rdb: rdb} }

// Subscribe returns a channel of decoded events plus a cancel func. The
// channel is closed when ctx is done or the subscription is cancelled.
func (s *Subscriber) Subscribe(ctx context.Context, channel string) (<-chan Event, func()) {
	sub := s.rdb.Subscribe(ctx, channel)
	out := make(chan Event, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("relay: bad event payload")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}
