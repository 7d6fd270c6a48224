package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// AgentEvent is pushed to the notification agent, the sidecar that fans
// settlement status changes out to restaurant devices (push / WhatsApp).
type AgentEvent struct {
	Tipo            string `json:"tipo"` // fechamento.aprovado | fechamento.pago | fechamento.rejeitado
	FechamentoID    string `json:"fechamento_id"`
	RestauranteID   string `json:"restaurante_id"`
	RestauranteNome string `json:"restaurante_nome,omitempty"`
	TotalLiquido    string `json:"total_liquido"`
	PeriodoInicio   string `json:"periodo_inicio"`
	PeriodoFim      string `json:"periodo_fim"`
}

// AgentAck is the agent's delivery acknowledgement.
type AgentAck struct {
	Recebido bool   `json:"recebido"`
	Detalhe  string `json:"detalhe,omitempty"`
}

// AgentClient talks to the notification agent over HTTP. Transient failures
// are retried by the underlying retryable client; persistent failures are the
// circuit breaker's problem, not ours.
type AgentClient struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

func NewAgentClient(baseURL string) *AgentClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil
	return &AgentClient{baseURL: baseURL, httpClient: client}
}

// Notificar sends one event to the agent and returns its acknowledgement.
func (c *AgentClient) Notificar(ctx context.Context, ev AgentEvent) (*AgentAck, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("agent: marshal event: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notificar", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agent: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent: returned %d", resp.StatusCode)
	}

	var ack AgentAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("agent: decode ack: %w", err)
	}
	return &ack, nil
}
