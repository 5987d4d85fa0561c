// Package lookup wraps the external collaborators the dashboard consumes as
// black boxes: the postal-code service and the national invoice registry.
// Both are best-effort — every failure mode (bad input, not found, network,
// bad upstream payload) becomes a structured result the UI can show verbatim,
// with the manual path always available.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"
)

const defaultCEPBaseURL = "https://viacep.com.br/ws"

var cepPattern = regexp.MustCompile(`^\d{8}$`)

// Address is the postal-code lookup result.
type Address struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// CEPResult is the structured outcome of a postal-code lookup.
type CEPResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// CEPClient queries the ViaCEP postal-code service.
type CEPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewCEPClient builds a client. baseURL may be empty to use the public
// service endpoint.
func NewCEPClient(baseURL string, logger *zap.Logger) *CEPClient {
	if baseURL == "" {
		baseURL = defaultCEPBaseURL
	}
	return &CEPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// viaCEPPayload mirrors the service's JSON. "erro" is set on unknown codes.
type viaCEPPayload struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// Lookup resolves an 8-digit postal code to an address.
func (c *CEPClient) Lookup(ctx context.Context, cep string) CEPResult {
	if !cepPattern.MatchString(cep) {
		return CEPResult{Message: fmt.Sprintf("postal code %q must be exactly 8 digits", cep)}
	}

	url := fmt.Sprintf("%s/%s/json", c.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return CEPResult{Message: fmt.Sprintf("building request: %v", err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("postal code service unreachable", zap.String("cep", cep), zap.Error(err))
		return CEPResult{Message: "postal code service unreachable; fill the address manually"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("postal code service error", zap.String("cep", cep), zap.Int("status", resp.StatusCode))
		return CEPResult{Message: fmt.Sprintf("postal code service returned status %d", resp.StatusCode)}
	}

	var payload viaCEPPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return CEPResult{Message: "postal code service returned an unreadable response"}
	}
	if payload.Erro {
		return CEPResult{Message: fmt.Sprintf("postal code %s not found", cep)}
	}

	return CEPResult{
		Success: true,
		Address: &Address{
			Street:       payload.Logradouro,
			Neighborhood: payload.Bairro,
			City:         payload.Localidade,
			State:        payload.UF,
		},
	}
}
