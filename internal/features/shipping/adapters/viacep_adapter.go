package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/cache"
	"storefront/internal/core/logger"
	"storefront/internal/features/shipping/domain"

	"go.uber.org/zap"
)

const upstreamViaCEP = "viacep"

// ViaCEPAdapter implements ports.PostalLookup using the ViaCEP API, caching
// answers in Redis.
type ViaCEPAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the ViaCEP root, e.g. https://viacep.com.br.
	baseURL string
	// cache keeps successful lookups for ttl.
	cache cache.Cache
	ttl   time.Duration
}

// NewViaCEPAdapter creates a new instance of ViaCEPAdapter.
func NewViaCEPAdapter(baseURL string, client *http.Client, c cache.Cache, ttl time.Duration) *ViaCEPAdapter {
	return &ViaCEPAdapter{
		client:  client,
		baseURL: baseURL,
		cache:   c,
		ttl:     ttl,
	}
}

// Lookup resolves postalCode, answering from the cache when possible.
func (a *ViaCEPAdapter) Lookup(ctx context.Context, postalCode string) (*domain.PostalAddress, error) {
	cep, err := domain.NormalizePostalCode(postalCode)
	if err != nil {
		return nil, err
	}

	key := cache.Key("postal", cep)
	if addr, ok := a.fromCache(ctx, key); ok {
		return addr, nil
	}

	addr, err := a.fetch(ctx, cep)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(addr); err == nil {
		if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
			logger.Get().Warn("Failed to cache postal code", zap.String("postal_code", cep), zap.Error(err))
		}
	}

	return addr, nil
}

func (a *ViaCEPAdapter) fromCache(ctx context.Context, key string) (*domain.PostalAddress, bool) {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Get().Warn("Postal cache unavailable", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var addr domain.PostalAddress
	if err := json.Unmarshal(data, &addr); err != nil {
		logger.Get().Warn("Discarding corrupt postal cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &addr, true
}

func (a *ViaCEPAdapter) fetch(ctx context.Context, cep string) (*domain.PostalAddress, error) {
	url := fmt.Sprintf("%s/ws/%s/json/", a.baseURL, cep)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &apperror.GatewayError{Upstream: upstreamViaCEP, Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &apperror.GatewayError{Upstream: upstreamViaCEP, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &apperror.GatewayError{
			Upstream:   upstreamViaCEP,
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("undecodable response: %v", err),
		}
	}

	if payload.Erro.isSet() {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostalCodeNotFound, cep)
	}

	return &domain.PostalAddress{
		PostalCode:   cep,
		Street:       payload.Logradouro,
		Neighborhood: payload.Bairro,
		City:         payload.Localidade,
		State:        payload.UF,
	}, nil
}

// viaCEPResponse is the JSON returned by /ws/{cep}/json/.
type viaCEPResponse struct {
	// Logradouro is the street name.
	Logradouro string `json:"logradouro"`
	// Bairro is the neighborhood.
	Bairro string `json:"bairro"`
	// Localidade is the city.
	Localidade string `json:"localidade"`
	// UF is the two-letter state code.
	UF string `json:"uf"`
	// Erro is set when the postal code does not exist.
	Erro viaCEPFlag `json:"erro"`
}

// viaCEPFlag accepts both true and "true"; ViaCEP has answered with either.
type viaCEPFlag string

func (f *viaCEPFlag) UnmarshalJSON(b []byte) error {
	*f = viaCEPFlag(string(b))
	return nil
}

func (f viaCEPFlag) isSet() bool {
	return f == "true" || f == `"true"`
}
