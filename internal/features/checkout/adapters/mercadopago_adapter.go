package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"storefront/internal/core/apperror"
	"storefront/internal/core/config"
	"storefront/internal/features/checkout/domain"

	"github.com/shopspring/decimal"
)

const maxErrorBody = 8192

// MercadoPagoAdapter implements ports.PaymentGateway using the Mercado Pago REST API.
type MercadoPagoAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the API root and access token.
	config config.MercadoPagoConfig
}

// NewMercadoPagoAdapter creates a new instance of MercadoPagoAdapter.
// A missing access token is a configuration error.
func NewMercadoPagoAdapter(cfg config.MercadoPagoConfig, client *http.Client) (*MercadoPagoAdapter, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: mercado pago access token is not set", apperror.ErrConfiguration)
	}
	return &MercadoPagoAdapter{
		client: client,
		config: cfg,
	}, nil
}

// CreatePreference posts the preference to /checkout/preferences.
func (a *MercadoPagoAdapter) CreatePreference(ctx context.Context, pref *domain.PaymentPreference) (*domain.PreferenceResult, error) {
	body, err := json.Marshal(toWire(pref))
	if err != nil {
		return nil, fmt.Errorf("failed to encode preference: %w", err)
	}

	req, err := a.newRequest(ctx, http.MethodPost, "/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created mpPreferenceResponse
	if err := a.do(req, &created); err != nil {
		return nil, err
	}

	return &domain.PreferenceResult{
		PreferenceID:       created.ID,
		RedirectURL:        created.InitPoint,
		SandboxRedirectURL: created.SandboxInitPoint,
	}, nil
}

// FetchPayment reads /v1/payments/{id}.
func (a *MercadoPagoAdapter) FetchPayment(ctx context.Context, paymentID string) (*domain.PaymentRecord, error) {
	if paymentID == "" {
		return nil, apperror.Validation("payment id is required")
	}

	req, err := a.newRequest(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, err
	}

	var payment mpPayment
	if err := a.do(req, &payment); err != nil {
		return nil, err
	}

	return &domain.PaymentRecord{
		ID:                payment.ID.String(),
		Status:            payment.Status,
		StatusDetail:      payment.StatusDetail,
		TransactionAmount: payment.TransactionAmount,
		PaymentMethodID:   payment.PaymentMethodID,
		ExternalReference: payment.ExternalReference,
		Metadata: domain.PaymentMetadata{
			UserID:     payment.Metadata.UserID,
			OrderDraft: payment.Metadata.OrderDraft,
		},
	}, nil
}

func (a *MercadoPagoAdapter) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.config.APIURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes req and decodes a 2xx body into out. Anything else becomes a GatewayError.
func (a *MercadoPagoAdapter) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return &apperror.GatewayError{Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperror.GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperror.GatewayError{
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("undecodable response: %v", err),
		}
	}
	return nil
}

// internal structs for mapping

func toWire(pref *domain.PaymentPreference) mpPreferenceRequest {
	items := make([]mpItem, 0, len(pref.Items))
	for _, it := range pref.Items {
		items = append(items, mpItem{
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			CurrencyID: it.CurrencyID,
		})
	}

	payer := mpPayer{
		Name: pref.Payer.Name,
		Address: mpAddress{
			ZipCode:      pref.Payer.Address.ZipCode,
			StreetName:   pref.Payer.Address.StreetName,
			StreetNumber: pref.Payer.Address.StreetNumber,
		},
	}
	if pref.Payer.Phone != nil {
		payer.Phone = &mpPhone{
			AreaCode: pref.Payer.Phone.AreaCode,
			Number:   pref.Payer.Phone.Number,
		}
	}

	return mpPreferenceRequest{
		Items: items,
		Payer: payer,
		BackURLs: mpBackURLs{
			Success: pref.CallbackURLs.Success,
			Failure: pref.CallbackURLs.Failure,
			Pending: pref.CallbackURLs.Pending,
		},
		AutoReturn:        pref.AutoReturn,
		ExternalReference: pref.ExternalReference,
		NotificationURL:   pref.NotificationURL,
		Metadata: mpMetadata{
			UserID:     pref.Metadata.UserID,
			OrderDraft: pref.Metadata.OrderDraft,
		},
	}
}

// mpPreferenceRequest is the body of POST /checkout/preferences.
type mpPreferenceRequest struct {
	Items             []mpItem   `json:"items"`
	Payer             mpPayer    `json:"payer"`
	BackURLs          mpBackURLs `json:"back_urls"`
	AutoReturn        string     `json:"auto_return,omitempty"`
	ExternalReference string     `json:"external_reference"`
	NotificationURL   string     `json:"notification_url"`
	Metadata          mpMetadata `json:"metadata"`
}

type mpItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type mpPayer struct {
	Name    string    `json:"name"`
	Phone   *mpPhone  `json:"phone,omitempty"`
	Address mpAddress `json:"address"`
}

type mpPhone struct {
	AreaCode string `json:"area_code"`
	Number   string `json:"number"`
}

type mpAddress struct {
	ZipCode      string `json:"zip_code"`
	StreetName   string `json:"street_name"`
	StreetNumber int    `json:"street_number"`
}

type mpBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// mpMetadata is sent on the preference and echoed back on the payment.
type mpMetadata struct {
	UserID     string `json:"user_id"`
	OrderDraft string `json:"order_draft"`
}

// mpPreferenceResponse is the 201 body of POST /checkout/preferences.
type mpPreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// mpPayment is the subset of GET /v1/payments/{id} the storefront reads.
type mpPayment struct {
	ID                domain.FlexibleID `json:"id"`
	Status            string            `json:"status"`
	StatusDetail      string            `json:"status_detail"`
	TransactionAmount decimal.Decimal   `json:"transaction_amount"`
	PaymentMethodID   string            `json:"payment_method_id"`
	ExternalReference string            `json:"external_reference"`
	Metadata          mpMetadata        `json:"metadata"`
}
