package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"storefront/internal/core/apperror"
	shippingdomain "storefront/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeAddress() ShippingAddress {
	return ShippingAddress{
		Name:         "Maria Souza",
		Street:       "Rua das Flores",
		Number:       "120",
		Neighborhood: "Centro",
		City:         "Franca",
		State:        "SP",
		PostalCode:   "14400-000",
		Phone:        "(16) 99123-4567",
	}
}

func input(cart []CartLine, shipping *shippingdomain.ShippingOption) BuildInput {
	addr := completeAddress()
	return BuildInput{
		Cart:     cart,
		Shipping: shipping,
		Address:  addr,
		UserID:   "u1",
		Draft:    NewOrderDraft(cart, shipping, addr),
	}
}

func TestBuild_CartScenario(t *testing.T) {
	cart := []CartLine{{Title: "Camiseta", UnitPrice: decimal.RequireFromString("89.90"), Quantity: 2}}
	free := &shippingdomain.ShippingOption{Name: shippingdomain.FreeShippingName, Price: decimal.Zero, EtaDays: 5}

	pref, err := NewBuilder("https://loja.example.com").Build(input(cart, free), "")
	require.NoError(t, err)

	require.Len(t, pref.Items, 1)
	assert.Equal(t, "Camiseta", pref.Items[0].Title)
	assert.Equal(t, 2, pref.Items[0].Quantity)
	assert.True(t, pref.Items[0].UnitPrice.Equal(decimal.RequireFromString("89.90")))
	assert.Equal(t, CurrencyBRL, pref.Items[0].CurrencyID)

	assert.Equal(t, "u1", pref.ExternalReference)
	assert.Equal(t, "u1", pref.Metadata.UserID)
	assert.Equal(t, AutoReturnApproved, pref.AutoReturn)
	assert.Equal(t, "https://loja.example.com/checkout/success", pref.CallbackURLs.Success)
	assert.Equal(t, "https://loja.example.com/checkout/failure", pref.CallbackURLs.Failure)
	assert.Equal(t, "https://loja.example.com/checkout/pending", pref.CallbackURLs.Pending)
	assert.Equal(t, "https://loja.example.com/webhooks/mercadopago", pref.NotificationURL)

	draft, err := ParseOrderDraft(pref.Metadata.OrderDraft)
	require.NoError(t, err)
	assert.True(t, draft.Total.Equal(decimal.RequireFromString("179.80")))
}

func TestBuild_LineTitle(t *testing.T) {
	cart := []CartLine{
		{Title: "Camiseta", Size: "M", Color: "Preta", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
		{Title: "Boné", Color: "Azul", UnitPrice: decimal.NewFromInt(30), Quantity: 1},
	}

	pref, err := NewBuilder("https://x").Build(input(cart, nil), "")
	require.NoError(t, err)
	assert.Equal(t, "Camiseta - M - Preta", pref.Items[0].Title)
	assert.Equal(t, "Boné - Azul", pref.Items[1].Title)
}

func TestBuild_LineTotalsPreserved(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	builder := NewBuilder("https://x")
	sedex := &shippingdomain.ShippingOption{Name: "SEDEX", Price: decimal.NewFromInt(20), EtaDays: 1}

	for n := 1; n <= 50; n++ {
		cart := make([]CartLine, n)
		for i := range cart {
			cart[i] = CartLine{
				Title:     fmt.Sprintf("P%d", i),
				UnitPrice: decimal.New(int64(rng.Intn(99999)+1), -2),
				Quantity:  rng.Intn(9) + 1,
			}
		}
		in := input(cart, sedex)
		in.Draft = OrderDraft{}

		pref, err := builder.Build(in, "")
		require.NoError(t, err)
		require.Len(t, pref.Items, n+1)

		built := decimal.Zero
		for _, item := range pref.Items[:n] {
			built = built.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		assert.True(t, built.Equal(Subtotal(cart)), "cart of %d lines", n)
	}
}

func TestBuild_FreightLine(t *testing.T) {
	cart := []CartLine{{Title: "Calça", UnitPrice: decimal.NewFromInt(120), Quantity: 1}}
	builder := NewBuilder("https://x")

	tests := []struct {
		name      string
		shipping  *shippingdomain.ShippingOption
		wantLines int
	}{
		{"NoShipping", nil, 1},
		{"FreeShipping", &shippingdomain.ShippingOption{Name: shippingdomain.FreeShippingName, Price: decimal.Zero}, 1},
		{"Paid", &shippingdomain.ShippingOption{Name: "PAC", Price: decimal.RequireFromString("12.00"), EtaDays: 3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref, err := builder.Build(input(cart, tt.shipping), "")
			require.NoError(t, err)
			require.Len(t, pref.Items, tt.wantLines)
			if tt.wantLines == 2 {
				freight := pref.Items[1]
				assert.Equal(t, "Frete - PAC", freight.Title)
				assert.Equal(t, 1, freight.Quantity)
				assert.True(t, freight.UnitPrice.Equal(tt.shipping.Price))
			}
		})
	}
}

func TestBuild_Validation(t *testing.T) {
	valid := []CartLine{{Title: "Camiseta", UnitPrice: decimal.NewFromInt(50), Quantity: 1}}
	builder := NewBuilder("https://x")

	tests := []struct {
		name   string
		mutate func(*BuildInput)
	}{
		{"EmptyCart", func(in *BuildInput) { in.Cart = nil }},
		{"ZeroPrice", func(in *BuildInput) { in.Cart = []CartLine{{Title: "A", UnitPrice: decimal.Zero, Quantity: 1}} }},
		{"NegativePrice", func(in *BuildInput) { in.Cart = []CartLine{{Title: "A", UnitPrice: decimal.NewFromInt(-1), Quantity: 1}} }},
		{"ZeroQuantity", func(in *BuildInput) { in.Cart = []CartLine{{Title: "A", UnitPrice: decimal.NewFromInt(1), Quantity: 0}} }},
		{"MissingName", func(in *BuildInput) { in.Address.Name = " " }},
		{"MissingPhone", func(in *BuildInput) { in.Address.Phone = "" }},
		{"MissingUser", func(in *BuildInput) { in.UserID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input(valid, nil)
			tt.mutate(&in)

			pref, err := builder.Build(in, "")
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Nil(t, pref)
		})
	}
}

func TestBuild_Payer(t *testing.T) {
	cart := []CartLine{{Title: "A", UnitPrice: decimal.NewFromInt(10), Quantity: 1}}
	builder := NewBuilder("https://x")

	t.Run("PhoneSplit", func(t *testing.T) {
		pref, err := builder.Build(input(cart, nil), "")
		require.NoError(t, err)
		require.NotNil(t, pref.Payer.Phone)
		assert.Equal(t, "16", pref.Payer.Phone.AreaCode)
		assert.Equal(t, "991234567", pref.Payer.Phone.Number)
		assert.Equal(t, "14400000", pref.Payer.Address.ZipCode)
		assert.Equal(t, 120, pref.Payer.Address.StreetNumber)
		assert.Equal(t, "Rua das Flores", pref.Payer.Address.StreetName)
	})

	t.Run("ShortPhoneOmitted", func(t *testing.T) {
		in := input(cart, nil)
		in.Address.Phone = "9912-3456"
		pref, err := builder.Build(in, "")
		require.NoError(t, err)
		assert.Nil(t, pref.Payer.Phone)
	})

	t.Run("StreetNumberNotNumeric", func(t *testing.T) {
		in := input(cart, nil)
		in.Address.Number = "s/n"
		pref, err := builder.Build(in, "")
		require.NoError(t, err)
		assert.Equal(t, 0, pref.Payer.Address.StreetNumber)
	})
}

func TestBuild_BaseURL(t *testing.T) {
	cart := []CartLine{{Title: "A", UnitPrice: decimal.NewFromInt(10), Quantity: 1}}

	pref, err := NewBuilder("").Build(input(cart, nil), "http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/checkout/success", pref.CallbackURLs.Success)
	assert.Equal(t, "http://localhost:8080/webhooks/mercadopago", pref.NotificationURL)

	pref, err = NewBuilder("https://loja.example.com/").Build(input(cart, nil), "http://internal:8080")
	require.NoError(t, err)
	assert.Equal(t, "https://loja.example.com/webhooks/mercadopago", pref.NotificationURL)

	_, err = NewBuilder("").Build(input(cart, nil), "")
	assert.ErrorIs(t, err, apperror.ErrConfiguration)
}

func TestBuild_OversizedDraft(t *testing.T) {
	cart := make([]CartLine, 40)
	for i := range cart {
		cart[i] = CartLine{
			Title:         fmt.Sprintf("Produto %d", i),
			UnitPrice:     decimal.NewFromInt(10),
			Quantity:      1,
			CoverImageURL: "https://cdn.example.com/" + strings.Repeat("x", 80),
		}
	}

	pref, err := NewBuilder("https://x").Build(input(cart, nil), "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Nil(t, pref)
}
