package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateSession_EncodesLineItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "payment", r.PostForm.Get("mode"))
		require.Equal(t, "eur", r.PostForm.Get("line_items[0][price_data][currency]"))
		require.Equal(t, "Mug", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		require.Equal(t, "1250", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		require.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))
		require.Equal(t, "buyer@example.com", r.PostForm.Get("customer_email"))
		require.Equal(t, "user-1", r.PostForm.Get("client_reference_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","url":"https://pay.example/cs_1","payment_status":"unpaid","amount_total":2500,"currency":"eur","client_reference_id":"user-1"}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(StripeConfig{SecretKey: "sk_test", BaseURL: srv.URL, Currency: "eur"}, srv.Client())
	s, err := g.CreateSession(context.Background(), SessionRequest{
		LineItems:         []LineItem{{Name: "Mug", UnitAmount: 1250, Quantity: 2}},
		CustomerEmail:     "buyer@example.com",
		ClientReferenceID: "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, "cs_1", s.ID)
	require.Equal(t, "https://pay.example/cs_1", s.URL)
	require.Equal(t, int64(2500), s.AmountTotal)
	require.Equal(t, "user-1", s.ClientReferenceID)
	require.False(t, s.Paid())
}

func TestRetrieveSession_FallsBackToCustomerDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions/cs_2", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_2","object":"checkout.session","payment_status":"paid","customer_details":{"email":"a@b.c"}}`))
	}))
	defer srv.Close()

	s, err := NewStripeGateway(StripeConfig{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client()).
		RetrieveSession(context.Background(), "cs_2")
	require.NoError(t, err)
	require.True(t, s.Paid())
	require.Equal(t, "a@b.c", s.CustomerEmail)
}

func TestRetrieveSession_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/checkout/sessions/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such checkout.session: 'missing'"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key"}}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(StripeConfig{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client())

	_, err := g.RetrieveSession(context.Background(), "missing")
	require.True(t, errors.Is(err, ErrSessionNotFound))

	_, err = g.RetrieveSession(context.Background(), "cs_3")
	require.ErrorContains(t, err, "Invalid API Key")

	_, err = g.RetrieveSession(context.Background(), "")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
