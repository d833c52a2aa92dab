package payments

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) ChapaConfig {
	return ChapaConfig{
		BaseURL:     baseURL,
		SecretKey:   "test-secret",
		CallbackURL: "http://localhost:8080/api/v1/payments/callback",
		ReturnURL:   "http://localhost:8080/api/v1/payments/success",
		Title:       "Gojo Travel",
	}
}

func sampleInitiateRequest() InitiateRequest {
	return InitiateRequest{
		Amount:      360.0,
		Currency:    "ETB",
		Email:       "guest@example.com",
		FirstName:   "Abel",
		LastName:    "Girma",
		PhoneNumber: "+251911000000",
		TxRef:       "tx_0123456789abcdef",
		Description: "Payment for Beach House booking",
	}
}

func TestChapaInitiate_SendsExpectedPayload(t *testing.T) {
	var captured map[string]interface{}
	var authHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "success",
			"message": "Hosted Link",
			"data": map[string]string{
				"checkout_url": "https://checkout.chapa.co/checkout/payment/abc123",
				"tx_ref":       "tx_0123456789abcdef",
			},
		})
	}))
	defer srv.Close()

	svc := NewChapaService(testConfig(srv.URL))
	result, err := svc.Initiate(sampleInitiateRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.chapa.co/checkout/payment/abc123", result.CheckoutURL)
	assert.Equal(t, "tx_0123456789abcdef", result.TxRef)
	assert.Equal(t, "Bearer test-secret", authHeader)

	assert.Equal(t, "360.00", captured["amount"])
	assert.Equal(t, "ETB", captured["currency"])
	assert.Equal(t, "guest@example.com", captured["email"])
	assert.Equal(t, "Abel", captured["first_name"])
	assert.Equal(t, "Girma", captured["last_name"])
	assert.Equal(t, "+251911000000", captured["phone_number"])
	assert.Equal(t, "tx_0123456789abcdef", captured["tx_ref"])
	assert.Equal(t, "http://localhost:8080/api/v1/payments/callback", captured["callback_url"])
	assert.Equal(t, "http://localhost:8080/api/v1/payments/success", captured["return_url"])
	assert.Equal(t, "Payment for Beach House booking", captured["description"])

	customization, ok := captured["customization"].(map[string]interface{})
	require.True(t, ok, "customization must be a nested object")
	assert.Equal(t, "Gojo Travel", customization["title"])
	assert.Equal(t, "Payment for Beach House booking", customization["description"])
}

func TestChapaInitiate_GatewayRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "failed",
			"message": "Invalid currency",
		})
	}))
	defer srv.Close()

	svc := NewChapaService(testConfig(srv.URL))
	_, err := svc.Initiate(sampleInitiateRequest())
	require.Error(t, err)

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Invalid currency", rejected.Message)
	assert.False(t, errors.Is(err, ErrGatewayUnreachable))
}

func TestChapaInitiate_HTTPErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewChapaService(testConfig(srv.URL))
	_, err := svc.Initiate(sampleInitiateRequest())
	require.True(t, errors.Is(err, ErrGatewayUnreachable))
}

func TestChapaInitiate_TransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := NewChapaService(testConfig(srv.URL))
	_, err := svc.Initiate(sampleInitiateRequest())
	require.True(t, errors.Is(err, ErrGatewayUnreachable))
}

func TestChapaInitiate_TimeoutIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	svc := NewChapaService(testConfig(srv.URL))
	svc.HTTPClient.Timeout = 50 * time.Millisecond

	_, err := svc.Initiate(sampleInitiateRequest())
	require.True(t, errors.Is(err, ErrGatewayUnreachable))
}

func TestChapaVerify_StatusMapping(t *testing.T) {
	cases := []struct {
		name          string
		gatewayStatus string
		want          VerifyStatus
	}{
		{"settled success", "success", VerifySuccess},
		{"settled failure", "failed", VerifyFailed},
		{"still pending", "pending", VerifyPending},
		{"unknown status stays pending", "created", VerifyPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, "/transaction/verify/tx_0123456789abcdef", r.URL.Path)
				require.Equal(t, "Bearer test-secret", r.Header.Get("Authorization"))

				json.NewEncoder(w).Encode(map[string]interface{}{
					"status":  "success",
					"message": "Payment details",
					"data": map[string]string{
						"status":  tc.gatewayStatus,
						"message": "Transaction " + tc.gatewayStatus,
					},
				})
			}))
			defer srv.Close()

			svc := NewChapaService(testConfig(srv.URL))
			result, err := svc.Verify("tx_0123456789abcdef")
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Status)
			assert.Equal(t, "Transaction "+tc.gatewayStatus, result.Message)
		})
	}
}

func TestChapaVerify_GatewayRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "failed",
			"message": "Invalid transaction reference",
		})
	}))
	defer srv.Close()

	svc := NewChapaService(testConfig(srv.URL))
	_, err := svc.Verify("tx_bogus")
	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Invalid transaction reference", rejected.Message)
}

func TestChapaVerify_NonJSONBodyIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway maintenance</html>"))
	}))
	defer srv.Close()

	svc := NewChapaService(testConfig(srv.URL))
	_, err := svc.Verify("tx_0123456789abcdef")
	require.True(t, errors.Is(err, ErrGatewayUnreachable))
}
