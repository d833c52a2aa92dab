package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	config "github.com/abelgirma/gojo-travel/configs"
)

const defaultChapaBaseURL = "https://api.chapa.co/v1"

// ErrGatewayUnreachable covers transport failures, timeouts and non-2xx
// responses. Callers may retry; no authoritative answer was received.
var ErrGatewayUnreachable = errors.New("payment gateway unreachable")

// RejectedError is returned when Chapa answered but explicitly declined
// the request. The message is safe to show to the caller.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "payment gateway rejected request: " + e.Message
}

type VerifyStatus string

const (
	VerifySuccess VerifyStatus = "success"
	VerifyFailed  VerifyStatus = "failed"
	VerifyPending VerifyStatus = "pending"
)

type InitiateRequest struct {
	Amount      float64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	TxRef       string
	Description string
}

type InitiateResult struct {
	CheckoutURL string
	TxRef       string
}

type VerifyResult struct {
	Status  VerifyStatus
	Message string
}

// Gateway is the only path to the remote payment API. Handlers depend on
// this interface so tests can substitute a fake for ChapaService.
type Gateway interface {
	Initiate(req InitiateRequest) (*InitiateResult, error)
	Verify(txRef string) (*VerifyResult, error)
}

// Client is the process-wide gateway, set once by InitChapa at startup.
var Client Gateway

type ChapaConfig struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	ReturnURL   string
	Title       string
}

func LoadChapaConfig() ChapaConfig {
	appBase := config.ConfigOr("APP_BASE_URL", "http://localhost:8080")
	return ChapaConfig{
		BaseURL:     config.ConfigOr("CHAPA_API_BASE_URL", defaultChapaBaseURL),
		SecretKey:   config.Config("CHAPA_SECRET_KEY"),
		CallbackURL: appBase + "/api/v1/payments/callback",
		ReturnURL:   appBase + "/api/v1/payments/success",
		Title:       config.ConfigOr("APP_NAME", "Gojo Travel"),
	}
}

func InitChapa() {
	cfg := LoadChapaConfig()
	if cfg.SecretKey == "" {
		log.Println("⚠️ CHAPA_SECRET_KEY is not set; gateway calls will be rejected by Chapa")
	}
	Client = NewChapaService(cfg)
	log.Println("✅ Chapa gateway client initialized:", cfg.BaseURL)
}

type ChapaService struct {
	cfg        ChapaConfig
	HTTPClient *http.Client
}

func NewChapaService(cfg ChapaConfig) *ChapaService {
	return &ChapaService{
		cfg:        cfg,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type chapaCustomization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type chapaInitPayload struct {
	Amount        string             `json:"amount"`
	Currency      string             `json:"currency"`
	Email         string             `json:"email"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	PhoneNumber   string             `json:"phone_number"`
	TxRef         string             `json:"tx_ref"`
	CallbackURL   string             `json:"callback_url"`
	ReturnURL     string             `json:"return_url"`
	Description   string             `json:"description"`
	Customization chapaCustomization `json:"customization"`
}

type chapaInitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
		TxRef       string `json:"tx_ref"`
	} `json:"data"`
}

type chapaVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

func (s *ChapaService) Initiate(req InitiateRequest) (*InitiateResult, error) {
	payload := chapaInitPayload{
		Amount:      strconv.FormatFloat(req.Amount, 'f', 2, 64),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		TxRef:       req.TxRef,
		CallbackURL: s.cfg.CallbackURL,
		ReturnURL:   s.cfg.ReturnURL,
		Description: req.Description,
		Customization: chapaCustomization{
			Title:       s.cfg.Title,
			Description: req.Description,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initiate payload: %v", err)
	}

	respBody, err := s.post(s.cfg.BaseURL+"/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var chapaResp chapaInitResponse
	if err := json.Unmarshal(respBody, &chapaResp); err != nil {
		return nil, fmt.Errorf("%w: unexpected initialize response shape: %v", ErrGatewayUnreachable, err)
	}
	if chapaResp.Status != "success" {
		return nil, &RejectedError{Message: rejectionMessage(chapaResp.Message)}
	}
	if chapaResp.Data.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: initialize response missing checkout_url", ErrGatewayUnreachable)
	}

	gatewayRef := chapaResp.Data.TxRef
	if gatewayRef == "" {
		gatewayRef = req.TxRef
	}
	return &InitiateResult{CheckoutURL: chapaResp.Data.CheckoutURL, TxRef: gatewayRef}, nil
}

func (s *ChapaService) Verify(txRef string) (*VerifyResult, error) {
	req, err := http.NewRequest("GET", s.cfg.BaseURL+"/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %v", err)
	}
	s.setHeaders(req)

	respBody, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var chapaResp chapaVerifyResponse
	if err := json.Unmarshal(respBody, &chapaResp); err != nil {
		return nil, fmt.Errorf("%w: unexpected verify response shape: %v", ErrGatewayUnreachable, err)
	}
	if chapaResp.Status != "success" {
		return nil, &RejectedError{Message: rejectionMessage(chapaResp.Message)}
	}

	result := &VerifyResult{Message: chapaResp.Data.Message}
	if result.Message == "" {
		result.Message = chapaResp.Message
	}
	switch chapaResp.Data.Status {
	case "success":
		result.Status = VerifySuccess
	case "failed":
		result.Status = VerifyFailed
	default:
		// Anything Chapa has not settled yet stays pending on our side.
		result.Status = VerifyPending
	}
	return result, nil
}

func (s *ChapaService) post(url string, body []byte) ([]byte, error) {
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	s.setHeaders(req)
	return s.do(req)
}

func (s *ChapaService) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
}

func (s *ChapaService) do(req *http.Request) ([]byte, error) {
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrGatewayUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Chapa API error: status %d, body: %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayUnreachable, resp.StatusCode)
	}
	return respBody, nil
}

func rejectionMessage(msg string) string {
	if msg == "" {
		return "Unknown error"
	}
	return msg
}
