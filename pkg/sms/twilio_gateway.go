package sms

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioGateway implements SMS sending via the Twilio Messages REST API
type TwilioGateway struct {
	apiURL     string
	accountSID string
	authToken  string
	fromNumber string
	client     *http.Client
}

// TwilioConfig holds configuration for the Twilio gateway
type TwilioConfig struct {
	APIURL     string // defaults to https://api.twilio.com
	AccountSID string
	AuthToken  string
	FromNumber string
}

// NewTwilioGateway creates a new Twilio SMS gateway client
func NewTwilioGateway(config TwilioConfig) *TwilioGateway {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = "https://api.twilio.com"
	}
	return &TwilioGateway{
		apiURL:     apiURL,
		accountSID: config.AccountSID,
		authToken:  config.AuthToken,
		fromNumber: config.FromNumber,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// messageResponse is the subset of Twilio's message resource we care about
type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	// Error body shape (4xx/5xx)
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send delivers a single SMS and returns the Twilio message SID
func (g *TwilioGateway) Send(to, message string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.apiURL, g.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", g.fromNumber)
	form.Set("Body", message)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read SMS response: %w", err)
	}

	var msgResp messageResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("SMS sending failed: %s (code %d)", msgResp.Message, msgResp.Code)
	}

	if msgResp.Status == "failed" || msgResp.Status == "undelivered" {
		return "", fmt.Errorf("SMS delivery failed: %s", msgResp.ErrorMessage)
	}

	return msgResp.SID, nil
}

// Name returns the gateway name
func (g *TwilioGateway) Name() string {
	return "twilio"
}
