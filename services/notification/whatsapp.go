package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vetflow/config"
	"vetflow/models"

	"go.uber.org/zap"
)

const defaultGraphURL = "https://graph.facebook.com"

// WhatsAppClient sends text messages through the WhatsApp Business Cloud API.
type WhatsAppClient struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

func NewWhatsAppClient(cfg *config.Config, logger *zap.Logger) *WhatsAppClient {
	return &WhatsAppClient{
		BaseURL:       defaultGraphURL,
		APIVersion:    cfg.WhatsAppAPIVersion,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		AccessToken:   cfg.WhatsAppAccessToken,
		HTTPClient:    &http.Client{Timeout: time.Duration(cfg.DeliveryTimeoutSec) * time.Second},
		Logger:        logger,
	}
}

// Configured reports whether credentials are present.
func (c *WhatsAppClient) Configured() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

func (c *WhatsAppClient) Channel() string { return config.ChannelWhatsApp }

func (c *WhatsAppClient) Address(contact models.Contact) string { return contact.Phone }

// FormatPhone strips the characters the API rejects.
func FormatPhone(phone string) string {
	return strings.NewReplacer("+", "", " ", "", "-", "", "(", "", ")", "").Replace(phone)
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (c *WhatsAppClient) Deliver(ctx context.Context, phone, text string) DeliveryResult {
	if !c.Configured() {
		c.Logger.Warn("WhatsApp not configured, message not sent", zap.String("phone", phone))
		return DeliveryResult{Mocked: true}
	}
	if phone == "" {
		return DeliveryResult{Err: fmt.Errorf("empty phone number")}
	}

	payload := textPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               FormatPhone(phone),
		Type:             "text",
	}
	payload.Text.Body = text
	body, err := json.Marshal(payload)
	if err != nil {
		return DeliveryResult{Err: fmt.Errorf("encode whatsapp payload: %w", err)}
	}

	url := fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(c.BaseURL, "/"), c.APIVersion, c.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return DeliveryResult{Err: fmt.Errorf("build whatsapp request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("WhatsApp send error", zap.Error(err))
		return DeliveryResult{Err: fmt.Errorf("whatsapp send: %w", err)}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("WhatsApp API error",
			zap.Int("status", resp.StatusCode), zap.String("body", string(raw)))
		return DeliveryResult{Err: fmt.Errorf("whatsapp api status %d", resp.StatusCode)}
	}

	var decoded sendResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.Logger.Warn("WhatsApp response not decodable", zap.Error(err))
	}
	result := DeliveryResult{Success: true}
	if len(decoded.Messages) > 0 {
		result.ExternalID = decoded.Messages[0].ID
	}
	return result
}
