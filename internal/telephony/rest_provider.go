package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-relay/internal/config"
	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

// restProvider talks to a Twilio-compatible REST API using account SID
// basic auth and form-encoded POSTs.
type restProvider struct {
	cfg    config.TelephonyConfig
	client *http.Client
	logger *zap.Logger
}

// NewRESTProvider builds the HTTP-backed provider. The client timeout
// bounds every provider call, including number provisioning.
func NewRESTProvider(cfg config.TelephonyConfig, logger *zap.Logger) Provider {
	return &restProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.ProvisionTimeout()},
		logger: logger,
	}
}

func (p *restProvider) SendMessage(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", p.cfg.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.cfg.APIBaseURL, p.cfg.AccountSID)
	if _, err := p.postForm(ctx, endpoint, form); err != nil {
		return apperrors.NewDispatchFailed(to, err)
	}
	return nil
}

func (p *restProvider) ProvisionNumber(ctx context.Context, areaCode string) (string, error) {
	candidate, err := p.searchAvailableNumber(ctx, areaCode)
	if err != nil {
		return "", apperrors.NewProvisioningFailed(areaCode, err)
	}

	form := url.Values{}
	form.Set("PhoneNumber", candidate)
	if p.cfg.SMSWebhookURL != "" {
		form.Set("SmsUrl", p.cfg.SMSWebhookURL)
	}
	if p.cfg.VoiceWebhookURL != "" {
		form.Set("VoiceUrl", p.cfg.VoiceWebhookURL)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/IncomingPhoneNumbers.json", p.cfg.APIBaseURL, p.cfg.AccountSID)
	payload, err := p.postForm(ctx, endpoint, form)
	if err != nil {
		return "", apperrors.NewProvisioningFailed(areaCode, err)
	}

	var purchased struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.Unmarshal(payload, &purchased); err != nil {
		return "", apperrors.NewProvisioningFailed(areaCode, err)
	}
	if purchased.PhoneNumber == "" {
		return "", apperrors.NewProvisioningFailed(areaCode, fmt.Errorf("provider returned empty number"))
	}

	p.logger.Info("provisioned relay number",
		zap.String("area_code", areaCode),
		zap.String("number", purchased.PhoneNumber))
	return purchased.PhoneNumber, nil
}

func (p *restProvider) searchAvailableNumber(ctx context.Context, areaCode string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/AvailablePhoneNumbers/%s/Local.json?AreaCode=%s&SmsEnabled=true&VoiceEnabled=true",
		p.cfg.APIBaseURL, p.cfg.AccountSID, p.cfg.CountryCode, url.QueryEscape(areaCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.AccountSID, p.cfg.AuthToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("number search returned %d: %s", resp.StatusCode, truncate(payload, 200))
	}

	var result struct {
		AvailablePhoneNumbers []struct {
			PhoneNumber string `json:"phone_number"`
		} `json:"available_phone_numbers"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return "", err
	}
	if len(result.AvailablePhoneNumbers) == 0 {
		return "", fmt.Errorf("no numbers available in area code %s", areaCode)
	}
	return result.AvailablePhoneNumbers[0].PhoneNumber, nil
}

func (p *restProvider) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.cfg.AccountSID, p.cfg.AuthToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, truncate(payload, 200))
	}
	return payload, nil
}

func truncate(payload []byte, max int) string {
	if len(payload) <= max {
		return string(payload)
	}
	return string(payload[:max]) + "..."
}
