package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/readershaven/readershaven/pkg/environment"
)

// devBypassToken lets local and cluster environments skip the captcha
// challenge explicitly. Only honored outside strict production.
const devBypassToken = "DEV_BYPASS"

// CaptchaVerifier gates registration behind a server-side bot check. The
// check is enforced only when a secret is configured, bypass is off, and the
// process runs in strict production.
type CaptchaVerifier struct {
	cfg    Config
	env    environment.Config
	client *http.Client
}

func NewCaptchaVerifier(cfg Config, env environment.Config) *CaptchaVerifier {
	return &CaptchaVerifier{
		cfg:    cfg,
		env:    env,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// enforced reports whether verification must actually run.
func (v *CaptchaVerifier) enforced(clientToken string) bool {
	if v.cfg.CaptchaSecret == "" || v.cfg.CaptchaBypass {
		return false
	}
	if !v.env.IsStrictProduction() && clientToken == devBypassToken {
		return false
	}
	return v.env.IsProduction()
}

// Verify checks the client token against the verification endpoint.
func (v *CaptchaVerifier) Verify(ctx context.Context, clientToken string) error {
	if !v.enforced(clientToken) {
		return nil
	}
	if clientToken == "" {
		return ErrCaptchaRequired
	}

	form := url.Values{}
	form.Set("secret", v.cfg.CaptchaSecret)
	form.Set("response", clientToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.CaptchaVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Join(ErrCaptchaUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return errors.Join(ErrCaptchaUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Join(ErrCaptchaUnreachable, err)
	}
	if !result.Success {
		return fmt.Errorf("%w: %v", ErrCaptchaFailed, result.ErrorCodes)
	}
	return nil
}
