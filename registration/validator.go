package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/internal/telemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

const maxBodyBytes = 1 << 20

// CheckResult is the raw answer of the validation endpoint.
type CheckResult struct {
	Status int
	Body   []byte
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// Validator asks the registration backend whether a token can still be used.
type Validator struct {
	baseURL string
	client  *http.Client
}

func NewValidator(baseURL string, client *http.Client) *Validator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Validator{baseURL: baseURL, client: client}
}

// Validate reports whether token is usable. An empty token is Valid since
// there is nothing to check. Any failure is reported as Invalid and logged.
func (v *Validator) Validate(ctx context.Context, token string) Validity {
	if token == "" {
		return Valid
	}

	res, err := v.Check(ctx, token)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("token validation failed")
		return Invalid
	}

	var body validateResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("token validation returned an unreadable body")
		return Invalid
	}
	if !body.Valid {
		return Invalid
	}
	return Valid
}

// Check performs the validation request and returns the upstream answer as is.
// Non-2xx answers are returned together with an *UpstreamError.
func (v *Validator) Check(ctx context.Context, token string) (res CheckResult, err error) {
	if token == "" {
		return CheckResult{}, apperrors.ErrTokenMissing
	}

	ctx, span := telemetry.StartSpan(ctx, "registration.validate")
	defer func() { telemetry.EndSpan(span, err) }()

	endpoint := fmt.Sprintf("%s/validate/%s", v.baseURL, url.PathEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return CheckResult{}, fmt.Errorf("[Validator Check] build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return CheckResult{}, apperrors.Wrapf(apperrors.ErrUpstream, "[Validator Check] %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return CheckResult{}, apperrors.Wrapf(apperrors.ErrUpstream, "[Validator Check] read body: %v", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	res = CheckResult{Status: resp.StatusCode, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, &UpstreamError{Status: resp.StatusCode, Body: body}
	}
	return res, nil
}
