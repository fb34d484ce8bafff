package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const commitPath = "/keycloak/users/qrcode"

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Request binds a user to a registration token, creating the user when the
// profile fields are present.
type Request struct {
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	QRCode          string   `json:"qrCode,omitempty"`
	FirstName       string   `json:"firstName,omitempty"`
	LastName        string   `json:"lastName,omitempty"`
	ShippingAddress *Address `json:"shippingAddress,omitempty"`
	BillingAddress  *Address `json:"billingAddress,omitempty"`
}

// Response is the backend's answer, passed through unchanged by the proxy route.
type Response struct {
	Status int
	Body   json.RawMessage
}

// Committer posts registration requests to the central server.
type Committer struct {
	baseURL string
	client  *http.Client
}

func NewCommitter(baseURL string, client *http.Client) *Committer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Committer{baseURL: baseURL, client: client}
}

// Commit sends req once. A non-2xx answer is returned as *UpstreamError.
func (c *Committer) Commit(ctx context.Context, req Request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("[Committer Commit] marshal: %w", err)
	}

	res, err := c.post(ctx, payload)
	if err != nil {
		return err
	}
	if res.Status < 200 || res.Status > 299 {
		return &UpstreamError{Status: res.Status, Body: res.Body}
	}
	return nil
}

// Forward relays a JSON payload to the backend and returns its answer,
// whatever the status. The answer must itself be JSON.
func (c *Committer) Forward(ctx context.Context, payload json.RawMessage) (Response, error) {
	if !json.Valid(payload) {
		return Response{}, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Committer Forward] payload is not JSON")
	}
	res, err := c.post(ctx, payload)
	if err != nil {
		return Response{}, err
	}
	if !json.Valid(res.Body) {
		return Response{Status: res.Status}, apperrors.Wrapf(apperrors.ErrUpstreamMalformed, "[Committer Forward] status %d", res.Status)
	}
	return res, nil
}

func (c *Committer) post(ctx context.Context, payload []byte) (res Response, err error) {
	ctx, span := telemetry.StartSpan(ctx, "registration.commit")
	defer func() { telemetry.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+commitPath, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("[Committer post] build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, apperrors.Wrapf(apperrors.ErrUpstream, "[Committer post] %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, apperrors.Wrapf(apperrors.ErrUpstream, "[Committer post] read body: %v", err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return Response{Status: resp.StatusCode, Body: body}, nil
}
