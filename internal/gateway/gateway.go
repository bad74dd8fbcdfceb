// Package gateway calls the external credential validation service.
//
// The service answers with an opaque container id when the credentials work.
// Callers get a single valid/invalid answer: a network failure, an error
// status, a malformed body and a missing container id all read as
// "Invalid credentials". The underlying reason is only logged and counted.
package gateway

import (
	"context"
	"errors"

	"github.com/go-logr/logr"

	"github.com/showup-events/showup/internal/api"
	"github.com/showup-events/showup/internal/connection"
	"github.com/showup-events/showup/internal/metrics"
)

// ValidatePath is the validation endpoint.
const ValidatePath = "/api/cloud/validate"

// User-facing messages.
const (
	MessageValid   = "Credentials verified successfully"
	MessageInvalid = "Invalid credentials"
)

// Result is the collapsed validation outcome.
type Result struct {
	Valid       bool
	Message     string
	ContainerID string
}

// Validator is implemented by Gateway.
type Validator interface {
	Validate(ctx context.Context, userID string, creds connection.Credentials) Result
}

// Poster is the subset of the API client the gateway needs. The request
// must go out once, without session refresh.
type Poster interface {
	PostOnce(ctx context.Context, path string, body, out any) error
}

// Preflighter checks credentials locally before the remote call.
type Preflighter interface {
	CheckCredentials(ctx context.Context, creds connection.Credentials) error
}

// Gateway validates credentials against the backend.
type Gateway struct {
	client    Poster
	preflight Preflighter
	metrics   *metrics.Recorder
	log       logr.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPreflight runs p before every remote validation.
func WithPreflight(p Preflighter) Option {
	return func(g *Gateway) {
		g.preflight = p
	}
}

// WithMetrics counts outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(g *Gateway) {
		g.metrics = r
	}
}

// WithLogger sets the logger for failure reasons.
func WithLogger(log logr.Logger) Option {
	return func(g *Gateway) {
		g.log = log
	}
}

// New creates a Gateway.
func New(client Poster, opts ...Option) *Gateway {
	g := &Gateway{client: client, log: logr.Discard()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type awsCredentials struct {
	AccessKeyID     string `json:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"AWS_SECRET_ACCESS_KEY"`
	Region          string `json:"AWS_REGION"`
}

type validateRequest struct {
	UserID         string         `json:"userID"`
	AWSCredentials awsCredentials `json:"awsCredentials"`
}

type validateResponse struct {
	ContainerID string `json:"containerId"`
}

// Validate checks creds for userID. It never returns an error: every
// failure becomes an invalid Result.
func (g *Gateway) Validate(ctx context.Context, userID string, creds connection.Credentials) Result {
	log := g.log.WithValues("userID", userID, "region", creds.Region)
	log.V(1).Info("validating AWS credentials")

	if g.preflight != nil {
		if err := g.preflight.CheckCredentials(ctx, creds); err != nil {
			log.Info("credential preflight failed", "error", err.Error())
			return g.invalid(metrics.ResultPreflight)
		}
	}

	req := validateRequest{
		UserID: userID,
		AWSCredentials: awsCredentials{
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
			Region:          creds.Region,
		},
	}

	var resp validateResponse
	if err := g.client.PostOnce(ctx, ValidatePath, req, &resp); err != nil {
		reason := classify(err)
		log.Info("error validating AWS credentials", "reason", reason, "error", err.Error())
		return g.invalid(reason)
	}

	if resp.ContainerID == "" {
		log.Info("validation response has no container id")
		return g.invalid(metrics.ResultMalformed)
	}

	g.metrics.ObserveValidation(metrics.ResultOK)
	return Result{Valid: true, Message: MessageValid, ContainerID: resp.ContainerID}
}

func (g *Gateway) invalid(reason string) Result {
	g.metrics.ObserveValidation(reason)
	return Result{Valid: false, Message: MessageInvalid}
}

// classify names the failure reason for metrics.
func classify(err error) string {
	var se *api.StatusError
	switch {
	case errors.As(err, &se), errors.Is(err, api.ErrUnauthorized):
		return metrics.ResultRejected
	case errors.Is(err, api.ErrMalformedResponse):
		return metrics.ResultMalformed
	default:
		return metrics.ResultTransport
	}
}
