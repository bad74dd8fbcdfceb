package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/showup-events/showup/internal/connection"
)

// ErrInvalidCredentials means STS rejected the key pair.
var ErrInvalidCredentials = errors.New("AWS rejected the credentials")

// STSAPI is the part of the STS client used here.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity is who the credentials belong to.
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// Checker verifies credentials against STS.
type Checker struct {
	endpoint  string
	newClient func(ctx context.Context, creds connection.Credentials) (STSAPI, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithEndpoint points the STS client at a custom endpoint, e.g. LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(c *Checker) {
		c.endpoint = endpoint
	}
}

// WithClientFactory replaces STS client construction. Used in tests.
func WithClientFactory(fn func(ctx context.Context, creds connection.Credentials) (STSAPI, error)) Option {
	return func(c *Checker) {
		c.newClient = fn
	}
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{}
	c.newClient = c.stsClient
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// stsClient builds an STS client that only uses the given static credentials.
func (c *Checker) stsClient(ctx context.Context, creds connection.Credentials) (STSAPI, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)),
		config.WithRegion(creds.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return sts.NewFromConfig(cfg, func(o *sts.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	}), nil
}

// CallerIdentity returns the identity behind creds.
func (c *Checker) CallerIdentity(ctx context.Context, creds connection.Credentials) (*Identity, error) {
	if creds.Region == "" {
		return nil, errors.New("region is required")
	}

	client, err := c.newClient(ctx, creds)
	if err != nil {
		return nil, err
	}

	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		if isAuthError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}

	return &Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

// CheckCredentials implements the gateway preflight.
func (c *Checker) CheckCredentials(ctx context.Context, creds connection.Credentials) error {
	_, err := c.CallerIdentity(ctx, creds)
	return err
}

// authErrorCodes are STS error codes that mean the key pair is unusable.
var authErrorCodes = map[string]bool{
	"InvalidClientTokenId":        true,
	"SignatureDoesNotMatch":       true,
	"ExpiredToken":                true,
	"UnrecognizedClientException": true,
	"AuthFailure":                 true,
}

// isAuthError checks if err is an STS authentication failure.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return authErrorCodes[apiErr.ErrorCode()]
	}
	return false
}
