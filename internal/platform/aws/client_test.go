package aws

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showup-events/showup/internal/connection"
)

type fakeSTS struct {
	out *sts.GetCallerIdentityOutput
	err error
}

func (f *fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return f.out, f.err
}

var creds = connection.Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret", Region: "us-east-1"}

func checkerWith(api STSAPI, seen *connection.Credentials) *Checker {
	return NewChecker(WithClientFactory(func(_ context.Context, c connection.Credentials) (STSAPI, error) {
		if seen != nil {
			*seen = c
		}
		return api, nil
	}))
}

func TestCallerIdentity(t *testing.T) {
	var seen connection.Credentials
	c := checkerWith(&fakeSTS{out: &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/dana"),
		UserId:  aws.String("AIDAEXAMPLE"),
	}}, &seen)

	id, err := c.CallerIdentity(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id.Account)
	assert.Equal(t, "arn:aws:iam::123456789012:user/dana", id.ARN)
	assert.Equal(t, "AIDAEXAMPLE", id.UserID)
	assert.Equal(t, creds, seen)
}

func TestCheckCredentials_AuthFailure(t *testing.T) {
	c := checkerWith(&fakeSTS{err: &smithy.GenericAPIError{Code: "InvalidClientTokenId", Message: "bad token"}}, nil)

	err := c.CheckCredentials(context.Background(), creds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCheckCredentials_OtherFailure(t *testing.T) {
	c := checkerWith(&fakeSTS{err: errors.New("dial tcp: i/o timeout")}, nil)

	err := c.CheckCredentials(context.Background(), creds)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "failed to get caller identity")
}

func TestCheckCredentials_RequiresRegion(t *testing.T) {
	c := checkerWith(&fakeSTS{}, nil)
	err := c.CheckCredentials(context.Background(), connection.Credentials{AccessKeyID: "a", SecretAccessKey: "b"})
	assert.Error(t, err)
}

func TestCheckCredentials_FactoryError(t *testing.T) {
	c := NewChecker(WithClientFactory(func(context.Context, connection.Credentials) (STSAPI, error) {
		return nil, errors.New("no config")
	}))
	assert.Error(t, c.CheckCredentials(context.Background(), creds))
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"plain error", errors.New("boom"), false},
		{"invalid token", &smithy.GenericAPIError{Code: "InvalidClientTokenId"}, true},
		{"bad signature", &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}, true},
		{"expired", &smithy.GenericAPIError{Code: "ExpiredToken"}, true},
		{"wrapped", fmt.Errorf("op: %w", &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}), true},
		{"throttled", &smithy.GenericAPIError{Code: "Throttling"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAuthError(tt.err))
		})
	}
}

func TestNewChecker_RealClientConstruction(t *testing.T) {
	c := NewChecker(WithEndpoint("http://127.0.0.1:4566"))
	client, err := c.stsClient(context.Background(), creds)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
