package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/showup-events/showup/internal/connection"
)

func TestSummary(t *testing.T) {
	d := connection.NewDraft()
	d.About.Name = "Prod"
	d.About.Region = "us-east-1"
	d.Credentials = connection.CredentialsData{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "topsecret"}
	d.Validation = connection.Validated(true, "c-123")

	s := Summary(d)
	assert.Contains(t, s, "Prod")
	assert.Contains(t, s, "us-east-1")
	assert.Contains(t, s, "AKIAEXAMPLE")
	assert.Contains(t, s, "c-123")
	assert.Contains(t, s, "No accounts selected")
	assert.NotContains(t, s, "topsecret")
	assert.NotContains(t, s, "Description")

	d.About.Description = "main account"
	d.Accounts.Accounts = []string{"111", "222"}
	d.Validation = connection.Validated(false, "")
	s = Summary(d)
	assert.Contains(t, s, "main account")
	assert.Contains(t, s, "111, 222")
	assert.Contains(t, s, "Credential validation failed")
}
