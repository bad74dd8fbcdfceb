package devserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Access key id prefixes accepted as plausible: long-term and temporary keys.
var accessKeyPrefixes = []string{"AKIA", "ASIA"}

type validateRequest struct {
	UserID         string `json:"userID" binding:"required"`
	AWSCredentials struct {
		AccessKeyID     string `json:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `json:"AWS_SECRET_ACCESS_KEY"`
		Region          string `json:"AWS_REGION"`
	} `json:"awsCredentials"`
}

// validateCredentials accepts credentials that look like real AWS keys and
// hands back a fresh container id.
func (s *Server) validateCredentials(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID != c.GetString(userIDKey) {
		abort(c, http.StatusForbidden, "Forbidden")
		return
	}

	creds := req.AWSCredentials
	if !hasKeyPrefix(creds.AccessKeyID) || creds.SecretAccessKey == "" || creds.Region == "" {
		abort(c, http.StatusBadRequest, "Invalid AWS credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{"containerId": "ctr-" + uuid.NewString()})
}

func hasKeyPrefix(id string) bool {
	for _, p := range accessKeyPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
