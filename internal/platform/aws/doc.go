// Package aws checks AWS credentials locally before they are sent to the
// validation service.
//
// The check calls STS GetCallerIdentity, which needs no IAM permissions, so a
// failure means the key pair itself is wrong rather than under-privileged.
package aws
