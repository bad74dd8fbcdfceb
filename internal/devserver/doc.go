// Package devserver is an in-memory stand-in for the showup backend.
//
// It serves the auth, user, account, connection and credential validation
// endpoints the CLI talks to, so the whole flow can be exercised locally
// without the real services. Nothing is persisted.
package devserver
