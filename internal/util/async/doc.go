// Package async provides utilities for parallel task execution with
// error collection.
//
// The [RunParallel] function executes independent operations concurrently
// and joins every error. The session uses it to refresh user and account
// details at the same time.
package async
