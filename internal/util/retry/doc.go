// Package retry provides exponential backoff retry logic for transient failures.
//
// The [Do] function retries an operation with configurable max attempts,
// initial delay, and maximum delay. It is used by the API client for idempotent
// reads that hit transient gateway errors. Errors wrapped with [Fatal] stop the
// loop immediately.
package retry
