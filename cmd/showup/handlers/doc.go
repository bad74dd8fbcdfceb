// Package handlers implements the business logic for CLI commands.
//
// Each handler builds the clients it needs from the resolved settings,
// performs the operation and prints the result to stdout. Construction goes
// through package-level factory variables so tests can swap in fakes.
package handlers
