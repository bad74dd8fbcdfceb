// Package wizard drives the AWS connection onboarding flow.
//
// The flow is a strictly linear sequence of steps:
//
//	About -> Credentials -> Validate -> Accounts -> Overview
//
// A Controller owns the draft being built, decides when the user may move
// forward, talks to the validation gateway and, on success, advances on its
// own after a short delay. Interactive front ends live in the prompt
// subpackage.
package wizard
