// Package connection models stored cloud-provider connections.
//
// It holds the per-step payloads collected by the onboarding wizard
// ([Draft]), the rule that turns a validated draft into a [Connection]
// ([Build]), and a [Store] for the backend's connection endpoints.
package connection
