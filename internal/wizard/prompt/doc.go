// Package prompt runs the connection wizard in a terminal.
//
// Run walks a wizard.Controller step by step. The questions themselves come
// from a Prompter: Forms asks interactively with huh, Scripted answers from
// values given up front so the same flow works in scripts and CI. While
// validation and account listing run, Forms shows a Bubble Tea spinner.
package prompt
