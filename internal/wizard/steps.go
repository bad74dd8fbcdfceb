package wizard

import "fmt"

// Step is a position in the wizard.
type Step int

// Wizard steps, in order.
const (
	StepAbout Step = iota
	StepCredentials
	StepValidate
	StepAccounts
	StepOverview
)

// StepCount is the number of steps.
const StepCount = int(StepOverview) + 1

var stepNames = [...]string{
	StepAbout:       "about",
	StepCredentials: "credentials",
	StepValidate:    "validate",
	StepAccounts:    "accounts",
	StepOverview:    "overview",
}

var stepTitles = [...]string{
	StepAbout:       "About",
	StepCredentials: "Credentials",
	StepValidate:    "Validate",
	StepAccounts:    "Accounts",
	StepOverview:    "Overview",
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Title is the label shown to users.
func (s Step) Title() string {
	if !s.Valid() {
		return s.String()
	}
	return stepTitles[s]
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	return s >= StepAbout && s <= StepOverview
}

// Steps returns all steps in order.
func Steps() []Step {
	out := make([]Step, 0, StepCount)
	for s := StepAbout; s <= StepOverview; s++ {
		out = append(out, s)
	}
	return out
}

type trigger string

const (
	triggerNext trigger = "next"
	triggerBack trigger = "back"
)
