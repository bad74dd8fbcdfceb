package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/clock"
	"github.com/qmuntal/stateless"

	"github.com/showup-events/showup/internal/accounts"
	"github.com/showup-events/showup/internal/connection"
	"github.com/showup-events/showup/internal/gateway"
	"github.com/showup-events/showup/internal/metrics"
	"github.com/showup-events/showup/internal/util/ptr"
)

// DefaultAutoAdvanceDelay is how long a successful validation stays on screen.
const DefaultAutoAdvanceDelay = 1500 * time.Millisecond

// ErrDiscarded is returned when a validation response arrives after the
// draft or step it was started for has changed.
var ErrDiscarded = errors.New("validation result discarded")

// Identity provides the id of the signed-in user.
type Identity interface {
	UserID() (string, error)
}

// Creator persists a finished connection.
type Creator interface {
	Create(ctx context.Context, c *connection.Connection) (*connection.Connection, error)
}

// Options configures a Controller.
type Options struct {
	Identity Identity
	Gateway  gateway.Validator
	Lister   accounts.Lister
	// Creator is optional. Without it Submit only builds the connection.
	Creator          Creator
	Clock            clock.Clock
	AutoAdvanceDelay time.Duration
	Metrics          *metrics.Recorder
	Logger           logr.Logger
}

// Controller holds the state of one wizard run. It is safe for concurrent use.
type Controller struct {
	identity Identity
	gateway  gateway.Validator
	lister   accounts.Lister
	creator  Creator
	clock    clock.Clock
	delay    time.Duration
	metrics  *metrics.Recorder
	log      logr.Logger

	mu         sync.Mutex
	machine    *stateless.StateMachine
	draft      connection.Draft
	validating bool
	timer      clock.Timer
	// gen invalidates in-flight validations and pending auto-advances.
	gen     uint64
	closed  bool
	changed chan struct{}
}

// New creates a Controller positioned on the first step with an empty draft.
func New(opts Options) *Controller {
	c := &Controller{
		identity: opts.Identity,
		gateway:  opts.Gateway,
		lister:   opts.Lister,
		creator:  opts.Creator,
		clock:    opts.Clock,
		delay:    opts.AutoAdvanceDelay,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		draft:    connection.NewDraft(),
		changed:  make(chan struct{}),
	}
	if c.clock == nil {
		c.clock = clock.WallClock
	}
	if c.delay <= 0 {
		c.delay = DefaultAutoAdvanceDelay
	}
	if c.log.GetSink() == nil {
		c.log = logr.Discard()
	}
	if c.lister == nil {
		c.lister = accounts.NewStubLister(accounts.DefaultStubDelay)
	}
	c.machine = c.newMachine()
	return c
}

func (c *Controller) newMachine() *stateless.StateMachine {
	sm := stateless.NewStateMachine(StepAbout)

	steps := Steps()
	for i, s := range steps {
		cfg := sm.Configure(s)
		if i+1 < len(steps) {
			cfg.Permit(triggerNext, steps[i+1], c.guardAdvance(s))
		}
		if i > 0 {
			cfg.Permit(triggerBack, steps[i-1])
		}
	}

	sm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		from, _ := t.Source.(Step)
		to, _ := t.Destination.(Step)
		c.metrics.ObserveTransition(from.String(), to.String())
		c.log.V(1).Info("Wizard step changed", "from", from.String(), "to", to.String())
		close(c.changed)
		c.changed = make(chan struct{})
	})
	return sm
}

// guardAdvance runs inside Fire, which is always called with c.mu held.
func (c *Controller) guardAdvance(s Step) stateless.GuardFunc {
	return func(context.Context, ...any) bool {
		return c.canAdvanceLocked(s)
	}
}

// Step returns the current step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Controller) currentLocked() Step {
	return c.machine.MustState().(Step)
}

// Draft returns a copy of the collected step data.
func (c *Controller) Draft() connection.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.draft
	d.Accounts.Accounts = append([]string{}, c.draft.Accounts.Accounts...)
	if v := c.draft.Validation.IsValid; v != nil {
		d.Validation.IsValid = ptr.To(*v)
	}
	return d
}

// Validating reports whether a validation request is outstanding.
func (c *Controller) Validating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validating
}

// CanAdvance reports whether the given step has what it needs to move on.
func (c *Controller) CanAdvance(s Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvanceLocked(s)
}

func (c *Controller) canAdvanceLocked(s Step) bool {
	switch s {
	case StepAbout:
		return c.draft.About.Name != "" && c.draft.About.Region != ""
	case StepCredentials:
		return c.draft.Credentials.AccessKeyID != "" && c.draft.Credentials.SecretAccessKey != ""
	case StepValidate, StepAccounts, StepOverview:
		return true
	default:
		return false
	}
}

// Advance moves one step forward.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	cur := c.currentLocked()
	if cur == StepOverview || !c.canAdvanceLocked(cur) {
		return fmt.Errorf("%w: %s", ErrCannotAdvance, cur)
	}
	if err := c.machine.FireCtx(ctx, triggerNext); err != nil {
		return fmt.Errorf("%w: %v", ErrCannotAdvance, err)
	}
	return nil
}

// Retreat moves one step back. A pending auto-advance is cancelled.
func (c *Controller) Retreat(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.currentLocked() == StepAbout {
		return ErrAtFirstStep
	}
	c.invalidateLocked()
	return c.machine.FireCtx(ctx, triggerBack)
}

// UpdateStep stores the payload for step s. The payload type must match the
// step: AboutData, CredentialsData, ValidationResult or AccountsData.
// Changing About or Credentials clears a previous validation result.
func (c *Controller) UpdateStep(s Step, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	switch s {
	case StepAbout:
		v, ok := data.(connection.AboutData)
		if !ok {
			return mismatch(s, data)
		}
		if v.Provider == "" {
			v.Provider = connection.ProviderAWS
		}
		if v != c.draft.About {
			c.resetValidationLocked()
		}
		c.draft.About = v
	case StepCredentials:
		v, ok := data.(connection.CredentialsData)
		if !ok {
			return mismatch(s, data)
		}
		if v != c.draft.Credentials {
			c.resetValidationLocked()
		}
		c.draft.Credentials = v
	case StepValidate:
		v, ok := data.(connection.ValidationResult)
		if !ok {
			return mismatch(s, data)
		}
		c.invalidateLocked()
		c.draft.Validation = v
	case StepAccounts:
		v, ok := data.(connection.AccountsData)
		if !ok {
			return mismatch(s, data)
		}
		if v.Accounts == nil {
			v.Accounts = []string{}
		}
		c.draft.Accounts = v
	default:
		return mismatch(s, data)
	}
	return nil
}

func mismatch(s Step, data any) error {
	return fmt.Errorf("%w: %T for step %s", ErrStepDataMismatch, data, s)
}

// resetValidationLocked forgets a validation done for older data.
func (c *Controller) resetValidationLocked() {
	if c.draft.Validation.IsValid == nil && !c.validating {
		return
	}
	c.draft.Validation = connection.ValidationResult{}
	c.invalidateLocked()
}

// invalidateLocked drops any in-flight validation and pending auto-advance.
func (c *Controller) invalidateLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) userID() (string, error) {
	if c.identity == nil {
		return "", errors.New("no signed-in user")
	}
	return c.identity.UserID()
}

func (c *Controller) credentialsLocked() connection.Credentials {
	return connection.Credentials{
		AccessKeyID:     c.draft.Credentials.AccessKeyID,
		SecretAccessKey: c.draft.Credentials.SecretAccessKey,
		Region:          c.draft.About.Region,
	}
}

// Validate sends the draft credentials to the validation gateway. On success
// the wizard advances by itself once, after the auto-advance delay.
func (c *Controller) Validate(ctx context.Context) (gateway.Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return gateway.Result{}, ErrClosed
	}
	if cur := c.currentLocked(); cur != StepValidate {
		c.mu.Unlock()
		return gateway.Result{}, fmt.Errorf("%w: validate on %s", ErrWrongStep, cur)
	}
	if c.validating {
		c.mu.Unlock()
		return gateway.Result{}, ErrValidationInProgress
	}
	userID, err := c.userID()
	if err != nil {
		c.draft.Validation = connection.Validated(false, "")
		c.mu.Unlock()
		return gateway.Result{}, fmt.Errorf("validate: %w", err)
	}
	creds := c.credentialsLocked()
	gen := c.gen
	c.validating = true
	c.mu.Unlock()

	res := c.gateway.Validate(ctx, userID, creds)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.validating = false
	if c.closed {
		return res, ErrClosed
	}
	if gen != c.gen {
		return res, ErrDiscarded
	}

	if !res.Valid {
		c.draft.Validation = connection.Validated(false, "")
		return res, nil
	}

	c.draft.Validation = connection.Validated(true, res.ContainerID)
	c.timer = c.clock.AfterFunc(c.delay, func() { c.autoAdvance(gen) })
	return res, nil
}

func (c *Controller) autoAdvance(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		return
	}
	c.timer = nil
	if c.currentLocked() != StepValidate {
		return
	}
	if err := c.machine.FireCtx(context.Background(), triggerNext); err != nil {
		c.log.Error(err, "Auto-advance failed")
	}
}

// ListAccounts returns the accounts reachable with the draft credentials.
// It is only allowed on the Accounts step.
func (c *Controller) ListAccounts(ctx context.Context) ([]accounts.Account, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if cur := c.currentLocked(); cur != StepAccounts {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: list accounts on %s", ErrWrongStep, cur)
	}
	creds := c.credentialsLocked()
	c.mu.Unlock()

	return c.lister.ListAccounts(ctx, creds)
}

// Submit builds the connection from the draft and, when a Creator is set,
// stores it. Any failure marks the validation as invalid.
func (c *Controller) Submit(ctx context.Context) (*connection.Connection, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if cur := c.currentLocked(); cur != StepOverview {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: submit on %s", ErrWrongStep, cur)
	}

	// A missing user is reported by Build as a validation failure.
	userID, _ := c.userID()
	conn, err := connection.Build(c.draft, userID, c.clock.Now())
	if err != nil {
		c.failSubmitLocked()
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	if c.creator == nil {
		return conn, nil
	}

	created, err := c.creator.Create(ctx, conn)
	if err != nil {
		c.mu.Lock()
		c.failSubmitLocked()
		c.mu.Unlock()
		return nil, err
	}
	return created, nil
}

func (c *Controller) failSubmitLocked() {
	c.draft.Validation = connection.Validated(false, c.draft.Validation.ContainerID)
}

// WaitForStep blocks until the wizard reaches s, ctx is done or the
// controller is closed.
func (c *Controller) WaitForStep(ctx context.Context, s Step) error {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		if c.currentLocked() == s {
			c.mu.Unlock()
			return nil
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops any pending auto-advance. Validation responses that arrive
// afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.invalidateLocked()
	close(c.changed)
	c.changed = make(chan struct{})
}
