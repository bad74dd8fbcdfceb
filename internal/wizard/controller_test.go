package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/showup-events/showup/internal/accounts"
	"github.com/showup-events/showup/internal/connection"
	"github.com/showup-events/showup/internal/gateway"
	"github.com/showup-events/showup/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeIdentity struct {
	id  string
	err error
}

func (f fakeIdentity) UserID() (string, error) { return f.id, f.err }

type fakeGateway struct {
	mu      sync.Mutex
	result  gateway.Result
	calls   int
	userID  string
	creds   connection.Credentials
	release chan struct{}
}

func (f *fakeGateway) Validate(_ context.Context, userID string, creds connection.Credentials) gateway.Result {
	f.mu.Lock()
	f.calls++
	f.userID = userID
	f.creds = creds
	release := f.release
	res := f.result
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	return res
}

type fakeCreator struct {
	got *connection.Connection
	err error
}

func (f *fakeCreator) Create(_ context.Context, c *connection.Connection) (*connection.Connection, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = c
	out := *c
	out.ID = "conn-1"
	return &out, nil
}

var (
	start      = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	okResult   = gateway.Result{Valid: true, Message: gateway.MessageValid, ContainerID: "c-123"}
	badResult  = gateway.Result{Valid: false, Message: gateway.MessageInvalid}
	aboutProd  = connection.AboutData{Name: "Prod", Region: "us-east-1"}
	validCreds = connection.CredentialsData{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret"}
)

type harness struct {
	ctrl    *Controller
	clock   *testclock.Clock
	gateway *fakeGateway
	metrics *metrics.Recorder
}

func newHarness(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		clock:   testclock.NewClock(start),
		gateway: &fakeGateway{result: okResult},
		metrics: metrics.New(),
	}
	o := Options{
		Identity: fakeIdentity{id: "u1"},
		Gateway:  h.gateway,
		Lister:   &accounts.StubLister{Clock: h.clock},
		Clock:    h.clock,
		Metrics:  h.metrics,
	}
	for _, fn := range opts {
		fn(&o)
	}
	h.ctrl = New(o)
	t.Cleanup(h.ctrl.Close)
	return h
}

// toValidate fills the first two steps and moves to the validate step.
func (h *harness) toValidate(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.ctrl.UpdateStep(StepAbout, aboutProd))
	require.NoError(t, h.ctrl.Advance(ctx))
	require.NoError(t, h.ctrl.UpdateStep(StepCredentials, validCreds))
	require.NoError(t, h.ctrl.Advance(ctx))
	require.Equal(t, StepValidate, h.ctrl.Step())
}

func TestNew_Defaults(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, StepAbout, h.ctrl.Step())
	d := h.ctrl.Draft()
	assert.Equal(t, connection.ProviderAWS, d.About.Provider)
	assert.Equal(t, []string{}, d.Accounts.Accounts)
	assert.Nil(t, d.Validation.IsValid)
	assert.False(t, h.ctrl.Validating())
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name  string
		about connection.AboutData
		creds connection.CredentialsData
		want  map[Step]bool
	}{
		{
			name: "empty draft",
			want: map[Step]bool{StepAbout: false, StepCredentials: false, StepValidate: true, StepAccounts: true, StepOverview: true},
		},
		{
			name:  "name without region",
			about: connection.AboutData{Name: "Prod"},
			want:  map[Step]bool{StepAbout: false},
		},
		{
			name:  "region without name",
			about: connection.AboutData{Region: "us-east-1"},
			want:  map[Step]bool{StepAbout: false},
		},
		{
			name:  "about complete",
			about: aboutProd,
			want:  map[Step]bool{StepAbout: true, StepCredentials: false},
		},
		{
			name:  "key without secret",
			creds: connection.CredentialsData{AccessKeyID: "AKIA"},
			want:  map[Step]bool{StepCredentials: false},
		},
		{
			name:  "credentials complete",
			creds: validCreds,
			want:  map[Step]bool{StepCredentials: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.ctrl.UpdateStep(StepAbout, tt.about))
			require.NoError(t, h.ctrl.UpdateStep(StepCredentials, tt.creds))
			for step, want := range tt.want {
				assert.Equal(t, want, h.ctrl.CanAdvance(step), step.String())
			}
		})
	}

	h := newHarness(t)
	assert.False(t, h.ctrl.CanAdvance(Step(9)))
}

func TestAdvance_RefusedWhenIncomplete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.ctrl.Advance(ctx)
	assert.ErrorIs(t, err, ErrCannotAdvance)
	assert.Equal(t, StepAbout, h.ctrl.Step())

	require.NoError(t, h.ctrl.UpdateStep(StepAbout, aboutProd))
	require.NoError(t, h.ctrl.Advance(ctx))
	assert.Equal(t, StepCredentials, h.ctrl.Step())

	assert.ErrorIs(t, h.ctrl.Advance(ctx), ErrCannotAdvance)
	assert.Equal(t, StepCredentials, h.ctrl.Step())
}

func TestAdvance_StopsAtLastStep(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)
	ctx := context.Background()

	require.NoError(t, h.ctrl.Advance(ctx))
	require.NoError(t, h.ctrl.Advance(ctx))
	assert.Equal(t, StepOverview, h.ctrl.Step())
	assert.ErrorIs(t, h.ctrl.Advance(ctx), ErrCannotAdvance)
	assert.Equal(t, StepOverview, h.ctrl.Step())
}

func TestRetreat(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.ctrl.Retreat(ctx), ErrAtFirstStep)

	h.toValidate(t)
	require.NoError(t, h.ctrl.Retreat(ctx))
	assert.Equal(t, StepCredentials, h.ctrl.Step())
	require.NoError(t, h.ctrl.Retreat(ctx))
	assert.Equal(t, StepAbout, h.ctrl.Step())
	assert.ErrorIs(t, h.ctrl.Retreat(ctx), ErrAtFirstStep)

	// Data survives moving back.
	assert.Equal(t, "Prod", h.ctrl.Draft().About.Name)
}

func TestTransitionsAreCounted(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)
	require.NoError(t, h.ctrl.Retreat(context.Background()))

	c := h.metrics.Transitions
	assert.InDelta(t, 1, testutil.ToFloat64(c.WithLabelValues("about", "credentials")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.WithLabelValues("credentials", "validate")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.WithLabelValues("validate", "credentials")), 0)
}

func TestUpdateStep_Mismatch(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		step Step
		data any
	}{
		{StepAbout, validCreds},
		{StepCredentials, aboutProd},
		{StepValidate, true},
		{StepAccounts, []string{"a"}},
		{StepOverview, aboutProd},
		{Step(-1), aboutProd},
	}
	for _, tt := range tests {
		err := h.ctrl.UpdateStep(tt.step, tt.data)
		assert.ErrorIs(t, err, ErrStepDataMismatch, tt.step.String())
	}
}

func TestUpdateStep_StoresPayloads(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.ctrl.UpdateStep(StepAbout, connection.AboutData{Name: "Prod", Region: "eu-west-1", Description: "main"}))
	require.NoError(t, h.ctrl.UpdateStep(StepCredentials, validCreds))
	require.NoError(t, h.ctrl.UpdateStep(StepAccounts, connection.AccountsData{}))
	require.NoError(t, h.ctrl.UpdateStep(StepValidate, connection.Validated(true, "c-9")))

	d := h.ctrl.Draft()
	assert.Equal(t, connection.AboutData{Name: "Prod", Provider: "aws", Region: "eu-west-1", Description: "main"}, d.About)
	assert.Equal(t, validCreds, d.Credentials)
	assert.Equal(t, []string{}, d.Accounts.Accounts)
	assert.True(t, d.Validation.Valid())
	assert.Equal(t, "c-9", d.Validation.ContainerID)
}

func TestUpdateStep_CredentialChangeClearsValidation(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.UpdateStep(StepCredentials, validCreds))
	require.NoError(t, h.ctrl.UpdateStep(StepValidate, connection.Validated(true, "c-1")))

	// Same data keeps the result.
	require.NoError(t, h.ctrl.UpdateStep(StepCredentials, validCreds))
	assert.True(t, h.ctrl.Draft().Validation.Valid())

	require.NoError(t, h.ctrl.UpdateStep(StepCredentials, connection.CredentialsData{AccessKeyID: "AKIAOTHER", SecretAccessKey: "s"}))
	assert.Nil(t, h.ctrl.Draft().Validation.IsValid)
}

func TestValidate_WrongStep(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.Validate(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.Zero(t, h.gateway.calls)
}

func TestValidate_NoUser(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Identity = fakeIdentity{err: errors.New("not signed in")} })
	h.toValidate(t)

	_, err := h.ctrl.Validate(context.Background())
	assert.Error(t, err)
	assert.Zero(t, h.gateway.calls)

	d := h.ctrl.Draft()
	require.NotNil(t, d.Validation.IsValid)
	assert.False(t, *d.Validation.IsValid)
	assert.Empty(t, d.Validation.ContainerID)
	assert.Equal(t, StepValidate, h.ctrl.Step())
}

func TestValidate_SendsDraftCredentials(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)

	res, err := h.ctrl.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, okResult, res)

	assert.Equal(t, "u1", h.gateway.userID)
	assert.Equal(t, connection.Credentials{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
	}, h.gateway.creds)

	d := h.ctrl.Draft()
	assert.True(t, d.Validation.Valid())
	assert.Equal(t, "c-123", d.Validation.ContainerID)
}

func TestValidate_AutoAdvanceAfterDelay(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)

	_, err := h.ctrl.Validate(context.Background())
	require.NoError(t, err)

	require.NoError(t, h.clock.WaitAdvance(1499*time.Millisecond, time.Second, 1))
	assert.Never(t, func() bool { return h.ctrl.Step() != StepValidate }, 50*time.Millisecond, 5*time.Millisecond)

	h.clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool { return h.ctrl.Step() == StepAccounts }, time.Second, 5*time.Millisecond)

	// Exactly one advance.
	h.clock.Advance(time.Hour)
	assert.Never(t, func() bool { return h.ctrl.Step() != StepAccounts }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestValidate_CustomDelay(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.AutoAdvanceDelay = 200 * time.Millisecond })
	h.toValidate(t)

	_, err := h.ctrl.Validate(context.Background())
	require.NoError(t, err)

	require.NoError(t, h.clock.WaitAdvance(200*time.Millisecond, time.Second, 1))
	assert.Eventually(t, func() bool { return h.ctrl.Step() == StepAccounts }, time.Second, 5*time.Millisecond)
}

func TestValidate_Invalid(t *testing.T) {
	h := newHarness(t)
	h.gateway.result = badResult
	h.toValidate(t)

	res, err := h.ctrl.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, gateway.MessageInvalid, res.Message)

	d := h.ctrl.Draft()
	require.NotNil(t, d.Validation.IsValid)
	assert.False(t, *d.Validation.IsValid)
	assert.Empty(t, d.Validation.ContainerID)

	h.clock.Advance(time.Hour)
	assert.Never(t, func() bool { return h.ctrl.Step() != StepValidate }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestValidate_InProgress(t *testing.T) {
	h := newHarness(t)
	h.gateway.release = make(chan struct{})
	h.toValidate(t)

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Validate(context.Background())
		done <- err
	}()

	require.Eventually(t, h.ctrl.Validating, time.Second, 5*time.Millisecond)
	_, err := h.ctrl.Validate(context.Background())
	assert.ErrorIs(t, err, ErrValidationInProgress)

	close(h.gateway.release)
	require.NoError(t, <-done)
	assert.False(t, h.ctrl.Validating())
	assert.Equal(t, 1, h.gateway.calls)
}

func TestValidate_RetreatCancelsAutoAdvance(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)
	ctx := context.Background()

	_, err := h.ctrl.Validate(ctx)
	require.NoError(t, err)
	require.NoError(t, h.clock.WaitAdvance(time.Second, time.Second, 1))

	require.NoError(t, h.ctrl.Retreat(ctx))
	require.NoError(t, h.ctrl.Advance(ctx))

	h.clock.Advance(time.Second)
	assert.Never(t, func() bool { return h.ctrl.Step() != StepValidate }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestValidate_ResponseAfterCloseDropped(t *testing.T) {
	h := newHarness(t)
	h.gateway.release = make(chan struct{})
	h.toValidate(t)

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Validate(context.Background())
		done <- err
	}()
	require.Eventually(t, h.ctrl.Validating, time.Second, 5*time.Millisecond)

	h.ctrl.Close()
	close(h.gateway.release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Nil(t, h.ctrl.Draft().Validation.IsValid)
}

func TestValidate_ResponseForChangedDraftDiscarded(t *testing.T) {
	h := newHarness(t)
	h.gateway.release = make(chan struct{})
	h.toValidate(t)

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Validate(context.Background())
		done <- err
	}()
	require.Eventually(t, h.ctrl.Validating, time.Second, 5*time.Millisecond)

	require.NoError(t, h.ctrl.Retreat(context.Background()))
	close(h.gateway.release)

	assert.ErrorIs(t, <-done, ErrDiscarded)
	assert.Nil(t, h.ctrl.Draft().Validation.IsValid)
}

func TestValidate_ManualResultWinsOverInFlightResponse(t *testing.T) {
	h := newHarness(t)
	h.gateway.release = make(chan struct{})
	h.toValidate(t)

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Validate(context.Background())
		done <- err
	}()
	require.Eventually(t, h.ctrl.Validating, time.Second, 5*time.Millisecond)

	require.NoError(t, h.ctrl.UpdateStep(StepValidate, connection.Validated(false, "")))
	close(h.gateway.release)

	assert.ErrorIs(t, <-done, ErrDiscarded)
	d := h.ctrl.Draft()
	require.NotNil(t, d.Validation.IsValid)
	assert.False(t, *d.Validation.IsValid)
	assert.Empty(t, d.Validation.ContainerID)

	h.clock.Advance(DefaultAutoAdvanceDelay)
	assert.Never(t, func() bool { return h.ctrl.Step() != StepValidate }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestClose_StopsPendingAutoAdvance(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)

	_, err := h.ctrl.Validate(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.clock.WaitAdvance(time.Second, time.Second, 1))

	h.ctrl.Close()
	h.clock.Advance(time.Second)
	assert.Never(t, func() bool { return h.ctrl.Step() != StepValidate }, 50*time.Millisecond, 5*time.Millisecond)

	ctx := context.Background()
	assert.ErrorIs(t, h.ctrl.Advance(ctx), ErrClosed)
	assert.ErrorIs(t, h.ctrl.Retreat(ctx), ErrClosed)
	assert.ErrorIs(t, h.ctrl.UpdateStep(StepAbout, aboutProd), ErrClosed)
	_, err = h.ctrl.Submit(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	// Closing twice is fine.
	h.ctrl.Close()
}

func TestWaitForStep(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := h.ctrl.Validate(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- h.ctrl.WaitForStep(ctx, StepAccounts) }()

	require.NoError(t, h.clock.WaitAdvance(DefaultAutoAdvanceDelay, time.Second, 1))
	require.NoError(t, <-done)
	assert.Equal(t, StepAccounts, h.ctrl.Step())
}

func TestWaitForStep_Cancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.ctrl.WaitForStep(ctx, StepOverview), context.Canceled)

	h.ctrl.Close()
	assert.ErrorIs(t, h.ctrl.WaitForStep(context.Background(), StepOverview), ErrClosed)
}

func TestListAccounts(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)
	_, err := h.ctrl.Validate(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.clock.WaitAdvance(DefaultAutoAdvanceDelay, time.Second, 1))
	require.NoError(t, h.ctrl.WaitForStep(context.Background(), StepAccounts))

	list, err := h.ctrl.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []accounts.Account{}, list)
}

func TestListAccounts_WrongStep(t *testing.T) {
	h := newHarness(t)

	list, err := h.ctrl.ListAccounts(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.Nil(t, list)

	h.toValidate(t)
	_, err = h.ctrl.ListAccounts(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)
}

// walk drives a complete successful run up to the overview step.
func (h *harness) walk(t *testing.T) {
	t.Helper()
	h.toValidate(t)
	_, err := h.ctrl.Validate(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.clock.WaitAdvance(DefaultAutoAdvanceDelay, time.Second, 1))
	require.NoError(t, h.ctrl.WaitForStep(context.Background(), StepAccounts))
	require.NoError(t, h.ctrl.Advance(context.Background()))
	require.Equal(t, StepOverview, h.ctrl.Step())
}

func TestSubmit_BuildsConnection(t *testing.T) {
	h := newHarness(t)
	h.walk(t)

	conn, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)

	now := h.clock.Now()
	assert.Equal(t, &connection.Connection{
		UserID:   "u1",
		Name:     "Prod",
		Provider: "aws",
		Credentials: connection.Credentials{
			AccessKeyID:     "AKIAEXAMPLE",
			SecretAccessKey: "secret",
			Region:          "us-east-1",
		},
		Accounts:    []string{},
		IsValidated: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, conn)
}

func TestSubmit_WithCreator(t *testing.T) {
	creator := &fakeCreator{}
	h := newHarness(t, func(o *Options) { o.Creator = creator })
	h.walk(t)

	conn, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "conn-1", conn.ID)
	require.NotNil(t, creator.got)
	assert.Equal(t, "Prod", creator.got.Name)
}

func TestSubmit_CreatorFailureMarksInvalid(t *testing.T) {
	creator := &fakeCreator{err: errors.New("failed to create AWS connection")}
	h := newHarness(t, func(o *Options) { o.Creator = creator })
	h.walk(t)

	_, err := h.ctrl.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, h.ctrl.Draft().Validation.Valid())
}

func TestSubmit_RequiresValidation(t *testing.T) {
	h := newHarness(t)
	h.toValidate(t)
	ctx := context.Background()

	_, err := h.ctrl.Submit(ctx)
	assert.ErrorIs(t, err, ErrWrongStep)

	// Skip validation entirely.
	require.NoError(t, h.ctrl.Advance(ctx))
	require.NoError(t, h.ctrl.Advance(ctx))

	_, err = h.ctrl.Submit(ctx)
	assert.ErrorIs(t, err, connection.ErrValidationRequired)

	d := h.ctrl.Draft()
	require.NotNil(t, d.Validation.IsValid)
	assert.False(t, *d.Validation.IsValid)
}

func TestSubmit_NoUser(t *testing.T) {
	h := newHarness(t)
	h.walk(t)
	h.ctrl.identity = fakeIdentity{err: errors.New("signed out")}

	_, err := h.ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, connection.ErrValidationRequired)
}

func TestStep_String(t *testing.T) {
	assert.Equal(t, "about", StepAbout.String())
	assert.Equal(t, "Overview", StepOverview.Title())
	assert.Equal(t, "step(7)", Step(7).String())
	assert.Len(t, Steps(), StepCount)
}
