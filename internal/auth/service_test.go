package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotbook/jotbook/internal/account"
	"github.com/jotbook/jotbook/internal/apperr"
	"github.com/jotbook/jotbook/internal/logging"
	"github.com/jotbook/jotbook/internal/otp"
)

type stubDispatcher struct {
	fail bool
	sent []string
}

func (d *stubDispatcher) Send(_ context.Context, to, _, _ string) error {
	if d.fail {
		return errors.New("smtp unavailable")
	}
	d.sent = append(d.sent, to)
	return nil
}

type fixture struct {
	svc        *Service
	accounts   account.Repository
	dispatcher *stubDispatcher
	clock      *fakeClock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	accounts := account.NewMemoryRepository()
	pending := otp.NewMemoryStoreWithClock(clock.Now)
	dispatcher := &stubDispatcher{}
	svc := NewService(accounts, pending, dispatcher, 5*time.Minute, logging.Discard())
	return &fixture{svc: svc, accounts: accounts, dispatcher: dispatcher, clock: clock}
}

func TestSignupVerifyRoundtrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ch, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)
	assert.Len(t, ch.Code, 6)
	assert.True(t, ch.Dispatched)
	assert.Equal(t, []string{"a@x.com"}, f.dispatcher.sent)

	acct, err := f.svc.VerifySignup(ctx, "a@x.com", ch.Code)
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, "a@x.com", acct.Email)
	assert.Equal(t, "A", acct.Name)

	// The credential is consumed; a second verification must fail.
	_, err = f.svc.VerifySignup(ctx, "a@x.com", ch.Code)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredential))
}

func TestVerifySignupWrongCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ch, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)

	wrong := "123456"
	if wrong == ch.Code {
		wrong = "654321"
	}
	_, err = f.svc.VerifySignup(ctx, "a@x.com", wrong)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredential))
}

func TestVerifySignupRejectsMalformedCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.VerifySignup(context.Background(), "a@x.com", "abc123")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSignupRejectsInFlightPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)

	_, err = f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestSignupRejectsVerifiedEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ch, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)
	_, err = f.svc.VerifySignup(ctx, "a@x.com", ch.Code)
	require.NoError(t, err)

	_, err = f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCodeExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ch, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(5*time.Minute + time.Second)

	_, err = f.svc.VerifySignup(ctx, "a@x.com", ch.Code)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredential))
}

func TestRequestLoginSupersedesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signup, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)
	_, err = f.svc.VerifySignup(ctx, "a@x.com", signup.Code)
	require.NoError(t, err)

	first, err := f.svc.RequestLogin(ctx, "a@x.com")
	require.NoError(t, err)
	second, err := f.svc.RequestLogin(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = f.svc.VerifyLogin(ctx, "a@x.com", first.Code)
	if first.Code != second.Code {
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredential))
	}

	acct, err := f.svc.VerifyLogin(ctx, "a@x.com", second.Code)
	if first.Code != second.Code {
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", acct.Email)
	}
}

func TestLoginRequiresVerifiedAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestLogin(context.Background(), "nobody@x.com")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestVerifyLoginRejectsSignupCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ch, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)

	_, err = f.svc.VerifyLogin(ctx, "a@x.com", ch.Code)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredential))
}

func TestVerifySignupRejectsLoginCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signup, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)
	_, err = f.svc.VerifySignup(ctx, "a@x.com", signup.Code)
	require.NoError(t, err)

	login, err := f.svc.RequestLogin(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = f.svc.VerifySignup(ctx, "a@x.com", login.Code)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredential))
}

func TestVerifyLoginStampsLastLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signup, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)
	created, err := f.svc.VerifySignup(ctx, "a@x.com", signup.Code)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	login, err := f.svc.RequestLogin(ctx, "a@x.com")
	require.NoError(t, err)
	acct, err := f.svc.VerifyLogin(ctx, "a@x.com", login.Code)
	require.NoError(t, err)

	assert.True(t, acct.LastLogin.After(created.LastLogin))
}

func TestDispatchFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.fail = true
	ctx := context.Background()

	ch, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)
	assert.False(t, ch.Dispatched)

	// The credential write is committed regardless of delivery.
	acct, err := f.svc.VerifySignup(ctx, "a@x.com", ch.Code)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", acct.Email)
}

func TestLegacyLoginUpdatesLastLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signup, err := f.svc.RequestSignup(ctx, "A", "a@x.com", "2000-01-01")
	require.NoError(t, err)
	created, err := f.svc.VerifySignup(ctx, "a@x.com", signup.Code)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	acct, err := f.svc.LegacyLogin(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, acct.ID)
	assert.True(t, acct.LastLogin.After(created.LastLogin))

	_, err = f.svc.LegacyLogin(ctx, "nobody@x.com")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
