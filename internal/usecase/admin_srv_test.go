package usecase

import (
	"context"
	"errors"
	"testing"

	"instructor-portal/internal/data/entity"
	"instructor-portal/internal/data/repository"
	"instructor-portal/pkg/identity"
	"instructor-portal/pkg/mailer"
	"instructor-portal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeIdentity implements IdentityProvider with overridable funcs.
type fakeIdentity struct {
	verifyFn   func(token string) (*entity.Identity, error)
	exchangeFn func(ctx context.Context, code, verifier string) (*entity.AuthSession, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*entity.AuthSession, error)
	emails     map[uuid.UUID]string
	emailsErr  error
	deleteErr  error
	deleted    []uuid.UUID
	signedOut  []string
}

func (f *fakeIdentity) VerifyAccessToken(token string) (*entity.Identity, error) {
	if f.verifyFn == nil {
		return nil, identity.ErrInvalidToken
	}
	return f.verifyFn(token)
}

func (f *fakeIdentity) ExchangeCode(ctx context.Context, code, verifier string) (*entity.AuthSession, error) {
	return f.exchangeFn(ctx, code, verifier)
}

func (f *fakeIdentity) Refresh(ctx context.Context, refreshToken string) (*entity.AuthSession, error) {
	if f.refreshFn == nil {
		return nil, errors.New("refresh not configured")
	}
	return f.refreshFn(ctx, refreshToken)
}

func (f *fakeIdentity) SignOut(_ context.Context, accessToken string) error {
	f.signedOut = append(f.signedOut, accessToken)
	return nil
}

func (f *fakeIdentity) GetUserEmails(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.emailsErr != nil {
		return nil, f.emailsErr
	}
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if email, ok := f.emails[id]; ok {
			out[id] = email
		}
	}
	return out, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newAdminFixture() (AdminService, *memoryProfiles, *fakeIdentity, *recordingMailer) {
	profiles := newMemoryProfiles()
	idp := &fakeIdentity{emails: map[uuid.UUID]string{}}
	mail := &recordingMailer{}
	svc := NewAdminService(profiles, idp, mail, metrics.Nop{}, testConfig(), zap.NewNop())
	return svc, profiles, idp, mail
}

func TestAdminService_List(t *testing.T) {
	svc, profiles, idp, _ := newAdminFixture()
	a, b := uuid.New(), uuid.New()
	profiles.put(&entity.Profile{ID: a, IsInstructor: true})
	profiles.put(&entity.Profile{ID: b})
	idp.emails[a] = "a@example.com"

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]string{}
	for _, p := range list {
		byID[p.ID] = p.Email
	}
	assert.Equal(t, "a@example.com", byID[a.String()])
	assert.Equal(t, "", byID[b.String()])
}

func TestAdminService_ListEmailLookupFails(t *testing.T) {
	svc, profiles, idp, _ := newAdminFixture()
	profiles.put(&entity.Profile{ID: uuid.New()})
	idp.emailsErr = errors.New("forbidden")

	_, err := svc.List(context.Background())

	var upErr *UpstreamError
	assert.ErrorAs(t, err, &upErr)
}

func TestAdminService_Approve(t *testing.T) {
	svc, profiles, idp, mail := newAdminFixture()
	id := uuid.New()
	profiles.put(&entity.Profile{ID: id})
	idp.emails[id] = "new.instructor@example.com"

	res, err := svc.Approve(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, res.Profile.IsInstructor)
	assert.Equal(t, "approved", res.Profile.Status)
	assert.NotNil(t, res.Profile.UpdatedAt)
	assert.Empty(t, res.NotificationError)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"new.instructor@example.com"}, mail.sent[0].To)
}

func TestAdminService_ApproveKeepsChangeWhenEmailFails(t *testing.T) {
	svc, profiles, idp, mail := newAdminFixture()
	id := uuid.New()
	profiles.put(&entity.Profile{ID: id})
	idp.emails[id] = "new.instructor@example.com"
	mail.fail = func(mailer.Message) error { return errors.New("smtp down") }

	res, err := svc.Approve(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, res.Profile.IsInstructor)
	assert.Contains(t, res.NotificationError, "smtp down")

	stored, _ := profiles.FindByID(context.Background(), id)
	assert.True(t, stored.IsInstructor)
}

func TestAdminService_RevokeAndMissing(t *testing.T) {
	svc, profiles, _, mail := newAdminFixture()
	id := uuid.New()
	profiles.put(&entity.Profile{ID: id, IsInstructor: true})

	res, err := svc.Revoke(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, res.Profile.IsInstructor)
	assert.Empty(t, mail.sent)

	_, err = svc.Revoke(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminService_RejectRequiresConfirmation(t *testing.T) {
	svc, profiles, idp, _ := newAdminFixture()
	id := uuid.New()
	profiles.put(&entity.Profile{ID: id})

	err := svc.Reject(context.Background(), id, "yes")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, profiles.count())
	assert.Empty(t, idp.deleted)
}

func TestAdminService_Reject(t *testing.T) {
	svc, profiles, idp, _ := newAdminFixture()
	id := uuid.New()
	profiles.put(&entity.Profile{ID: id})

	require.NoError(t, svc.Reject(context.Background(), id, id.String()))
	assert.Equal(t, 0, profiles.count())
	assert.Equal(t, []uuid.UUID{id}, idp.deleted)
}

func TestAdminService_RejectIdentityFailureKeepsProfile(t *testing.T) {
	svc, profiles, idp, _ := newAdminFixture()
	id := uuid.New()
	profiles.put(&entity.Profile{ID: id})
	idp.deleteErr = errors.New("provider unavailable")

	err := svc.Reject(context.Background(), id, id.String())

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 1, profiles.count())
}

func TestAdminService_RejectAlreadyDeletedIdentity(t *testing.T) {
	svc, profiles, idp, _ := newAdminFixture()
	id := uuid.New()
	profiles.put(&entity.Profile{ID: id})
	idp.deleteErr = identity.ErrUserNotFound

	require.NoError(t, svc.Reject(context.Background(), id, id.String()))
	assert.Equal(t, 0, profiles.count())
}

func TestAdminService_RejectCommitFailureIsConsistencyError(t *testing.T) {
	svc, profiles, idp, _ := newAdminFixture()
	id := uuid.New()
	profiles.put(&entity.Profile{ID: id})
	profiles.deleteHook = func(ctx context.Context, hook func(context.Context) error) (bool, error) {
		if err := hook(ctx); err != nil {
			return false, &repository.HookError{Err: err}
		}
		return false, &repository.CommitError{Err: errors.New("connection lost")}
	}

	err := svc.Reject(context.Background(), id, id.String())

	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []uuid.UUID{id}, idp.deleted)
}

func TestAdminService_RejectUnknownProfile(t *testing.T) {
	svc, _, idp, _ := newAdminFixture()
	id := uuid.New()

	err := svc.Reject(context.Background(), id, id.String())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, idp.deleted)
}
