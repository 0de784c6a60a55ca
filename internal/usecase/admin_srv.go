package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"instructor-portal/internal/data/entity"
	"instructor-portal/internal/data/repository"
	"instructor-portal/internal/dto/response"
	"instructor-portal/pkg/identity"
	"instructor-portal/pkg/mailer"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminService interface {
	List(ctx context.Context) ([]response.AdminProfileResponse, error)
	Approve(ctx context.Context, id uuid.UUID) (*response.ApprovalResponse, error)
	Revoke(ctx context.Context, id uuid.UUID) (*response.ApprovalResponse, error)
	// Reject deletes the profile and its identity. confirmation must equal the profile id.
	Reject(ctx context.Context, id uuid.UUID, confirmation string) error
}

type adminService struct {
	profiles repository.ProfileRepository
	identity IdentityProvider
	mailer   Mailer
	metrics  metrics.Recorder
	config   *utils.Config
	now      func() time.Time
	log      *zap.Logger
}

func NewAdminService(
	profiles repository.ProfileRepository,
	identity IdentityProvider,
	mailer Mailer,
	recorder metrics.Recorder,
	config *utils.Config,
	log *zap.Logger,
) AdminService {
	return &adminService{
		profiles: profiles,
		identity: identity,
		mailer:   mailer,
		metrics:  recorder,
		config:   config,
		now:      time.Now,
		log:      log.With(zap.String("service", "admin")),
	}
}

func (s *adminService) List(ctx context.Context) ([]response.AdminProfileResponse, error) {
	profiles, err := s.profiles.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}

	emails := map[uuid.UUID]string{}
	if len(ids) > 0 {
		emails, err = s.identity.GetUserEmails(ctx, ids)
		if err != nil {
			s.log.Error("Failed to look up profile emails", zap.Error(err), zap.Int("profiles", len(ids)))
			return nil, newUpstreamError("identity", "could not load account emails", err)
		}
	}

	out := make([]response.AdminProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, response.AdminProfileToResponse(p, emails[p.ID]))
	}
	return out, nil
}

func (s *adminService) Approve(ctx context.Context, id uuid.UUID) (*response.ApprovalResponse, error) {
	profile, err := s.setInstructor(ctx, id, true)
	if err != nil {
		return nil, err
	}

	res := &response.ApprovalResponse{}

	// the approval stands even if the notice cannot be delivered
	email, notifyErr := s.notifyApproval(ctx, id)
	if notifyErr != nil {
		s.log.Warn("Approval applied but notification failed",
			zap.Error(notifyErr),
			zap.String("profile_id", id.String()),
		)
		res.NotificationError = notifyErr.Error()
	}

	res.Profile = response.AdminProfileToResponse(profile, email)
	s.log.Info("Instructor approved", zap.String("profile_id", id.String()))
	return res, nil
}

func (s *adminService) Revoke(ctx context.Context, id uuid.UUID) (*response.ApprovalResponse, error) {
	profile, err := s.setInstructor(ctx, id, false)
	if err != nil {
		return nil, err
	}

	s.log.Info("Instructor revoked", zap.String("profile_id", id.String()))
	return &response.ApprovalResponse{Profile: response.AdminProfileToResponse(profile, "")}, nil
}

func (s *adminService) Reject(ctx context.Context, id uuid.UUID, confirmation string) error {
	if confirmation != id.String() {
		return newValidationError("confirmation does not match the profile id", map[string]string{"confirm": "must equal the profile id"})
	}

	deleted, err := s.profiles.DeleteWithHook(ctx, id, func(ctx context.Context) error {
		err := s.identity.DeleteUser(ctx, id)
		if errors.Is(err, identity.ErrUserNotFound) {
			// already gone at the provider, finishing the local delete is safe
			return nil
		}
		return err
	})

	var hookErr *repository.HookError
	var commitErr *repository.CommitError
	switch {
	case errors.As(err, &hookErr):
		s.log.Error("Identity deletion failed, profile kept", zap.Error(err), zap.String("profile_id", id.String()))
		return newUpstreamError("identity", "could not delete the account, nothing was changed", hookErr.Err)

	case errors.As(err, &commitErr):
		s.log.Error("Identity deleted but profile delete did not commit",
			zap.Error(err),
			zap.String("profile_id", id.String()),
		)
		return &ConsistencyError{
			Message: "account was deleted but its profile row remains; delete it manually",
			Err:     commitErr.Err,
		}

	case err != nil:
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if !deleted {
		return ErrNotFound
	}

	s.log.Info("Instructor rejected", zap.String("profile_id", id.String()))
	return nil
}

func (s *adminService) setInstructor(ctx context.Context, id uuid.UUID, value bool) (*entity.Profile, error) {
	profile, err := s.profiles.SetInstructor(ctx, id, value, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

func (s *adminService) notifyApproval(ctx context.Context, id uuid.UUID) (string, error) {
	emails, err := s.identity.GetUserEmails(ctx, []uuid.UUID{id})
	if err != nil {
		return "", fmt.Errorf("look up email: %w", err)
	}

	email := emails[id]
	if email == "" {
		return "", errors.New("no email on record for this account")
	}

	err = s.mailer.Send(ctx, mailer.Message{
		From:    s.config.Email.From,
		To:      []string{email},
		Subject: "Your instructor account is approved",
		HTML: fmt.Sprintf(
			"<p>Your instructor account for %s has been approved.</p><p>Sign in at <a href=\"%s\">%s</a> to access instructor resources and eCards.</p>",
			html.EscapeString(email),
			html.EscapeString(s.config.App.BaseURL),
			html.EscapeString(s.config.App.BaseURL),
		),
	})
	s.metrics.RecordNotification("approval", err)
	if err != nil {
		return email, fmt.Errorf("send approval email: %w", err)
	}
	return email, nil
}
