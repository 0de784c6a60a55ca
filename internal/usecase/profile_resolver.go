package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instructor-portal/internal/data/entity"
	"instructor-portal/internal/data/repository"
	"instructor-portal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type ResolutionState string

const (
	StateResolvingIdentity ResolutionState = "RESOLVING_IDENTITY"
	StateResolvingProfile  ResolutionState = "RESOLVING_PROFILE"
	StateReady             ResolutionState = "READY"
	StateError             ResolutionState = "ERROR"
)

// Resolution is the identity -> profile result for one request.
type Resolution struct {
	State    ResolutionState
	Identity *entity.Identity
	Profile  *entity.Profile
	Err      error
}

// Loading stays true until the resolution is READY or ERROR.
func (r Resolution) Loading() bool {
	return r.State == StateResolvingIdentity || r.State == StateResolvingProfile
}

func (r Resolution) IsInstructor() bool {
	return r.Profile != nil && r.Profile.IsInstructor
}

// Subject converts the resolution into gate input.
func (r Resolution) Subject(forceAdmin bool) Subject {
	s := Subject{
		Resolving:     r.Loading(),
		HasIdentity:   r.Identity != nil,
		ProfileLoaded: r.Profile != nil,
		IsInstructor:  r.IsInstructor(),
		ForceAdmin:    forceAdmin,
	}
	if r.Identity != nil {
		s.Email = r.Identity.Email
	}
	return s
}

type ProfileResolver interface {
	Resolve(ctx context.Context, identity *entity.Identity) Resolution
}

type profileResolver struct {
	profiles repository.ProfileRepository
	metrics  metrics.Recorder
	timeout  time.Duration
	group    singleflight.Group
	log      *zap.Logger
}

func NewProfileResolver(profiles repository.ProfileRepository, recorder metrics.Recorder, timeout time.Duration, log *zap.Logger) ProfileResolver {
	return &profileResolver{
		profiles: profiles,
		metrics:  recorder,
		timeout:  timeout,
		log:      log.With(zap.String("service", "profile_resolver")),
	}
}

func (r *profileResolver) Resolve(ctx context.Context, identity *entity.Identity) Resolution {
	res := Resolution{State: StateResolvingIdentity}
	if identity == nil {
		res.State = StateReady
		return res
	}

	res.Identity = identity
	res.State = StateResolvingProfile

	// one fetch-or-create per identity id at a time; the flight outlives any
	// single caller so a cancelled waiter cannot fail the others
	ch := r.group.DoChan(identity.ID.String(), func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			flightCtx, cancel = context.WithTimeout(flightCtx, r.timeout)
			defer cancel()
		}
		return r.fetchOrCreate(flightCtx, identity)
	})

	var (
		v   interface{}
		err error
	)
	select {
	case out := <-ch:
		v, err = out.Val, out.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		r.log.Error("Failed to resolve profile",
			zap.Error(err),
			zap.String("identity_id", identity.ID.String()),
		)
		res.State = StateError
		res.Err = err
		return res
	}

	res.Profile = v.(*entity.Profile)
	res.State = StateReady
	return res
}

func (r *profileResolver) fetchOrCreate(ctx context.Context, identity *entity.Identity) (*entity.Profile, error) {
	profile, err := r.profiles.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if profile != nil {
		return profile, nil
	}

	created, err := r.profiles.CreateDefault(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	if created {
		r.metrics.RecordProfileCreated()
		r.log.Info("Profile created", zap.String("identity_id", identity.ID.String()))
	}

	profile, err = r.profiles.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch created profile: %w", err)
	}
	if profile == nil {
		return nil, errors.New("profile missing after create")
	}

	return profile, nil
}
