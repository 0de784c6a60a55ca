package usecase

import (
	"net/url"
	"strings"
)

type Requirement string

const (
	RequirePublic        Requirement = "PUBLIC"
	RequireAuthenticated Requirement = "AUTHENTICATED"
	RequireInstructor    Requirement = "INSTRUCTOR"
	RequireAdmin         Requirement = "ADMIN"
)

type Outcome string

const (
	OutcomeAllow    Outcome = "ALLOW"
	OutcomeRedirect Outcome = "REDIRECT"
	OutcomePending  Outcome = "PENDING"
)

// Subject is what the gate knows about the requester.
type Subject struct {
	Resolving     bool
	HasIdentity   bool
	ProfileLoaded bool
	IsInstructor  bool
	Email         string
	// ForceAdmin asks for the admin testing override; it is honoured only when the gate allows it
	ForceAdmin bool
}

type Decision struct {
	Outcome Outcome
	Target  string
	// Unauthenticated is set on redirects to the login page
	Unauthenticated bool
	// TestingMode marks an admin ALLOW granted through the override
	TestingMode bool
}

func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

// Gate decides whether a requester may reach a route. It holds no request state.
type Gate struct {
	admins          map[string]struct{}
	loginPath       string
	landingPath     string
	testingOverride bool
}

func NewGate(adminEmails []string, loginPath, landingPath string, testingOverride bool) *Gate {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = normalizeEmail(email)
		if email != "" {
			admins[email] = struct{}{}
		}
	}

	return &Gate{
		admins:          admins,
		loginPath:       loginPath,
		landingPath:     landingPath,
		testingOverride: testingOverride,
	}
}

// IsAdmin checks the allow-list, ignoring case and surrounding spaces.
func (g *Gate) IsAdmin(email string) bool {
	_, ok := g.admins[normalizeEmail(email)]
	return ok
}

// TestingOverrideEnabled reports whether ForceAdmin can ever be honoured.
func (g *Gate) TestingOverrideEnabled() bool {
	return g.testingOverride
}

// LoginTarget builds the login URL that returns to requestedPath afterwards.
func (g *Gate) LoginTarget(requestedPath string) string {
	if requestedPath == "" {
		return g.loginPath
	}
	return g.loginPath + "?next=" + url.QueryEscape(requestedPath)
}

// Decide maps a route requirement and subject to an outcome.
// OutcomePending is for asynchronous callers that decide while a resolve is
// still in flight; the HTTP middleware resolves first and never sees it.
func (g *Gate) Decide(req Requirement, requestedPath string, s Subject) Decision {
	if s.Resolving {
		return Decision{Outcome: OutcomePending}
	}

	switch req {
	case RequirePublic:
		return allow()

	case RequireAuthenticated:
		if !s.HasIdentity {
			return g.toLogin(requestedPath)
		}

	case RequireInstructor:
		if !s.HasIdentity {
			return g.toLogin(requestedPath)
		}
		if !s.ProfileLoaded || !s.IsInstructor {
			return g.toLanding()
		}

	case RequireAdmin:
		if !s.HasIdentity {
			return g.toLogin(requestedPath)
		}
		if !g.IsAdmin(s.Email) {
			if s.ForceAdmin && g.testingOverride {
				return Decision{Outcome: OutcomeAllow, TestingMode: true}
			}
			return g.toLanding()
		}
	}

	return allow()
}

func allow() Decision {
	return Decision{Outcome: OutcomeAllow}
}

func (g *Gate) toLogin(requestedPath string) Decision {
	return Decision{Outcome: OutcomeRedirect, Target: g.LoginTarget(requestedPath), Unauthenticated: true}
}

func (g *Gate) toLanding() Decision {
	return Decision{Outcome: OutcomeRedirect, Target: g.landingPath}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
