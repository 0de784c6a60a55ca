package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_Decide(t *testing.T) {
	gate := NewGate([]string{" Owner@Example.com "}, "/login", "/account", true)

	tests := []struct {
		name    string
		req     Requirement
		subject Subject
		want    Decision
	}{
		{
			name:    "pending while resolving",
			req:     RequirePublic,
			subject: Subject{Resolving: true},
			want:    Decision{Outcome: OutcomePending},
		},
		{
			name: "public always allowed",
			req:  RequirePublic,
			want: Decision{Outcome: OutcomeAllow},
		},
		{
			name: "authenticated without identity goes to login",
			req:  RequireAuthenticated,
			want: Decision{Outcome: OutcomeRedirect, Target: "/login?next=%2Fportal", Unauthenticated: true},
		},
		{
			name:    "authenticated with identity",
			req:     RequireAuthenticated,
			subject: Subject{HasIdentity: true},
			want:    Decision{Outcome: OutcomeAllow},
		},
		{
			name: "instructor without identity goes to login",
			req:  RequireInstructor,
			want: Decision{Outcome: OutcomeRedirect, Target: "/login?next=%2Fportal", Unauthenticated: true},
		},
		{
			name:    "pending profile is sent to landing",
			req:     RequireInstructor,
			subject: Subject{HasIdentity: true, ProfileLoaded: true},
			want:    Decision{Outcome: OutcomeRedirect, Target: "/account"},
		},
		{
			name:    "approved instructor",
			req:     RequireInstructor,
			subject: Subject{HasIdentity: true, ProfileLoaded: true, IsInstructor: true},
			want:    Decision{Outcome: OutcomeAllow},
		},
		{
			name:    "admin on allow-list, case-insensitive",
			req:     RequireAdmin,
			subject: Subject{HasIdentity: true, ProfileLoaded: true, Email: "owner@EXAMPLE.com"},
			want:    Decision{Outcome: OutcomeAllow},
		},
		{
			name:    "non-admin sent to landing",
			req:     RequireAdmin,
			subject: Subject{HasIdentity: true, ProfileLoaded: true, Email: "someone@example.com"},
			want:    Decision{Outcome: OutcomeRedirect, Target: "/account"},
		},
		{
			name:    "force admin allows in testing mode",
			req:     RequireAdmin,
			subject: Subject{HasIdentity: true, ProfileLoaded: true, Email: "someone@example.com", ForceAdmin: true},
			want:    Decision{Outcome: OutcomeAllow, TestingMode: true},
		},
		{
			name:    "admin without identity goes to login",
			req:     RequireAdmin,
			subject: Subject{ForceAdmin: true},
			want:    Decision{Outcome: OutcomeRedirect, Target: "/login?next=%2Fportal", Unauthenticated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.Decide(tt.req, "/portal", tt.subject)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGate_ForceAdminIgnoredWithoutOverride(t *testing.T) {
	gate := NewGate([]string{"owner@example.com"}, "/login", "/account", false)

	got := gate.Decide(RequireAdmin, "/admin", Subject{
		HasIdentity:   true,
		ProfileLoaded: true,
		Email:         "someone@example.com",
		ForceAdmin:    true,
	})

	assert.Equal(t, OutcomeRedirect, got.Outcome)
	assert.Equal(t, "/account", got.Target)
	assert.False(t, got.TestingMode)
}

func TestGate_LoginTarget(t *testing.T) {
	gate := NewGate(nil, "/login", "/account", false)

	assert.Equal(t, "/login", gate.LoginTarget(""))
	assert.Equal(t, "/login?next=%2Fadmin%3Ftab%3D1", gate.LoginTarget("/admin?tab=1"))
}
