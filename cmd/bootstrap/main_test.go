package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"event-raffle/backend/internal/admin/domain"
	adminservice "event-raffle/backend/internal/admin/service"
)

func TestResolveCredentials(t *testing.T) {
	testCases := []struct {
		name               string
		user, pass         string
		args               []string
		env                string
		wantUser, wantPass string
	}{
		{"flags", "root", "secret123", nil, "", "root", "secret123"},
		{"positional", "", "", []string{" root ", "secret123"}, "", "root", "secret123"},
		{"env password", "root", "", nil, "fromenv12", "root", "fromenv12"},
		{"flag beats env", "root", "flagpass1", nil, "fromenv12", "root", "flagpass1"},
		{"missing", "", "", nil, "", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, p := resolveCredentials(tc.user, tc.pass, tc.args, tc.env)
			if u != tc.wantUser || p != tc.wantPass {
				t.Errorf("got %q/%q, want %q/%q", u, p, tc.wantUser, tc.wantPass)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if got := describe(adminservice.ErrAlreadyBootstrapped, "root"); !strings.HasPrefix(got, "A superadmin already exists.") {
		t.Errorf("already bootstrapped: %q", got)
	}
	if got := describe(fmt.Errorf("create: %w", domain.ErrDuplicateUsername), "root"); got != `Admin user "root" already exists.` {
		t.Errorf("duplicate: %q", got)
	}
	if got := describe(errors.New("boom"), "root"); got != "Failed to create admin user: boom" {
		t.Errorf("generic: %q", got)
	}
}
