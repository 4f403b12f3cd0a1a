package permission

import (
	"testing"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

func TestEvaluator_MatchesPureFunctions(t *testing.T) {
	ev, err := NewEvaluator(0)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	u := identityWith([]domain.Feature{domain.FeatureListUsers})
	req := []domain.Feature{domain.FeatureListUsers, domain.FeatureCreateUser}

	if ev.HasAllPermissions(u, req) != HasAllPermissions(u, req) {
		t.Fatalf("all-of mismatch")
	}
	if ev.HasAnyPermission(u, req) != HasAnyPermission(u, req) {
		t.Fatalf("any-of mismatch")
	}
	if !ev.HasAllPermissions(nil, nil) || ev.HasAnyPermission(nil, nil) {
		t.Fatalf("vacuous semantics must hold for the evaluator too")
	}
	if !ev.HasPermission(u, domain.FeatureListUsers) {
		t.Fatalf("expected LIST_USERS")
	}
	if ev.Len() != 1 {
		t.Fatalf("expected one memoized identity, got %d", ev.Len())
	}
}

func TestEvaluator_InvalidateRole(t *testing.T) {
	ev, _ := NewEvaluator(8)
	holder := &domain.Identity{ID: 1, Roles: []domain.Role{{ID: 7, Features: []domain.Feature{domain.FeatureListRoles}}}}
	other := &domain.Identity{ID: 2, Roles: []domain.Role{{ID: 9, Features: []domain.Feature{domain.FeatureListUsers}}}}
	ev.Permissions(holder)
	ev.Permissions(other)

	if removed := ev.InvalidateRole(7); removed != 1 {
		t.Fatalf("expected 1 entry removed, got %d", removed)
	}
	if ev.Len() != 1 {
		t.Fatalf("expected other identity to stay cached, got %d entries", ev.Len())
	}

	ev.Forget(other)
	if ev.Len() != 0 {
		t.Fatalf("expected empty cache after Forget, got %d", ev.Len())
	}
}

func TestEvaluator_NewIdentityIsRecomputed(t *testing.T) {
	ev, _ := NewEvaluator(8)
	before := identityWith([]domain.Feature{domain.FeatureListUsers})
	if ev.HasPermission(before, domain.FeatureCreateRole) {
		t.Fatalf("unexpected CREATE_ROLE")
	}

	after := identityWith([]domain.Feature{domain.FeatureListUsers, domain.FeatureCreateRole})
	if !ev.HasPermission(after, domain.FeatureCreateRole) {
		t.Fatalf("refetched identity must reflect the new feature")
	}

	ev.Purge()
	if ev.Len() != 0 {
		t.Fatalf("expected empty cache after Purge")
	}
}
