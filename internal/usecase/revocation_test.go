package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/nirik/fas/internal/domain"
)

func TestRevocationReject(t *testing.T) {
	f := newFixture()
	alice := f.store.addPerson("alice", completeProfile)
	g1 := f.store.addGroup("g1", &f.cla)
	g2 := f.store.addGroup("g2", &g1)
	h := f.store.addGroup("h", nil)
	for _, g := range []domain.Group{f.cla, g1, g2, h} {
		f.store.approve(alice, g)
	}

	result, err := f.revoke.Reject(context.Background(), f.admin.ID, "alice")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if result.Outcome.Kind != domain.OutcomeSuccess {
		t.Fatalf("unexpected outcome %s", result.Outcome.Kind)
	}
	slices.Sort(result.Revoked)
	if !slices.Equal(result.Revoked, []string{"cla_done", "g1", "g2"}) {
		t.Fatalf("unexpected revoked groups %v", result.Revoked)
	}

	for _, g := range []domain.Group{f.cla, g1, g2} {
		if m, _ := f.store.membership(alice, g); m.Approved() {
			t.Fatalf("expected %s to be unapproved", g.Name)
		}
	}
	if m, _ := f.store.membership(alice, h); !m.Approved() {
		t.Fatalf("independent group h must stay approved")
	}

	entries := f.store.auditEntries()
	if len(entries) != 1 || entries[0].Description != domain.AuditRevokedCla {
		t.Fatalf("unexpected audit log %+v", entries)
	}
	if entries[0].AuthorID != f.admin.ID || entries[0].TargetID == nil || *entries[0].TargetID != alice.ID {
		t.Fatalf("unexpected audit entry %+v", entries[0])
	}

	if len(f.notifier.sent) != 1 || f.notifier.sent[0].To != alice.Email || f.notifier.sent[0].Subject != "ICLA Revoked" {
		t.Fatalf("unexpected notifications %+v", f.notifier.sent)
	}
	if !f.notifier.sent[0].At.Equal(entries[0].ChangeTime) {
		t.Fatalf("notification must carry the time of the revocation")
	}
}

func TestRevocationRejectNotAuthorized(t *testing.T) {
	f := newFixture()
	alice := f.store.addPerson("alice", completeProfile)
	mallory := f.store.addPerson("mallory", completeProfile)
	f.store.approve(alice, f.cla)

	result, err := f.revoke.Reject(context.Background(), mallory.ID, "alice")
	if !errors.Is(err, domain.ErrNotAuthorized) || result.Outcome.Kind != domain.OutcomeNotAuthorized {
		t.Fatalf("expected not authorized, got %+v %v", result, err)
	}
	if m, _ := f.store.membership(alice, f.cla); !m.Approved() {
		t.Fatalf("membership must be untouched")
	}

	// unknown actors are refused the same way
	_, err = f.revoke.Reject(context.Background(), 9999, "alice")
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected not authorized, got %v", err)
	}
}

func TestRevocationRejectInactiveAdmin(t *testing.T) {
	f := newFixture()
	alice := f.store.addPerson("alice", completeProfile)
	f.store.approve(alice, f.cla)

	f.store.mu.Lock()
	admin := f.store.persons[f.admin.ID]
	admin.Active = false
	f.store.persons[f.admin.ID] = admin
	f.store.mu.Unlock()

	_, err := f.revoke.Reject(context.Background(), f.admin.ID, "alice")
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected not authorized, got %v", err)
	}
}

func TestRevocationRejectNoop(t *testing.T) {
	f := newFixture()
	f.store.addPerson("alice", completeProfile)

	result, err := f.revoke.Reject(context.Background(), f.admin.ID, "alice")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if result.Outcome.Kind != domain.OutcomeSuccess || len(result.Revoked) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(f.store.auditEntries()) != 0 || len(f.notifier.sent) != 0 {
		t.Fatalf("a no-op must not audit or mail")
	}
}

func TestRevocationRejectUnknownTarget(t *testing.T) {
	f := newFixture()

	result, err := f.revoke.Reject(context.Background(), f.admin.ID, "nobody")
	if !errors.Is(err, domain.ErrNotFound) || result.Outcome.Kind != domain.OutcomeNotFound {
		t.Fatalf("expected not found, got %+v %v", result, err)
	}
}

func TestRevocationRejectCycle(t *testing.T) {
	f := newFixture()
	alice := f.store.addPerson("alice", completeProfile)
	a := f.store.addGroup("a", nil)
	b := f.store.addGroup("b", &a)
	f.store.mu.Lock()
	a.PrerequisiteID = &b.ID
	f.store.groups[a.ID] = a
	f.store.mu.Unlock()

	f.store.approve(alice, f.cla)
	f.store.approve(alice, a)

	result, err := f.revoke.Reject(context.Background(), f.admin.ID, "alice")
	if !errors.Is(err, domain.ErrGraphCycleDetected) || result.Outcome.Kind != domain.OutcomeGraphCycleDetected {
		t.Fatalf("expected cycle, got %+v %v", result, err)
	}
	if m, _ := f.store.membership(alice, f.cla); !m.Approved() {
		t.Fatalf("nothing may change when the forest is malformed")
	}
	if len(f.store.auditEntries()) != 0 {
		t.Fatalf("no audit entry on failure")
	}
}

func TestRevocationRejectRollback(t *testing.T) {
	f := newFixture()
	alice := f.store.addPerson("alice", completeProfile)
	f.store.approve(alice, f.cla)
	f.store.failAudit = errors.New("disk full")

	result, err := f.revoke.Reject(context.Background(), f.admin.ID, "alice")
	if !errors.Is(err, domain.ErrPersistence) || result.Outcome.Kind != domain.OutcomePersistenceError {
		t.Fatalf("expected persistence error, got %+v %v", result, err)
	}
	if m, _ := f.store.membership(alice, f.cla); !m.Approved() {
		t.Fatalf("unapprove must be rolled back")
	}
}
