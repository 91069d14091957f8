package scopepolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/takimhub/takimhub/internal/app/policy/scopepolicy"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRoles is an in-memory RoleFinder.
type fakeRoles struct {
	teamRoles    map[[2]primitive.ObjectID]models.TeamRole
	projectRoles map[[2]primitive.ObjectID]models.ProjectRole
	err          error
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{
		teamRoles:    map[[2]primitive.ObjectID]models.TeamRole{},
		projectRoles: map[[2]primitive.ObjectID]models.ProjectRole{},
	}
}

func (f *fakeRoles) TeamRole(_ context.Context, teamID, userID primitive.ObjectID) (models.TeamRole, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	r, ok := f.teamRoles[[2]primitive.ObjectID{teamID, userID}]
	return r, ok, nil
}

func (f *fakeRoles) ProjectRole(_ context.Context, projectID, userID primitive.ObjectID) (models.ProjectRole, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	r, ok := f.projectRoles[[2]primitive.ObjectID{projectID, userID}]
	return r, ok, nil
}

func personalRef(owner primitive.ObjectID) scopepolicy.ResourceRef {
	return scopepolicy.ResourceRef{Scope: models.ScopePersonal, OwnerID: owner, IsPublic: false}
}

func teamRef(teamID, owner primitive.ObjectID, public bool) scopepolicy.ResourceRef {
	return scopepolicy.ResourceRef{Scope: models.ScopeTeam, ScopeID: &teamID, OwnerID: owner, IsPublic: public}
}

func projectRef(projectID, owner primitive.ObjectID, public bool) scopepolicy.ResourceRef {
	return scopepolicy.ResourceRef{Scope: models.ScopeProject, ScopeID: &projectID, OwnerID: owner, IsPublic: public}
}

func mustDecide(t *testing.T, roles scopepolicy.RoleFinder, actor primitive.ObjectID, ref scopepolicy.ResourceRef, op scopepolicy.Operation) scopepolicy.Decision {
	t.Helper()
	dec, err := scopepolicy.Authorize(context.Background(), roles, actor, ref, op)
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	return dec
}

func TestPersonal_ReadOwnerOnly(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	roles := newFakeRoles()

	if dec := mustDecide(t, roles, owner, personalRef(owner), scopepolicy.OpRead); !dec.Allowed {
		t.Errorf("owner read: denied with %q", dec.Reason)
	}
	dec := mustDecide(t, roles, other, personalRef(owner), scopepolicy.OpRead)
	if dec.Allowed {
		t.Error("non-owner read: expected deny")
	}
	if dec.Reason != scopepolicy.ReasonNotOwner {
		t.Errorf("reason: got %q, want %q", dec.Reason, scopepolicy.ReasonNotOwner)
	}
}

func TestPersonal_UploadAlwaysAllowed(t *testing.T) {
	actor := primitive.NewObjectID()
	dec := mustDecide(t, newFakeRoles(), actor, personalRef(actor), scopepolicy.OpUpload)
	if !dec.Allowed {
		t.Errorf("personal upload: denied with %q", dec.Reason)
	}
}

func TestPersonal_DeleteOwnerOnly(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	roles := newFakeRoles()

	if dec := mustDecide(t, roles, owner, personalRef(owner), scopepolicy.OpDelete); !dec.Allowed {
		t.Errorf("owner delete: denied with %q", dec.Reason)
	}
	dec := mustDecide(t, roles, other, personalRef(owner), scopepolicy.OpDelete)
	if dec.Allowed || dec.Reason != scopepolicy.ReasonNotOwner {
		t.Errorf("non-owner delete: got (%v, %q), want deny not-owner", dec.Allowed, dec.Reason)
	}
}

func TestUnauthenticated_AlwaysDenied(t *testing.T) {
	owner := primitive.NewObjectID()
	for _, op := range []scopepolicy.Operation{scopepolicy.OpRead, scopepolicy.OpUpload, scopepolicy.OpDelete} {
		dec := mustDecide(t, newFakeRoles(), primitive.NilObjectID, personalRef(owner), op)
		if dec.Allowed {
			t.Errorf("%s: expected deny for zero actor", op)
		}
		if dec.Reason != scopepolicy.ReasonUnauthenticated {
			t.Errorf("%s: reason %q, want unauthenticated", op, dec.Reason)
		}
	}
}

func TestTeam_ReadRequiresMembershipAndPublic(t *testing.T) {
	teamID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	roles := newFakeRoles()
	roles.teamRoles[[2]primitive.ObjectID{teamID, member}] = models.TeamMember

	if dec := mustDecide(t, roles, member, teamRef(teamID, owner, true), scopepolicy.OpRead); !dec.Allowed {
		t.Errorf("member read public: denied with %q", dec.Reason)
	}

	dec := mustDecide(t, roles, outsider, teamRef(teamID, owner, true), scopepolicy.OpRead)
	if dec.Allowed || dec.Reason != scopepolicy.ReasonNotAMember {
		t.Errorf("outsider read: got (%v, %q), want deny not-a-member", dec.Allowed, dec.Reason)
	}

	dec = mustDecide(t, roles, member, teamRef(teamID, owner, false), scopepolicy.OpRead)
	if dec.Allowed || dec.Reason != scopepolicy.ReasonNotPublic {
		t.Errorf("member read private: got (%v, %q), want deny not-public", dec.Allowed, dec.Reason)
	}
}

func TestTeam_UploadNeedsOwnerOrAdmin(t *testing.T) {
	teamID := primitive.NewObjectID()
	u1 := primitive.NewObjectID() // owner
	u2 := primitive.NewObjectID() // member
	u3 := primitive.NewObjectID() // admin

	roles := newFakeRoles()
	roles.teamRoles[[2]primitive.ObjectID{teamID, u1}] = models.TeamOwner
	roles.teamRoles[[2]primitive.ObjectID{teamID, u2}] = models.TeamMember
	roles.teamRoles[[2]primitive.ObjectID{teamID, u3}] = models.TeamAdmin

	ref := teamRef(teamID, primitive.NilObjectID, true)

	if dec := mustDecide(t, roles, u1, ref, scopepolicy.OpUpload); !dec.Allowed {
		t.Errorf("owner upload: denied with %q", dec.Reason)
	}
	if dec := mustDecide(t, roles, u3, ref, scopepolicy.OpUpload); !dec.Allowed {
		t.Errorf("admin upload: denied with %q", dec.Reason)
	}
	dec := mustDecide(t, roles, u2, ref, scopepolicy.OpUpload)
	if dec.Allowed || dec.Reason != scopepolicy.ReasonInsufficientRole {
		t.Errorf("member upload: got (%v, %q), want deny insufficient-role", dec.Allowed, dec.Reason)
	}
}

func TestTeam_DeleteIgnoresRole(t *testing.T) {
	teamID := primitive.NewObjectID()
	uploader := primitive.NewObjectID()
	admin := primitive.NewObjectID()

	roles := newFakeRoles()
	roles.teamRoles[[2]primitive.ObjectID{teamID, uploader}] = models.TeamMember
	roles.teamRoles[[2]primitive.ObjectID{teamID, admin}] = models.TeamAdmin

	ref := teamRef(teamID, uploader, true)

	if dec := mustDecide(t, roles, uploader, ref, scopepolicy.OpDelete); !dec.Allowed {
		t.Errorf("uploader delete: denied with %q", dec.Reason)
	}
	dec := mustDecide(t, roles, admin, ref, scopepolicy.OpDelete)
	if dec.Allowed || dec.Reason != scopepolicy.ReasonNotOwner {
		t.Errorf("admin delete of someone else's file: got (%v, %q), want deny not-owner", dec.Allowed, dec.Reason)
	}
}

func TestProject_UploadNeedsOwnerOrManager(t *testing.T) {
	projectID := primitive.NewObjectID()
	manager := primitive.NewObjectID()
	contributor := primitive.NewObjectID()
	viewer := primitive.NewObjectID()

	roles := newFakeRoles()
	roles.projectRoles[[2]primitive.ObjectID{projectID, manager}] = models.ProjectManager
	roles.projectRoles[[2]primitive.ObjectID{projectID, contributor}] = models.ProjectContributor
	roles.projectRoles[[2]primitive.ObjectID{projectID, viewer}] = models.ProjectViewer

	ref := projectRef(projectID, primitive.NilObjectID, true)

	if dec := mustDecide(t, roles, manager, ref, scopepolicy.OpUpload); !dec.Allowed {
		t.Errorf("manager upload: denied with %q", dec.Reason)
	}
	for name, actor := range map[string]primitive.ObjectID{"contributor": contributor, "viewer": viewer} {
		dec := mustDecide(t, roles, actor, ref, scopepolicy.OpUpload)
		if dec.Allowed || dec.Reason != scopepolicy.ReasonInsufficientRole {
			t.Errorf("%s upload: got (%v, %q), want deny insufficient-role", name, dec.Allowed, dec.Reason)
		}
	}
}

func TestProject_ContributorCannotDeleteManagersFile(t *testing.T) {
	projectID := primitive.NewObjectID()
	manager := primitive.NewObjectID()
	contributor := primitive.NewObjectID()

	roles := newFakeRoles()
	roles.projectRoles[[2]primitive.ObjectID{projectID, manager}] = models.ProjectManager
	roles.projectRoles[[2]primitive.ObjectID{projectID, contributor}] = models.ProjectContributor

	dec := mustDecide(t, roles, contributor, projectRef(projectID, manager, true), scopepolicy.OpDelete)
	if dec.Allowed || dec.Reason != scopepolicy.ReasonNotOwner {
		t.Errorf("got (%v, %q), want deny not-owner", dec.Allowed, dec.Reason)
	}
}

func TestMissingOwner_IsIntegrityDenial(t *testing.T) {
	teamID := primitive.NewObjectID()
	member := primitive.NewObjectID()

	roles := newFakeRoles()
	roles.teamRoles[[2]primitive.ObjectID{teamID, member}] = models.TeamOwner

	for _, op := range []scopepolicy.Operation{scopepolicy.OpRead, scopepolicy.OpDelete} {
		dec := mustDecide(t, roles, member, teamRef(teamID, primitive.NilObjectID, true), op)
		if dec.Allowed {
			t.Errorf("%s with missing owner: expected deny", op)
		}
		if dec.Reason != scopepolicy.ReasonInvalidOwner {
			t.Errorf("%s: reason %q, want invalid-owner", op, dec.Reason)
		}
		if !dec.Integrity() {
			t.Errorf("%s: expected Integrity()==true", op)
		}
	}
}

func TestTeamScope_MissingScopeID(t *testing.T) {
	actor := primitive.NewObjectID()
	ref := scopepolicy.ResourceRef{Scope: models.ScopeTeam, OwnerID: actor, IsPublic: true}
	dec := mustDecide(t, newFakeRoles(), actor, ref, scopepolicy.OpRead)
	if dec.Allowed || dec.Reason != scopepolicy.ReasonInvalidScope {
		t.Errorf("got (%v, %q), want deny invalid-scope", dec.Allowed, dec.Reason)
	}
}

func TestUnknownScope_Denied(t *testing.T) {
	actor := primitive.NewObjectID()
	ref := scopepolicy.ResourceRef{Scope: "galaxy", OwnerID: actor}
	dec := mustDecide(t, newFakeRoles(), actor, ref, scopepolicy.OpRead)
	if dec.Allowed || dec.Reason != scopepolicy.ReasonInvalidScope {
		t.Errorf("got (%v, %q), want deny invalid-scope", dec.Allowed, dec.Reason)
	}
}

func TestRoleLookupError_Propagates(t *testing.T) {
	teamID := primitive.NewObjectID()
	actor := primitive.NewObjectID()
	roles := newFakeRoles()
	roles.err = errors.New("connection reset")

	_, err := scopepolicy.Authorize(context.Background(), roles, actor,
		teamRef(teamID, actor, true), scopepolicy.OpRead)
	if err == nil {
		t.Fatal("expected role lookup error to propagate")
	}
}

func TestDeleteDoesNotConsultRoles(t *testing.T) {
	// A failing role finder must not matter for delete: the decision
	// is pure ownership.
	teamID := primitive.NewObjectID()
	uploader := primitive.NewObjectID()
	roles := newFakeRoles()
	roles.err = errors.New("oracle down")

	dec, err := scopepolicy.Authorize(context.Background(), roles, uploader,
		teamRef(teamID, uploader, true), scopepolicy.OpDelete)
	if err != nil {
		t.Fatalf("delete consulted the role finder: %v", err)
	}
	if !dec.Allowed {
		t.Errorf("uploader delete: denied with %q", dec.Reason)
	}
}
