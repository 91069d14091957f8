// Package scopepolicy decides whether an actor may read, upload, or
// delete a scoped resource (report, project document, learning item).
//
// Authorization rules:
//   - personal resources are visible and deletable only by their owner;
//     anyone may upload into their own personal scope
//   - team/project resources are readable by any member of the
//     collective, provided the resource is public
//   - uploading into a team requires the owner or admin role; into a
//     project the owner or manager role
//   - deletion is uploader-only in every scope, regardless of role
//
// Upload rights follow a privilege tier while delete rights follow
// strict ownership. These are independent axes and must not be
// conflated.
//
// Denials are ordinary values, never errors: the error return is
// reserved for record-store failures during role lookup.
package scopepolicy

import (
	"context"

	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Operation is the action being authorized.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpload Operation = "upload"
	OpDelete Operation = "delete"
)

// DenyReason tags a negative decision for logging and user messages.
type DenyReason string

const (
	ReasonUnauthenticated  DenyReason = "unauthenticated"
	ReasonNotAMember       DenyReason = "not-a-member"
	ReasonInsufficientRole DenyReason = "insufficient-role"
	ReasonNotOwner         DenyReason = "not-owner"
	ReasonNotPublic        DenyReason = "not-public"

	// ReasonInvalidOwner and ReasonInvalidScope mark integrity
	// violations (a resource with no owner, a team resource with no
	// team ID). They must be logged distinctly from ordinary denials;
	// they are never coerced to ALLOW.
	ReasonInvalidOwner DenyReason = "invalid-owner"
	ReasonInvalidScope DenyReason = "invalid-scope"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason // set only when Allowed is false
}

// Allow is the positive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a negative decision with the given reason.
func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

// Integrity reports whether the denial marks an invariant violation
// rather than an ordinary permission miss. Callers log these at Error
// level.
func (d Decision) Integrity() bool {
	return d.Reason == ReasonInvalidOwner || d.Reason == ReasonInvalidScope
}

// Message returns a user-facing explanation for a denial.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonUnauthenticated:
		return "Please sign in to continue."
	case ReasonNotAMember:
		return "You don't have access to this team or project."
	case ReasonInsufficientRole:
		return "Your role doesn't allow uploading here."
	case ReasonNotOwner:
		return "Only the uploader can do that."
	case ReasonNotPublic:
		return "This file isn't shared."
	default:
		return "You don't have permission to do that."
	}
}

// ResourceRef is the minimal projection of a resource needed for an
// authorization decision. For upload checks OwnerID is the actor and
// IsPublic the intended flag.
type ResourceRef struct {
	Scope    models.Scope
	ScopeID  *primitive.ObjectID
	OwnerID  primitive.ObjectID
	IsPublic bool
}

// Ref builds a ResourceRef from an embedded StoredFile.
func Ref(f models.StoredFile) ResourceRef {
	return ResourceRef{
		Scope:    f.Scope,
		ScopeID:  f.ScopeID,
		OwnerID:  f.OwnerID,
		IsPublic: f.IsPublic,
	}
}

// RoleFinder is the membership oracle: an exact (actor, collective)
// lookup. found=false is a valid negative result meaning "not a
// member", not an error. Implemented by the memberships store.
type RoleFinder interface {
	TeamRole(ctx context.Context, teamID, userID primitive.ObjectID) (role models.TeamRole, found bool, err error)
	ProjectRole(ctx context.Context, projectID, userID primitive.ObjectID) (role models.ProjectRole, found bool, err error)
}

// Authorize evaluates the decision table for one (actor, resource,
// operation) triple. It consults the role finder only for team and
// project scopes; personal decisions are pure ownership checks.
func Authorize(ctx context.Context, roles RoleFinder, actorID primitive.ObjectID, ref ResourceRef, op Operation) (Decision, error) {
	if actorID.IsZero() {
		return Deny(ReasonUnauthenticated), nil
	}

	switch ref.Scope {
	case models.ScopePersonal:
		return authorizePersonal(actorID, ref, op), nil
	case models.ScopeTeam:
		return authorizeTeam(ctx, roles, actorID, ref, op)
	case models.ScopeProject:
		return authorizeProject(ctx, roles, actorID, ref, op)
	default:
		return Deny(ReasonInvalidScope), nil
	}
}

func authorizePersonal(actorID primitive.ObjectID, ref ResourceRef, op Operation) Decision {
	if op == OpUpload {
		// Anyone may upload into their own personal scope.
		return Allow()
	}
	if ref.OwnerID.IsZero() {
		return Deny(ReasonInvalidOwner)
	}
	if actorID == ref.OwnerID {
		return Allow()
	}
	return Deny(ReasonNotOwner)
}

func authorizeTeam(ctx context.Context, roles RoleFinder, actorID primitive.ObjectID, ref ResourceRef, op Operation) (Decision, error) {
	if ref.ScopeID == nil || ref.ScopeID.IsZero() {
		return Deny(ReasonInvalidScope), nil
	}

	// Delete never consults roles: uploader-only in every scope.
	if op == OpDelete {
		return ownerOnly(actorID, ref), nil
	}

	role, found, err := roles.TeamRole(ctx, *ref.ScopeID, actorID)
	if err != nil {
		return Decision{}, err
	}
	if !found {
		return Deny(ReasonNotAMember), nil
	}

	switch op {
	case OpRead:
		if !ref.IsPublic {
			return Deny(ReasonNotPublic), nil
		}
		if ref.OwnerID.IsZero() {
			return Deny(ReasonInvalidOwner), nil
		}
		return Allow(), nil
	case OpUpload:
		if role == models.TeamOwner || role == models.TeamAdmin {
			return Allow(), nil
		}
		return Deny(ReasonInsufficientRole), nil
	default:
		return Deny(ReasonInvalidScope), nil
	}
}

func authorizeProject(ctx context.Context, roles RoleFinder, actorID primitive.ObjectID, ref ResourceRef, op Operation) (Decision, error) {
	if ref.ScopeID == nil || ref.ScopeID.IsZero() {
		return Deny(ReasonInvalidScope), nil
	}

	if op == OpDelete {
		return ownerOnly(actorID, ref), nil
	}

	role, found, err := roles.ProjectRole(ctx, *ref.ScopeID, actorID)
	if err != nil {
		return Decision{}, err
	}
	if !found {
		return Deny(ReasonNotAMember), nil
	}

	switch op {
	case OpRead:
		if !ref.IsPublic {
			return Deny(ReasonNotPublic), nil
		}
		if ref.OwnerID.IsZero() {
			return Deny(ReasonInvalidOwner), nil
		}
		return Allow(), nil
	case OpUpload:
		if role == models.ProjectOwner || role == models.ProjectManager {
			return Allow(), nil
		}
		return Deny(ReasonInsufficientRole), nil
	default:
		return Deny(ReasonInvalidScope), nil
	}
}

func ownerOnly(actorID primitive.ObjectID, ref ResourceRef) Decision {
	if ref.OwnerID.IsZero() {
		return Deny(ReasonInvalidOwner)
	}
	if actorID == ref.OwnerID {
		return Allow()
	}
	return Deny(ReasonNotOwner)
}
