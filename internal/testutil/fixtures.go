package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile creates a test profile with the given name and email.
func (f *Fixtures) CreateProfile(ctx context.Context, fullName, email string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:         primitive.NewObjectID(),
		Email:      email,
		EmailCI:    text.Fold(email),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		AuthMethod: "password",
		TotalXP:    0,
		Level:      1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateTeam creates a test team owned by ownerID, including the
// owner's membership row.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, ownerID primitive.ObjectID) models.Team {
	f.t.Helper()

	team := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      text.Fold(name),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	f.AddTeamMember(ctx, team.ID, ownerID, models.TeamOwner)
	return team
}

// AddTeamMember inserts a team membership row.
func (f *Fixtures) AddTeamMember(ctx context.Context, teamID, userID primitive.ObjectID, role models.TeamRole) {
	f.t.Helper()

	_, err := f.db.Collection("team_members").InsertOne(ctx, models.TeamMembership{
		ID:       primitive.NewObjectID(),
		TeamID:   teamID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		f.t.Fatalf("failed to create test team membership: %v", err)
	}
}

// CreateProject creates a test project owned by ownerID, including the
// owner's membership row. teamID may be nil for a standalone project.
func (f *Fixtures) CreateProject(ctx context.Context, name string, ownerID primitive.ObjectID, teamID *primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		TeamID:    teamID,
		OwnerID:   ownerID,
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      text.Fold(name),
		Status:    models.ProjectPlanning,
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	f.AddProjectMember(ctx, p.ID, ownerID, models.ProjectOwner)
	return p
}

// AddProjectMember inserts a project membership row.
func (f *Fixtures) AddProjectMember(ctx context.Context, projectID, userID primitive.ObjectID, role models.ProjectRole) {
	f.t.Helper()

	_, err := f.db.Collection("project_members").InsertOne(ctx, models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		f.t.Fatalf("failed to create test project membership: %v", err)
	}
}

// CreateReport creates a test report record in the given scope.
// scopeID may be nil for personal reports.
func (f *Fixtures) CreateReport(ctx context.Context, title string, scope models.Scope, scopeID *primitive.ObjectID, ownerID primitive.ObjectID) models.Report {
	f.t.Helper()

	r := models.Report{
		ID: primitive.NewObjectID(),
		StoredFile: models.StoredFile{
			Scope:       scope,
			ScopeID:     scopeID,
			OwnerID:     ownerID,
			StoragePath: string(scope) + "/test/" + primitive.NewObjectID().Hex() + ".pdf",
			FileName:    "report.pdf",
			FileSize:    1024,
			IsPublic:    true,
			CreatedAt:   time.Now().UTC(),
		},
		Title:   title,
		TitleCI: text.Fold(title),
	}
	if _, err := f.db.Collection("reports").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test report: %v", err)
	}
	return r
}
