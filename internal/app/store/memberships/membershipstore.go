// Package membershipstore is the membership oracle: the authoritative
// record of who belongs to which team or project, and with what role.
// The scope policy consults it through the RoleFinder interface; the
// team and project features use it to manage rosters.
package membershipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	teams    *mongo.Collection
	projects *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		teams:    db.Collection("team_members"),
		projects: db.Collection("project_members"),
	}
}

var (
	ErrBadRole             = errors.New("unknown role")
	ErrDuplicateMembership = errors.New("user is already a member")

	// ErrLastOwner guards the invariant that every collective keeps at
	// least one owner membership while it exists.
	ErrLastOwner = errors.New("cannot remove the last owner")
)

// TeamRole returns the actor's role in the team. found=false means not
// a member, which is a valid negative result, not an error.
func (s *Store) TeamRole(ctx context.Context, teamID, userID primitive.ObjectID) (models.TeamRole, bool, error) {
	var row struct {
		Role models.TeamRole `bson:"role"`
	}
	err := s.teams.FindOne(ctx, bson.M{"team_id": teamID, "user_id": userID}).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Role, true, nil
}

// ProjectRole returns the actor's role in the project, with the same
// found semantics as TeamRole.
func (s *Store) ProjectRole(ctx context.Context, projectID, userID primitive.ObjectID) (models.ProjectRole, bool, error) {
	var row struct {
		Role models.ProjectRole `bson:"role"`
	}
	err := s.projects.FindOne(ctx, bson.M{"project_id": projectID, "user_id": userID}).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Role, true, nil
}

// AddTeamMember creates a team membership. The unique (team_id,
// user_id) index rejects duplicates.
func (s *Store) AddTeamMember(ctx context.Context, teamID, userID primitive.ObjectID, role models.TeamRole) error {
	if !role.Valid() {
		return ErrBadRole
	}
	_, err := s.teams.InsertOne(ctx, models.TeamMembership{
		ID:       primitive.NewObjectID(),
		TeamID:   teamID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	})
	if wafflemongo.IsDup(err) {
		return ErrDuplicateMembership
	}
	return err
}

// AddProjectMember creates a project membership.
func (s *Store) AddProjectMember(ctx context.Context, projectID, userID primitive.ObjectID, role models.ProjectRole) error {
	if !role.Valid() {
		return ErrBadRole
	}
	_, err := s.projects.InsertOne(ctx, models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if wafflemongo.IsDup(err) {
		return ErrDuplicateMembership
	}
	return err
}

// RemoveTeamMember deletes one team membership. Removing the last
// owner is refused so the team is never left ownerless.
func (s *Store) RemoveTeamMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	role, found, err := s.TeamRole(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !found {
		return mongo.ErrNoDocuments
	}
	if role == models.TeamOwner {
		n, err := s.teams.CountDocuments(ctx, bson.M{"team_id": teamID, "role": models.TeamOwner})
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastOwner
		}
	}
	_, err = s.teams.DeleteOne(ctx, bson.M{"team_id": teamID, "user_id": userID})
	return err
}

// RemoveProjectMember deletes one project membership, with the same
// last-owner protection as RemoveTeamMember.
func (s *Store) RemoveProjectMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	role, found, err := s.ProjectRole(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !found {
		return mongo.ErrNoDocuments
	}
	if role == models.ProjectOwner {
		n, err := s.projects.CountDocuments(ctx, bson.M{"project_id": projectID, "role": models.ProjectOwner})
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastOwner
		}
	}
	_, err = s.projects.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	return err
}

// RemoveAllForTeam deletes every membership of a team. Used when the
// team itself is being deleted.
func (s *Store) RemoveAllForTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	res, err := s.teams.DeleteMany(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RemoveAllForProject deletes every membership of a project.
func (s *Store) RemoveAllForProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.projects.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListTeamMembers returns all memberships for a team.
func (s *Store) ListTeamMembers(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMembership, error) {
	cur, err := s.teams.Find(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TeamMembership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProjectMembers returns all memberships for a project.
func (s *Store) ListProjectMembers(ctx context.Context, projectID primitive.ObjectID) ([]models.ProjectMembership, error) {
	cur, err := s.projects.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ProjectMembership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TeamIDsFor returns the IDs of every team the user belongs to,
// optionally restricted to the given roles. Used for scoped listings
// and the uploadable-entities picker.
func (s *Store) TeamIDsFor(ctx context.Context, userID primitive.ObjectID, roles ...models.TeamRole) ([]primitive.ObjectID, error) {
	filter := bson.M{"user_id": userID}
	if len(roles) > 0 {
		filter["role"] = bson.M{"$in": roles}
	}
	cur, err := s.teams.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			TeamID primitive.ObjectID `bson:"team_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.TeamID)
	}
	return ids, cur.Err()
}

// ProjectIDsFor returns the IDs of every project the user belongs to,
// optionally restricted to the given roles.
func (s *Store) ProjectIDsFor(ctx context.Context, userID primitive.ObjectID, roles ...models.ProjectRole) ([]primitive.ObjectID, error) {
	filter := bson.M{"user_id": userID}
	if len(roles) > 0 {
		filter["role"] = bson.M{"$in": roles}
	}
	cur, err := s.projects.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ProjectID primitive.ObjectID `bson:"project_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ProjectID)
	}
	return ids, cur.Err()
}

// CountTeamMembers returns the member count for a team, optionally
// filtered by role.
func (s *Store) CountTeamMembers(ctx context.Context, teamID primitive.ObjectID, role models.TeamRole) (int64, error) {
	filter := bson.M{"team_id": teamID}
	if role != "" {
		filter["role"] = role
	}
	return s.teams.CountDocuments(ctx, filter)
}
