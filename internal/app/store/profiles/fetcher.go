package profilestore

import (
	"context"

	"github.com/takimhub/takimhub/internal/app/system/auth"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher: fresh profile data is loaded on
// each request so deleted accounts and name changes take effect
// immediately instead of living on in the session cookie.
type Fetcher struct {
	profiles *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{profiles: db.Collection("profiles")}
}

// Fetch loads the session user by ID. Any failure (bad ID, missing
// profile, DB error) is returned as an error so the session middleware
// fails closed.
func (f *Fetcher) Fetch(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	proj := options.FindOne().SetProjection(bson.M{
		"_id":        1,
		"full_name":  1,
		"email":      1,
		"avatar_url": 1,
	})

	var p models.Profile
	if err := f.profiles.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&p); err != nil {
		return nil, err
	}

	return &auth.SessionUser{
		ID:        p.ID.Hex(),
		Name:      p.FullName,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
	}, nil
}
