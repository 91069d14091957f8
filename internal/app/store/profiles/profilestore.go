// Package profilestore persists user profiles, including credentials
// and the gamification counters (XP and level).
package profilestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/takimhub/takimhub/internal/app/system/normalize"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// XPPerLevel is the XP cost of each level. Level is derived, never
// stored independently of TotalXP.
const XPPerLevel = 100

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

var (
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("a profile with this email already exists")
	errBadAuthMethod  = errors.New(`auth method must be "password"|"google"`)
)

// LevelFor computes the level for a total XP amount.
func LevelFor(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return 1 + totalXP/XPPerLevel
}

// Create inserts a new profile after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	p.ID = primitive.NewObjectID()
	p.Email = normalize.Email(p.Email)
	p.EmailCI = text.Fold(p.Email)
	p.FullName = normalize.Name(p.FullName)
	p.FullNameCI = text.Fold(p.FullName)
	p.AuthMethod = normalize.AuthMethod(p.AuthMethod)

	switch p.AuthMethod {
	case models.AuthMethodPassword, models.AuthMethodGoogle:
		// ok
	default:
		return models.Profile{}, errBadAuthMethod
	}

	p.TotalXP = 0
	p.Level = LevelFor(0)

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, err
	}
	return p, nil
}

// GetByID loads a profile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByIDs fetches the profiles for a set of IDs, keyed by ID for
// joining against membership rows. Missing IDs are simply absent.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Profile, error) {
	out := make(map[primitive.ObjectID]models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p models.Profile
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, cur.Err()
}

// GetByEmail looks up a profile by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileUpdate holds the fields a user may edit on their own profile.
type ProfileUpdate struct {
	FullName  string
	AvatarURL string
}

// Update applies a profile edit.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	name := normalize.Name(upd.FullName)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"full_name":    name,
		"full_name_ci": text.Fold(name),
		"avatar_url":   upd.AvatarURL,
		"updated_at":   time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetAvatar records an uploaded avatar: the public URL shown on pages
// and the storage key the object lives under.
func (s *Store) SetAvatar(ctx context.Context, id primitive.ObjectID, url, path string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"avatar_url":  url,
		"avatar_path": path,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetPasswordHash replaces the stored credential hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash []byte) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddXP credits xp to the profile and recomputes the level from the
// post-increment total. The increment is atomic; the level write reads
// the updated document so concurrent credits settle on the same
// derived value.
func (s *Store) AddXP(ctx context.Context, id primitive.ObjectID, xp int) (totalXP, level int, err error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Profile
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"total_xp": xp}},
		after,
	).Decode(&p)
	if err != nil {
		return 0, 0, err
	}

	level = LevelFor(p.TotalXP)
	if level != p.Level {
		_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"level": level}})
		if err != nil {
			return 0, 0, err
		}
	}
	return p.TotalXP, level, nil
}
