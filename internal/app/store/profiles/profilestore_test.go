package profilestore_test

import (
	"context"
	"errors"
	"testing"

	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	"github.com/takimhub/takimhub/internal/domain/models"
	"github.com/takimhub/takimhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{1000, 11},
		{-5, 1},
	}
	for _, tc := range cases {
		if got := profilestore.LevelFor(tc.xp); got != tc.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func ensureEmailIndex(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := db.Collection("profiles").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create email index: %v", err)
	}
}

func TestCreateAndGetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Profile{
		Email:      "  Ayse.Yilmaz@Example.COM ",
		FullName:   "Ayse Yilmaz",
		AuthMethod: "password",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "ayse.yilmaz@example.com" {
		t.Errorf("email = %q, want normalized lowercase", created.Email)
	}
	if created.Level != 1 || created.TotalXP != 0 {
		t.Errorf("new profile xp/level = %d/%d, want 0/1", created.TotalXP, created.Level)
	}

	got, err := store.GetByEmail(ctx, "AYSE.YILMAZ@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("lookup returned wrong profile")
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ensureEmailIndex(t, db)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := models.Profile{Email: "dup@example.com", FullName: "First", AuthMethod: "password"}
	if _, err := store.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	p.FullName = "Second"
	if _, err := store.Create(ctx, p); !errors.Is(err, profilestore.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestCreate_RejectsUnknownAuthMethod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Profile{Email: "x@example.com", AuthMethod: "ldap"})
	if err == nil {
		t.Fatal("expected auth method validation error")
	}
}

func TestAddXP_DerivesLevel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Profile{Email: "xp@example.com", AuthMethod: "password"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	total, level, err := store.AddXP(ctx, p.ID, 50)
	if err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	if total != 50 || level != 1 {
		t.Errorf("after +50: total/level = %d/%d, want 50/1", total, level)
	}

	total, level, err = store.AddXP(ctx, p.ID, 75)
	if err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	if total != 125 || level != 2 {
		t.Errorf("after +75: total/level = %d/%d, want 125/2", total, level)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Level != 2 {
		t.Errorf("persisted level = %d, want 2", got.Level)
	}
}

func TestFetcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	fetcher := profilestore.NewFetcher(db)
	ctx := context.Background()

	p, err := store.Create(ctx, models.Profile{
		Email:      "fetch@example.com",
		FullName:   "Fetch Me",
		AuthMethod: "password",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	u, err := fetcher.Fetch(ctx, p.ID.Hex())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if u.ID != p.ID.Hex() || u.Name != "Fetch Me" || u.Email != "fetch@example.com" {
		t.Errorf("session user = %+v", u)
	}

	if _, err := fetcher.Fetch(ctx, "not-a-hex-id"); err == nil {
		t.Error("expected error for malformed ID")
	}
	if _, err := fetcher.Fetch(ctx, primitive.NewObjectID().Hex()); err == nil {
		t.Error("expected error for missing profile")
	}
}
