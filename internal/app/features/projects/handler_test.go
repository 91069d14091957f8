package projects_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/features/projects"
	"github.com/takimhub/takimhub/internal/domain/models"
	"github.com/takimhub/takimhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*projects.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	return projects.NewHandler(db, errLog, logger), db
}

// render calls a handler and swallows template panics; these tests
// assert on database effects, not markup.
func render(h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() {
		_ = recover()
	}()
	h(w, r)
}

func postForm(path string, user testutil.TestUser, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestHandleCreate_PersonalProject(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Maker", "maker@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	req := postForm("/projects", user, url.Values{"name": {"Side Quest"}})
	rec := httptest.NewRecorder()

	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	var proj models.Project
	if err := db.Collection("projects").FindOne(ctx, bson.M{"slug": "side-quest"}).Decode(&proj); err != nil {
		t.Fatalf("project not inserted: %v", err)
	}
	if proj.TeamID != nil {
		t.Error("personal project must have nil team ID")
	}
	if proj.Status != models.ProjectPlanning {
		t.Errorf("status = %q, want %q", proj.Status, models.ProjectPlanning)
	}
	n, _ := db.Collection("project_members").CountDocuments(ctx, bson.M{
		"project_id": proj.ID,
		"user_id":    p.ID,
		"role":       models.ProjectOwner,
	})
	if n != 1 {
		t.Fatalf("owner memberships = %d, want 1", n)
	}
}

func TestHandleCreate_TeamProjectRequiresMembership(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "Owner", "owner@example.com")
	outsider := fx.CreateProfile(ctx, "Outsider", "outsider@example.com")
	team := fx.CreateTeam(ctx, "Closed Shop", owner.ID)

	user := testutil.UserFor(outsider.ID, outsider.FullName)
	req := postForm("/projects", user, url.Values{
		"name":    {"Sneaky"},
		"team_id": {team.ID.Hex()},
	})
	rec := httptest.NewRecorder()

	render(handler.HandleCreate, rec, req)

	n, _ := db.Collection("projects").CountDocuments(ctx, bson.M{"slug": "sneaky"})
	if n != 0 {
		t.Fatal("non-member attached a project to the team")
	}
}

func TestHandleUpdate_ContributorCannotEdit(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "Owner", "owner2@example.com")
	contrib := fx.CreateProfile(ctx, "Contrib", "contrib@example.com")
	proj := fx.CreateProject(ctx, "Guarded Plan", owner.ID, nil)
	fx.AddProjectMember(ctx, proj.ID, contrib.ID, models.ProjectContributor)

	user := testutil.UserFor(contrib.ID, contrib.FullName)
	req := postForm("/projects/"+proj.ID.Hex(), user, url.Values{
		"status":   {models.ProjectCompleted},
		"priority": {models.PriorityLow},
	})
	req = testutil.WithChiURLParam(req, "id", proj.ID.Hex())
	rec := httptest.NewRecorder()

	render(handler.HandleUpdate, rec, req)

	var got models.Project
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": proj.ID}).Decode(&got); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if got.Status == models.ProjectCompleted {
		t.Fatal("contributor edited the project")
	}
}

func TestHandleUpdate_CompletedStampsDate(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "Owner", "owner3@example.com")
	proj := fx.CreateProject(ctx, "Nearly Done", owner.ID, nil)

	user := testutil.UserFor(owner.ID, owner.FullName)
	req := postForm("/projects/"+proj.ID.Hex(), user, url.Values{
		"status":   {models.ProjectCompleted},
		"priority": {models.PriorityMedium},
	})
	req = testutil.WithChiURLParam(req, "id", proj.ID.Hex())
	rec := httptest.NewRecorder()

	handler.HandleUpdate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	var got models.Project
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": proj.ID}).Decode(&got); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if got.CompletedAt == nil {
		t.Error("completed project missing completion timestamp")
	}
}

func TestHandleDelete_RefusedWhileDocumentsExist(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "Owner", "owner4@example.com")
	proj := fx.CreateProject(ctx, "Paper Trail", owner.ID, nil)

	_, err := db.Collection("project_documents").InsertOne(ctx, bson.M{
		"project_id": proj.ID,
		"file_name":  "notes.pdf",
	})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}

	user := testutil.UserFor(owner.ID, owner.FullName)
	req := postForm("/projects/"+proj.ID.Hex()+"/delete", user, url.Values{})
	req = testutil.WithChiURLParam(req, "id", proj.ID.Hex())
	rec := httptest.NewRecorder()

	render(handler.HandleDelete, rec, req)

	n, _ := db.Collection("projects").CountDocuments(ctx, bson.M{"_id": proj.ID})
	if n != 1 {
		t.Fatal("project deleted despite existing document")
	}
}

func TestHandleDelete_EmptyProjectByOwner(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "Owner", "owner5@example.com")
	proj := fx.CreateProject(ctx, "Fleeting", owner.ID, nil)

	user := testutil.UserFor(owner.ID, owner.FullName)
	req := postForm("/projects/"+proj.ID.Hex()+"/delete", user, url.Values{})
	req = testutil.WithChiURLParam(req, "id", proj.ID.Hex())
	rec := httptest.NewRecorder()

	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	n, _ := db.Collection("projects").CountDocuments(ctx, bson.M{"_id": proj.ID})
	if n != 0 {
		t.Error("project document still present")
	}
	m, _ := db.Collection("project_members").CountDocuments(ctx, bson.M{"project_id": proj.ID})
	if m != 0 {
		t.Error("memberships of deleted project still present")
	}
}
