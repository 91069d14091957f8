package calendar_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/takimhub/takimhub/internal/app/features/calendar"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	eventstore "github.com/takimhub/takimhub/internal/app/store/events"
	"github.com/takimhub/takimhub/internal/domain/models"
	"github.com/takimhub/takimhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*calendar.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	return calendar.NewHandler(db, errLog, logger), db
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

func TestHandleCreate_PersonalEvent(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Planner", "planner@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	req := postForm("/calendar", user, url.Values{
		"title":      {"Dentist"},
		"start_date": {"2026-09-15"},
	})
	rec := httptest.NewRecorder()

	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	var event models.CalendarEvent
	if err := db.Collection("calendar_events").FindOne(ctx, bson.M{"created_by": p.ID}).Decode(&event); err != nil {
		t.Fatalf("event not inserted: %v", err)
	}
	if event.TeamID != nil {
		t.Error("personal event must have nil team ID")
	}
	if event.EventType != models.EventMeeting {
		t.Errorf("event type = %q, want default %q", event.EventType, models.EventMeeting)
	}
	if !event.EndAt.Equal(event.StartAt) {
		t.Errorf("end = %v, want the start date when no end is given", event.EndAt)
	}
}

func TestHandleCreate_TeamEventRequiresMembership(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "Owner", "owner@example.com")
	outsider := fx.CreateProfile(ctx, "Outsider", "outsider@example.com")
	team := fx.CreateTeam(ctx, "Schedulers", owner.ID)

	user := testutil.UserFor(outsider.ID, outsider.FullName)
	req := postForm("/calendar", user, url.Values{
		"title":      {"Crash the meeting"},
		"start_date": {"2026-09-16"},
		"team_id":    {team.ID.Hex()},
	})
	rec := httptest.NewRecorder()

	render(handler.HandleCreate, rec, req)

	n, _ := db.Collection("calendar_events").CountDocuments(ctx, bson.M{"team_id": team.ID})
	if n != 0 {
		t.Fatal("non-member created a team event")
	}
}

func TestHandleCreate_MissingStartDate(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Hasty", "hasty@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	req := postForm("/calendar", user, url.Values{"title": {"Sometime"}})
	rec := httptest.NewRecorder()

	render(handler.HandleCreate, rec, req)

	n, _ := db.Collection("calendar_events").CountDocuments(ctx, bson.M{"created_by": p.ID})
	if n != 0 {
		t.Fatal("event created without a start date")
	}
}

func TestHandleDelete_CreatorOnly(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "Owner", "owner2@example.com")
	member := fx.CreateProfile(ctx, "Member", "member@example.com")
	team := fx.CreateTeam(ctx, "Removers", owner.ID)
	fx.AddTeamMember(ctx, team.ID, member.ID, models.TeamMember)

	event, err := eventstore.New(db).Create(ctx, models.CalendarEvent{
		Title:     "Owner's event",
		TeamID:    &team.ID,
		StartAt:   time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		CreatedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}

	// A teammate who did not create the event cannot delete it; the
	// creator-scoped delete matches nothing and redirects as done.
	user := testutil.UserFor(member.ID, member.FullName)
	req := postForm("/calendar/"+event.ID.Hex()+"/delete", user, url.Values{})
	req = testutil.WithChiURLParam(req, "id", event.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	n, _ := db.Collection("calendar_events").CountDocuments(ctx, bson.M{"_id": event.ID})
	if n != 1 {
		t.Fatal("non-creator deleted the event")
	}

	// The creator can.
	user = testutil.UserFor(owner.ID, owner.FullName)
	req = postForm("/calendar/"+event.ID.Hex()+"/delete", user, url.Values{})
	req = testutil.WithChiURLParam(req, "id", event.ID.Hex())
	rec = httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	n, _ = db.Collection("calendar_events").CountDocuments(ctx, bson.M{"_id": event.ID})
	if n != 0 {
		t.Fatal("creator could not delete the event")
	}
}
