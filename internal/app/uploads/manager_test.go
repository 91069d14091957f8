package uploads

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/takimhub/takimhub/internal/app/policy/scopepolicy"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeBlobStore struct {
	objects map[string]string

	putErr    error
	deleteErr error

	puts    []string
	deletes []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string]string)}
}

func (s *fakeBlobStore) Put(_ context.Context, path string, r io.Reader, _ *storage.PutOptions) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[path] = string(b)
	s.puts = append(s.puts, path)
	return nil
}

func (s *fakeBlobStore) Delete(_ context.Context, path string) error {
	s.deletes = append(s.deletes, path)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, path)
	return nil
}

func (s *fakeBlobStore) PresignedURL(_ context.Context, path string, opts *storage.PresignOptions) (string, error) {
	return "https://files.example.test/" + path + "?expires=" + opts.Expires.String(), nil
}

func (s *fakeBlobStore) URL(path string) string {
	return "https://files.example.test/" + path
}

type fakeRoles struct {
	teamRoles    map[string]models.TeamRole
	projectRoles map[string]models.ProjectRole
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{
		teamRoles:    make(map[string]models.TeamRole),
		projectRoles: make(map[string]models.ProjectRole),
	}
}

func roleKey(collectiveID, userID primitive.ObjectID) string {
	return collectiveID.Hex() + ":" + userID.Hex()
}

func (f *fakeRoles) TeamRole(_ context.Context, teamID, userID primitive.ObjectID) (models.TeamRole, bool, error) {
	r, ok := f.teamRoles[roleKey(teamID, userID)]
	return r, ok, nil
}

func (f *fakeRoles) ProjectRole(_ context.Context, projectID, userID primitive.ObjectID) (models.ProjectRole, bool, error) {
	r, ok := f.projectRoles[roleKey(projectID, userID)]
	return r, ok, nil
}

func newTestManager(t *testing.T) (*Manager, *fakeBlobStore, *fakeRoles) {
	t.Helper()
	blobs := newFakeBlobStore()
	roles := newFakeRoles()
	return NewManager(roles, blobs, zap.NewNop()), blobs, roles
}

func personalInput(actor primitive.ObjectID) CreateInput {
	return CreateInput{
		Actor:       actor,
		Scope:       models.ScopePersonal,
		FileName:    "notes.pdf",
		Size:        42,
		ContentType: "application/pdf",
		Body:        strings.NewReader("content"),
		IsPublic:    true,
	}
}

func TestCreate_PersonalUpload(t *testing.T) {
	m, blobs, _ := newTestManager(t)
	actor := primitive.NewObjectID()

	var inserted *models.StoredFile
	f, dec, err := m.Create(context.Background(), personalInput(actor), func(_ context.Context, f models.StoredFile) error {
		inserted = &f
		return nil
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allow, got deny %q", dec.Reason)
	}
	if inserted == nil {
		t.Fatal("insert callback not invoked")
	}
	if _, ok := blobs.objects[f.StoragePath]; !ok {
		t.Errorf("object missing from storage at %q", f.StoragePath)
	}
	if !strings.HasPrefix(f.StoragePath, "personal/"+actor.Hex()+"/") {
		t.Errorf("path = %q, want personal scope keyed by the actor", f.StoragePath)
	}
	if f.OwnerID != actor {
		t.Errorf("owner = %s, want actor %s", f.OwnerID.Hex(), actor.Hex())
	}
}

func TestCreate_DeniedLeavesNoSideEffects(t *testing.T) {
	m, blobs, _ := newTestManager(t)
	teamID := primitive.NewObjectID()

	in := personalInput(primitive.NewObjectID())
	in.Scope = models.ScopeTeam
	in.ScopeID = &teamID // actor has no membership

	insertCalled := false
	_, dec, err := m.Create(context.Background(), in, func(context.Context, models.StoredFile) error {
		insertCalled = true
		return nil
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dec.Allowed {
		t.Fatal("expected denial for non-member team upload")
	}
	if dec.Reason != scopepolicy.ReasonNotAMember {
		t.Errorf("reason = %q, want %q", dec.Reason, scopepolicy.ReasonNotAMember)
	}
	if insertCalled {
		t.Error("insert callback ran despite denial")
	}
	if len(blobs.puts) != 0 {
		t.Errorf("storage written despite denial: %v", blobs.puts)
	}
}

func TestCreate_TeamUploadKeyedByTeam(t *testing.T) {
	m, blobs, roles := newTestManager(t)
	actor := primitive.NewObjectID()
	teamID := primitive.NewObjectID()
	roles.teamRoles[roleKey(teamID, actor)] = models.TeamAdmin

	in := personalInput(actor)
	in.Scope = models.ScopeTeam
	in.ScopeID = &teamID

	f, dec, err := m.Create(context.Background(), in, func(context.Context, models.StoredFile) error { return nil })
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allow for team admin, got %q", dec.Reason)
	}
	if !strings.HasPrefix(f.StoragePath, "team/"+teamID.Hex()+"/") {
		t.Errorf("path = %q, want keyed by team ID", f.StoragePath)
	}
	if len(blobs.puts) != 1 {
		t.Fatalf("puts = %d, want 1", len(blobs.puts))
	}
}

func TestCreate_StorageFailureSkipsInsert(t *testing.T) {
	m, blobs, _ := newTestManager(t)
	blobs.putErr = errors.New("bucket unavailable")

	insertCalled := false
	_, _, err := m.Create(context.Background(), personalInput(primitive.NewObjectID()), func(context.Context, models.StoredFile) error {
		insertCalled = true
		return nil
	})
	if err == nil {
		t.Fatal("expected storage write error")
	}
	if insertCalled {
		t.Error("insert callback ran after failed storage write")
	}
}

func TestCreate_InsertFailureCompensates(t *testing.T) {
	m, blobs, _ := newTestManager(t)

	_, _, err := m.Create(context.Background(), personalInput(primitive.NewObjectID()), func(context.Context, models.StoredFile) error {
		return errors.New("duplicate key")
	})
	if err == nil {
		t.Fatal("expected record insert error")
	}
	if len(blobs.puts) != 1 {
		t.Fatalf("puts = %d, want 1", len(blobs.puts))
	}
	if len(blobs.deletes) != 1 || blobs.deletes[0] != blobs.puts[0] {
		t.Fatalf("compensating delete missing; deletes = %v, puts = %v", blobs.deletes, blobs.puts)
	}
	if len(blobs.objects) != 0 {
		t.Errorf("orphaned objects remain: %v", blobs.objects)
	}
}

func TestCreate_CompensationFailureStillReportsInsertError(t *testing.T) {
	m, blobs, _ := newTestManager(t)
	blobs.deleteErr = errors.New("delete refused")

	insertErr := errors.New("insert failed")
	_, _, err := m.Create(context.Background(), personalInput(primitive.NewObjectID()), func(context.Context, models.StoredFile) error {
		return insertErr
	})
	if err == nil || !errors.Is(err, insertErr) {
		t.Fatalf("err = %v, want wrapped insert error", err)
	}
}

func storedFile(owner primitive.ObjectID) models.StoredFile {
	return models.StoredFile{
		Scope:       models.ScopePersonal,
		OwnerID:     owner,
		StoragePath: "personal/" + owner.Hex() + "/1234_abcd1234.pdf",
		FileName:    "notes.pdf",
		IsPublic:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDelete_UploaderOnly(t *testing.T) {
	m, blobs, _ := newTestManager(t)
	owner := primitive.NewObjectID()
	f := storedFile(owner)
	blobs.objects[f.StoragePath] = "content"

	removeCalled := false
	deleted, dec, err := m.Delete(context.Background(), primitive.NewObjectID(), f, func(context.Context) (int64, error) {
		removeCalled = true
		return 1, nil
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if dec.Allowed || dec.Reason != scopepolicy.ReasonNotOwner {
		t.Fatalf("decision = %+v, want not-owner denial", dec)
	}
	if deleted || removeCalled {
		t.Error("record removal ran despite denial")
	}
	if len(blobs.deletes) != 0 {
		t.Error("storage removal ran despite denial")
	}
}

func TestDelete_StorageFailureDoesNotBlockRecordDelete(t *testing.T) {
	m, blobs, _ := newTestManager(t)
	owner := primitive.NewObjectID()
	blobs.deleteErr = errors.New("object locked")

	deleted, dec, err := m.Delete(context.Background(), owner, storedFile(owner), func(context.Context) (int64, error) {
		return 1, nil
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allow, got %q", dec.Reason)
	}
	if !deleted {
		t.Error("record delete outcome should be authoritative despite storage failure")
	}
}

func TestDelete_AlreadyGoneIsNotAnError(t *testing.T) {
	m, _, _ := newTestManager(t)
	owner := primitive.NewObjectID()

	deleted, dec, err := m.Delete(context.Background(), owner, storedFile(owner), func(context.Context) (int64, error) {
		return 0, nil // concurrent delete won the race
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allow, got %q", dec.Reason)
	}
	if deleted {
		t.Error("deleted = true, want false when no record matched")
	}
}

func TestDownloadURL_AuthorizesEveryCall(t *testing.T) {
	m, _, roles := newTestManager(t)
	owner := primitive.NewObjectID()
	reader := primitive.NewObjectID()
	teamID := primitive.NewObjectID()

	f := storedFile(owner)
	f.Scope = models.ScopeTeam
	f.ScopeID = &teamID

	// Not yet a member: denied.
	_, dec, err := m.DownloadURL(context.Background(), reader, f, time.Hour)
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}
	if dec.Allowed {
		t.Fatal("expected denial before membership exists")
	}

	// Membership granted: the next call sees it.
	roles.teamRoles[roleKey(teamID, reader)] = models.TeamMember
	url, dec, err := m.DownloadURL(context.Background(), reader, f, time.Hour)
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allow for member, got %q", dec.Reason)
	}
	if !strings.Contains(url, f.StoragePath) {
		t.Errorf("url = %q, want it to reference %q", url, f.StoragePath)
	}
	if !strings.Contains(url, "expires=") {
		t.Errorf("url = %q, want a time bound", url)
	}
}

func TestDownloadURL_PrivateTeamFileDenied(t *testing.T) {
	m, _, roles := newTestManager(t)
	owner := primitive.NewObjectID()
	reader := primitive.NewObjectID()
	teamID := primitive.NewObjectID()
	roles.teamRoles[roleKey(teamID, reader)] = models.TeamMember

	f := storedFile(owner)
	f.Scope = models.ScopeTeam
	f.ScopeID = &teamID
	f.IsPublic = false

	_, dec, err := m.DownloadURL(context.Background(), reader, f, time.Hour)
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}
	if dec.Allowed || dec.Reason != scopepolicy.ReasonNotPublic {
		t.Fatalf("decision = %+v, want not-public denial", dec)
	}
}
