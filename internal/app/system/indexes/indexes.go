// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureProfiles(ctx, db); err != nil {
		problems = append(problems, "profiles: "+err.Error())
	}
	if err := ensureTeams(ctx, db); err != nil {
		problems = append(problems, "teams: "+err.Error())
	}
	if err := ensureTeamMembers(ctx, db); err != nil {
		problems = append(problems, "team_members: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureProjectMembers(ctx, db); err != nil {
		problems = append(problems, "project_members: "+err.Error())
	}
	if err := ensureReports(ctx, db); err != nil {
		problems = append(problems, "reports: "+err.Error())
	}
	if err := ensureProjectDocuments(ctx, db); err != nil {
		problems = append(problems, "project_documents: "+err.Error())
	}
	if err := ensureMicroLearnings(ctx, db); err != nil {
		problems = append(problems, "micro_learnings: "+err.Error())
	}
	if err := ensureUserProgress(ctx, db); err != nil {
		problems = append(problems, "user_progress: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureCalendarEvents(ctx, db); err != nil {
		problems = append(problems, "calendar_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))

		// 1) Load existing indexes
		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			defer cur.Close(ctx)
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
		}

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameBoolPtr(desiredUnique, ex.Unique) {
				// --- Name alignment: if the name differs, drop & recreate with the desired name.
				if desiredName != "" && ex.Name != desiredName {
					zap.L().Info("renaming index to align with desired name",
						zap.String("collection", coll.Name()),
						zap.String("from", ex.Name),
						zap.String("to", desiredName),
						zap.String("keys", desiredSig))

					if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
						zap.L().Warn("drop existing index (rename) failed",
							zap.String("collection", coll.Name()),
							zap.String("name", ex.Name),
							zap.Error(err))
						errs = append(errs, fmt.Sprintf("%s(%s): rename drop failed: %v", coll.Name(), desiredName, err))
						continue
					}
					if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
						zap.L().Warn("create index (rename) failed",
							zap.String("collection", coll.Name()),
							zap.String("name", desiredName),
							zap.Error(err))
						errs = append(errs, fmt.Sprintf("%s(%s): rename create failed: %v", coll.Name(), desiredName, err))
						continue
					}
					zap.L().Info("index renamed",
						zap.String("collection", coll.Name()),
						zap.String("name", desiredName),
						zap.String("keys", desiredSig),
						zap.String("took", time.Since(start).String()))
					continue
				}

				// Names aligned (or we don't care) → reuse
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Bool("unique", ex.Unique != nil && *ex.Unique),
					zap.String("took", time.Since(start).String()))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					helper := ""
					if coll.Name() == "profiles" && strings.Contains(desiredSig, "email_ci:1") {
						helper = " — duplicates exist on profiles.email_ci. Example finder:\n" +
							`db.profiles.aggregate([{ $group: { _id: "$email_ci", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
					}
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s", coll.Name(), desiredName, helper))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// 2) No existing index with the same keys: create it.
		if created, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				cur2, e2 := coll.Indexes().List(ctx)
				if e2 == nil {
					var match *existingIndex
					for cur2.Next(ctx) {
						var idx existingIndex
						if err := cur2.Decode(&idx); err != nil {
							zap.L().Warn("failed to decode existing index (post-conflict)",
								zap.String("collection", coll.Name()),
								zap.Error(err))
							continue
						}
						if keySig(idx.Key) == desiredSig {
							match = &idx
							break
						}
					}
					cur2.Close(ctx)
					if match != nil {
						if sameBoolPtr(desiredUnique, match.Unique) {
							zap.L().Info("reusing existing index (post-conflict)",
								zap.String("collection", coll.Name()),
								zap.String("name", match.Name),
								zap.String("keys", desiredSig),
								zap.Bool("unique", match.Unique != nil && *match.Unique),
								zap.String("took", time.Since(start).String()))
							continue
						}
						if _, dropErr := coll.Indexes().DropOne(ctx, match.Name); dropErr != nil {
							zap.L().Warn("failed to drop conflicting index",
								zap.String("collection", coll.Name()),
								zap.String("name", match.Name),
								zap.Error(dropErr))
						}
						if _, e3 := coll.Indexes().CreateOne(ctx, m); e3 != nil {
							if isDuplicateKeyErr(e3) && desiredUnique != nil && *desiredUnique {
								errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
							} else {
								errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, e3))
							}
							continue
						}
						zap.L().Info("index dropped and recreated (post-conflict)",
							zap.String("collection", coll.Name()),
							zap.String("name", desiredName),
							zap.String("keys", desiredSig),
							zap.Bool("unique", desiredUnique != nil && *desiredUnique),
							zap.String("took", time.Since(start).String()))
						continue
					}
				}

				zap.L().Warn("index ensure failed",
					zap.String("collection", coll.Name()),
					zap.String("name", desiredName),
					zap.String("keys", desiredSig),
					zap.Bool("unique", desiredUnique != nil && *desiredUnique),
					zap.String("took", time.Since(start).String()),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				continue
			}

			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		} else {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("created_name", created),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureProfiles(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("profiles")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email must be unique across all profiles (case/diacritics folded)
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_profiles_emailci"),
		},
		// Name prefix search + stable sort
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_profiles_fullnameci__id"),
		},
	})
}

func ensureTeams(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("teams")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Slugs appear in URLs, so they must be globally unique.
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_teams_slug"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_teams_nameci__id"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("idx_teams_owner"),
		},
	})
}

func ensureTeamMembers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("team_members")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Uniqueness: exactly one membership per (team, user) — role is
		// scalar; update the doc to change role.
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tm_team_user"),
		},
		// Fast: list a user's teams (+role segmentation)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role", Value: 1}, {Key: "team_id", Value: 1}},
			Options: options.Index().SetName("idx_tm_user_role_team"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("projects")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_projects_slug"),
		},
		// Per-team project listings and counts
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_projects_team_status"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("idx_projects_owner"),
		},
	})
}

func ensureProjectMembers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("project_members")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_pm_project_user"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role", Value: 1}, {Key: "project_id", Value: 1}},
			Options: options.Index().SetName("idx_pm_user_role_project"),
		},
	})
}

func ensureReports(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("reports")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Scope listings (personal, team, project), newest first
		{
			Keys:    bson.D{{Key: "scope", Value: 1}, {Key: "scope_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reports_scope_scopeid_created"),
		},
		// Personal listings and uploader lookups
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reports_owner_created"),
		},
		// Title prefix search
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_reports_titleci__id"),
		},
	})
}

func ensureProjectDocuments(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("project_documents")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Project listings, newest first
		{
			Keys:    bson.D{{Key: "scope_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_docs_scopeid_created"),
		},
		// Version counting per (project, file name)
		{
			Keys:    bson.D{{Key: "scope_id", Value: 1}, {Key: "file_name", Value: 1}},
			Options: options.Index().SetName("idx_docs_scopeid_filename"),
		},
	})
}

func ensureMicroLearnings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("micro_learnings")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Team feeds filter on publication state
		{
			Keys:    bson.D{{Key: "scope_id", Value: 1}, {Key: "is_published", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_learn_scopeid_published_created"),
		},
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_learn_titleci__id"),
		},
	})
}

func ensureUserProgress(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("user_progress")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One completion per (user, learning item); XP is credited at most once.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "learning_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_progress_user_learning"),
		},
		{
			Keys:    bson.D{{Key: "learning_id", Value: 1}},
			Options: options.Index().SetName("idx_progress_learning"),
		},
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("tasks")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Personal list: tasks the viewer created, outside any team
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "team_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_tasks_creator_team_created"),
		},
		// Team boards
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_tasks_team_status_created"),
		},
		{
			Keys:    bson.D{{Key: "assigned_to", Value: 1}},
			Options: options.Index().SetName("idx_tasks_assignee"),
		},
	})
}

func ensureCalendarEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("calendar_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Personal calendar: events the viewer created, outside any team
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "team_id", Value: 1}, {Key: "start_at", Value: 1}},
			Options: options.Index().SetName("idx_events_creator_team_start"),
		},
		// Team calendars
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "start_at", Value: 1}},
			Options: options.Index().SetName("idx_events_team_start"),
		},
	})
}
