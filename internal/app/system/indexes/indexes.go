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
EnsureAll is called at startup. Each collection's index set is reconciled
idempotently. Unique indexes are the source of truth for constituency_id,
panchayat_id, email, one-vote-per-user and one-feedback-per-user; the
services' pre-checks only produce friendlier errors.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{"users", usersIndexes()},
		{"auth_tokens", tokensIndexes()},
		{"constituencies", constituenciesIndexes()},
		{"panchayats", panchayatsIndexes()},
		{"issues", issuesIndexes()},
		{"comments", commentsIndexes()},
		{"votes", votesIndexes()},
		{"feedback", feedbackIndexes()},
		{"departments", departmentsIndexes()},
		{"meetings", meetingsIndexes()},
		{"notifications", notificationsIndexes()},
		{"mla_dashboards", dashboardsIndexes()},
	}

	var problems []string
	for _, s := range sets {
		if err := ensureIndexSet(ctx, db.Collection(s.coll), s.models); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
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

func boolVal(b *bool) bool {
	return b != nil && *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB return IndexOptionsConflict when an index with the same keys
// already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// Collection may not exist yet; treat as no indexes.
		return existing
	}
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
	return existing
}

// recreate drops the index called oldName and creates m in its place.
func recreate(ctx context.Context, coll *mongo.Collection, oldName string, m mongo.IndexModel) error {
	if _, err := coll.Indexes().DropOne(ctx, oldName); err != nil {
		return fmt.Errorf("drop %s: %w", oldName, err)
	}
	_, err := coll.Indexes().CreateOne(ctx, m)
	return err
}

func describeCreateErr(coll *mongo.Collection, name, sig string, unique bool, err error) string {
	if unique && isDuplicateKeyErr(err) {
		field := strings.SplitN(sig, ":", 2)[0]
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present). Example finder: "+
			`db.%s.aggregate([{ $group: { _id: "$%s", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
			coll.Name(), name, coll.Name(), field)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", boolVal(unique)))

		existing := listExisting(ctx, coll)

		if ex, ok := existing[sig]; ok {
			switch {
			case boolVal(ex.Unique) == boolVal(unique) && (name == "" || ex.Name == name):
				log.Info("reusing existing index", zap.Duration("took", time.Since(start)))
			case boolVal(ex.Unique) == boolVal(unique):
				if err := recreate(ctx, coll, ex.Name, m); err != nil {
					log.Warn("index rename failed", zap.String("from", ex.Name), zap.Error(err))
					errs = append(errs, describeCreateErr(coll, name, sig, boolVal(unique), err))
					continue
				}
				log.Info("index renamed", zap.String("from", ex.Name), zap.Duration("took", time.Since(start)))
			default:
				// Options mismatch (e.g., upgrading to unique).
				if err := recreate(ctx, coll, ex.Name, m); err != nil {
					log.Warn("index recreate failed", zap.Error(err))
					errs = append(errs, describeCreateErr(coll, name, sig, boolVal(unique), err))
					continue
				}
				log.Info("index dropped and recreated", zap.Duration("took", time.Since(start)))
			}
			continue
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil && isOptionsConflictErr(err) {
			// Raced with another process or a same-keys index appeared; retry once against it.
			if ex, ok := listExisting(ctx, coll)[sig]; ok {
				if boolVal(ex.Unique) == boolVal(unique) {
					log.Info("reusing existing index (post-conflict)", zap.String("existing", ex.Name))
					continue
				}
				err = recreate(ctx, coll, ex.Name, m)
			}
		}
		if err != nil {
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			errs = append(errs, describeCreateErr(coll, name, sig, boolVal(unique), err))
			continue
		}
		log.Info("index ensured", zap.String("created_name", created), zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func usersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Admin user list filtered by role, sorted by name.
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_role_fullnameci_id"),
		},
	}
}

func tokensIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tokens_hash"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_tokens_user"),
		},
		// Cleanup worker deletes by expiry.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_tokens_expires"),
		},
	}
}

func constituenciesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "constituency_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_constituencies_constituency_id"),
		},
		{
			Keys:    bson.D{{Key: "mla_id", Value: 1}},
			Options: options.Index().SetName("idx_constituencies_mla"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_constituencies_nameci_id"),
		},
	}
}

func panchayatsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "panchayat_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_panchayats_panchayat_id"),
		},
		// By-constituency listing and the delete-guard count.
		{
			Keys:    bson.D{{Key: "constituency_id", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_panchayats_constituency_nameci_id"),
		},
	}
}

func issuesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ticket", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_issues_ticket"),
		},
		// Constituency list filtered by status; also the dashboard $match.
		{
			Keys: bson.D{
				{Key: "constituency_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_issues_constituency_status_created"),
		},
		{
			Keys:    bson.D{{Key: "panchayat_id", Value: 1}, {Key: "ward_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_issues_panchayat_ward_created"),
		},
		{
			Keys:    bson.D{{Key: "reported_by", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_issues_reporter_created"),
		},
	}
}

func commentsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "issue_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_comments_issue_created"),
		},
	}
}

func votesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// One upvote per (user, issue).
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "issue_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_votes_user_issue"),
		},
		{
			Keys:    bson.D{{Key: "issue_id", Value: 1}},
			Options: options.Index().SetName("idx_votes_issue"),
		},
	}
}

func feedbackIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// One feedback per (issue, user).
		{
			Keys:    bson.D{{Key: "issue_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_feedback_issue_user"),
		},
	}
}

func departmentsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_departments_nameci"),
		},
	}
}

func meetingsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "constituency_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("idx_meetings_constituency_date_time"),
		},
	}
}

func notificationsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_read_created"),
		},
	}
}

func dashboardsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "constituency_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_dashboards_constituency_id"),
		},
	}
}
