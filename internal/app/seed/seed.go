// Package seed fills a database with mock civic data for demos and local
// development. Everything goes through the same service and stores as the
// API, so seeded data obeys the same uniqueness and nesting rules.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	issuestore "github.com/dalemusser/civictrack/internal/app/store/issues"
	userstore "github.com/dalemusser/civictrack/internal/app/store/users"
	votestore "github.com/dalemusser/civictrack/internal/app/store/votes"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authutil"
	"github.com/dalemusser/civictrack/internal/app/system/indexes"
	"github.com/dalemusser/civictrack/internal/app/system/validators"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Password is the password of every seeded account.
const Password = "Password123"

// Options controls how much data is generated.
type Options struct {
	Constituencies int   // number of constituencies, each with its own MLA
	Panchayats     int   // panchayats per constituency
	Wards          int   // wards per panchayat
	Issues         int   // issues spread across all wards
	Citizens       int   // citizen accounts; 0 picks one per four issues (min 3)
	Drop           bool  // drop the database first
	Seed           int64 // RNG seed; the same seed yields the same data
}

// Summary counts what was written.
type Summary struct {
	Admins         int
	MLAs           int
	Citizens       int
	Constituencies int
	Panchayats     int
	Wards          int
	Issues         int
	Upvotes        int
	Skipped        []string // items that already existed
}

var (
	// lifecycles are the status paths an issue can take from pending.
	lifecycles = [][]string{
		nil,
		nil,
		{models.IssueInProgress},
		{models.IssueInProgress, models.IssueResolved},
		{models.IssueRejected},
	}
	placeNames = []string{"Ambala", "Bhadra", "Chandan", "Devgiri", "Ekam", "Gulmohar", "Haripur", "Indravati", "Janakpur", "Kaveri", "Lakshmi", "Madhuban"}
	titles     = map[string][]string{
		models.CategoryRoad:        {"Potholes on main road", "Road washed out near bridge", "Speed breaker needed near school"},
		models.CategoryWater:       {"No water supply for three days", "Leaking pipeline on market street", "Hand pump broken"},
		models.CategorySanitation:  {"Garbage not collected", "Open drain overflowing", "Public toilet locked"},
		models.CategoryElectricity: {"Street lights not working", "Frequent power cuts", "Transformer sparking"},
		models.CategoryHealth:      {"Health center understaffed", "No medicines at dispensary", "Mosquito fogging needed"},
		models.CategoryEducation:   {"School roof leaking", "Teacher absent for weeks", "No drinking water at school"},
		models.CategoryOther:       {"Stray cattle on highway", "Bus stop shelter damaged", "Park encroached"},
	}
)

// Run seeds db. tx is used for the hierarchy's multi-document writes.
func Run(ctx context.Context, db *mongo.Database, tx hierarchy.Transactor, opts Options, logger *zap.Logger) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = withDefaults(opts)
	var sum Summary

	if opts.Drop {
		if err := db.Drop(ctx); err != nil {
			return sum, fmt.Errorf("drop database: %w", err)
		}
		logger.Info("database dropped", zap.String("database", db.Name()))
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		return sum, fmt.Errorf("validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		return sum, fmt.Errorf("indexes: %w", err)
	}

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15))
	hash, err := authutil.HashPassword(Password)
	if err != nil {
		return sum, err
	}
	users := userstore.New(db)
	svc := hierarchy.NewForDB(db, tx, logger)

	if _, created, err := ensureUser(ctx, users, "Site Admin", "admin@civictrack.local", models.RoleAdmin, hash); err != nil {
		return sum, err
	} else if created {
		sum.Admins++
	}

	citizens := make([]primitive.ObjectID, 0, opts.Citizens)
	for i := 1; i <= opts.Citizens; i++ {
		u, created, err := ensureUser(ctx, users, fmt.Sprintf("Citizen %d", i), fmt.Sprintf("citizen%d@civictrack.local", i), models.RoleCitizen, hash)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Citizens++
		}
		citizens = append(citizens, u.ID)
	}

	var panchayats []models.Panchayat
	for i := 1; i <= opts.Constituencies; i++ {
		place := placeNames[(i-1)%len(placeNames)]
		mla, created, err := ensureUser(ctx, users, fmt.Sprintf("MLA %s", place), fmt.Sprintf("mla%d@civictrack.local", i), models.RoleMLA, hash)
		if err != nil {
			return sum, err
		}
		if created {
			sum.MLAs++
		}

		code := fmt.Sprintf("C%03d", i)
		c, err := svc.CreateConstituency(ctx, hierarchy.ConstituencyInput{
			Name:           fmt.Sprintf("%s %d", place, i),
			ConstituencyID: code,
			MLAID:          mla.ID.Hex(),
		})
		if err != nil {
			if apierr.KindOf(err) != apierr.KindConflict {
				return sum, fmt.Errorf("constituency %s: %w", code, err)
			}
			sum.Skipped = append(sum.Skipped, "constituency "+code)
			continue
		}
		sum.Constituencies++
		if opts.Panchayats < 1 {
			continue
		}

		res, err := svc.AddPanchayatsToConstituency(ctx, c.ID.Hex(), hierarchy.ConstituencyPanchayatsInput{
			Panchayats: nestedPanchayats(code, place, opts.Panchayats, opts.Wards),
		})
		if err != nil {
			return sum, fmt.Errorf("panchayats of %s: %w", code, err)
		}
		for _, e := range res.Errors {
			sum.Skipped = append(sum.Skipped, fmt.Sprintf("panchayat %s (%s)", e.Name, e.Error))
		}
		for _, p := range res.Created {
			sum.Panchayats++
			sum.Wards += len(p.WardList)
		}
		panchayats = append(panchayats, res.Created...)
	}

	if len(panchayats) == 0 || len(citizens) == 0 {
		return sum, nil
	}

	issues := issuestore.New(db)
	votes := votestore.New(db)
	for i := 0; i < opts.Issues; i++ {
		p := panchayats[rng.IntN(len(panchayats))]
		ward := p.WardList[rng.IntN(len(p.WardList))]
		category := models.Categories[rng.IntN(len(models.Categories))]
		choices := titles[category]

		stored, err := issues.Create(ctx, models.Issue{
			Title:          choices[rng.IntN(len(choices))],
			Description:    fmt.Sprintf("Reported by residents of %s, %s. Needs attention.", ward.WardName, p.Name),
			Category:       category,
			ConstituencyID: p.ConstituencyID,
			PanchayatID:    p.PanchayatID,
			WardID:         ward.WardID,
			ReportedBy:     citizens[rng.IntN(len(citizens))],
		})
		if err != nil {
			return sum, fmt.Errorf("issue %d: %w", i+1, err)
		}
		sum.Issues++

		from := models.IssuePending
		for _, to := range lifecycles[rng.IntN(len(lifecycles))] {
			if _, err := issues.Transition(ctx, stored.ID, from, to, "Updated by seed"); err != nil {
				return sum, fmt.Errorf("issue %s: %w", stored.Ticket, err)
			}
			from = to
		}

		// Each citizen upvotes at most once.
		for _, idx := range rng.Perm(len(citizens))[:rng.IntN(len(citizens)+1)] {
			if _, err := votes.Create(ctx, citizens[idx], stored.ID); err != nil {
				if errors.Is(err, votestore.ErrDuplicateVote) {
					continue
				}
				return sum, err
			}
			if _, err := issues.AddUpvotes(ctx, stored.ID, 1); err != nil {
				return sum, err
			}
			sum.Upvotes++
		}
	}

	logger.Info("seed complete",
		zap.Int("constituencies", sum.Constituencies),
		zap.Int("panchayats", sum.Panchayats),
		zap.Int("issues", sum.Issues))
	return sum, nil
}

func withDefaults(o Options) Options {
	if o.Wards < 1 {
		o.Wards = 1
	}
	if o.Citizens <= 0 {
		o.Citizens = max(3, o.Issues/4)
	}
	return o
}

func nestedPanchayats(code, place string, n, wards int) []hierarchy.NestedPanchayatInput {
	out := make([]hierarchy.NestedPanchayatInput, 0, n)
	for j := 1; j <= n; j++ {
		pcode := fmt.Sprintf("%s-P%02d", code, j)
		wl := make([]hierarchy.WardInput, 0, wards)
		for k := 1; k <= wards; k++ {
			wl = append(wl, hierarchy.WardInput{
				WardID:   fmt.Sprintf("%s-W%02d", pcode, k),
				WardName: fmt.Sprintf("Ward %d", k),
			})
		}
		out = append(out, hierarchy.NestedPanchayatInput{
			Name:        fmt.Sprintf("%s Gram Panchayat %d", place, j),
			PanchayatID: pcode,
			WardList:    wl,
		})
	}
	return out
}

// ensureUser returns the user with email, creating it when missing.
func ensureUser(ctx context.Context, users *userstore.Store, name, email, role, hash string) (models.User, bool, error) {
	if u, err := users.GetByEmail(ctx, email); err == nil {
		return *u, false, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, false, err
	}
	u, err := users.Create(ctx, models.User{FullName: name, Email: email, Role: role, PasswordHash: hash})
	if err != nil {
		return models.User{}, false, fmt.Errorf("user %s: %w", email, err)
	}
	return u, true, nil
}
