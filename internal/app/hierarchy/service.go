// Package hierarchy owns the constituency / panchayat / ward rules:
// uniqueness of business ids, existence of foreign keys, and the
// panchayat back-references kept on each constituency.
//
// The unique indexes on constituencies.constituency_id and
// panchayats.panchayat_id are authoritative. The pre-checks here only
// turn the common case into a clearer message; a duplicate that slips
// past them still surfaces as a ConflictError from the store.
package hierarchy

import (
	"context"
	"errors"
	"fmt"

	constituencystore "github.com/dalemusser/civictrack/internal/app/store/constituencies"
	panchayatstore "github.com/dalemusser/civictrack/internal/app/store/panchayats"
	userstore "github.com/dalemusser/civictrack/internal/app/store/users"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ConstituencyStore is the subset of constituencystore.Store the service uses.
type ConstituencyStore interface {
	Create(ctx context.Context, c models.Constituency) (models.Constituency, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error)
	GetByCode(ctx context.Context, code string) (*models.Constituency, error)
	CodeExists(ctx context.Context, code string, exclude primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]models.Constituency, error)
	Update(ctx context.Context, id primitive.ObjectID, upd constituencystore.Update) (*models.Constituency, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	AddPanchayatRef(ctx context.Context, code string, panchayatID primitive.ObjectID) error
	RemovePanchayatRef(ctx context.Context, code string, panchayatID primitive.ObjectID) error
}

// PanchayatStore is the subset of panchayatstore.Store the service uses.
type PanchayatStore interface {
	Create(ctx context.Context, p models.Panchayat) (models.Panchayat, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Panchayat, error)
	GetByCode(ctx context.Context, code string) (*models.Panchayat, error)
	CodeExists(ctx context.Context, code string, exclude primitive.ObjectID) (bool, error)
	CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	List(ctx context.Context) ([]models.Panchayat, error)
	ListByConstituency(ctx context.Context, constituencyCode string) ([]models.Panchayat, error)
	CountByConstituency(ctx context.Context, constituencyCode string) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, upd panchayatstore.Update) (*models.Panchayat, error)
	AddWards(ctx context.Context, id primitive.ObjectID, wards []models.Ward) (*models.Panchayat, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Panchayat, error)
}

// UserLookup resolves the MLA referenced by a constituency.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Transactor runs fn atomically where the deployment allows it.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the hierarchy operations.
type Service struct {
	constituencies ConstituencyStore
	panchayats     PanchayatStore
	users          UserLookup
	tx             Transactor
	log            *zap.Logger

	bulkConcurrency int
}

// New returns a Service that processes bulk requests sequentially.
func New(cs ConstituencyStore, ps PanchayatStore, users UserLookup, tx Transactor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		constituencies:  cs,
		panchayats:      ps,
		users:           users,
		tx:              tx,
		log:             logger,
		bulkConcurrency: 1,
	}
}

// NewForDB wires the service to the Mongo stores on db.
func NewForDB(db *mongo.Database, tx Transactor, logger *zap.Logger) *Service {
	return New(constituencystore.New(db), panchayatstore.New(db), userstore.New(db), tx, logger)
}

// WithBulkConcurrency sets how many bulk items are created at once.
// Values below 1 are treated as 1.
func (s *Service) WithBulkConcurrency(n int) *Service {
	if n < 1 {
		n = 1
	}
	s.bulkConcurrency = n
	return s
}

// parseID converts a hex id from a path or body into an ObjectID.
func parseID(field, raw string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(normalize.ID(raw))
	if err != nil {
		return primitive.NilObjectID, apierr.Validation(field, field+" must be a valid id")
	}
	return oid, nil
}

func parseIDs(field string, raw []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]bool, len(raw))
	for i, r := range raw {
		oid, err := parseID(fmt.Sprintf("%s[%d]", field, i), r)
		if err != nil {
			return nil, err
		}
		if seen[oid] {
			continue
		}
		seen[oid] = true
		out = append(out, oid)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// notFoundOr maps a missing document to a NotFoundError and passes
// anything else through unchanged.
func notFoundOr(err error, msg string) error {
	if isNotFound(err) {
		return apierr.NotFound(msg)
	}
	return err
}

// wardsFrom normalizes wards and rejects duplicate ward_ids within the list.
func wardsFrom(in []WardInput) ([]models.Ward, error) {
	out := make([]models.Ward, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, w := range in {
		id := normalize.ID(w.WardID)
		if seen[id] {
			return nil, apierr.Conflict("ward_list", fmt.Sprintf("ward_id %q appears more than once in ward_list", id))
		}
		seen[id] = true
		out = append(out, models.Ward{WardID: id, WardName: normalize.Name(w.WardName)})
	}
	return out, nil
}
