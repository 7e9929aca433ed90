package panchayatstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicatePanchayatID is returned when panchayat_id is already taken.
	ErrDuplicatePanchayatID = errors.New("a panchayat with this panchayat_id already exists")
	// ErrWardExists is returned by AddWards when a ward_id is already in the list.
	ErrWardExists = errors.New("a ward with this ward_id already exists in the panchayat")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("panchayats")}
}

// Update holds the optional fields of a partial panchayat update.
// WardList, when set, replaces the whole list.
type Update struct {
	Name           *string
	PanchayatID    *string
	ConstituencyID *string
	WardList       *[]models.Ward
}

func normalizeWards(in []models.Ward) []models.Ward {
	out := make([]models.Ward, len(in))
	for i, w := range in {
		out[i] = models.Ward{WardID: normalize.ID(w.WardID), WardName: normalize.Name(w.WardName)}
	}
	return out
}

// Create inserts p with a fresh ObjectID and normalized fields.
func (s *Store) Create(ctx context.Context, p models.Panchayat) (models.Panchayat, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	p.PanchayatID = normalize.ID(p.PanchayatID)
	p.ConstituencyID = normalize.ID(p.ConstituencyID)
	p.WardList = normalizeWards(p.WardList)
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Panchayat{}, ErrDuplicatePanchayatID
		}
		return models.Panchayat{}, err
	}
	return p, nil
}

// GetByID loads a panchayat by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Panchayat, error) {
	var p models.Panchayat
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByCode loads a panchayat by its business panchayat_id.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Panchayat, error) {
	var p models.Panchayat
	if err := s.c.FindOne(ctx, bson.M{"panchayat_id": normalize.ID(code)}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CodeExists reports whether code is used by a panchayat other than exclude.
func (s *Store) CodeExists(ctx context.Context, code string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"panchayat_id": normalize.ID(code)}
	if exclude != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	err := s.c.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// CountByIDs returns how many of ids exist.
func (s *Store) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Panchayat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Panchayat{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all panchayats sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Panchayat, error) {
	return s.find(ctx, bson.M{})
}

// ListByConstituency returns the panchayats of the constituency with the given code.
func (s *Store) ListByConstituency(ctx context.Context, constituencyCode string) ([]models.Panchayat, error) {
	return s.find(ctx, bson.M{"constituency_id": normalize.ID(constituencyCode)})
}

// CountByConstituency counts panchayats referencing constituencyCode.
func (s *Store) CountByConstituency(ctx context.Context, constituencyCode string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"constituency_id": normalize.ID(constituencyCode)})
}

// Update applies upd and returns the updated document.
// Returns mongo.ErrNoDocuments when id does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Panchayat, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.PanchayatID != nil {
		set["panchayat_id"] = normalize.ID(*upd.PanchayatID)
	}
	if upd.ConstituencyID != nil {
		set["constituency_id"] = normalize.ID(*upd.ConstituencyID)
	}
	if upd.WardList != nil {
		set["ward_list"] = normalizeWards(*upd.WardList)
	}

	var out models.Panchayat
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicatePanchayatID
		}
		return nil, err
	}
	return &out, nil
}

// AddWards appends wards to the panchayat's ward list in one atomic update.
// The update only matches when none of the new ward_ids is already present,
// so concurrent additions cannot introduce a duplicate.
// Returns ErrWardExists on a collision and mongo.ErrNoDocuments when id does not exist.
func (s *Store) AddWards(ctx context.Context, id primitive.ObjectID, wards []models.Ward) (*models.Panchayat, error) {
	wards = normalizeWards(wards)
	ids := make([]string, len(wards))
	for i, w := range wards {
		ids[i] = w.WardID
	}

	var out models.Panchayat
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "ward_list.ward_id": bson.M{"$nin": ids}},
		bson.M{
			"$push": bson.M{"ward_list": bson.M{"$each": wards}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Distinguish "no such panchayat" from "ward collision".
	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrWardExists
}

// Delete removes a panchayat and returns the deleted document.
// Returns mongo.ErrNoDocuments when id does not exist.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Panchayat, error) {
	var out models.Panchayat
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
