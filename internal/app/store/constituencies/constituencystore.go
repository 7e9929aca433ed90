package constituencystore

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

// ErrDuplicateConstituencyID is returned when constituency_id is already taken.
var ErrDuplicateConstituencyID = errors.New("a constituency with this constituency_id already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("constituencies")}
}

// Update holds the optional fields of a partial constituency update.
// Nil fields are left unchanged.
type Update struct {
	Name           *string
	ConstituencyID *string
	MLAID          *primitive.ObjectID
	Panchayats     *[]primitive.ObjectID
}

// Create inserts c with a fresh ObjectID and normalized name.
func (s *Store) Create(ctx context.Context, c models.Constituency) (models.Constituency, error) {
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	c.ConstituencyID = normalize.ID(c.ConstituencyID)
	if c.Panchayats == nil {
		c.Panchayats = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Constituency{}, ErrDuplicateConstituencyID
		}
		return models.Constituency{}, err
	}
	return c, nil
}

// GetByID loads a constituency by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error) {
	var c models.Constituency
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByCode loads a constituency by its business constituency_id.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Constituency, error) {
	var c models.Constituency
	if err := s.c.FindOne(ctx, bson.M{"constituency_id": normalize.ID(code)}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CodeExists reports whether code is used by a constituency other than exclude.
// Pass primitive.NilObjectID to check against all records.
func (s *Store) CodeExists(ctx context.Context, code string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"constituency_id": normalize.ID(code)}
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

// List returns all constituencies sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Constituency, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Constituency{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByMLA returns the constituencies represented by mlaID.
func (s *Store) ListByMLA(ctx context.Context, mlaID primitive.ObjectID) ([]models.Constituency, error) {
	cur, err := s.c.Find(ctx, bson.M{"mla_id": mlaID}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Constituency{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies upd and returns the updated document.
// Returns mongo.ErrNoDocuments when id does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Constituency, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.ConstituencyID != nil {
		set["constituency_id"] = normalize.ID(*upd.ConstituencyID)
	}
	if upd.MLAID != nil {
		set["mla_id"] = *upd.MLAID
	}
	if upd.Panchayats != nil {
		refs := *upd.Panchayats
		if refs == nil {
			refs = []primitive.ObjectID{}
		}
		set["panchayats"] = refs
	}

	var out models.Constituency
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateConstituencyID
		}
		return nil, err
	}
	return &out, nil
}

// Delete removes a constituency. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddPanchayatRef records panchayatID on the constituency with the given code.
func (s *Store) AddPanchayatRef(ctx context.Context, code string, panchayatID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"constituency_id": normalize.ID(code)},
		bson.M{
			"$addToSet": bson.M{"panchayats": panchayatID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}

// RemovePanchayatRef drops panchayatID from the constituency with the given code.
func (s *Store) RemovePanchayatRef(ctx context.Context, code string, panchayatID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"constituency_id": normalize.ID(code)},
		bson.M{
			"$pull": bson.M{"panchayats": panchayatID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}
