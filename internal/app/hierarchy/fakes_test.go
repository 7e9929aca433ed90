package hierarchy_test

import (
	"context"
	"errors"
	"sync"
	"time"

	constituencystore "github.com/dalemusser/civictrack/internal/app/store/constituencies"
	panchayatstore "github.com/dalemusser/civictrack/internal/app/store/panchayats"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory stand-ins for the Mongo stores. Unique business ids are
// enforced the way the unique indexes enforce them.

type fakeConstituencies struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Constituency
	fail error // returned by Create when set
}

func newFakeConstituencies() *fakeConstituencies {
	return &fakeConstituencies{byID: map[primitive.ObjectID]models.Constituency{}}
}

func (f *fakeConstituencies) Create(_ context.Context, c models.Constituency) (models.Constituency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return models.Constituency{}, f.fail
	}
	for _, ex := range f.byID {
		if ex.ConstituencyID == c.ConstituencyID {
			return models.Constituency{}, constituencystore.ErrDuplicateConstituencyID
		}
	}
	c.ID = primitive.NewObjectID()
	if c.Panchayats == nil {
		c.Panchayats = []primitive.ObjectID{}
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeConstituencies) GetByID(_ context.Context, id primitive.ObjectID) (*models.Constituency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &c, nil
}

func (f *fakeConstituencies) GetByCode(_ context.Context, code string) (*models.Constituency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.ConstituencyID == code {
			c := c
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeConstituencies) CodeExists(_ context.Context, code string, exclude primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.byID {
		if c.ConstituencyID == code && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConstituencies) List(_ context.Context) ([]models.Constituency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Constituency{}
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeConstituencies) Update(_ context.Context, id primitive.ObjectID, upd constituencystore.Update) (*models.Constituency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.ConstituencyID != nil {
		c.ConstituencyID = *upd.ConstituencyID
	}
	if upd.MLAID != nil {
		c.MLAID = *upd.MLAID
	}
	if upd.Panchayats != nil {
		c.Panchayats = *upd.Panchayats
	}
	f.byID[id] = c
	return &c, nil
}

func (f *fakeConstituencies) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	return 1, nil
}

func (f *fakeConstituencies) AddPanchayatRef(_ context.Context, code string, pid primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.byID {
		if c.ConstituencyID != code {
			continue
		}
		for _, ref := range c.Panchayats {
			if ref == pid {
				return nil
			}
		}
		c.Panchayats = append(c.Panchayats, pid)
		f.byID[id] = c
	}
	return nil
}

func (f *fakeConstituencies) RemovePanchayatRef(_ context.Context, code string, pid primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.byID {
		if c.ConstituencyID != code {
			continue
		}
		kept := []primitive.ObjectID{}
		for _, ref := range c.Panchayats {
			if ref != pid {
				kept = append(kept, ref)
			}
		}
		c.Panchayats = kept
		f.byID[id] = c
	}
	return nil
}

type fakePanchayats struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Panchayat
}

func newFakePanchayats() *fakePanchayats {
	return &fakePanchayats{byID: map[primitive.ObjectID]models.Panchayat{}}
}

func (f *fakePanchayats) Create(_ context.Context, p models.Panchayat) (models.Panchayat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.byID {
		if ex.PanchayatID == p.PanchayatID {
			return models.Panchayat{}, panchayatstore.ErrDuplicatePanchayatID
		}
	}
	p.ID = primitive.NewObjectID()
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakePanchayats) GetByID(_ context.Context, id primitive.ObjectID) (*models.Panchayat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &p, nil
}

func (f *fakePanchayats) GetByCode(_ context.Context, code string) (*models.Panchayat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.PanchayatID == code {
			p := p
			return &p, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakePanchayats) CodeExists(_ context.Context, code string, exclude primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.byID {
		if p.PanchayatID == code && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePanchayats) CountByIDs(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := f.byID[id]; ok {
			n++
		}
	}
	return n, nil
}

func (f *fakePanchayats) List(_ context.Context) ([]models.Panchayat, error) {
	return f.filter(func(models.Panchayat) bool { return true }), nil
}

func (f *fakePanchayats) ListByConstituency(_ context.Context, code string) ([]models.Panchayat, error) {
	return f.filter(func(p models.Panchayat) bool { return p.ConstituencyID == code }), nil
}

func (f *fakePanchayats) CountByConstituency(ctx context.Context, code string) (int64, error) {
	ps, _ := f.ListByConstituency(ctx, code)
	return int64(len(ps)), nil
}

func (f *fakePanchayats) filter(keep func(models.Panchayat) bool) []models.Panchayat {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Panchayat{}
	for _, p := range f.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakePanchayats) Update(_ context.Context, id primitive.ObjectID, upd panchayatstore.Update) (*models.Panchayat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if upd.PanchayatID != nil {
		for oid, ex := range f.byID {
			if oid != id && ex.PanchayatID == *upd.PanchayatID {
				return nil, panchayatstore.ErrDuplicatePanchayatID
			}
		}
		p.PanchayatID = *upd.PanchayatID
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.ConstituencyID != nil {
		p.ConstituencyID = *upd.ConstituencyID
	}
	if upd.WardList != nil {
		p.WardList = *upd.WardList
	}
	f.byID[id] = p
	return &p, nil
}

func (f *fakePanchayats) AddWards(_ context.Context, id primitive.ObjectID, wards []models.Ward) (*models.Panchayat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for _, w := range wards {
		for _, ex := range p.WardList {
			if ex.WardID == w.WardID {
				return nil, panchayatstore.ErrWardExists
			}
		}
	}
	p.WardList = append(append([]models.Ward{}, p.WardList...), wards...)
	f.byID[id] = p
	return &p, nil
}

func (f *fakePanchayats) Delete(_ context.Context, id primitive.ObjectID) (*models.Panchayat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(f.byID, id)
	return &p, nil
}

type fakeUsers map[primitive.ObjectID]models.User

func (f fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

// directTx runs fn without a transaction, as txn.Runner does on a standalone server.
type directTx struct{}

func (directTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var errStorageDown = errors.New("storage unavailable")
