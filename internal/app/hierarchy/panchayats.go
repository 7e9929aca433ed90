package hierarchy

import (
	"context"
	"errors"
	"fmt"

	panchayatstore "github.com/dalemusser/civictrack/internal/app/store/panchayats"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/bulk"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreatePanchayat inserts a panchayat under an existing constituency and
// records it on the constituency's back-reference list.
func (s *Service) CreatePanchayat(ctx context.Context, in PanchayatInput) (models.Panchayat, error) {
	in = in.normalized()
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Panchayat{}, err
	}
	return s.createPanchayat(ctx, in)
}

func (s *Service) createPanchayat(ctx context.Context, in PanchayatInput) (models.Panchayat, error) {
	parent, err := s.ConstituencyByCode(ctx, in.ConstituencyID)
	if err != nil {
		return models.Panchayat{}, err
	}
	if err := mayChange(ctx, parent); err != nil {
		return models.Panchayat{}, err
	}

	wards, err := wardsFrom(in.WardList)
	if err != nil {
		return models.Panchayat{}, err
	}

	code := normalize.ID(in.PanchayatID)
	if err := s.checkPanchayatCodeFree(ctx, code, primitive.NilObjectID); err != nil {
		return models.Panchayat{}, err
	}

	var created models.Panchayat
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		p, err := s.panchayats.Create(ctx, models.Panchayat{
			Name:           in.Name,
			PanchayatID:    code,
			ConstituencyID: parent.ConstituencyID,
			WardList:       wards,
		})
		if err != nil {
			return err
		}
		if err := s.constituencies.AddPanchayatRef(ctx, parent.ConstituencyID, p.ID); err != nil {
			return err
		}
		created = p
		return nil
	})
	if errors.Is(err, panchayatstore.ErrDuplicatePanchayatID) {
		return models.Panchayat{}, duplicatePanchayat(code)
	}
	if err != nil {
		return models.Panchayat{}, err
	}
	s.log.Info("panchayat created",
		zap.String("panchayat_id", created.PanchayatID),
		zap.String("constituency_id", created.ConstituencyID),
		zap.Int("wards", len(created.WardList)))
	return created, nil
}

// BulkCreatePanchayats creates each panchayat independently.
func (s *Service) BulkCreatePanchayats(ctx context.Context, in BulkPanchayatInput) (bulk.Result[models.Panchayat], error) {
	in = in.normalized()
	if err := inputval.Validate(in).Err(); err != nil {
		return bulk.Result[models.Panchayat]{}, err
	}
	return bulk.RunConcurrent(ctx, s.bulkConcurrency, in.Panchayats,
		func(p PanchayatInput) string { return p.Name },
		s.createPanchayat)
}

// AddPanchayatsToConstituency creates nested panchayats under the
// constituency with ObjectID constituencyID.
func (s *Service) AddPanchayatsToConstituency(ctx context.Context, constituencyID string, in ConstituencyPanchayatsInput) (bulk.Result[models.Panchayat], error) {
	in = in.normalized()
	if err := inputval.Validate(in).Err(); err != nil {
		return bulk.Result[models.Panchayat]{}, err
	}
	parent, err := s.GetConstituency(ctx, constituencyID)
	if err != nil {
		return bulk.Result[models.Panchayat]{}, err
	}
	if err := mayChange(ctx, parent); err != nil {
		return bulk.Result[models.Panchayat]{}, err
	}
	return bulk.RunConcurrent(ctx, s.bulkConcurrency, in.Panchayats,
		func(p NestedPanchayatInput) string { return p.Name },
		func(ctx context.Context, p NestedPanchayatInput) (models.Panchayat, error) {
			return s.createPanchayat(ctx, PanchayatInput{
				Name:           p.Name,
				PanchayatID:    p.PanchayatID,
				ConstituencyID: parent.ConstituencyID,
				WardList:       p.WardList,
			})
		})
}

// GetPanchayat loads a panchayat by ObjectID.
func (s *Service) GetPanchayat(ctx context.Context, id string) (*models.Panchayat, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	p, err := s.panchayats.GetByID(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, "Panchayat not found")
	}
	return p, nil
}

func (s *Service) ListPanchayats(ctx context.Context) ([]models.Panchayat, error) {
	return s.panchayats.List(ctx)
}

// ListPanchayatsByConstituency lists the panchayats of the constituency
// with business id code. An unknown constituency is a NotFoundError.
func (s *Service) ListPanchayatsByConstituency(ctx context.Context, code string) ([]models.Panchayat, error) {
	parent, err := s.ConstituencyByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.panchayats.ListByConstituency(ctx, parent.ConstituencyID)
}

// UpdatePanchayat applies a partial update. Moving a panchayat to another
// constituency moves its back-reference too.
func (s *Service) UpdatePanchayat(ctx context.Context, id string, in UpdatePanchayatInput) (*models.Panchayat, error) {
	in = in.normalized()
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	cur, err := s.GetPanchayat(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.mayChangeIn(ctx, cur.ConstituencyID); err != nil {
		return nil, err
	}

	upd := panchayatstore.Update{Name: in.Name}

	if in.PanchayatID != nil {
		code := normalize.ID(*in.PanchayatID)
		if code != cur.PanchayatID {
			if err := s.checkPanchayatCodeFree(ctx, code, cur.ID); err != nil {
				return nil, err
			}
		}
		upd.PanchayatID = &code
	}

	moveTo := ""
	if in.ConstituencyID != nil {
		parent, err := s.ConstituencyByCode(ctx, *in.ConstituencyID)
		if err != nil {
			return nil, err
		}
		if parent.ConstituencyID != cur.ConstituencyID {
			if err := mayChange(ctx, parent); err != nil {
				return nil, err
			}
			moveTo = parent.ConstituencyID
		}
		upd.ConstituencyID = &parent.ConstituencyID
	}

	if in.WardList != nil {
		wards, err := wardsFrom(*in.WardList)
		if err != nil {
			return nil, err
		}
		upd.WardList = &wards
	}

	var out *models.Panchayat
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		p, err := s.panchayats.Update(ctx, cur.ID, upd)
		if err != nil {
			return err
		}
		if moveTo != "" {
			if err := s.constituencies.RemovePanchayatRef(ctx, cur.ConstituencyID, cur.ID); err != nil {
				return err
			}
			if err := s.constituencies.AddPanchayatRef(ctx, moveTo, cur.ID); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	switch {
	case errors.Is(err, panchayatstore.ErrDuplicatePanchayatID):
		code := cur.PanchayatID
		if upd.PanchayatID != nil {
			code = *upd.PanchayatID
		}
		return nil, duplicatePanchayat(code)
	case err != nil:
		return nil, notFoundOr(err, "Panchayat not found")
	}
	return out, nil
}

// AddWards appends wards to a panchayat. A ward_id that already exists in
// the panchayat, or repeats within the request, fails the whole request.
func (s *Service) AddWards(ctx context.Context, id string, in AddWardsInput) (*models.Panchayat, error) {
	in = in.normalized()
	if err := inputval.Validate(in).Err(); err != nil {
		return nil, err
	}
	cur, err := s.GetPanchayat(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.mayChangeIn(ctx, cur.ConstituencyID); err != nil {
		return nil, err
	}
	wards, err := wardsFrom(in.WardList)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(cur.WardList))
	for _, w := range cur.WardList {
		existing[w.WardID] = true
	}
	for _, w := range wards {
		if existing[w.WardID] {
			return nil, duplicateWard(w.WardID)
		}
	}

	out, err := s.panchayats.AddWards(ctx, cur.ID, wards)
	switch {
	case errors.Is(err, panchayatstore.ErrWardExists):
		// Lost a race with a concurrent add.
		return nil, apierr.Conflict("ward_list", panchayatstore.ErrWardExists.Error())
	case err != nil:
		return nil, notFoundOr(err, "Panchayat not found")
	}
	s.log.Info("wards added",
		zap.String("panchayat_id", out.PanchayatID),
		zap.Int("added", len(wards)),
		zap.Int("total", len(out.WardList)))
	return out, nil
}

// DeletePanchayat removes a panchayat and its constituency back-reference.
func (s *Service) DeletePanchayat(ctx context.Context, id string) error {
	oid, err := parseID("id", id)
	if err != nil {
		return err
	}
	if guardFrom(ctx) != nil {
		cur, err := s.panchayats.GetByID(ctx, oid)
		if err != nil {
			return notFoundOr(err, "Panchayat not found")
		}
		if err := s.mayChangeIn(ctx, cur.ConstituencyID); err != nil {
			return err
		}
	}
	var deleted *models.Panchayat
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		p, err := s.panchayats.Delete(ctx, oid)
		if err != nil {
			return err
		}
		deleted = p
		return s.constituencies.RemovePanchayatRef(ctx, p.ConstituencyID, p.ID)
	})
	if err != nil {
		return notFoundOr(err, "Panchayat not found")
	}
	s.log.Info("panchayat deleted", zap.String("panchayat_id", deleted.PanchayatID))
	return nil
}

// ResolveWard checks that wardID is a ward of panchayat panchayatCode,
// which in turn belongs to constituency constituencyCode.
func (s *Service) ResolveWard(ctx context.Context, constituencyCode, panchayatCode, wardID string) (*models.Constituency, error) {
	c, err := s.ConstituencyByCode(ctx, constituencyCode)
	if err != nil {
		return nil, err
	}
	p, err := s.panchayats.GetByCode(ctx, panchayatCode)
	if err != nil {
		return nil, notFoundOr(err, "Panchayat not found")
	}
	if p.ConstituencyID != c.ConstituencyID {
		return nil, apierr.Validation("panchayat_id",
			fmt.Sprintf("panchayat %q does not belong to constituency %q", p.PanchayatID, c.ConstituencyID))
	}
	if !p.HasWard(normalize.ID(wardID)) {
		return nil, apierr.NotFound("Ward not found")
	}
	return c, nil
}

func (s *Service) checkPanchayatCodeFree(ctx context.Context, code string, exclude primitive.ObjectID) error {
	taken, err := s.panchayats.CodeExists(ctx, code, exclude)
	if err != nil {
		return err
	}
	if taken {
		return duplicatePanchayat(code)
	}
	return nil
}

func duplicatePanchayat(code string) error {
	return apierr.Conflict("panchayat_id", fmt.Sprintf("panchayat_id %q already exists", code))
}

func duplicateWard(wardID string) error {
	return apierr.Conflict("ward_list", fmt.Sprintf("ward_id %q already exists in this panchayat", wardID))
}
