package hierarchy

import "github.com/dalemusser/civictrack/internal/app/system/normalize"

// Request payloads for the hierarchy endpoints. Field rules are enforced
// by inputval on the normalized copy; errors name the JSON path
// (e.g. "ward_list[1].ward_name").

// WardInput is one ward inside a panchayat's ward_list.
type WardInput struct {
	WardID   string `json:"ward_id" validate:"required,notblank,min=1,max=50"`
	WardName string `json:"ward_name" validate:"required,notblank,min=2,max=100"`
}

// PanchayatInput creates a standalone panchayat.
type PanchayatInput struct {
	Name           string      `json:"name" validate:"required,notblank,min=2,max=100"`
	PanchayatID    string      `json:"panchayat_id" validate:"required,notblank,min=1,max=50"`
	ConstituencyID string      `json:"constituency_id" validate:"required,notblank"`
	WardList       []WardInput `json:"ward_list" validate:"required,min=1,dive"`
}

// NestedPanchayatInput is a panchayat created under a constituency; its
// constituency_id comes from the path.
type NestedPanchayatInput struct {
	Name        string      `json:"name" validate:"required,notblank,min=2,max=100"`
	PanchayatID string      `json:"panchayat_id" validate:"required,notblank,min=1,max=50"`
	WardList    []WardInput `json:"ward_list" validate:"required,min=1,dive"`
}

type BulkPanchayatInput struct {
	Panchayats []PanchayatInput `json:"panchayats" validate:"required,min=1,dive"`
}

type ConstituencyPanchayatsInput struct {
	Panchayats []NestedPanchayatInput `json:"panchayats" validate:"required,min=1,dive"`
}

// ConstituencyInput creates a constituency.
type ConstituencyInput struct {
	Name           string   `json:"name" validate:"required,notblank,min=2,max=100"`
	ConstituencyID string   `json:"constituency_id" validate:"required,notblank,min=1,max=50"`
	MLAID          string   `json:"mla_id" validate:"required,objectid"`
	Panchayats     []string `json:"panchayats,omitempty" validate:"omitempty,dive,objectid"`
}

type BulkConstituencyInput struct {
	Constituencies []ConstituencyInput `json:"constituencies" validate:"required,min=1,dive"`
}

// UpdateConstituencyInput is a partial update; nil fields are unchanged.
type UpdateConstituencyInput struct {
	Name           *string   `json:"name,omitempty" validate:"omitempty,notblank,min=2,max=100"`
	ConstituencyID *string   `json:"constituency_id,omitempty" validate:"omitempty,notblank,min=1,max=50"`
	MLAID          *string   `json:"mla_id,omitempty" validate:"omitempty,objectid"`
	Panchayats     *[]string `json:"panchayats,omitempty" validate:"omitempty,dive,objectid"`
}

// UpdatePanchayatInput is a partial update. A provided ward_list replaces
// the stored one wholesale.
type UpdatePanchayatInput struct {
	Name           *string      `json:"name,omitempty" validate:"omitempty,notblank,min=2,max=100"`
	PanchayatID    *string      `json:"panchayat_id,omitempty" validate:"omitempty,notblank,min=1,max=50"`
	ConstituencyID *string      `json:"constituency_id,omitempty" validate:"omitempty,notblank"`
	WardList       *[]WardInput `json:"ward_list,omitempty" validate:"omitempty,min=1,dive"`
}

// AddWardsInput appends wards to an existing panchayat.
type AddWardsInput struct {
	WardList []WardInput `json:"ward_list" validate:"required,min=1,dive"`
}

// The normalized methods return copies with ids trimmed and names
// whitespace-collapsed, so length rules apply to what gets stored.

func (w WardInput) normalized() WardInput {
	return WardInput{WardID: normalize.ID(w.WardID), WardName: normalize.Name(w.WardName)}
}

func normalizedWards(in []WardInput) []WardInput {
	if in == nil {
		return nil
	}
	out := make([]WardInput, len(in))
	for i, w := range in {
		out[i] = w.normalized()
	}
	return out
}

func normalizedStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = normalize.ID(s)
	}
	return out
}

func (in PanchayatInput) normalized() PanchayatInput {
	return PanchayatInput{
		Name:           normalize.Name(in.Name),
		PanchayatID:    normalize.ID(in.PanchayatID),
		ConstituencyID: normalize.ID(in.ConstituencyID),
		WardList:       normalizedWards(in.WardList),
	}
}

func (in NestedPanchayatInput) normalized() NestedPanchayatInput {
	return NestedPanchayatInput{
		Name:        normalize.Name(in.Name),
		PanchayatID: normalize.ID(in.PanchayatID),
		WardList:    normalizedWards(in.WardList),
	}
}

func (in BulkPanchayatInput) normalized() BulkPanchayatInput {
	if in.Panchayats == nil {
		return in
	}
	out := make([]PanchayatInput, len(in.Panchayats))
	for i, p := range in.Panchayats {
		out[i] = p.normalized()
	}
	return BulkPanchayatInput{Panchayats: out}
}

func (in ConstituencyPanchayatsInput) normalized() ConstituencyPanchayatsInput {
	if in.Panchayats == nil {
		return in
	}
	out := make([]NestedPanchayatInput, len(in.Panchayats))
	for i, p := range in.Panchayats {
		out[i] = p.normalized()
	}
	return ConstituencyPanchayatsInput{Panchayats: out}
}

func (in ConstituencyInput) normalized() ConstituencyInput {
	return ConstituencyInput{
		Name:           normalize.Name(in.Name),
		ConstituencyID: normalize.ID(in.ConstituencyID),
		MLAID:          normalize.ID(in.MLAID),
		Panchayats:     normalizedStrings(in.Panchayats),
	}
}

func (in BulkConstituencyInput) normalized() BulkConstituencyInput {
	if in.Constituencies == nil {
		return in
	}
	out := make([]ConstituencyInput, len(in.Constituencies))
	for i, c := range in.Constituencies {
		out[i] = c.normalized()
	}
	return BulkConstituencyInput{Constituencies: out}
}

func (in UpdateConstituencyInput) normalized() UpdateConstituencyInput {
	out := UpdateConstituencyInput{
		Name:           mapPtr(in.Name, normalize.Name),
		ConstituencyID: mapPtr(in.ConstituencyID, normalize.ID),
		MLAID:          mapPtr(in.MLAID, normalize.ID),
	}
	if in.Panchayats != nil {
		ps := normalizedStrings(*in.Panchayats)
		out.Panchayats = &ps
	}
	return out
}

func (in UpdatePanchayatInput) normalized() UpdatePanchayatInput {
	out := UpdatePanchayatInput{
		Name:           mapPtr(in.Name, normalize.Name),
		PanchayatID:    mapPtr(in.PanchayatID, normalize.ID),
		ConstituencyID: mapPtr(in.ConstituencyID, normalize.ID),
	}
	if in.WardList != nil {
		wl := normalizedWards(*in.WardList)
		out.WardList = &wl
	}
	return out
}

func (in AddWardsInput) normalized() AddWardsInput {
	return AddWardsInput{WardList: normalizedWards(in.WardList)}
}

func mapPtr(p *string, fn func(string) string) *string {
	if p == nil {
		return nil
	}
	v := fn(*p)
	return &v
}
