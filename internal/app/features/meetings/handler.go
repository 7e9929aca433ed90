// internal/app/features/meetings/handler.go
package meetings

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	departmentstore "github.com/dalemusser/civictrack/internal/app/store/departments"
	meetingstore "github.com/dalemusser/civictrack/internal/app/store/meetings"
	notificationstore "github.com/dalemusser/civictrack/internal/app/store/notifications"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB        *mongo.Database
	Hierarchy *hierarchy.Service
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, svc *hierarchy.Service, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Hierarchy: svc, Log: logger}
}

type createInput struct {
	Name           string   `json:"name" validate:"required,notblank,min=3,max=200"`
	ConstituencyID string   `json:"constituency_id" validate:"required,notblank"`
	Departments    []string `json:"departments" validate:"required,min=1,dive,objectid"`
	Date           string   `json:"date" validate:"required,ymd"`
	Time           string   `json:"time" validate:"required,hhmm"`
	Agenda         string   `json:"agenda,omitempty" validate:"omitempty,max=2000"`
}

// HandleCreate handles POST /api/meetings. MLAs may only schedule meetings
// for the constituency they represent.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
		return
	}

	var in createInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Name = normalize.Name(in.Name)
	in.ConstituencyID = normalize.ID(in.ConstituencyID)
	in.Agenda = normalize.Text(in.Agenda)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Hierarchy.ConstituencyByCode(ctx, in.ConstituencyID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !authz.CanManageConstituency(r, c) {
		respond.Error(w, r, h.Log, apierr.Forbidden("You can only schedule meetings for your own constituency"))
		return
	}

	seen := make(map[primitive.ObjectID]struct{}, len(in.Departments))
	depts := make([]primitive.ObjectID, 0, len(in.Departments))
	for _, raw := range in.Departments {
		id, _ := primitive.ObjectIDFromHex(raw)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		depts = append(depts, id)
	}
	n, err := departmentstore.New(h.DB).CountByIDs(ctx, depts)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if n != int64(len(depts)) {
		respond.Error(w, r, h.Log, apierr.NotFound("One or more departments not found"))
		return
	}

	m, err := meetingstore.New(h.DB).Create(ctx, models.Meeting{
		Name:           in.Name,
		ConstituencyID: c.ConstituencyID,
		Departments:    depts,
		Date:           in.Date,
		Time:           in.Time,
		Agenda:         in.Agenda,
		CreatedBy:      uid,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if c.MLAID != uid {
		msg := fmt.Sprintf("Meeting %q scheduled for %s at %s", m.Name, m.Date, m.Time)
		if _, err := notificationstore.New(h.DB).Create(ctx, c.MLAID, models.NotifyMeeting, msg, &m.ID); err != nil {
			h.Log.Warn("notification not stored", zap.String("meeting_id", m.ID.Hex()), zap.Error(err))
		}
	}
	respond.OK(w, http.StatusCreated, m, "Meeting scheduled successfully")
}

// ServeList handles GET /api/meetings?constituency_id=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	code := normalize.ID(query.Get(r, "constituency_id"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if code != "" {
		if _, err := h.Hierarchy.ConstituencyByCode(ctx, code); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
	}
	list, err := meetingstore.New(h.DB).List(ctx, code)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, list, "")
}
