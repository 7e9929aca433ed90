package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plaintext password of every fixture user.
const FixturePassword = "Password123"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active user whose password is FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}
	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateMLA creates a test MLA user.
func (f *Fixtures) CreateMLA(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleMLA)
}

// CreateCitizen creates a test citizen user.
func (f *Fixtures) CreateCitizen(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleCitizen)
}

// CreateConstituency creates a constituency represented by mlaID.
func (f *Fixtures) CreateConstituency(ctx context.Context, name, code string, mlaID primitive.ObjectID) models.Constituency {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Constituency{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		ConstituencyID: code,
		MLAID:          mlaID,
		Panchayats:     []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("constituencies").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test constituency: %v", err)
	}
	return c
}

// CreatePanchayat creates a panchayat under constituencyCode and records the
// back-reference on the constituency.
func (f *Fixtures) CreatePanchayat(ctx context.Context, name, code, constituencyCode string, wards ...models.Ward) models.Panchayat {
	f.t.Helper()

	if len(wards) == 0 {
		wards = []models.Ward{{WardID: code + "-W1", WardName: "Ward One"}}
	}
	now := time.Now().UTC()
	p := models.Panchayat{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		PanchayatID:    code,
		ConstituencyID: constituencyCode,
		WardList:       wards,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("panchayats").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test panchayat: %v", err)
	}
	_, err := f.db.Collection("constituencies").UpdateOne(ctx,
		map[string]any{"constituency_id": constituencyCode},
		map[string]any{"$addToSet": map[string]any{"panchayats": p.ID}})
	if err != nil {
		f.t.Fatalf("failed to link test panchayat: %v", err)
	}
	return p
}

// CreateIssue creates a pending issue in the first ward of p.
func (f *Fixtures) CreateIssue(ctx context.Context, title string, reporter primitive.ObjectID, p models.Panchayat) models.Issue {
	f.t.Helper()

	now := time.Now().UTC()
	is := models.Issue{
		ID:             primitive.NewObjectID(),
		Ticket:         "ISS-" + primitive.NewObjectID().Hex()[16:],
		Title:          title,
		Description:    "Fixture issue description",
		Category:       models.CategoryRoad,
		Status:         models.IssuePending,
		ConstituencyID: p.ConstituencyID,
		PanchayatID:    p.PanchayatID,
		WardID:         p.WardList[0].WardID,
		ReportedBy:     reporter,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("issues").InsertOne(ctx, is); err != nil {
		f.t.Fatalf("failed to create test issue: %v", err)
	}
	return is
}

// CreateDepartment creates a test department.
func (f *Fixtures) CreateDepartment(ctx context.Context, name string) models.Department {
	f.t.Helper()

	d := models.Department{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("departments").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test department: %v", err)
	}
	return d
}
