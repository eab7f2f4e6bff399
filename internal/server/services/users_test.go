package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/finapi/internal/common"
	"github.com/dmitrijs2005/finapi/internal/dbx"
	"github.com/dmitrijs2005/finapi/internal/server/auth"
	"github.com/dmitrijs2005/finapi/internal/server/config"
	"github.com/dmitrijs2005/finapi/internal/server/models"
	statementsrepo "github.com/dmitrijs2005/finapi/internal/server/repositories/statements"
	usersrepo "github.com/dmitrijs2005/finapi/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- fakes ---

type fakeUsersRepo struct {
	createErr  error
	byEmailOut *models.User
	byEmailErr error
	byIDOut    *models.User
	byIDErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

// fakeStatementsRepo keeps created statements in memory so balance arithmetic
// can be exercised end to end.
type fakeStatementsRepo struct {
	history   []models.Statement
	findErr   error
	createErr error
	byIDOut   *models.Statement
	byIDErr   error
}

func (f *fakeStatementsRepo) Create(ctx context.Context, st *models.Statement) (*models.Statement, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	st.ID = uuid.New()
	st.CreatedAt = time.Now()
	f.history = append(f.history, *st)
	return st, nil
}

func (f *fakeStatementsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Statement, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

func (f *fakeStatementsRepo) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]models.Statement, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.history, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeStatementsRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository              { return m.u }
func (m *fakeRepoManager) Statements(db dbx.DBTX) statementsrepo.Repository    { return m.s }
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func newUserService(t *testing.T, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
	}
	return NewUserService(nil, rm, cfg)
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newUserService(t, rm)

	user, err := s.Register(context.Background(), "John Doe", "john@example.com", "12345678")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatalf("expected generated id, got nil uuid")
	}
	if user.PasswordHash == "12345678" || user.PasswordHash == "" {
		t.Fatalf("password must be stored as a digest, got %q", user.PasswordHash)
	}
	if !auth.CheckPassword("12345678", user.PasswordHash) {
		t.Fatalf("stored digest does not verify against the plaintext")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrorAlreadyExists}}
	s := newUserService(t, rm)

	_, err := s.Register(context.Background(), "John Doe", "john@example.com", "12345678")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	digest, err := auth.HashPassword("12345678")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	stored := &models.User{ID: uuid.New(), Name: "John Doe", Email: "john@example.com", PasswordHash: digest}
	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailOut: stored}}
	s := newUserService(t, rm)

	user, token, err := s.Login(context.Background(), "john@example.com", "12345678")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != stored.ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	gotID, err := auth.GetUserIDFromToken(token, []byte("k"))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if gotID != stored.ID.String() {
		t.Fatalf("token user id mismatch: got %q want %q", gotID, stored.ID)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailErr: common.ErrorNotFound}}
	s := newUserService(t, rm)

	_, _, err := s.Login(context.Background(), "nobody@example.com", "12345678")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_WrongPassword_SameErrorAsUnknownEmail(t *testing.T) {
	digest, err := auth.HashPassword("12345678")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	stored := &models.User{ID: uuid.New(), Email: "john@example.com", PasswordHash: digest}
	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailOut: stored}}
	s := newUserService(t, rm)

	_, _, wrongPassErr := s.Login(context.Background(), "john@example.com", "wrong")
	if !errors.Is(wrongPassErr, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", wrongPassErr)
	}

	rm.u.byEmailOut = nil
	rm.u.byEmailErr = common.ErrorNotFound
	_, _, unknownEmailErr := s.Login(context.Background(), "nobody@example.com", "12345678")

	// both failure modes must be indistinguishable to the caller
	if !errors.Is(unknownEmailErr, wrongPassErr) {
		t.Fatalf("errors differ: %v vs %v", unknownEmailErr, wrongPassErr)
	}
}

func TestGetProfile_Success(t *testing.T) {
	stored := &models.User{ID: uuid.New(), Name: "John Doe", Email: "john@example.com"}
	rm := &fakeRepoManager{u: &fakeUsersRepo{byIDOut: stored}}
	s := newUserService(t, rm)

	user, err := s.GetProfile(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if user.Email != "john@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{byIDErr: common.ErrorNotFound}}
	s := newUserService(t, rm)

	_, err := s.GetProfile(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
