package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatapp-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeAccounts) Create(_ context.Context, email, name, passwordHash string) (*model.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, errors.New("duplicate key")
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Status:       model.StatusActive,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	f.byID[u.ID] = u
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeAccounts) UpdateLoginTime(_ context.Context, _ string) error  { return nil }
func (f *fakeAccounts) UpdateLogoutTime(_ context.Context, _ string) error { return nil }

type fakeSessions struct {
	tokens map[string]string // hash -> userID
}

func (f *fakeSessions) StoreRefreshToken(_ context.Context, userID, tokenHash string, _ time.Time) error {
	f.tokens[tokenHash] = userID
	return nil
}

func (f *fakeSessions) ValidateRefreshToken(_ context.Context, tokenHash string) (string, error) {
	if id, ok := f.tokens[tokenHash]; ok {
		return id, nil
	}
	return "", model.ErrNotFound
}

func (f *fakeSessions) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	delete(f.tokens, tokenHash)
	return nil
}

func newAuthFixture() (*AuthService, *fakeAccounts) {
	accounts := newFakeAccounts()
	return NewAuthService(accounts, &fakeSessions{tokens: make(map[string]string)}, "test-secret"), accounts
}

func TestAuthService_RegisterLoginValidateRoundtrip(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthFixture()

	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Password: "secret1",
	})
	req.NoError(err)
	req.Equal("alice@example.com", resp.User.Email)

	login, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret1",
	})
	req.NoError(err)

	userID, name, err := svc.ValidateAccessToken(login.AccessToken)
	req.NoError(err)
	req.Equal(resp.User.ID, userID)
	req.Equal("Alice", name)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email: "bob@example.com", Name: "Bob", Password: "secret1",
	})
	req.NoError(err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email: "bob@example.com", Password: "wrong",
	})
	req.ErrorIs(err, ErrInvalidCredentials)
}

func TestAuthService_BannedUserCannotLogin(t *testing.T) {
	req := require.New(t)
	svc, accounts := newAuthFixture()

	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email: "mallory@example.com", Name: "Mallory", Password: "secret1",
	})
	req.NoError(err)

	accounts.byID[resp.User.ID].Status = model.StatusBanned

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email: "mallory@example.com", Password: "secret1",
	})
	req.ErrorIs(err, ErrBanned)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthFixture()

	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email: "carol@example.com", Name: "Carol", Password: "secret1",
	})
	req.NoError(err)

	pair, err := svc.Refresh(context.Background(), resp.RefreshToken)
	req.NoError(err)
	req.NotEmpty(pair.AccessToken)

	// The presented token was revoked by the rotation
	_, err = svc.Refresh(context.Background(), resp.RefreshToken)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestAuthService_RejectsWeakInput(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email: "a@b.c", Name: "A", Password: "short",
	})
	req.ErrorIs(err, ErrWeakPassword)

	_, err = svc.Register(context.Background(), &model.RegisterRequest{
		Email: "a@b.c", Name: "  ", Password: "secret1",
	})
	req.ErrorIs(err, ErrInvalidName)
}

func TestAuthService_ValidateGarbageToken(t *testing.T) {
	svc, _ := newAuthFixture()
	_, _, err := svc.ValidateAccessToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
