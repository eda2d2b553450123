package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/hanamaru-app/hanamaru-backend/pkg/auth"
	"github.com/hanamaru-app/hanamaru-backend/pkg/auth/session"
	"github.com/hanamaru-app/hanamaru-backend/pkg/config"
	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
	"github.com/hanamaru-app/hanamaru-backend/pkg/logger"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	user.ID = uuid.New()
	copied := *user
	f.byEmail[user.Email] = &copied
	f.byID[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := f.byID[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

type fakeSessions struct {
	active map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{active: map[string]string{}}
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.active[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.active[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.active, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	f.active[newID] = token
	return newID, token, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	delete(f.active, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "hanamaru-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type fixture struct {
	repo     *fakeUserRepo
	sessions *fakeSessions
	service  Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeUserRepo()
	sessions := newFakeSessions()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, sessions, testJWTConfig(), testPasswordConfig(), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{repo: repo, sessions: sessions, service: svc}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()

	user, err := f.service.Register(context.Background(), RegisterInput{
		Email:    "Owner@Hanamaru.jp",
		Password: "correct horse",
		StoreID:  storeID,
		Role:     enums.MemberRoleOwner,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "owner@hanamaru.jp" {
		t.Errorf("email not normalized: %q", user.Email)
	}

	pair, err := f.service.Login(context.Background(), "owner@hanamaru.jp", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.StoreID != storeID || claims.Role != enums.MemberRoleOwner {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if _, ok := f.sessions.active[claims.ID]; !ok {
		t.Fatal("login must create a session for the jti")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	if _, err := f.service.Register(context.Background(), RegisterInput{
		Email:    "staff@hanamaru.jp",
		Password: "correct horse",
		StoreID:  storeID,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"staff@hanamaru.jp", "wrong password"},
		{"nobody@hanamaru.jp", "correct horse"},
	} {
		_, err := f.service.Login(context.Background(), tc.email, tc.password)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Errorf("login %s: expected unauthorized, got %v", tc.email, err)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Password: "long enough", StoreID: storeID}},
		{"short password", RegisterInput{Email: "a@b.jp", Password: "short", StoreID: storeID}},
		{"missing store", RegisterInput{Email: "a@b.jp", Password: "long enough"}},
		{"bad role", RegisterInput{Email: "a@b.jp", Password: "long enough", StoreID: storeID, Role: enums.MemberRole("intern")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	input := RegisterInput{Email: "dup@hanamaru.jp", Password: "long enough", StoreID: storeID}

	if _, err := f.service.Register(context.Background(), input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := f.service.Register(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	if _, err := f.service.Register(context.Background(), RegisterInput{
		Email:    "staff@hanamaru.jp",
		Password: "correct horse",
		StoreID:  storeID,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, err := f.service.Login(context.Background(), "staff@hanamaru.jp", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := f.service.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	// the old pair is now dead
	_, err = f.service.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	if _, err := f.service.Register(context.Background(), RegisterInput{
		Email:    "staff@hanamaru.jp",
		Password: "correct horse",
		StoreID:  storeID,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, err := f.service.Login(context.Background(), "staff@hanamaru.jp", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.service.Logout(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(f.sessions.active) != 0 {
		t.Fatal("logout must revoke the session")
	}
}
