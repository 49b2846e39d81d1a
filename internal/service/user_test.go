package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"activityhub/internal/config"
	"activityhub/internal/model"
	"activityhub/internal/repository"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================

// mockUserRepository overrides the methods the account flows use.
// Anything else panics through the nil embedded interface.
type mockUserRepository struct {
	repository.UserRepository

	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	mainPhotoFn        func(ctx context.Context, userID uuid.UUID) (*string, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) GetMainPhotoURL(ctx context.Context, userID uuid.UUID) (*string, error) {
	if m.mainPhotoFn != nil {
		return m.mainPhotoFn(ctx, userID)
	}
	return nil, nil
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{}
	svc := NewUserService(mockRepo)

	req := &model.RegisterRequest{
		Username:    "bob",
		Email:       "Bob@Test.com",
		DisplayName: "Bob",
		Password:    "Pa$$w0rd",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected an id to be assigned")
	}
	if user.Email != "bob@test.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}
	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_Conflicts(t *testing.T) {
	dbError := errors.New("database connection failed")

	tests := []struct {
		name     string
		repo     *mockUserRepository
		wantErr  error
		wantCall bool
	}{
		{
			name: "username taken",
			repo: &mockUserRepository{
				existsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return true, nil },
			},
			wantErr: model.ErrUsernameExists,
		},
		{
			name: "email taken",
			repo: &mockUserRepository{
				existsByEmailFn: func(ctx context.Context, email string) (bool, error) { return true, nil },
			},
			wantErr: model.ErrEmailExists,
		},
		{
			name: "lost race on insert",
			repo: &mockUserRepository{
				createFn: func(ctx context.Context, user *model.User) error { return model.ErrUsernameExists },
			},
			wantErr:  model.ErrUsernameExists,
			wantCall: true,
		},
		{
			name: "check fails",
			repo: &mockUserRepository{
				existsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return false, dbError },
			},
			wantErr: dbError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.repo)

			user, err := svc.Register(context.Background(), &model.RegisterRequest{
				Username: "bob", Email: "bob@test.com", DisplayName: "Bob", Password: "Pa$$w0rd",
			})

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if user != nil {
				t.Error("user should be nil when registration fails")
			}
			if called := len(tt.repo.createCalls) > 0; called != tt.wantCall {
				t.Errorf("Create called = %v, want %v", called, tt.wantCall)
			}
		})
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestUserService_Login(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testUser := &model.User{
		ID:           uuid.New(),
		Username:     "bob",
		Email:        "bob@test.com",
		PasswordHash: string(validHash),
	}
	dbError := errors.New("database error")

	tests := []struct {
		name       string
		password   string
		getByEmail func(ctx context.Context, email string) (*model.User, error)
		wantErr    error
	}{
		{
			name:       "successful login",
			password:   validPassword,
			getByEmail: func(ctx context.Context, email string) (*model.User, error) { return testUser, nil },
		},
		{
			name:       "unknown email",
			password:   validPassword,
			getByEmail: func(ctx context.Context, email string) (*model.User, error) { return nil, model.ErrUserNotFound },
			wantErr:    model.ErrInvalidCredentials,
		},
		{
			name:       "wrong password",
			password:   "wrongpassword",
			getByEmail: func(ctx context.Context, email string) (*model.User, error) { return testUser, nil },
			wantErr:    model.ErrInvalidCredentials,
		},
		{
			name:       "database error",
			password:   validPassword,
			getByEmail: func(ctx context.Context, email string) (*model.User, error) { return nil, dbError },
			wantErr:    dbError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(&mockUserRepository{getByEmailFn: tt.getByEmail})

			user, err := svc.Login(context.Background(), &model.LoginRequest{Email: "bob@test.com", Password: tt.password})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if user != nil {
					t.Error("expected nil user")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID != testUser.ID {
				t.Errorf("user id = %v, want %v", user.ID, testUser.ID)
			}
		})
	}
}

// =============================================================================
// TOKEN TESTS
// =============================================================================

func TestAuthService_Account(t *testing.T) {
	image := "https://cdn.test/photos/1.jpg"
	repo := &mockUserRepository{
		mainPhotoFn: func(ctx context.Context, userID uuid.UUID) (*string, error) { return &image, nil },
	}
	cfg := &config.Config{JWTSecret: "secret", AccessTokenMaxAge: 3600}
	svc := NewAuthService(repo, cfg)
	fixed := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	user := &model.User{ID: uuid.New(), Username: "bob", DisplayName: "Bob"}
	account, err := svc.Account(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Username != "bob" || account.DisplayName != "Bob" {
		t.Errorf("account = %+v", account)
	}
	if account.Image == nil || *account.Image != image {
		t.Errorf("image = %v, want %q", account.Image, image)
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(account.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token should verify: %v", err)
	}
	if claims["user_id"] != user.ID.String() {
		t.Errorf("user_id claim = %v, want %v", claims["user_id"], user.ID)
	}
	if claims["username"] != "bob" {
		t.Errorf("username claim = %v", claims["username"])
	}
	exp, _ := claims.GetExpirationTime()
	if exp == nil || !exp.Time.Equal(fixed.Add(time.Hour)) {
		t.Errorf("exp = %v, want %v", exp, fixed.Add(time.Hour))
	}
}
