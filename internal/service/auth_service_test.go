package service

import (
	"errors"
	"testing"
	"time"

	"solofocus/internal/models"
	"solofocus/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users        map[int64]*models.User
	authSessions map[string]*models.Session
	nextID       int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:        make(map[int64]*models.User),
		authSessions: make(map[string]*models.Session),
		nextID:       1,
	}
}

func (f *fakeUserRepo) CreateUser(username, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           f.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	f.nextID++
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByOAuth(provider, subject string) (*models.User, error) {
	for _, u := range f.users {
		if u.OAuthProvider == provider && u.OAuthSubject == subject {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) LinkOAuthProvider(userID int64, provider, subject string) error {
	user, ok := f.users[userID]
	if !ok || user.OAuthProvider != "" {
		return errors.New("cannot link provider")
	}
	user.OAuthProvider = provider
	user.OAuthSubject = subject
	return nil
}

func (f *fakeUserRepo) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	session := &models.Session{ID: sessionID, UserID: userID, ExpiresAt: expiresAt}
	f.authSessions[sessionID] = session
	return session, nil
}

func (f *fakeUserRepo) GetSession(sessionID string) (*models.Session, error) {
	return f.authSessions[sessionID], nil
}

func (f *fakeUserRepo) DeleteSession(sessionID string) error {
	delete(f.authSessions, sessionID)
	return nil
}

func (f *fakeUserRepo) DeleteExpiredSessions() error {
	for id, s := range f.authSessions {
		if s.IsExpired() {
			delete(f.authSessions, id)
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), time.Hour)

		user, err := svc.Register("focused_fox", "fox@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user.Username != "focused_fox" {
			t.Errorf("Username = %q", user.Username)
		}
		if user.PasswordHash == "correct-horse" {
			t.Error("password stored in plaintext")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")); err != nil {
			t.Errorf("stored hash does not match password: %v", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), time.Hour)

		if _, err := svc.Register("focused_fox", "fox@example.com", "correct-horse"); err != nil {
			t.Fatalf("first Register() error = %v", err)
		}
		if _, err := svc.Register("focused_fox", "other@example.com", "correct-horse"); err != ErrUsernameTaken {
			t.Errorf("error = %v, want ErrUsernameTaken", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), time.Hour)

		if _, err := svc.Register("focused_fox", "fox@example.com", "correct-horse"); err != nil {
			t.Fatalf("first Register() error = %v", err)
		}
		if _, err := svc.Register("other_fox", "fox@example.com", "correct-horse"); err != ErrEmailTaken {
			t.Errorf("error = %v, want ErrEmailTaken", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), time.Hour)

		_, err := svc.Register("ab", "fox@example.com", "correct-horse")
		var verr utils.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("error = %v, want ValidationError", err)
		}
	})
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, time.Hour)
	if _, err := svc.Register("focused_fox", "fox@example.com", "correct-horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("success", func(t *testing.T) {
		session, user, err := svc.Login("focused_fox", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if user.Username != "focused_fox" {
			t.Errorf("Username = %q", user.Username)
		}
		if session.ID == "" {
			t.Error("session ID is empty")
		}
		if !session.ExpiresAt.After(time.Now()) {
			t.Error("session already expired")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := svc.Login("focused_fox", "wrong-password"); err != ErrInvalidCredentials {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, _, err := svc.Login("nobody", "correct-horse"); err != ErrInvalidCredentials {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestValidateSession(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, time.Hour)
	if _, err := svc.Register("focused_fox", "fox@example.com", "correct-horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("valid session", func(t *testing.T) {
		session, _, err := svc.Login("focused_fox", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		user, err := svc.ValidateSession(session.ID)
		if err != nil {
			t.Fatalf("ValidateSession() error = %v", err)
		}
		if user.Username != "focused_fox" {
			t.Errorf("Username = %q", user.Username)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := svc.ValidateSession("no-such-session"); err != ErrSessionNotFound {
			t.Errorf("error = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("expired session is deleted", func(t *testing.T) {
		expired, _ := repo.CreateSession("stale", 1, time.Now().Add(-time.Minute))

		if _, err := svc.ValidateSession(expired.ID); err != ErrSessionExpired {
			t.Fatalf("error = %v, want ErrSessionExpired", err)
		}
		if _, ok := repo.authSessions["stale"]; ok {
			t.Error("expired session should be deleted on validation")
		}
	})

	t.Run("logout invalidates", func(t *testing.T) {
		session, _, err := svc.Login("focused_fox", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if err := svc.Logout(session.ID); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if _, err := svc.ValidateSession(session.ID); err != ErrSessionNotFound {
			t.Errorf("error after logout = %v, want ErrSessionNotFound", err)
		}
	})
}

func TestFindOrCreateOAuthUser(t *testing.T) {
	t.Run("existing linked account wins", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, time.Hour)
		existing, _ := repo.CreateUser("focused_fox", "fox@example.com", "x")
		if err := repo.LinkOAuthProvider(existing.ID, "google", "sub-1"); err != nil {
			t.Fatal(err)
		}

		user, err := svc.FindOrCreateOAuthUser("google", "sub-1", "other@example.com", "other")
		if err != nil {
			t.Fatalf("FindOrCreateOAuthUser() error = %v", err)
		}
		if user.ID != existing.ID {
			t.Errorf("resolved user %d, want %d", user.ID, existing.ID)
		}
	})

	t.Run("matching email gets linked", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, time.Hour)
		existing, _ := repo.CreateUser("focused_fox", "fox@example.com", "x")

		user, err := svc.FindOrCreateOAuthUser("github", "sub-2", "fox@example.com", "fox")
		if err != nil {
			t.Fatalf("FindOrCreateOAuthUser() error = %v", err)
		}
		if user.ID != existing.ID {
			t.Errorf("resolved user %d, want %d", user.ID, existing.ID)
		}
		if user.OAuthProvider != "github" || user.OAuthSubject != "sub-2" {
			t.Errorf("provider link = %q/%q", user.OAuthProvider, user.OAuthSubject)
		}
	})

	t.Run("new account created", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, time.Hour)

		user, err := svc.FindOrCreateOAuthUser("google", "sub-3", "new@example.com", "newcomer")
		if err != nil {
			t.Fatalf("FindOrCreateOAuthUser() error = %v", err)
		}
		if user.Username != "newcomer" {
			t.Errorf("Username = %q, want newcomer", user.Username)
		}
		if user.PasswordHash == "" {
			t.Error("new OAuth user should get an unusable random password hash")
		}
	})

	t.Run("taken suggestion gets a suffix", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, time.Hour)
		if _, err := repo.CreateUser("newcomer", "a@example.com", "x"); err != nil {
			t.Fatal(err)
		}

		user, err := svc.FindOrCreateOAuthUser("google", "sub-4", "b@example.com", "newcomer")
		if err != nil {
			t.Fatalf("FindOrCreateOAuthUser() error = %v", err)
		}
		if user.Username != "newcomer-2" {
			t.Errorf("Username = %q, want newcomer-2", user.Username)
		}
	})
}
