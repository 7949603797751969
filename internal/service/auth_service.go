package service

import (
	"errors"
	"strconv"
	"time"

	"solofocus/internal/models"
	"solofocus/internal/security"
	"solofocus/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore persists user accounts and auth sessions
type UserStore interface {
	CreateUser(username, email, passwordHash string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByOAuth(provider, subject string) (*models.User, error)
	LinkOAuthProvider(userID int64, provider, subject string) error
	CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error)
	GetSession(sessionID string) (*models.Session, error)
	DeleteSession(sessionID string) error
	DeleteExpiredSessions() error
}

// AuthService handles registration, login and auth session management
type AuthService struct {
	userRepo        UserStore
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserStore, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new user account after validating inputs and checking
// username/email uniqueness
func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.userRepo.CreateUser(username, email, string(hash))
}

// Login authenticates a user and creates an auth session
func (s *AuthService) Login(username, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// LoginWithUser creates an auth session for an already authenticated user
// (e.g. after an OAuth callback)
func (s *AuthService) LoginWithUser(user *models.User) (*models.Session, error) {
	return s.createSession(user.ID)
}

func (s *AuthService) createSession(userID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)
	return s.userRepo.CreateSession(sessionID, userID, expiresAt)
}

// ValidateSession checks a session ID and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Logout invalidates an auth session
func (s *AuthService) Logout(sessionID string) error {
	return s.userRepo.DeleteSession(sessionID)
}

// CleanupExpiredSessions removes all expired auth sessions
func (s *AuthService) CleanupExpiredSessions() error {
	return s.userRepo.DeleteExpiredSessions()
}

// FindOrCreateOAuthUser resolves an OAuth identity to a local account:
// an existing linked account wins, otherwise an account with a matching
// email is linked, otherwise a new account is created with a random
// unusable password.
func (s *AuthService) FindOrCreateOAuthUser(provider, subject, email, suggestedUsername string) (*models.User, error) {
	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	if email != "" {
		user, err = s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			if err := s.userRepo.LinkOAuthProvider(user.ID, provider, subject); err != nil {
				return nil, err
			}
			return s.userRepo.GetUserByID(user.ID)
		}
	}

	username, err := s.availableUsername(suggestedUsername)
	if err != nil {
		return nil, err
	}

	// Random password hash; the account can only sign in via OAuth
	hash, err := bcrypt.GenerateFromPassword([]byte(security.GenerateSessionID()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err = s.userRepo.CreateUser(username, email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.LinkOAuthProvider(user.ID, provider, subject); err != nil {
		return nil, err
	}
	return user, nil
}

// availableUsername returns the suggestion, suffixed with a counter if taken
func (s *AuthService) availableUsername(suggestion string) (string, error) {
	if suggestion == "" {
		suggestion = "focused-user"
	}

	candidate := suggestion
	for i := 2; ; i++ {
		existing, err := s.userRepo.GetUserByUsername(candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = suggestion + "-" + strconv.Itoa(i)
	}
}
