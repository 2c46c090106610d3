package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/repository"
)

// AuthService is the identity collaborator: it resolves the current actor
// from a JWT cookie and offers sign-out. Everything beyond "who is this"
// lives outside the core.
type AuthService struct {
	userRepo      repository.UserRepository
	profileRepo   repository.ProfileRepository
	jwtSecret     string
	jwtExpiry     time.Duration
	secureCookies bool
}

func NewAuthService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, jwtSecret string, jwtExpiry time.Duration, secureCookies bool) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		jwtSecret:     jwtSecret,
		jwtExpiry:     jwtExpiry,
		secureCookies: secureCookies,
	}
}

// Signup registers a user with a display profile and returns it.
func (s *AuthService) Signup(email, name, country string) (*model.User, error) {
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now(),
	}

	err := s.userRepo.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.profileRepo.Create(&model.Profile{
		UserID:  user.ID,
		Name:    name,
		Country: country,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return user, nil
}

// UserByID resolves an actor id to a user record.
func (s *AuthService) UserByID(id string) (*model.User, error) {
	return s.userRepo.ByID(id)
}

// GenerateJWT creates a signed token for the user
func (s *AuthService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyJWT validates a token and returns its claims
func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// SetJWTCookie writes the auth token cookie
func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwtExpiry.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearJWTCookie removes the auth token cookie (sign out)
func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
