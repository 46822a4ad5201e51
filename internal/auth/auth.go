package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/user"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Register(dto RegisterDTO) (*AuthResponse, error)
	Authenticate(dto LoginDTO) (*AuthResponse, error)
	VerifyToken(tokenString string) (*internal.Identity, error)
}

type RepositoryAPI interface {
	GetByEmail(email string) (*user.User, error)
	GetByID(id string) (*user.User, error)
	Create(u *user.User) error
}

type TokenGeneratorAPI interface {
	GenerateToken(accountID string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims carries only the account id. Role and profile are re-resolved from
// storage on every request so a token minted before a role change cannot
// escalate.
type Claims struct {
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret   []byte
	TokenTTL time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		TokenTTL: ttl,
	}
}

// GenerateToken creates a signed session token for the account
func (j *JWTTokenGenerator) GenerateToken(accountID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   accountID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}

// AuthResponse is the register/login payload: the account view plus token.
type AuthResponse struct {
	ID             string        `json:"id"`
	Email          string        `json:"email"`
	Role           internal.Role `json:"userType"`
	DepartmentID   *string       `json:"departmentId,omitempty"`
	FirstName      string        `json:"firstName,omitempty"`
	LastName       string        `json:"lastName,omitempty"`
	AcademicDegree string        `json:"academicDegree,omitempty"`
	AverageScore   *float64      `json:"averageScore,omitempty"`
	Token          string        `json:"token"`
}

func NewAuthResponse(u *user.User, token string) *AuthResponse {
	return &AuthResponse{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		DepartmentID:   u.DepartmentID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		AcademicDegree: u.AcademicDegree,
		AverageScore:   u.AverageScore,
		Token:          token,
	}
}

var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
