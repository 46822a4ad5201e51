package auth

import (
	"log/slog"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/user"
)

// Service is the credential and identity component: password hashing, token
// issuance and verification.
type Service struct {
	repo       RepositoryAPI
	tokenGen   TokenGeneratorAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		tokenGen:   tokenGen,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an account with a freshly salted hash and returns the
// account view plus a signed session token.
func (s *Service) Register(dto RegisterDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	u := &user.User{
		Email:          dto.Email,
		PasswordHash:   hash,
		Role:           dto.Role,
		DepartmentID:   dto.DepartmentID,
		FirstName:      dto.FirstName,
		LastName:       dto.LastName,
		AcademicDegree: dto.AcademicDegree,
		AverageScore:   dto.AverageScore,
	}
	if err := s.repo.Create(u); err != nil {
		if internal.IsDuplicateKey(err) {
			return nil, internal.ErrDuplicateEmail
		}
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	token, err := s.tokenGen.GenerateToken(u.ID)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return NewAuthResponse(u, token), nil
}

// dummyPasswordHash is a valid bcrypt digest compared against on the
// unknown-email path so that path costs the same as a real password check.
// Without it, response timing would reveal which emails have accounts.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticate validates credentials and returns the account view plus a
// token. Unknown email and wrong password produce the identical error, and
// both paths run a full bcrypt comparison, so a caller cannot enumerate
// accounts by message or by timing.
func (s *Service) Authenticate(dto LoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		_ = VerifyPassword(dummyPasswordHash, dto.Password)
		return nil, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.tokenGen.GenerateToken(u.ID)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to log in", err)
	}

	return NewAuthResponse(u, token), nil
}

// VerifyToken validates the token and resolves the acting identity from the
// current persisted account state. An account deleted after token issuance
// fails the lookup rather than proceeding on stale claims.
func (s *Service) VerifyToken(tokenString string) (*internal.Identity, error) {
	claims, err := s.tokenGen.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(claims.AccountID)
	if err != nil {
		return nil, err
	}

	return u.Identity(), nil
}
