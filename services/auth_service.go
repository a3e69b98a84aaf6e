package services

import (
	"context"
	stderrors "errors"
	"strings"

	"synca/dto"
	"synca/errors"
	"synca/models"
	"synca/repository"
	"synca/services/logger"
	"synca/validator"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// AuthService đăng ký, đăng nhập và cấp access token
type AuthService struct {
	store  repository.Store
	tokens *TokenManager
	logger logger.Logger
}

func NewAuthService(store repository.Store, tokens *TokenManager, log logger.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, logger: log}
}

func (s *AuthService) Register(ctx context.Context, input dto.RegisterInput) (*dto.LoginResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	role, _ := models.ParseRole(input.Role)
	contact, _ := validator.NormalizeContact(input.ContactNumber)

	exists, err := s.store.Users().UsernameExists(ctx, input.Username)
	if err != nil {
		return nil, errors.Internal("Could not check username", err)
	}
	if exists {
		return nil, errors.FieldError("username", "A user with that username already exists.")
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, errors.Internal("Could not hash password", err)
	}
	user := &models.User{
		Username:      input.Username,
		Email:         input.Email,
		Password:      hashed,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Role:          role,
		Age:           input.Age,
		Gender:        input.Gender,
		Occupation:    input.Occupation,
		ContactNumber: contact,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.FieldError("username", "A user with that username already exists.")
		}
		return nil, errors.Internal("Could not create user", err)
	}
	s.logger.Info("user %d registered as %s", user.ID, user.Role)
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	user, err := s.store.Users().FindByUsername(ctx, input.Username)
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.Internal("Could not load user", err)
	}
	if err != nil || !user.HasUsablePassword() ||
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		return nil, errors.Unauthorized(errors.ErrCodeInvalidPassword, "Please enter a correct username and password.", nil)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*dto.LoginResponse, error) {
	token, err := s.tokens.GenerateToken(UserInfo{UserId: user.ID, Role: string(user.Role)})
	if err != nil {
		return nil, errors.Internal("Could not sign token", err)
	}
	return &dto.LoginResponse{AccessToken: token, User: *user}, nil
}

func (s *AuthService) Me(ctx context.Context, actor *Actor) (*models.User, error) {
	if actor == nil || actor.ID == 0 {
		return nil, errors.Unauthorized(errors.ErrCodeUnauthorized, "Authentication required.", nil)
	}
	user, err := s.store.Users().FindByID(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, errors.ErrCodeUserNotFound, "User not found.")
	}
	return user, nil
}
