package service

import (
	"context"
	"errors"

	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
	"blogicum/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	usernameTakenMessage = "A user with that username already exists."
	invalidLoginMessage  = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

type UserService struct {
	userRepo repository.UserRepository
	cost     int
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, cost: bcrypt.DefaultCost}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in validation.SignupInput) (*models.User, error) {
	taken, err := s.userRepo.UsernameTaken(ctx, in.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewFormError(map[string]string{"username": usernameTakenMessage})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	observability.RecordSessionEvent("register")
	return user, nil
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			observability.RecordSessionEvent("login_failed")
			return nil, models.NewUnauthorizedError(invalidLoginMessage)
		}
		return nil, err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		observability.RecordSessionEvent("login_failed")
		if errors.Is(cmpErr, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.NewUnauthorizedError(invalidLoginMessage)
		}
		return nil, models.NewInternalError(cmpErr)
	}
	observability.RecordSessionEvent("login")
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateProfile saves the edit-profile form for viewer. Anonymous callers get
// not found.
func (s *UserService) UpdateProfile(ctx context.Context, viewer *models.User, in validation.ProfileInput) (*models.User, error) {
	if viewer == nil {
		return nil, models.NewNotFoundError("User", "anonymous")
	}

	taken, err := s.userRepo.UsernameTaken(ctx, in.Username, viewer.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewFormError(map[string]string{"username": usernameTakenMessage})
	}

	user, err := s.userRepo.GetByID(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	user.Username = in.Username
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	observability.RecordMutation("profile", "update")
	return user, nil
}
