package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"blog_api/internal/app/policy"
	"blog_api/internal/app/validation"
	"blog_api/internal/common"
	"blog_api/internal/common/security"
	"blog_api/internal/domain/model"
	"blog_api/internal/domain/repository"
	"blog_api/internal/platform/logging"
)

// UserService covers signup, login and user self-service.
type UserService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenService
	hasher   security.Hasher
	cache    PostListCache
	logger   *slog.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	tokens *security.TokenService,
	hasher security.Hasher,
	cache PostListCache,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		cache:    resolveCache(cache),
		logger:   logging.Resolve(logger).With("service", "user"),
	}
}

type AuthResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn string      `json:"expiresIn"`
}

const errUserExists = "User with this name or email already exists"

func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.Wrap(common.ErrAlreadyExists, errUserExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return s.authResponse(user)
}

func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Wrap(common.ErrUnauthenticated, "User with email: %s wasn't found", req.Email)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.Wrap(common.ErrUnauthenticated, "Wrong password")
	}
	return s.authResponse(user)
}

func (s *UserService) authResponse(user *model.User) (*AuthResponse, error) {
	cred, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: cred.Token, ExpiresIn: cred.ExpiresIn}, nil
}

func (s *UserService) ListUsers(ctx context.Context, caller model.Identity) ([]model.User, error) {
	if err := policy.Require(policy.IsAdmin(caller)); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, caller model.Identity, id int64) (*model.User, error) {
	if err := policy.Require(policy.IsAdminOrSameUserFromPathID(caller, id)); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, caller model.Identity, id int64, req UpdateUserRequest) (*model.User, error) {
	if err := policy.Require(policy.IsAdminOrSameUserFromPathID(caller, id)); err != nil {
		return nil, err
	}
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	patch := model.UserPatch{Name: req.Name, Email: req.Email}
	if req.Password != nil {
		hashed, err := s.hasher.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.HashedPassword = &hashed
	}
	return s.applyPatch(ctx, id, patch)
}

func (s *UserService) UpdateUserAdmin(ctx context.Context, caller model.Identity, id int64, req AdminUpdateUserRequest) (*model.User, error) {
	if err := policy.Require(policy.IsAdmin(caller)); err != nil {
		return nil, err
	}
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, id, model.UserPatch{Name: req.Name, Email: req.Email, IsAdmin: req.IsAdmin})
}

func (s *UserService) applyPatch(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.Wrap(common.ErrAlreadyExists, errUserExists)
		}
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("User", id)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if patch.Name != nil {
		s.invalidatePosts(ctx)
	}
	user.HashedPassword = ""
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, caller model.Identity, id int64) error {
	if err := policy.Require(policy.IsAdminOrSameUserFromPathID(caller, id)); err != nil {
		return err
	}
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NotFound("User", id)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.invalidatePosts(ctx)
	s.logger.InfoContext(ctx, "user deleted", "user_id", id, "by", caller.ID)
	return nil
}

// EnsureAdmin creates an admin account unless the email is already taken.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	hashed, err := s.hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &model.User{Name: name, Email: email, HashedPassword: hashed, IsAdmin: true}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	s.logger.InfoContext(ctx, "admin account created", "user_id", admin.ID)
	return nil
}

func (s *UserService) findUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("User", id)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Post lists embed author names, so user changes drop the cached list.
func (s *UserService) invalidatePosts(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "post cache invalidation failed", "error", err)
	}
}
