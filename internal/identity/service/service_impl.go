package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smartlogix/cargopro/internal/identity/domain"
	"github.com/smartlogix/cargopro/internal/identity/password"
	"github.com/smartlogix/cargopro/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("identity.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Identity, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.Identity{}, domain.ErrInvalidUsername
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Identity{}, domain.ErrInvalidEmail
	}
	if req.Password == "" {
		return domain.Identity{}, domain.ErrInvalidPassword
	}
	if req.Password != req.Password2 {
		return domain.Identity{}, domain.ErrPasswordMismatch
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.Identity{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &user); err != nil {
			return err
		}
		profile := domain.UserProfile{
			ID:          s.genID.Generate(),
			UserID:      user.ID,
			Preferences: datatypes.JSON([]byte(`{}`)),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.repo.InsertProfile(ctx, tx, &profile)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Identity{}, domain.ErrUserExists
		}
		return domain.Identity{}, err
	}

	s.log.Info("registered user", zap.String("user_id", user.ID.String()))
	return s.identityOf(ctx, user)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Identity, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return domain.Identity{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	return s.identityOf(ctx, *user)
}

func (s *Service) GetByID(ctx context.Context, raw string) (domain.Identity, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return domain.Identity{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Identity{}, err
	}
	if user == nil {
		return domain.Identity{}, domain.ErrNotFound
	}

	return s.identityOf(ctx, *user)
}

func (s *Service) ProfileOf(ctx context.Context, raw string) (*domain.UserProfile, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.FindProfile(ctx, s.db, id)
}

// identityOf resolves the role from the user's current state. Group
// membership is reloaded every time; roles are never cached.
func (s *Service) identityOf(ctx context.Context, user domain.User) (domain.Identity, error) {
	groups, err := s.repo.GroupNames(ctx, s.db, user.ID)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		User: user,
		Role: domain.ResolveRole(user, groups),
	}, nil
}
