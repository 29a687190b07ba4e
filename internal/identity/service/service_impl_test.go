package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smartlogix/cargopro/internal/identity/domain"
	"github.com/smartlogix/cargopro/internal/identity/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupIdentityService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Group{}, &domain.UserGroup{}, &domain.UserProfile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func TestRegisterCreatesCustomerWithProfile(t *testing.T) {
	svc, db, _ := setupIdentityService(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, domain.RegisterRequest{
		Username:  "asha",
		Email:     "Asha@Example.com",
		Password:  "pass1234",
		Password2: "pass1234",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, id.Role)
	assert.Equal(t, "asha", id.User.Username)
	assert.Equal(t, "asha@example.com", id.User.Email)
	assert.NotEqual(t, "pass1234", id.User.PasswordHash)

	var profile domain.UserProfile
	require.NoError(t, db.Where("user_id = ?", id.User.ID).First(&profile).Error)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := setupIdentityService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.RegisterRequest
		want error
	}{
		{
			name: "blank username",
			req:  domain.RegisterRequest{Username: "  ", Email: "a@b.com", Password: "x", Password2: "x"},
			want: domain.ErrInvalidUsername,
		},
		{
			name: "email without at sign",
			req:  domain.RegisterRequest{Username: "a", Email: "not-an-email", Password: "x", Password2: "x"},
			want: domain.ErrInvalidEmail,
		},
		{
			name: "empty password",
			req:  domain.RegisterRequest{Username: "a", Email: "a@b.com"},
			want: domain.ErrInvalidPassword,
		},
		{
			name: "password confirmation mismatch",
			req:  domain.RegisterRequest{Username: "a", Email: "a@b.com", Password: "x", Password2: "y"},
			want: domain.ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := setupIdentityService(t)
	ctx := context.Background()

	req := domain.RegisterRequest{
		Username:  "juma",
		Email:     "juma@example.com",
		Password:  "pass1234",
		Password2: "pass1234",
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Email = "other@example.com"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLogin(t *testing.T) {
	svc, _, _ := setupIdentityService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{
		Username:  "zawadi",
		Email:     "zawadi@example.com",
		Password:  "pass1234",
		Password2: "pass1234",
	})
	require.NoError(t, err)

	id, err := svc.Login(ctx, domain.LoginRequest{Username: "zawadi", Password: "pass1234"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, id.Role)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "zawadi", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "nobody", Password: "pass1234"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestGetByIDResolvesGroupRole(t *testing.T) {
	svc, db, node := setupIdentityService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, domain.RegisterRequest{
		Username:  "mkubwa",
		Email:     "mkubwa@example.com",
		Password:  "pass1234",
		Password2: "pass1234",
	})
	require.NoError(t, err)

	// Drop the stored role so group membership decides.
	require.NoError(t, db.Model(&domain.User{}).
		Where("id = ?", registered.User.ID).
		Update("role", "").Error)

	group := domain.Group{ID: node.Generate(), Name: domain.GroupStaff}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&domain.UserGroup{UserID: registered.User.ID, GroupID: group.ID}).Error)

	id, err := svc.GetByID(ctx, registered.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, id.Role)
}

func TestGetByIDErrors(t *testing.T) {
	svc, _, node := setupIdentityService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(ctx, node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// memoryDSN names a private shared-cache database per test so every
// pooled connection lands on the same in-memory store.
func memoryDSN(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}
