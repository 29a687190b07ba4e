package service

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smartlogix/cargopro/internal/settings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSettings(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.SystemSettings{}))

	return New(Params{DB: db, Log: zap.NewNop()})
}

func TestLoadCreatesDefaults(t *testing.T) {
	svc := setupSettings(t)
	ctx := context.Background()

	settings, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.SingletonID), settings.ID)
	assert.Equal(t, "CargoPro", settings.SiteName)
	assert.Equal(t, "TZS", settings.Currency)
	assert.True(t, settings.EmailAlertsEnabled)

	// Second load returns the same row, not a new one.
	again, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)
}

func TestUpdateAlwaysWritesSingletonRow(t *testing.T) {
	svc := setupSettings(t)
	ctx := context.Background()

	name := "CargoPro East Africa"
	timeout := uint(90)
	updated, err := svc.Update(ctx, domain.UpdateSettingsRequest{
		SiteName:              &name,
		SessionTimeoutMinutes: &timeout,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(domain.SingletonID), updated.ID)
	assert.Equal(t, "CargoPro East Africa", updated.SiteName)
	assert.Equal(t, uint(90), updated.SessionTimeoutMinutes)

	loaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CargoPro East Africa", loaded.SiteName)
}

func TestUpdateValidation(t *testing.T) {
	svc := setupSettings(t)
	ctx := context.Background()

	bad := "not-an-email"
	_, err := svc.Update(ctx, domain.UpdateSettingsRequest{ContactEmail: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	tz := "Mars/Olympus"
	_, err = svc.Update(ctx, domain.UpdateSettingsRequest{Timezone: &tz})
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)

	zero := uint(0)
	_, err = svc.Update(ctx, domain.UpdateSettingsRequest{SessionTimeoutMinutes: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeout)
}

// memoryDSN names a private shared-cache database per test so every
// pooled connection lands on the same in-memory store.
func memoryDSN(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}
