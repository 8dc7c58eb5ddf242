package service

import (
	"context"
	"testing"

	"ivyresort/internal/database"
	"ivyresort/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserService(db, logger)
}

func TestUserCreate_DefaultsAndValidation(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.DashboardUser{Name: "Front Desk", Email: "desk@ivyresort.example"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, created.Role)
	assert.True(t, created.Active)

	_, err = svc.Create(ctx, &models.DashboardUser{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, &models.DashboardUser{Name: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, &models.DashboardUser{Name: "x", Email: "x@example.com", Role: "owner"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserUpdate_MergesOnlyProvidedFields(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.DashboardUser{Name: "Front Desk", Email: "desk@ivyresort.example"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, "", "", models.RoleManager, nil)
	require.NoError(t, err)
	assert.Equal(t, "Front Desk", updated.Name)
	assert.Equal(t, "desk@ivyresort.example", updated.Email)
	assert.Equal(t, models.RoleManager, updated.Role)
	assert.True(t, updated.Active)

	inactive := false
	updated, err = svc.Update(ctx, created.ID, "Night Desk", "", "", &inactive)
	require.NoError(t, err)
	assert.Equal(t, "Night Desk", updated.Name)
	assert.Equal(t, models.RoleManager, updated.Role)
	assert.False(t, updated.Active)

	_, err = svc.Update(ctx, created.ID, "", "", "owner", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, 999, "x", "", "", nil)
	assert.ErrorIs(t, err, database.ErrUserNotFound)
}
