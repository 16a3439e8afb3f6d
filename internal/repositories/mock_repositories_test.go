package repositories

import (
	"context"
	"testing"
	"time"

	"productapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProductRepository(t *testing.T) {
	repo := NewMockProductRepository()
	ctx := context.Background()

	p := &models.Product{Name: "Widget", Slug: "widget-1", Quantity: 5}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEmpty(t, p.ID)

	assert.ErrorIs(t, repo.Create(ctx, &models.Product{Name: "Copy", Slug: "widget-1"}), ErrSlugTaken)

	bySlug, err := repo.GetBySlug(ctx, "widget-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	before := p.UpdatedAt
	time.Sleep(time.Millisecond)
	update := &models.Product{ID: p.ID, Name: "Widget2", Slug: "widget-1", Quantity: 3}
	require.NoError(t, repo.Update(ctx, update))
	assert.True(t, update.UpdatedAt.After(before))
	assert.Equal(t, p.CreatedAt, update.CreatedAt)

	assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: "missing"}), ErrProductNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrProductNotFound)
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMockUserRepository_VerifyOTP(t *testing.T) {
	repo := NewMockUserRepository()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(10 * time.Minute)

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@x.com", OTP: strPtr("123456"), OTPExpiresAt: &expires}))
	assert.ErrorIs(t, repo.Create(ctx, &models.User{Email: "a@x.com"}), ErrEmailTaken)

	assert.ErrorIs(t, repo.VerifyOTP(ctx, "a@x.com", "123456", expires), ErrOTPMismatch, "expiry is exclusive")
	require.NoError(t, repo.VerifyOTP(ctx, "a@x.com", "123456", now))
	assert.ErrorIs(t, repo.VerifyOTP(ctx, "a@x.com", "123456", now), ErrOTPMismatch)

	u, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Nil(t, u.OTP)
}
