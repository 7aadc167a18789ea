package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"placement/api/internal/store"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := New(testConfig(), mem, Options{BcryptCost: bcrypt.MinCost})

	first, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 3, Companies: 2}, first)

	second, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, second)

	companies, err := mem.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	for _, item := range companies {
		assert.Equal(t, "Mike Officer", item.AssignedOfficerName)
	}
}

func TestSeedRequiresPassword(t *testing.T) {
	cfg := testConfig()
	cfg.SeedPassword = ""
	svc := New(cfg, store.NewMemoryStore(), Options{})

	_, err := svc.Seed(context.Background())
	assert.Error(t, err)
}
