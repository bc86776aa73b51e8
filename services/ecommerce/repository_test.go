package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	assert.NotNil(t, NewUserRepository(nil))
	assert.NotNil(t, NewCartRepository(nil))
	assert.NotNil(t, NewOrderRepository(nil))
	assert.NotNil(t, NewItemRepository(nil))
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
	assert.Contains(t, names, "000002_seed_items.up.sql")
	assert.Contains(t, names, "000002_seed_items.down.sql")

	// Cada migração up tem a sua down correspondente
	assert.Equal(t, 0, len(entries)%2)
}
