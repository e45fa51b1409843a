package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifiedTaskCache(t *testing.T) {
	t.Run("should remember a marked name within the TTL", func(t *testing.T) {
		// Arrange
		cache := NewVerifiedTaskCache(time.Hour)

		// Act
		cache.Mark("proj-1/[42] Fix login")

		// Assert
		assert.True(t, cache.Verified("proj-1/[42] Fix login"))
		assert.False(t, cache.Verified("proj-1/[43] Other"))
	})

	t.Run("should expire entries once the TTL elapses", func(t *testing.T) {
		// Arrange
		now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
		cache := NewVerifiedTaskCache(time.Hour)
		cache.now = func() time.Time { return now }
		cache.Mark("proj-1/[42] Fix login")

		// Act
		now = now.Add(time.Hour + time.Second)

		// Assert
		assert.False(t, cache.Verified("proj-1/[42] Fix login"))
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("should keep entries alive just inside the TTL", func(t *testing.T) {
		// Arrange
		now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
		cache := NewVerifiedTaskCache(time.Hour)
		cache.now = func() time.Time { return now }
		cache.Mark("proj-1/Bloqueio")

		// Act
		now = now.Add(59 * time.Minute)

		// Assert
		assert.True(t, cache.Verified("proj-1/Bloqueio"))
	})

	t.Run("should fall back to the default TTL for a non-positive value", func(t *testing.T) {
		// Arrange / Act
		cache := NewVerifiedTaskCache(0)

		// Assert
		assert.Equal(t, DefaultVerifiedTTL, cache.ttl)
	})
}
