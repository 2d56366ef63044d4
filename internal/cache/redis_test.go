package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashKeyIsStable(t *testing.T) {
	params := map[string]interface{}{"category": "photography", "sort": "newest"}

	a := HashKey("feed", params)
	b := HashKey("feed", map[string]interface{}{"sort": "newest", "category": "photography"})

	assert.Equal(t, a, b)
	assert.Contains(t, a, "feed:")
	assert.NotEqual(t, a, HashKey("feed", map[string]interface{}{"sort": "oldest"}))
}

func TestKeyFamily(t *testing.T) {
	assert.Equal(t, "availability", keyFamily("availability:123"))
	assert.Equal(t, "plain", keyFamily("plain"))
}

func TestNilClientClose(t *testing.T) {
	var rc *RedisClient
	assert.NoError(t, rc.Close())
}
