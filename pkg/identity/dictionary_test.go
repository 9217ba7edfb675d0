package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryRegisterDeduplicatesCaseInsensitively(t *testing.T) {
	t.Parallel()

	d := NewDictionary()

	id1 := d.Register(User{Name: "Jane Doe", Email: "jane@example.com"})
	id2 := d.Register(User{Name: "JANE DOE", Email: "Jane@Example.com"})

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, d.Size())
}

func TestDictionaryRetainsFirstSeenCasing(t *testing.T) {
	t.Parallel()

	d := NewDictionary()

	id := d.Register(User{Name: "Jane Doe", Email: "jane@example.com"})
	d.Register(User{Name: "JANE DOE", Email: "JANE@EXAMPLE.COM"})

	u, ok := d.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", u.Name)
	assert.Equal(t, "jane@example.com", u.Email)
}

func TestDictionaryAssignsIDsInRegistrationOrder(t *testing.T) {
	t.Parallel()

	d := NewDictionary()

	idA := d.Register(User{Name: "Alice"})
	idB := d.Register(User{Name: "Bob"})
	idA2 := d.Register(User{Name: "Alice"})

	assert.Equal(t, 0, idA)
	assert.Equal(t, 1, idB)
	assert.Equal(t, idA, idA2)
	assert.Equal(t, 2, d.Size())
}

func TestDictionaryDifferentNameOrEmailAreDistinct(t *testing.T) {
	t.Parallel()

	d := NewDictionary()

	id1 := d.Register(User{Name: "Jane", Email: "jane@example.com"})
	id2 := d.Register(User{Name: "Jane", Email: "jane2@example.com"})
	id3 := d.Register(User{Name: "", Email: "jane@example.com"})

	assert.NotEqual(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func TestDictionaryUsersOrderedByID(t *testing.T) {
	t.Parallel()

	d := NewDictionary()
	d.Register(User{Name: "Alice"})
	d.Register(User{Name: "Bob"})

	users := d.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "Bob", users[1].Name)
}

func TestDictionaryGetOutOfRange(t *testing.T) {
	t.Parallel()

	d := NewDictionary()
	_, ok := d.Get(0)
	assert.False(t, ok)
}
