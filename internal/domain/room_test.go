package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	creator := User{ID: "u1", Name: "alice"}
	r := NewRoom("ABC123", "movie night", creator)

	assert.Equal(t, "ABC123", r.ID)
	assert.Equal(t, "movie night", r.Name)
	require.Len(t, r.Users, 1)
	assert.True(t, r.Users[0].IsActive)
	assert.Empty(t, r.Messages)
	assert.Equal(t, float64(1), r.VideoState.Speed)
	assert.Equal(t, 100, r.VideoState.Volume)
	assert.False(t, r.VideoState.IsPlaying)
}

func TestAddSystemMessage(t *testing.T) {
	r := NewRoom("ABC123", "room", User{ID: "u1", Name: "alice"})

	updated := AddSystemMessage(r, "alice joined the room.")

	assert.Empty(t, r.Messages, "input room must not be mutated")
	require.Len(t, updated.Messages, 1)
	msg := updated.Messages[0]
	assert.Equal(t, SystemUserID, msg.UserID)
	assert.Equal(t, SystemUserName, msg.UserName)
	assert.Equal(t, "alice joined the room.", msg.Content)
	assert.False(t, msg.IsCommand)
	assert.NotZero(t, msg.Timestamp)
}

func TestAddUser(t *testing.T) {
	r := NewRoom("ABC123", "room", User{ID: "u1", Name: "alice"})

	updated := AddUser(r, User{ID: "u2", Name: "bob"})

	assert.Len(t, r.Users, 1, "input room must not be mutated")
	require.Len(t, updated.Users, 2)
	assert.True(t, updated.Users[1].IsActive)
}

func TestAddUserReactivates(t *testing.T) {
	r := NewRoom("ABC123", "room", User{ID: "u1", Name: "alice"})
	r = AddUser(r, User{ID: "u2", Name: "bob"})
	r = RemoveUser(r, "u2")
	require.False(t, r.Users[1].IsActive)

	rejoined := AddUser(r, User{ID: "u2", Name: "bob"})

	assert.Len(t, rejoined.Users, 2, "no duplicate entry for the same id")
	assert.True(t, rejoined.Users[1].IsActive)
	assert.False(t, r.Users[1].IsActive, "input room must not be mutated")
}

func TestRemoveUser(t *testing.T) {
	r := NewRoom("ABC123", "room", User{ID: "u1", Name: "alice"})
	r = AddUser(r, User{ID: "u2", Name: "bob"})

	left := RemoveUser(r, "u2")

	assert.True(t, r.Users[1].IsActive, "input room must not be mutated")
	require.Len(t, left.Users, 2, "membership log keeps the entry")
	assert.False(t, left.Users[1].IsActive)

	// removing twice changes nothing
	again := RemoveUser(left, "u2")
	assert.Equal(t, left.Users, again.Users)
}

func TestActiveUsers(t *testing.T) {
	r := NewRoom("ABC123", "room", User{ID: "u1", Name: "alice"})
	r = AddUser(r, User{ID: "u2", Name: "bob"})
	r = RemoveUser(r, "u1")

	active := ActiveUsers(r)

	require.Len(t, active, 1)
	assert.Equal(t, "u2", active[0].ID)
}
