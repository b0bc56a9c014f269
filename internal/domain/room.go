package domain

import (
	"fmt"
	"time"
)

const (
	SystemUserID   = "system"
	SystemUserName = "System"

	RoomCodeLength   = 6
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsActive  bool   `json:"is_active"`
}

type ChatMessage struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	IsCommand bool   `json:"is_command"`
}

type VideoState struct {
	VideoID     string  `json:"video_id"`
	IsPlaying   bool    `json:"is_playing"`
	CurrentTime int     `json:"current_time"`
	Duration    int     `json:"duration"`
	Speed       float64 `json:"speed"`
	Volume      int     `json:"volume"`
	UpdatedAt   int64   `json:"updated_at"`
}

// Room is the aggregate root for one watch session: membership log, chat log
// and the shared video state. Room values are treated as immutable snapshots;
// every function in this package returns a new value and leaves its argument
// untouched.
type Room struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Users      []User        `json:"users"`
	VideoState VideoState    `json:"video_state"`
	Messages   []ChatMessage `json:"messages"`
	CreatedAt  int64         `json:"created_at"`
}

func DefaultVideoState() VideoState {
	return VideoState{
		VideoID:     "",
		IsPlaying:   false,
		CurrentTime: 0,
		Duration:    0,
		Speed:       1,
		Volume:      100,
		UpdatedAt:   nowMillis(),
	}
}

// NewRoom builds a room with the creator as its single active user, an empty
// chat log and the default video state.
func NewRoom(id, name string, creator User) Room {
	creator.IsActive = true

	return Room{
		ID:         id,
		Name:       name,
		Users:      []User{creator},
		VideoState: DefaultVideoState(),
		Messages:   []ChatMessage{},
		CreatedAt:  nowMillis(),
	}
}

// AddSystemMessage returns a copy of the room with one appended message
// authored by the synthetic system identity.
func AddSystemMessage(room Room, content string) Room {
	now := nowMillis()
	message := ChatMessage{
		ID:        fmt.Sprintf("system-%d", now),
		UserID:    SystemUserID,
		UserName:  SystemUserName,
		Content:   content,
		Timestamp: now,
		IsCommand: false,
	}

	room.Messages = appendCopy(room.Messages, message)
	return room
}

// AddUser returns a copy of the room containing the user. If a user with the
// same id is already present it is reactivated in place instead of re-added,
// so no two entries ever share an id.
func AddUser(room Room, user User) Room {
	for i := range room.Users {
		if room.Users[i].ID == user.ID {
			users := copyUsers(room.Users)
			users[i].IsActive = true
			room.Users = users
			return room
		}
	}

	user.IsActive = true
	room.Users = appendCopy(room.Users, user)
	return room
}

// RemoveUser returns a copy of the room with the user marked inactive. The
// membership log is append-only: entries are never deleted, so calling this
// twice for the same id changes nothing the second time.
func RemoveUser(room Room, userID string) Room {
	users := copyUsers(room.Users)
	for i := range users {
		if users[i].ID == userID {
			users[i].IsActive = false
		}
	}

	room.Users = users
	return room
}

func ActiveUsers(room Room) []User {
	active := make([]User, 0, len(room.Users))
	for _, user := range room.Users {
		if user.IsActive {
			active = append(active, user)
		}
	}

	return active
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func copyUsers(users []User) []User {
	out := make([]User, len(users))
	copy(out, users)
	return out
}

func appendCopy[T any](list []T, item T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, item)
}
