package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/internal/repository/room"
	"github.com/synctube/server/pkg/randstr"
	"github.com/synctube/server/pkg/youtube"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUsersLimitReached = errors.New("users limit reached")
)

type iRoomRepo interface {
	// room
	SetRoom(context.Context, *room.SetRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	ExpireRoom(context.Context, string, time.Duration) error
	PersistRoom(context.Context, string) error
	// user
	SetUser(context.Context, *room.SetUserParams) error
	GetUser(context.Context, *room.GetUserParams) (room.User, error)
	GetUserIDs(context.Context, string) ([]string, error)
	UpdateUserIsActive(context.Context, *room.UpdateUserIsActiveParams) error
	// video state
	SetVideoState(context.Context, *room.SetVideoStateParams) error
	GetVideoState(context.Context, string) (room.VideoState, error)
	// messages
	AddMessage(context.Context, *room.AddMessageParams) error
	GetMessages(context.Context, string) ([]room.Message, error)
}

type iConnRepo interface {
	Add(*websocket.Conn, string) error
	RemoveByUserID(string) (*websocket.Conn, error)
	RemoveByConn(*websocket.Conn) (string, error)
	GetConn(string) (*websocket.Conn, error)
	GetUserID(*websocket.Conn) (string, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type iVideoMetadata interface {
	Get(videoID string) (*youtube.VideoData, error)
}

type Config struct {
	// UsersLimit caps concurrently active users per room.
	UsersLimit int
	// AutoCreateOnJoin restores the legacy behavior of fabricating a room
	// when a join code is unrecognized instead of failing.
	AutoCreateOnJoin bool
	// EmptyRoomTTL is how long a room outlives its last active user.
	EmptyRoomTTL time.Duration
	// SeekDriftThreshold is the player/room position divergence, in seconds,
	// beyond which a reporting client is corrected back to the room state.
	SeekDriftThreshold int
	// PublishDriftThreshold is the divergence, in seconds, beyond which a
	// report refreshes the room's published position.
	PublishDriftThreshold int
}

// service is the room state store: the single writer of room state. Every
// mutation goes through one of its operations, which persists the new
// snapshot before returning, so readers never observe a partial update.
type service struct {
	roomRepo  iRoomRepo
	connRepo  iConnRepo
	metadata  iVideoMetadata
	generator iGenerator
	logger    *slog.Logger

	usersLimit            int
	autoCreateOnJoin      bool
	emptyRoomTTL          time.Duration
	seekDriftThreshold    int
	publishDriftThreshold int
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, metadata iVideoMetadata, logger *slog.Logger, cfg *Config) *service {
	return &service{
		roomRepo:              roomRepo,
		connRepo:              connRepo,
		metadata:              metadata,
		generator:             randstr.New([]byte(domain.RoomCodeAlphabet)),
		logger:                logger,
		usersLimit:            cfg.UsersLimit,
		autoCreateOnJoin:      cfg.AutoCreateOnJoin,
		emptyRoomTTL:          cfg.EmptyRoomTTL,
		seekDriftThreshold:    cfg.SeekDriftThreshold,
		publishDriftThreshold: cfg.PublishDriftThreshold,
	}
}
