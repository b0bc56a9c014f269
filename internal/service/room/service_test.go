package room

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctube/server/internal/command"
	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/internal/repository/connection/inmemory"
	roomRepository "github.com/synctube/server/internal/repository/room"
	roomRedis "github.com/synctube/server/internal/repository/room/redis"
)

func newTestService(t *testing.T, cfg *Config) (*service, iRoomRepo) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roomRepo := roomRedis.NewRepo(rc, logger, 10*time.Minute)
	connRepo := inmemory.NewRepo()

	if cfg == nil {
		cfg = &Config{
			UsersLimit:            9,
			EmptyRoomTTL:          time.Minute,
			SeekDriftThreshold:    2,
			PublishDriftThreshold: 3,
		}
	}

	return NewService(roomRepo, connRepo, nil, logger, cfg), roomRepo
}

func TestCreateRoom(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "movie night",
		Username: "alice",
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), createRoomResp.RoomID)
	assert.NotEmpty(t, createRoomResp.Creator.ID)
	assert.True(t, createRoomResp.Creator.IsActive)

	room := createRoomResp.Room
	assert.Equal(t, "movie night", room.Name)
	require.Len(t, room.Users, 1)
	assert.Equal(t, float64(1), room.VideoState.Speed)
	assert.Equal(t, 100, room.VideoState.Volume)
	assert.False(t, room.VideoState.IsPlaying)
	require.Len(t, room.Messages, 1, "welcome message must be posted")
	assert.Equal(t, domain.SystemUserID, room.Messages[0].UserID)
	assert.Contains(t, room.Messages[0].Content, "Welcome to movie night!")
}

func TestJoinRoom(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	joinRoomResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		RoomID:   createRoomResp.RoomID,
		Username: "bob",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, joinRoomResp.JoinedUser.ID)
	assert.True(t, joinRoomResp.JoinedUser.IsActive)
	assert.Len(t, joinRoomResp.Room.Users, 2)

	lastMessage := joinRoomResp.Room.Messages[len(joinRoomResp.Room.Messages)-1]
	assert.Equal(t, "bob joined the room.", lastMessage.Content)
}

func TestJoinRoomCaseInsensitiveCode(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	joinRoomResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		RoomID:   strings.ToLower(createRoomResp.RoomID),
		Username: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, createRoomResp.RoomID, joinRoomResp.Room.ID)
}

func TestJoinRoomUnknownCode(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := service.JoinRoom(ctx, &JoinRoomParams{
		RoomID:   "ZZZZZZ",
		Username: "bob",
	})
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomAutoCreate(t *testing.T) {
	service, _ := newTestService(t, &Config{
		UsersLimit:            9,
		AutoCreateOnJoin:      true,
		EmptyRoomTTL:          time.Minute,
		SeekDriftThreshold:    2,
		PublishDriftThreshold: 3,
	})
	ctx := context.Background()

	joinRoomResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		RoomID:   "zzzzzz",
		Username: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "ZZZZZZ", joinRoomResp.Room.ID)
	assert.Equal(t, "Room ZZZZZZ", joinRoomResp.Room.Name)
	assert.Len(t, joinRoomResp.Room.Users, 1)
}

func TestJoinRoomUsersLimit(t *testing.T) {
	service, _ := newTestService(t, &Config{
		UsersLimit:            1,
		EmptyRoomTTL:          time.Minute,
		SeekDriftThreshold:    2,
		PublishDriftThreshold: 3,
	})
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	_, err = service.JoinRoom(ctx, &JoinRoomParams{
		RoomID:   createRoomResp.RoomID,
		Username: "bob",
	})
	require.ErrorIs(t, err, ErrUsersLimitReached)
}

func TestSendMessage(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	sendMessageResp, err := service.SendMessage(ctx, &SendMessageParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		Content:  "hello everyone",
	})
	require.NoError(t, err)
	require.Len(t, sendMessageResp.Messages, 1)
	assert.Equal(t, "hello everyone", sendMessageResp.Messages[0].Content)
	assert.Equal(t, "alice", sendMessageResp.Messages[0].UserName)
	assert.False(t, sendMessageResp.Messages[0].IsCommand)
	assert.Nil(t, sendMessageResp.VideoState)
	assert.NoError(t, sendMessageResp.CommandErr)
}

func TestSendMessageSeekCommand(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	sendMessageResp, err := service.SendMessage(ctx, &SendMessageParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		Content:  "/seek 42",
	})
	require.NoError(t, err)
	require.Len(t, sendMessageResp.Messages, 2, "chat line plus one announcement")
	assert.True(t, sendMessageResp.Messages[0].IsCommand)
	assert.Equal(t, "alice jumped to 42 seconds", sendMessageResp.Messages[1].Content)
	require.NotNil(t, sendMessageResp.VideoState)
	assert.Equal(t, 42, sendMessageResp.VideoState.CurrentTime)

	state, err := service.GetRoomState(ctx, createRoomResp.RoomID)
	require.NoError(t, err)
	assert.Equal(t, 42, state.VideoState.CurrentTime)
}

func TestSendMessageInvalidArgumentIsNoop(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	sendMessageResp, err := service.SendMessage(ctx, &SendMessageParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		Content:  "/volume 150",
	})
	require.NoError(t, err)
	require.Len(t, sendMessageResp.Messages, 1, "no announcement for a dropped directive")
	assert.Nil(t, sendMessageResp.VideoState)
	assert.NoError(t, sendMessageResp.CommandErr)

	state, err := service.GetRoomState(ctx, createRoomResp.RoomID)
	require.NoError(t, err)
	assert.Equal(t, 100, state.VideoState.Volume, "volume must be unchanged")
}

func TestSendMessageUnknownCommand(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	sendMessageResp, err := service.SendMessage(ctx, &SendMessageParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		Content:  "/dance",
	})
	require.NoError(t, err)
	require.Len(t, sendMessageResp.Messages, 1, "the chat line is still logged")
	assert.ErrorIs(t, sendMessageResp.CommandErr, command.ErrUnknownCommand)
}

func TestSendMessageBareURLShares(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	sendMessageResp, err := service.SendMessage(ctx, &SendMessageParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		Content:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	require.NotNil(t, sendMessageResp.VideoState)
	assert.Equal(t, "dQw4w9WgXcQ", sendMessageResp.VideoState.VideoID)
	assert.False(t, sendMessageResp.VideoState.IsPlaying)
	assert.Equal(t, 0, sendMessageResp.VideoState.CurrentTime)
}

func TestProcessCommand(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	processCommandResp, err := service.ProcessCommand(ctx, &ProcessCommandParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		Command:  "/play",
	})
	require.NoError(t, err)
	require.NotNil(t, processCommandResp.VideoState)
	assert.True(t, processCommandResp.VideoState.IsPlaying)
	require.NotNil(t, processCommandResp.Announcement)
	assert.Equal(t, "alice started the video", processCommandResp.Announcement.Content)
}

func TestProcessCommandPlainTextFails(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	processCommandResp, err := service.ProcessCommand(ctx, &ProcessCommandParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		Command:  "not a command",
	})
	require.NoError(t, err)
	assert.ErrorIs(t, processCommandResp.CommandErr, command.ErrUnknownCommand)
	assert.Nil(t, processCommandResp.VideoState)
}

func TestShareVideo(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	shareVideoResp, err := service.ShareVideo(ctx, &ShareVideoParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		URL:      "https://youtu.be/dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", shareVideoResp.VideoState.VideoID)
	assert.False(t, shareVideoResp.VideoState.IsPlaying)
	assert.Equal(t, 0, shareVideoResp.VideoState.CurrentTime)
	assert.Equal(t, "alice shared a video", shareVideoResp.Announcement.Content)
}

func TestShareVideoInvalidURL(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	_, err = service.ShareVideo(ctx, &ShareVideoParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		URL:      "https://example.com/notavideo",
	})
	require.ErrorIs(t, err, command.ErrInvalidVideoURL)

	state, err := service.GetRoomState(ctx, createRoomResp.RoomID)
	require.NoError(t, err)
	assert.Empty(t, state.VideoState.VideoID, "state must be unchanged")
}

func TestUpdateVideoState(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	isPlaying := true
	currentTime := 15
	badVolume := 150
	updateVideoStateResp, err := service.UpdateVideoState(ctx, &UpdateVideoStateParams{
		RoomID:      createRoomResp.RoomID,
		SenderID:    createRoomResp.Creator.ID,
		IsPlaying:   &isPlaying,
		CurrentTime: &currentTime,
		Volume:      &badVolume,
	})
	require.NoError(t, err)
	assert.True(t, updateVideoStateResp.VideoState.IsPlaying)
	assert.Equal(t, 15, updateVideoStateResp.VideoState.CurrentTime)
	assert.Equal(t, 100, updateVideoStateResp.VideoState.Volume, "out-of-range volume is dropped")
	assert.NotZero(t, updateVideoStateResp.VideoState.UpdatedAt)
}

func TestReportPlayerStateCorrection(t *testing.T) {
	service, roomRepo := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	// paused at 10, so the expected position is exactly 10
	require.NoError(t, roomRepo.SetVideoState(ctx, &roomRepository.SetVideoStateParams{
		RoomID: createRoomResp.RoomID,
		VideoState: roomRepository.VideoState{
			VideoID:     "dQw4w9WgXcQ",
			IsPlaying:   false,
			CurrentTime: 10,
			Speed:       1,
			Volume:      100,
			UpdatedAt:   time.Now().UnixMilli(),
		},
	}))

	reportResp, err := service.ReportPlayerState(ctx, &ReportPlayerStateParams{
		RoomID:      createRoomResp.RoomID,
		SenderID:    createRoomResp.Creator.ID,
		IsPlaying:   false,
		CurrentTime: 20,
		Speed:       1,
		Volume:      100,
	})
	require.NoError(t, err)
	require.NotNil(t, reportResp.Correction, "drift beyond the threshold must correct the client")
	assert.Equal(t, 10, reportResp.Correction.CurrentTime)
	assert.Nil(t, reportResp.VideoState)
}

func TestReportPlayerStatePublishesDrift(t *testing.T) {
	service, roomRepo := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	// stamped 10 seconds ago while playing, so the expected position is ~10
	// but the stored one is still 0
	require.NoError(t, roomRepo.SetVideoState(ctx, &roomRepository.SetVideoStateParams{
		RoomID: createRoomResp.RoomID,
		VideoState: roomRepository.VideoState{
			VideoID:     "dQw4w9WgXcQ",
			IsPlaying:   true,
			CurrentTime: 0,
			Speed:       1,
			Volume:      100,
			UpdatedAt:   time.Now().Add(-10 * time.Second).UnixMilli(),
		},
	}))

	reportResp, err := service.ReportPlayerState(ctx, &ReportPlayerStateParams{
		RoomID:      createRoomResp.RoomID,
		SenderID:    createRoomResp.Creator.ID,
		IsPlaying:   true,
		CurrentTime: 10,
		Speed:       1,
		Volume:      100,
	})
	require.NoError(t, err)
	assert.Nil(t, reportResp.Correction)
	require.NotNil(t, reportResp.VideoState, "stored position must be refreshed")
	assert.Equal(t, 10, reportResp.VideoState.CurrentTime)
}

func TestReportPlayerStateSmallDriftIsNoop(t *testing.T) {
	service, roomRepo := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	require.NoError(t, roomRepo.SetVideoState(ctx, &roomRepository.SetVideoStateParams{
		RoomID: createRoomResp.RoomID,
		VideoState: roomRepository.VideoState{
			VideoID:     "dQw4w9WgXcQ",
			IsPlaying:   false,
			CurrentTime: 10,
			Speed:       1,
			Volume:      100,
			UpdatedAt:   time.Now().UnixMilli(),
		},
	}))

	reportResp, err := service.ReportPlayerState(ctx, &ReportPlayerStateParams{
		RoomID:      createRoomResp.RoomID,
		SenderID:    createRoomResp.Creator.ID,
		IsPlaying:   false,
		CurrentTime: 11,
		Speed:       1,
		Volume:      100,
	})
	require.NoError(t, err)
	assert.Nil(t, reportResp.Correction)
	assert.Nil(t, reportResp.VideoState)
}

func TestReportPlayerStateScrubbing(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	reportResp, err := service.ReportPlayerState(ctx, &ReportPlayerStateParams{
		RoomID:      createRoomResp.RoomID,
		SenderID:    createRoomResp.Creator.ID,
		IsPlaying:   true,
		CurrentTime: 500,
		IsScrubbing: true,
	})
	require.NoError(t, err)
	assert.Nil(t, reportResp.Correction, "reconciliation is suspended while scrubbing")
	assert.Nil(t, reportResp.VideoState)
}

func TestLeaveRoom(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	joinRoomResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		RoomID:   createRoomResp.RoomID,
		Username: "bob",
	})
	require.NoError(t, err)

	leaveRoomResp, err := service.LeaveRoom(ctx, &LeaveRoomParams{
		RoomID: createRoomResp.RoomID,
		UserID: joinRoomResp.JoinedUser.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", leaveRoomResp.LeftUser.Name)
	assert.False(t, leaveRoomResp.LeftUser.IsActive)
	assert.Len(t, leaveRoomResp.Users, 2, "membership log keeps the entry")
	assert.False(t, leaveRoomResp.IsRoomExpired, "alice is still active")

	state, err := service.GetRoomState(ctx, createRoomResp.RoomID)
	require.NoError(t, err)
	lastMessage := state.Messages[len(state.Messages)-1]
	assert.Equal(t, "bob left the room.", lastMessage.Content)

	leaveRoomResp, err = service.LeaveRoom(ctx, &LeaveRoomParams{
		RoomID: createRoomResp.RoomID,
		UserID: createRoomResp.Creator.ID,
	})
	require.NoError(t, err)
	assert.True(t, leaveRoomResp.IsRoomExpired, "last active user left")
}

func TestLeaveRoomUnknownUser(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	_, err = service.LeaveRoom(ctx, &LeaveRoomParams{
		RoomID: createRoomResp.RoomID,
		UserID: "nope",
	})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestConnsFollowMembership(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		RoomName: "room",
		Username: "alice",
	})
	require.NoError(t, err)

	require.NoError(t, service.ConnectUser(ctx, &ConnectUserParams{
		Conn:   &websocket.Conn{},
		UserID: createRoomResp.Creator.ID,
	}))

	joinRoomResp, err := service.JoinRoom(ctx, &JoinRoomParams{
		RoomID:   createRoomResp.RoomID,
		Username: "bob",
	})
	require.NoError(t, err)
	assert.Len(t, joinRoomResp.Conns, 1, "only alice is attached so far")

	require.NoError(t, service.ConnectUser(ctx, &ConnectUserParams{
		Conn:   &websocket.Conn{},
		UserID: joinRoomResp.JoinedUser.ID,
	}))

	sendMessageResp, err := service.SendMessage(ctx, &SendMessageParams{
		RoomID:   createRoomResp.RoomID,
		SenderID: createRoomResp.Creator.ID,
		Content:  "hi",
	})
	require.NoError(t, err)
	assert.Len(t, sendMessageResp.Conns, 2)
}
