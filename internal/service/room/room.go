package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/internal/repository/room"
)

type CreateRoomParams struct {
	RoomName  string
	Username  string
	AvatarURL string
}

type CreateRoomResponse struct {
	RoomID  string
	Creator domain.User
	Room    domain.Room
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomID := s.generator.GenerateRandomString(domain.RoomCodeLength)
	s.logger.InfoContext(ctx, "creating room", "room_id", roomID)

	if err := s.roomRepo.SetRoom(ctx, &room.SetRoomParams{
		RoomID:    roomID,
		Name:      params.RoomName,
		CreatedAt: nowMillis(),
	}); err != nil {
		return CreateRoomResponse{}, err
	}

	userID := uuid.NewString()
	if err := s.roomRepo.SetUser(ctx, &room.SetUserParams{
		RoomID:    roomID,
		UserID:    userID,
		Name:      params.Username,
		AvatarURL: params.AvatarURL,
		IsActive:  true,
	}); err != nil {
		return CreateRoomResponse{}, err
	}

	if err := s.setVideoState(ctx, roomID, domain.DefaultVideoState()); err != nil {
		return CreateRoomResponse{}, err
	}

	welcome := fmt.Sprintf("Welcome to %s! Share YouTube videos by pasting a link or using /share command.", params.RoomName)
	if _, err := s.addSystemMessage(ctx, roomID, welcome); err != nil {
		return CreateRoomResponse{}, err
	}

	snapshot, err := s.getRoomSnapshot(ctx, roomID)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	return CreateRoomResponse{
		RoomID: roomID,
		Creator: domain.User{
			ID:        userID,
			Name:      params.Username,
			AvatarURL: params.AvatarURL,
			IsActive:  true,
		},
		Room: snapshot,
	}, nil
}

type JoinRoomParams struct {
	RoomID    string
	Username  string
	AvatarURL string
}

type JoinRoomResponse struct {
	JoinedUser domain.User
	Room       domain.Room
	Conns      []*websocket.Conn
}

// JoinRoom adds a user to an existing room. Join codes are case-insensitive.
// An unknown code fails with ErrRoomNotFound unless AutoCreateOnJoin is set,
// in which case an empty room stamped with that code is fabricated.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	roomID := strings.ToUpper(params.RoomID)
	s.logger.InfoContext(ctx, "joining room", "room_id", roomID)

	if _, err := s.roomRepo.GetRoom(ctx, roomID); err != nil {
		if !errors.Is(err, room.ErrRoomNotFound) {
			return JoinRoomResponse{}, err
		}

		if !s.autoCreateOnJoin {
			return JoinRoomResponse{}, ErrRoomNotFound
		}

		if err := s.fabricateRoom(ctx, roomID); err != nil {
			return JoinRoomResponse{}, err
		}
	} else if err := s.roomRepo.PersistRoom(ctx, roomID); err != nil {
		s.logger.InfoContext(ctx, "failed to persist room", "error", err)
	}

	users, err := s.getUsers(ctx, roomID)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	active := 0
	for _, user := range users {
		if user.IsActive {
			active++
		}
	}
	if active >= s.usersLimit {
		return JoinRoomResponse{}, ErrUsersLimitReached
	}

	userID := uuid.NewString()
	if err := s.roomRepo.SetUser(ctx, &room.SetUserParams{
		RoomID:    roomID,
		UserID:    userID,
		Name:      params.Username,
		AvatarURL: params.AvatarURL,
		IsActive:  true,
	}); err != nil {
		return JoinRoomResponse{}, err
	}

	if _, err := s.addSystemMessage(ctx, roomID, params.Username+" joined the room."); err != nil {
		return JoinRoomResponse{}, err
	}

	conns, err := s.getConnsByRoomID(ctx, roomID)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	snapshot, err := s.getRoomSnapshot(ctx, roomID)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	return JoinRoomResponse{
		JoinedUser: domain.User{
			ID:        userID,
			Name:      params.Username,
			AvatarURL: params.AvatarURL,
			IsActive:  true,
		},
		Room:  snapshot,
		Conns: conns,
	}, nil
}

func (s service) fabricateRoom(ctx context.Context, roomID string) error {
	if err := s.roomRepo.SetRoom(ctx, &room.SetRoomParams{
		RoomID:    roomID,
		Name:      "Room " + roomID,
		CreatedAt: nowMillis(),
	}); err != nil {
		return err
	}

	if err := s.setVideoState(ctx, roomID, domain.DefaultVideoState()); err != nil {
		return err
	}

	_, err := s.addSystemMessage(ctx, roomID, "Welcome! Share a YouTube video link to get started.")
	return err
}

type ConnectUserParams struct {
	Conn   *websocket.Conn
	UserID string
}

func (s service) ConnectUser(ctx context.Context, params *ConnectUserParams) error {
	if err := s.connRepo.Add(params.Conn, params.UserID); err != nil {
		s.logger.InfoContext(ctx, "failed to connect user", "error", err)
		return err
	}

	return nil
}

type LeaveRoomParams struct {
	RoomID string
	UserID string
}

type LeaveRoomResponse struct {
	LeftUser      domain.User
	Users         []domain.User
	Conns         []*websocket.Conn
	IsRoomExpired bool
}

// LeaveRoom marks the user inactive and posts the departure message. The
// membership log keeps the entry. When the last active user leaves, the room
// is scheduled for deletion after EmptyRoomTTL.
func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	user, err := s.roomRepo.GetUser(ctx, &room.GetUserParams{
		RoomID: params.RoomID,
		UserID: params.UserID,
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get user", "error", err)
		return LeaveRoomResponse{}, ErrUserNotFound
	}

	if err := s.roomRepo.UpdateUserIsActive(ctx, &room.UpdateUserIsActiveParams{
		RoomID:   params.RoomID,
		UserID:   params.UserID,
		IsActive: false,
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to deactivate user", "error", err)
	}

	if conn, err := s.connRepo.RemoveByUserID(params.UserID); err == nil {
		conn.Close()
	}

	if _, err := s.addSystemMessage(ctx, params.RoomID, user.Name+" left the room."); err != nil {
		s.logger.InfoContext(ctx, "failed to add system message", "error", err)
	}

	users, err := s.getUsers(ctx, params.RoomID)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	active := 0
	for _, u := range users {
		if u.IsActive {
			active++
		}
	}

	isRoomExpired := false
	if active == 0 {
		if err := s.roomRepo.ExpireRoom(ctx, params.RoomID, s.emptyRoomTTL); err != nil {
			s.logger.InfoContext(ctx, "failed to expire room", "error", err)
		} else {
			isRoomExpired = true
		}
	}

	conns, err := s.getConnsByRoomID(ctx, params.RoomID)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	return LeaveRoomResponse{
		LeftUser: domain.User{
			ID:        params.UserID,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
			IsActive:  false,
		},
		Users:         users,
		Conns:         conns,
		IsRoomExpired: isRoomExpired,
	}, nil
}

func (s service) GetRoomState(ctx context.Context, roomID string) (domain.Room, error) {
	snapshot, err := s.getRoomSnapshot(ctx, roomID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return domain.Room{}, ErrRoomNotFound
		}

		return domain.Room{}, err
	}

	return snapshot, nil
}
