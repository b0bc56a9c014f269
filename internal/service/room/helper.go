package room

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/internal/repository/room"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func (s service) getUsers(ctx context.Context, roomID string) ([]domain.User, error) {
	userIDs, err := s.roomRepo.GetUserIDs(ctx, roomID)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(userIDs))
	for _, userID := range userIDs {
		user, err := s.roomRepo.GetUser(ctx, &room.GetUserParams{
			RoomID: roomID,
			UserID: userID,
		})
		if err != nil {
			return nil, err
		}

		users = append(users, domain.User{
			ID:        userID,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
			IsActive:  user.IsActive,
		})
	}

	return users, nil
}

// getConnsByRoomID returns the connections of every user currently attached
// to this process. Inactive users have no connection and are skipped.
func (s service) getConnsByRoomID(ctx context.Context, roomID string) ([]*websocket.Conn, error) {
	userIDs, err := s.roomRepo.GetUserIDs(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get user ids", "error", err)
		return nil, err
	}

	conns := make([]*websocket.Conn, 0, len(userIDs))
	for _, userID := range userIDs {
		conn, err := s.connRepo.GetConn(userID)
		if err != nil {
			continue
		}

		conns = append(conns, conn)
	}

	return conns, nil
}

func (s service) getRoomSnapshot(ctx context.Context, roomID string) (domain.Room, error) {
	roomRecord, err := s.roomRepo.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}

	users, err := s.getUsers(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}

	videoState, err := s.roomRepo.GetVideoState(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}

	messages, err := s.roomRepo.GetMessages(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}

	domainMessages := make([]domain.ChatMessage, 0, len(messages))
	for _, message := range messages {
		domainMessages = append(domainMessages, domain.ChatMessage(message))
	}

	return domain.Room{
		ID:         roomID,
		Name:       roomRecord.Name,
		Users:      users,
		VideoState: domain.VideoState(videoState),
		Messages:   domainMessages,
		CreatedAt:  roomRecord.CreatedAt,
	}, nil
}

func (s service) getVideoState(ctx context.Context, roomID string) (domain.VideoState, error) {
	state, err := s.roomRepo.GetVideoState(ctx, roomID)
	if err != nil {
		return domain.VideoState{}, err
	}

	return domain.VideoState(state), nil
}

func (s service) setVideoState(ctx context.Context, roomID string, state domain.VideoState) error {
	return s.roomRepo.SetVideoState(ctx, &room.SetVideoStateParams{
		RoomID:     roomID,
		VideoState: room.VideoState(state),
	})
}

// addSystemMessage appends a chat entry authored by the synthetic system
// identity and returns it for broadcasting.
func (s service) addSystemMessage(ctx context.Context, roomID, content string) (domain.ChatMessage, error) {
	now := nowMillis()
	message := room.Message{
		ID:        fmt.Sprintf("system-%d", now),
		UserID:    domain.SystemUserID,
		UserName:  domain.SystemUserName,
		Content:   content,
		Timestamp: now,
		IsCommand: false,
	}

	if err := s.roomRepo.AddMessage(ctx, &room.AddMessageParams{
		RoomID:  roomID,
		Message: message,
	}); err != nil {
		return domain.ChatMessage{}, err
	}

	return domain.ChatMessage(message), nil
}
