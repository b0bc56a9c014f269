package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/internal/service/room"
)

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	roomName, err := c.getQueryParam(r, "room-name")
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to get query param", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	username, err := c.getQueryParam(r, "username")
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to get query param", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createRoomResponse, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		RoomName:  roomName,
		Username:  username,
		AvatarURL: r.URL.Query().Get("avatar-url"),
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to create room", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	c.serveMember(w, r, createRoomResponse.RoomID, createRoomResponse.Creator.ID, createRoomResponse.Room)
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")
	if roomID == "" {
		c.logger.DebugContext(r.Context(), "empty room id")
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	username, err := c.getQueryParam(r, "username")
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to get query param", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	joinRoomResponse, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		RoomID:    roomID,
		Username:  username,
		AvatarURL: r.URL.Query().Get("avatar-url"),
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to join room", "error", err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := c.broadcast(r.Context(), joinRoomResponse.Conns, &Output{
		Type: "MEMBER_JOINED",
		Payload: map[string]any{
			"joined_user": joinRoomResponse.JoinedUser,
			"users":       joinRoomResponse.Room.Users,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to broadcast", "error", err)
	}

	c.serveMember(w, r, joinRoomResponse.Room.ID, joinRoomResponse.JoinedUser.ID, joinRoomResponse.Room)
}

// serveMember upgrades the request, attaches the connection to the user and
// serves ws messages until the connection drops, then runs the leave flow.
func (c controller) serveMember(w http.ResponseWriter, r *http.Request, roomID, userID string, snapshot domain.Room) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer c.disconnect(r.Context(), roomID, userID)

	if err := c.roomService.ConnectUser(r.Context(), &room.ConnectUserParams{
		Conn:   conn,
		UserID: userID,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect user", "error", err)
		conn.Close()
		return
	}

	if err := conn.WriteJSON(&Output{
		Type: "JOINED_ROOM",
		Payload: map[string]any{
			"user_id": userID,
			"room":    snapshot,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	ctx := context.WithValue(r.Context(), roomIDCtxKey, roomID)
	ctx = context.WithValue(ctx, userIDCtxKey, userID)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(r.Context(), "conn closed", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, roomID, userID string) {
	leaveRoomResponse, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		RoomID: roomID,
		UserID: userID,
	})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to leave room", "error", err)
		return
	}

	if err := c.broadcast(ctx, leaveRoomResponse.Conns, &Output{
		Type: "MEMBER_LEFT",
		Payload: map[string]any{
			"left_user": leaveRoomResponse.LeftUser,
			"users":     leaveRoomResponse.Users,
		},
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to broadcast member left", "error", err)
	}
}
