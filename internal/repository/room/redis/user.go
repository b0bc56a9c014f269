package redis

import (
	"context"

	"github.com/synctube/server/internal/repository/room"
)

func (r repo) getUserKey(roomID, userID string) string {
	return "room:" + roomID + ":user:" + userID
}

func (r repo) getUserListKey(roomID string) string {
	return "room:" + roomID + ":userlist"
}

// SetUser upserts the user hash and appends the id to the membership list.
// The list keeps insertion order and is append-only: leaving only flips
// is_active on the hash.
func (r repo) SetUser(ctx context.Context, params *room.SetUserParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	userKey := r.getUserKey(params.RoomID, params.UserID)
	pipe.HSet(ctx, userKey, room.User{
		Name:      params.Name,
		AvatarURL: params.AvatarURL,
		IsActive:  params.IsActive,
	})
	pipe.Expire(ctx, userKey, r.roomTTL)

	r.appendToList(ctx, pipe, r.getUserListKey(params.RoomID), params.UserID)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetUser(ctx context.Context, params *room.GetUserParams) (room.User, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	var user room.User
	if err := r.rc.HGetAll(ctx, r.getUserKey(params.RoomID, params.UserID)).Scan(&user); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.User{}, err
	}

	if user.Name == "" {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrUserNotFound)
		return room.User{}, room.ErrUserNotFound
	}

	return user, nil
}

func (r repo) GetUserIDs(ctx context.Context, roomID string) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	userIDs, err := r.rc.ZRange(ctx, r.getUserListKey(roomID), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return userIDs, nil
}

func (r repo) UpdateUserIsActive(ctx context.Context, params *room.UpdateUserIsActiveParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	key := r.getUserKey(params.RoomID, params.UserID)
	cmd := r.rc.Exists(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if cmd.Val() == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrUserNotFound)
		return room.ErrUserNotFound
	}

	if err := r.rc.HSet(ctx, key, "is_active", params.IsActive).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}
