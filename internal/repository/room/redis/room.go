package redis

import (
	"context"
	"time"

	"github.com/synctube/server/internal/repository/room"
)

func (r repo) getRoomKey(roomID string) string {
	return "room:" + roomID
}

func (r repo) getRoomKeyPattern(roomID string) string {
	return "room:" + roomID + "*"
}

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	roomKey := r.getRoomKey(params.RoomID)
	pipe.HSet(ctx, roomKey, room.Room{
		Name:      params.Name,
		CreatedAt: params.CreatedAt,
	})
	pipe.Expire(ctx, roomKey, r.roomTTL)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomID string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	var res room.Room
	if err := r.rc.HGetAll(ctx, r.getRoomKey(roomID)).Scan(&res); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	if res.Name == "" {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	return res, nil
}

// ExpireRoom schedules every key belonging to the room for deletion after
// ttl. Used when the last active user leaves.
func (r repo) ExpireRoom(ctx context.Context, roomID string, ttl time.Duration) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomID, "ttl", ttl)
	deadline := time.Now().Add(ttl).Unix()
	if err := r.rc.EvalSha(ctx, r.expireKeysWithPrefixScript, nil, r.getRoomKeyPattern(roomID), deadline).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// PersistRoom cancels a pending expiry, e.g. when a user joins a room that
// was emptied moments ago.
func (r repo) PersistRoom(ctx context.Context, roomID string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	if err := r.rc.EvalSha(ctx, r.persistKeysWithPrefixScript, nil, r.getRoomKeyPattern(roomID)).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}
