package redis

import (
	"context"

	"github.com/synctube/server/internal/repository/room"
)

func (r repo) getVideoStateKey(roomID string) string {
	return "room:" + roomID + ":videostate"
}

func (r repo) SetVideoState(ctx context.Context, params *room.SetVideoStateParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	videoStateKey := r.getVideoStateKey(params.RoomID)
	pipe.HSet(ctx, videoStateKey, params.VideoState)
	pipe.Expire(ctx, videoStateKey, r.roomTTL)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetVideoState(ctx context.Context, roomID string) (room.VideoState, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	key := r.getVideoStateKey(roomID)
	cmd := r.rc.Exists(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.VideoState{}, err
	}

	if cmd.Val() == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.VideoState{}, room.ErrRoomNotFound
	}

	var state room.VideoState
	if err := r.rc.HGetAll(ctx, key).Scan(&state); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.VideoState{}, err
	}

	return state, nil
}
