package redis

import (
	"context"
	"encoding/json"

	"github.com/synctube/server/internal/repository/room"
)

func (r repo) getMessageListKey(roomID string) string {
	return "room:" + roomID + ":messages"
}

func (r repo) AddMessage(ctx context.Context, params *room.AddMessageParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	payload, err := json.Marshal(params.Message)
	if err != nil {
		return err
	}

	pipe := r.rc.TxPipeline()

	messageListKey := r.getMessageListKey(params.RoomID)
	pipe.RPush(ctx, messageListKey, payload)
	pipe.Expire(ctx, messageListKey, r.roomTTL)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetMessages(ctx context.Context, roomID string) ([]room.Message, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	raw, err := r.rc.LRange(ctx, r.getMessageListKey(roomID), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	messages := make([]room.Message, 0, len(raw))
	for _, entry := range raw {
		var message room.Message
		if err := json.Unmarshal([]byte(entry), &message); err != nil {
			r.logger.DebugContext(ctx, "returned", "error", err)
			return nil, err
		}

		messages = append(messages, message)
	}

	return messages, nil
}
