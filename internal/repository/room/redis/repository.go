package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc      *redis.Client
	logger  *slog.Logger
	roomTTL time.Duration

	appendToListScript          string
	expireKeysWithPrefixScript  string
	persistKeysWithPrefixScript string
}

// NewRepo loads the helper scripts once and reuses them by sha. roomTTL is
// the idle lifetime refreshed on every write to a room's keys.
func NewRepo(rc *redis.Client, logger *slog.Logger, roomTTL time.Duration) *repo {
	return &repo{
		rc:      rc,
		logger:  logger,
		roomTTL: roomTTL,
		// adds the member with the next score unless it is already listed,
		// preserving insertion order
		appendToListScript: rc.ScriptLoad(context.Background(), `
			local existing = redis.call('ZSCORE', KEYS[1], ARGV[1])
			if existing then
				return tonumber(existing)
			end
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
		expireKeysWithPrefixScript: rc.ScriptLoad(context.Background(), `
			local pattern = ARGV[1]
			local timestamp = ARGV[2]
			local cursor = "0"
			local count = 0

			repeat
				local result = redis.call('SCAN', cursor, 'MATCH', pattern)
				cursor = result[1]
				local keys = result[2]

				for i, key in ipairs(keys) do
					redis.call('EXPIREAT', key, timestamp)
					count = count + 1
				end
			until cursor == "0"

			return count
		`).Val(),
		persistKeysWithPrefixScript: rc.ScriptLoad(context.Background(), `
			local pattern = ARGV[1]
			local cursor = "0"
			local count = 0

			repeat
				local result = redis.call('SCAN', cursor, 'MATCH', pattern)
				cursor = result[1]
				local keys = result[2]

				for i, key in ipairs(keys) do
					redis.call('PERSIST', key)
					count = count + 1
				end
			until cursor == "0"

			return count
		`).Val(),
	}
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return nil
}

func (r repo) appendToList(ctx context.Context, pipe redis.Pipeliner, listKey, member string) {
	pipe.EvalSha(ctx, r.appendToListScript, []string{listKey}, member)
	pipe.Expire(ctx, listKey, r.roomTTL)
}
