package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctube/server/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Command
		wantErr error
	}{
		{"play", "/play", Play{}, nil},
		{"pause", "/pause", Pause{}, nil},
		{"play uppercase", "/PLAY", Play{}, nil},
		{"seek", "/seek 42", Seek{Seconds: 42}, nil},
		{"seek zero", "/seek 0", Seek{Seconds: 0}, nil},
		{"seek negative", "/seek -5", nil, ErrInvalidArgument},
		{"seek not a number", "/seek abc", nil, ErrInvalidArgument},
		{"speed", "/speed 1.5", Speed{Rate: 1.5}, nil},
		{"speed zero", "/speed 0", nil, ErrInvalidArgument},
		{"speed too high", "/speed 2.5", nil, ErrInvalidArgument},
		{"volume", "/volume 50", Volume{Percent: 50}, nil},
		{"volume max", "/volume 100", Volume{Percent: 100}, nil},
		{"volume over max", "/volume 150", nil, ErrInvalidArgument},
		{"volume negative", "/volume -1", nil, ErrInvalidArgument},
		{"share", "/share https://youtu.be/dQw4w9WgXcQ", Share{URL: "https://youtu.be/dQw4w9WgXcQ"}, nil},
		{"unknown command", "/dance", nil, ErrUnknownCommand},
		{"plain message", "hello everyone", nil, ErrNotCommand},
		{"bare video url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Share{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}, nil},
		{"non-video url", "https://example.com/page", nil, ErrNotCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestApply(t *testing.T) {
	base := domain.VideoState{
		VideoID:     "dQw4w9WgXcQ",
		IsPlaying:   false,
		CurrentTime: 30,
		Duration:    300,
		Speed:       1,
		Volume:      100,
		UpdatedAt:   1000,
	}

	t.Run("play", func(t *testing.T) {
		result, err := Apply(Play{}, "alice", base, 2000)
		require.NoError(t, err)
		assert.True(t, result.State.IsPlaying)
		assert.Equal(t, int64(2000), result.State.UpdatedAt)
		assert.Equal(t, "alice started the video", result.Announcement)
	})

	t.Run("pause", func(t *testing.T) {
		playing := base
		playing.IsPlaying = true
		result, err := Apply(Pause{}, "alice", playing, 2000)
		require.NoError(t, err)
		assert.False(t, result.State.IsPlaying)
		assert.Equal(t, "alice paused the video", result.Announcement)
	})

	t.Run("seek", func(t *testing.T) {
		result, err := Apply(Seek{Seconds: 42}, "alice", base, 2000)
		require.NoError(t, err)
		assert.Equal(t, 42, result.State.CurrentTime)
		assert.Equal(t, "alice jumped to 42 seconds", result.Announcement)
	})

	t.Run("speed", func(t *testing.T) {
		result, err := Apply(Speed{Rate: 1.5}, "alice", base, 2000)
		require.NoError(t, err)
		assert.Equal(t, 1.5, result.State.Speed)
		assert.Equal(t, "alice set playback speed to 1.5x", result.Announcement)
	})

	t.Run("volume", func(t *testing.T) {
		result, err := Apply(Volume{Percent: 50}, "alice", base, 2000)
		require.NoError(t, err)
		assert.Equal(t, 50, result.State.Volume)
		assert.Equal(t, "alice set volume to 50%", result.Announcement)
	})

	t.Run("share resets playback", func(t *testing.T) {
		playing := base
		playing.IsPlaying = true
		result, err := Apply(Share{URL: "https://youtu.be/aaaaaaaaaaa"}, "alice", playing, 2000)
		require.NoError(t, err)
		assert.Equal(t, "aaaaaaaaaaa", result.State.VideoID)
		assert.False(t, result.State.IsPlaying)
		assert.Equal(t, 0, result.State.CurrentTime)
		assert.Equal(t, "alice shared a video", result.Announcement)
	})

	t.Run("share invalid url", func(t *testing.T) {
		_, err := Apply(Share{URL: "https://example.com/notavideo"}, "alice", base, 2000)
		require.ErrorIs(t, err, ErrInvalidVideoURL)
	})

	t.Run("input state is not mutated", func(t *testing.T) {
		before := base
		_, err := Apply(Seek{Seconds: 99}, "alice", base, 2000)
		require.NoError(t, err)
		assert.Equal(t, before, base)
	})
}
