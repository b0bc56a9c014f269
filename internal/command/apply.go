package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/pkg/youtube"
)

// ErrInvalidVideoURL is surfaced to the sender; no state changes and no
// announcement is posted.
var ErrInvalidVideoURL = errors.New("invalid video url")

// Result is the outcome of applying a command: the new video state and the
// system-message text narrating the action, attributed to the acting user.
type Result struct {
	State        domain.VideoState
	Announcement string
}

// Apply evaluates a parsed command against the current video state. The input
// state is passed by value and never mutated; the returned state carries a
// fresh UpdatedAt stamp.
func Apply(cmd Command, actorName string, state domain.VideoState, now int64) (Result, error) {
	state.UpdatedAt = now

	switch cmd := cmd.(type) {
	case Play:
		state.IsPlaying = true
		return Result{State: state, Announcement: actorName + " started the video"}, nil
	case Pause:
		state.IsPlaying = false
		return Result{State: state, Announcement: actorName + " paused the video"}, nil
	case Seek:
		state.CurrentTime = cmd.Seconds
		return Result{State: state, Announcement: fmt.Sprintf("%s jumped to %d seconds", actorName, cmd.Seconds)}, nil
	case Speed:
		state.Speed = cmd.Rate
		rate := strconv.FormatFloat(cmd.Rate, 'f', -1, 64)
		return Result{State: state, Announcement: fmt.Sprintf("%s set playback speed to %sx", actorName, rate)}, nil
	case Volume:
		state.Volume = cmd.Percent
		return Result{State: state, Announcement: fmt.Sprintf("%s set volume to %d%%", actorName, cmd.Percent)}, nil
	case Share:
		videoID := youtube.ExtractVideoID(cmd.URL)
		if videoID == "" {
			return Result{}, ErrInvalidVideoURL
		}
		state.VideoID = videoID
		state.IsPlaying = false
		state.CurrentTime = 0
		return Result{State: state, Announcement: actorName + " shared a video"}, nil
	default:
		return Result{}, ErrUnknownCommand
	}
}
