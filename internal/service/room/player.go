package room

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/command"
	"github.com/synctube/server/internal/domain"
)

type ReportPlayerStateParams struct {
	RoomID   string
	SenderID string

	IsPlaying   bool
	CurrentTime int
	Duration    int
	Speed       float64
	Volume      int
	// IsScrubbing suspends reconciliation while the sender drags the seek
	// bar; it resumes once the drag commits.
	IsScrubbing bool
}

type ReportPlayerStateResponse struct {
	// Correction, when set, tells the reporting client to snap its player
	// back to the authoritative state.
	Correction *domain.VideoState
	// VideoState, when set, is a refreshed room state to broadcast.
	VideoState *domain.VideoState
	Conns      []*websocket.Conn
}

// ReportPlayerState reconciles a client's live player state with the room's
// authoritative video state. The room position is extrapolated from its last
// stamp while playing; a report drifting beyond SeekDriftThreshold from that
// expected position gets corrected, while smaller drift beyond
// PublishDriftThreshold from the stored position refreshes the room state.
func (s service) ReportPlayerState(ctx context.Context, params *ReportPlayerStateParams) (ReportPlayerStateResponse, error) {
	if params.IsScrubbing {
		return ReportPlayerStateResponse{}, nil
	}

	state, err := s.getVideoState(ctx, params.RoomID)
	if err != nil {
		return ReportPlayerStateResponse{}, err
	}

	now := nowMillis()
	expected := state.CurrentTime
	if state.IsPlaying {
		expected += int(float64(now-state.UpdatedAt) / 1000 * state.Speed)
	}

	if params.IsPlaying != state.IsPlaying || abs(params.CurrentTime-expected) > s.seekDriftThreshold {
		correction := state
		correction.CurrentTime = expected
		s.logger.DebugContext(ctx, "correcting player",
			"user_id", params.SenderID,
			"reported_time", params.CurrentTime,
			"expected_time", expected,
		)
		return ReportPlayerStateResponse{Correction: &correction}, nil
	}

	changed := false
	if abs(params.CurrentTime-state.CurrentTime) > s.publishDriftThreshold {
		state.CurrentTime = params.CurrentTime
		changed = true
	}
	if params.Duration > 0 && params.Duration != state.Duration {
		state.Duration = params.Duration
		changed = true
	}
	if params.Speed > command.MinSpeed && params.Speed <= command.MaxSpeed && params.Speed != state.Speed {
		state.Speed = params.Speed
		changed = true
	}
	if params.Volume >= command.MinVolume && params.Volume <= command.MaxVolume && params.Volume != state.Volume {
		state.Volume = params.Volume
		changed = true
	}

	if !changed {
		return ReportPlayerStateResponse{}, nil
	}

	state.UpdatedAt = now
	if err := s.setVideoState(ctx, params.RoomID, state); err != nil {
		return ReportPlayerStateResponse{}, err
	}

	conns, err := s.getConnsByRoomID(ctx, params.RoomID)
	if err != nil {
		return ReportPlayerStateResponse{}, err
	}

	return ReportPlayerStateResponse{
		VideoState: &state,
		Conns:      conns,
	}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
