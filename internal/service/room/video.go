package room

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/command"
	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/internal/repository/room"
)

type UpdateVideoStateParams struct {
	RoomID   string
	SenderID string

	VideoID     *string
	IsPlaying   *bool
	CurrentTime *int
	Duration    *int
	Speed       *float64
	Volume      *int
}

type UpdateVideoStateResponse struct {
	VideoState domain.VideoState
	Conns      []*websocket.Conn
}

// UpdateVideoState applies a partial update to the room's video state.
// Fields carrying out-of-range values are dropped; the rest still apply.
// Every call stamps UpdatedAt.
func (s service) UpdateVideoState(ctx context.Context, params *UpdateVideoStateParams) (UpdateVideoStateResponse, error) {
	state, err := s.getVideoState(ctx, params.RoomID)
	if err != nil {
		return UpdateVideoStateResponse{}, err
	}

	if params.VideoID != nil {
		state.VideoID = *params.VideoID
	}
	if params.IsPlaying != nil {
		state.IsPlaying = *params.IsPlaying
	}
	if params.CurrentTime != nil && *params.CurrentTime >= 0 {
		state.CurrentTime = *params.CurrentTime
	}
	if params.Duration != nil && *params.Duration >= 0 {
		state.Duration = *params.Duration
	}
	if params.Speed != nil && *params.Speed > command.MinSpeed && *params.Speed <= command.MaxSpeed {
		state.Speed = *params.Speed
	}
	if params.Volume != nil && *params.Volume >= command.MinVolume && *params.Volume <= command.MaxVolume {
		state.Volume = *params.Volume
	}
	state.UpdatedAt = nowMillis()

	if err := s.setVideoState(ctx, params.RoomID, state); err != nil {
		return UpdateVideoStateResponse{}, err
	}

	conns, err := s.getConnsByRoomID(ctx, params.RoomID)
	if err != nil {
		return UpdateVideoStateResponse{}, err
	}

	return UpdateVideoStateResponse{
		VideoState: state,
		Conns:      conns,
	}, nil
}

type ShareVideoParams struct {
	RoomID   string
	SenderID string
	URL      string
}

type ShareVideoResponse struct {
	VideoState   domain.VideoState
	Announcement domain.ChatMessage
	Conns        []*websocket.Conn
}

// ShareVideo loads a new video into the room: playback resets to a paused
// state at position zero. An unparseable url fails with
// command.ErrInvalidVideoURL and changes nothing.
func (s service) ShareVideo(ctx context.Context, params *ShareVideoParams) (ShareVideoResponse, error) {
	sender, err := s.roomRepo.GetUser(ctx, &room.GetUserParams{
		RoomID: params.RoomID,
		UserID: params.SenderID,
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get sender", "error", err)
		return ShareVideoResponse{}, ErrUserNotFound
	}

	state, announcement, err := s.applyCommand(ctx, params.RoomID, sender.Name, command.Share{URL: params.URL})
	if err != nil {
		return ShareVideoResponse{}, err
	}

	conns, err := s.getConnsByRoomID(ctx, params.RoomID)
	if err != nil {
		return ShareVideoResponse{}, err
	}

	return ShareVideoResponse{
		VideoState:   state,
		Announcement: announcement,
		Conns:        conns,
	}, nil
}
