package room

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/command"
	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/internal/repository/room"
)

type SendMessageParams struct {
	RoomID   string
	SenderID string
	Content  string
}

type SendMessageResponse struct {
	// Messages holds the appended chat entries in order: the sender's line,
	// then the system announcement if a command took effect.
	Messages []domain.ChatMessage
	// VideoState is non-nil when a command changed it.
	VideoState *domain.VideoState
	// CommandErr carries an unknown-command or invalid-share-url error that
	// should be surfaced to the sender only. The chat entry is still logged.
	CommandErr error
	Conns      []*websocket.Conn
}

// SendMessage appends the chat line and, for slash commands and bare video
// links, interprets and applies the directive in the same operation, so the
// log entry and the state change are always paired. Malformed arguments to
// recognized commands are logged but change nothing.
func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	sender, err := s.roomRepo.GetUser(ctx, &room.GetUserParams{
		RoomID: params.RoomID,
		UserID: params.SenderID,
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get sender", "error", err)
		return SendMessageResponse{}, ErrUserNotFound
	}

	message := room.Message{
		ID:        uuid.NewString(),
		UserID:    params.SenderID,
		UserName:  sender.Name,
		Content:   params.Content,
		Timestamp: nowMillis(),
		IsCommand: strings.HasPrefix(strings.TrimSpace(params.Content), "/"),
	}
	if err := s.roomRepo.AddMessage(ctx, &room.AddMessageParams{
		RoomID:  params.RoomID,
		Message: message,
	}); err != nil {
		return SendMessageResponse{}, err
	}

	resp := SendMessageResponse{
		Messages: []domain.ChatMessage{domain.ChatMessage(message)},
	}

	cmd, err := command.Parse(params.Content)
	switch {
	case err == nil:
		state, announcement, applyErr := s.applyCommand(ctx, params.RoomID, sender.Name, cmd)
		if applyErr != nil {
			resp.CommandErr = applyErr
			break
		}

		resp.VideoState = &state
		resp.Messages = append(resp.Messages, announcement)
	case errors.Is(err, command.ErrUnknownCommand):
		resp.CommandErr = err
	case errors.Is(err, command.ErrNotCommand), errors.Is(err, command.ErrInvalidArgument):
		// plain message, or a recognized command with a bad argument:
		// nothing to apply
	default:
		return SendMessageResponse{}, err
	}

	conns, err := s.getConnsByRoomID(ctx, params.RoomID)
	if err != nil {
		return SendMessageResponse{}, err
	}
	resp.Conns = conns

	return resp, nil
}

type ProcessCommandParams struct {
	RoomID   string
	SenderID string
	Command  string
}

type ProcessCommandResponse struct {
	Announcement *domain.ChatMessage
	VideoState   *domain.VideoState
	CommandErr   error
	Conns        []*websocket.Conn
}

// ProcessCommand interprets a command line without logging the raw text.
func (s service) ProcessCommand(ctx context.Context, params *ProcessCommandParams) (ProcessCommandResponse, error) {
	sender, err := s.roomRepo.GetUser(ctx, &room.GetUserParams{
		RoomID: params.RoomID,
		UserID: params.SenderID,
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get sender", "error", err)
		return ProcessCommandResponse{}, ErrUserNotFound
	}

	resp := ProcessCommandResponse{}

	cmd, err := command.Parse(params.Command)
	switch {
	case err == nil:
		state, announcement, applyErr := s.applyCommand(ctx, params.RoomID, sender.Name, cmd)
		if applyErr != nil {
			resp.CommandErr = applyErr
			break
		}

		resp.VideoState = &state
		resp.Announcement = &announcement
	case errors.Is(err, command.ErrUnknownCommand), errors.Is(err, command.ErrNotCommand):
		resp.CommandErr = command.ErrUnknownCommand
	case errors.Is(err, command.ErrInvalidArgument):
		// silent no-op
	default:
		return ProcessCommandResponse{}, err
	}

	conns, err := s.getConnsByRoomID(ctx, params.RoomID)
	if err != nil {
		return ProcessCommandResponse{}, err
	}
	resp.Conns = conns

	return resp, nil
}

// applyCommand runs a parsed command against the current video state,
// persists the result and appends the narrating system message.
func (s service) applyCommand(ctx context.Context, roomID, actorName string, cmd command.Command) (domain.VideoState, domain.ChatMessage, error) {
	current, err := s.getVideoState(ctx, roomID)
	if err != nil {
		return domain.VideoState{}, domain.ChatMessage{}, err
	}

	result, err := command.Apply(cmd, actorName, current, nowMillis())
	if err != nil {
		return domain.VideoState{}, domain.ChatMessage{}, err
	}

	if share, ok := cmd.(command.Share); ok {
		result.Announcement = s.shareAnnouncement(ctx, actorName, share, result.State.VideoID)
	}

	if err := s.setVideoState(ctx, roomID, result.State); err != nil {
		return domain.VideoState{}, domain.ChatMessage{}, err
	}

	announcement, err := s.addSystemMessage(ctx, roomID, result.Announcement)
	if err != nil {
		return domain.VideoState{}, domain.ChatMessage{}, err
	}

	return result.State, announcement, nil
}

// shareAnnouncement enriches the share message with the video title when
// metadata is available. Lookup failures fall back to the plain wording.
func (s service) shareAnnouncement(ctx context.Context, actorName string, _ command.Share, videoID string) string {
	if s.metadata == nil {
		return actorName + " shared a video"
	}

	videoData, err := s.metadata.Get(videoID)
	if err != nil || videoData.Title == "" {
		if err != nil {
			s.logger.DebugContext(ctx, "failed to get video metadata", "error", err)
		}
		return actorName + " shared a video"
	}

	return actorName + " shared " + videoData.Title
}
