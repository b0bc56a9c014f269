package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/service/room"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type SendMessageInput struct {
	Content string `json:"content"`
}

func (c controller) handleSendMessage(ctx context.Context, conn *websocket.Conn, input SendMessageInput) error {
	roomID := c.getRoomIDFromCtx(ctx)
	userID := c.getUserIDFromCtx(ctx)

	if input.Content == "" {
		return fmt.Errorf("empty message: %w", ErrValidationError)
	}

	sendMessageResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		RoomID:   roomID,
		SenderID: userID,
		Content:  input.Content,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	for i := range sendMessageResp.Messages {
		if err := c.broadcast(ctx, sendMessageResp.Conns, &Output{
			Type:    "CHAT_MESSAGE",
			Payload: sendMessageResp.Messages[i],
		}); err != nil {
			return fmt.Errorf("failed to broadcast chat message: %w", err)
		}
	}

	if sendMessageResp.VideoState != nil {
		if err := c.broadcast(ctx, sendMessageResp.Conns, &Output{
			Type:    "VIDEO_STATE_UPDATED",
			Payload: sendMessageResp.VideoState,
		}); err != nil {
			return fmt.Errorf("failed to broadcast video state: %w", err)
		}
	}

	// command errors go to the sender only, the message itself was logged
	if sendMessageResp.CommandErr != nil {
		return sendMessageResp.CommandErr
	}

	return nil
}

type ProcessCommandInput struct {
	Command string `json:"command"`
}

func (c controller) handleProcessCommand(ctx context.Context, conn *websocket.Conn, input ProcessCommandInput) error {
	roomID := c.getRoomIDFromCtx(ctx)
	userID := c.getUserIDFromCtx(ctx)

	processCommandResp, err := c.roomService.ProcessCommand(ctx, &room.ProcessCommandParams{
		RoomID:   roomID,
		SenderID: userID,
		Command:  input.Command,
	})
	if err != nil {
		return fmt.Errorf("failed to process command: %w", err)
	}

	if processCommandResp.Announcement != nil {
		if err := c.broadcast(ctx, processCommandResp.Conns, &Output{
			Type:    "CHAT_MESSAGE",
			Payload: processCommandResp.Announcement,
		}); err != nil {
			return fmt.Errorf("failed to broadcast announcement: %w", err)
		}
	}

	if processCommandResp.VideoState != nil {
		if err := c.broadcast(ctx, processCommandResp.Conns, &Output{
			Type:    "VIDEO_STATE_UPDATED",
			Payload: processCommandResp.VideoState,
		}); err != nil {
			return fmt.Errorf("failed to broadcast video state: %w", err)
		}
	}

	if processCommandResp.CommandErr != nil {
		return processCommandResp.CommandErr
	}

	return nil
}

type ShareVideoInput struct {
	URL string `json:"url"`
}

func (c controller) handleShareVideo(ctx context.Context, conn *websocket.Conn, input ShareVideoInput) error {
	roomID := c.getRoomIDFromCtx(ctx)
	userID := c.getUserIDFromCtx(ctx)

	shareVideoResp, err := c.roomService.ShareVideo(ctx, &room.ShareVideoParams{
		RoomID:   roomID,
		SenderID: userID,
		URL:      input.URL,
	})
	if err != nil {
		return fmt.Errorf("failed to share video: %w", err)
	}

	if err := c.broadcast(ctx, shareVideoResp.Conns, &Output{
		Type:    "CHAT_MESSAGE",
		Payload: shareVideoResp.Announcement,
	}); err != nil {
		return fmt.Errorf("failed to broadcast announcement: %w", err)
	}

	if err := c.broadcast(ctx, shareVideoResp.Conns, &Output{
		Type:    "VIDEO_STATE_UPDATED",
		Payload: shareVideoResp.VideoState,
	}); err != nil {
		return fmt.Errorf("failed to broadcast video state: %w", err)
	}

	return nil
}

type UpdatePlayerStateInput struct {
	VideoID     *string  `json:"video_id"`
	IsPlaying   *bool    `json:"is_playing"`
	CurrentTime *int     `json:"current_time"`
	Duration    *int     `json:"duration"`
	Speed       *float64 `json:"speed"`
	Volume      *int     `json:"volume"`
}

func (c controller) handleUpdatePlayerState(ctx context.Context, conn *websocket.Conn, input UpdatePlayerStateInput) error {
	roomID := c.getRoomIDFromCtx(ctx)
	userID := c.getUserIDFromCtx(ctx)

	updateVideoStateResp, err := c.roomService.UpdateVideoState(ctx, &room.UpdateVideoStateParams{
		RoomID:      roomID,
		SenderID:    userID,
		VideoID:     input.VideoID,
		IsPlaying:   input.IsPlaying,
		CurrentTime: input.CurrentTime,
		Duration:    input.Duration,
		Speed:       input.Speed,
		Volume:      input.Volume,
	})
	if err != nil {
		return fmt.Errorf("failed to update video state: %w", err)
	}

	if err := c.broadcast(ctx, updateVideoStateResp.Conns, &Output{
		Type:    "VIDEO_STATE_UPDATED",
		Payload: updateVideoStateResp.VideoState,
	}); err != nil {
		return fmt.Errorf("failed to broadcast video state: %w", err)
	}

	return nil
}

type ReportPlayerStateInput struct {
	IsPlaying   bool    `json:"is_playing"`
	CurrentTime int     `json:"current_time"`
	Duration    int     `json:"duration"`
	Speed       float64 `json:"speed"`
	Volume      int     `json:"volume"`
	IsScrubbing bool    `json:"is_scrubbing"`
}

func (c controller) handleReportPlayerState(ctx context.Context, conn *websocket.Conn, input ReportPlayerStateInput) error {
	roomID := c.getRoomIDFromCtx(ctx)
	userID := c.getUserIDFromCtx(ctx)

	reportResp, err := c.roomService.ReportPlayerState(ctx, &room.ReportPlayerStateParams{
		RoomID:      roomID,
		SenderID:    userID,
		IsPlaying:   input.IsPlaying,
		CurrentTime: input.CurrentTime,
		Duration:    input.Duration,
		Speed:       input.Speed,
		Volume:      input.Volume,
		IsScrubbing: input.IsScrubbing,
	})
	if err != nil {
		return fmt.Errorf("failed to report player state: %w", err)
	}

	if reportResp.Correction != nil {
		if err := c.writeToConn(ctx, conn, &Output{
			Type:    "PLAYER_CORRECTION",
			Payload: reportResp.Correction,
		}); err != nil {
			return fmt.Errorf("failed to write correction: %w", err)
		}
	}

	if reportResp.VideoState != nil {
		if err := c.broadcast(ctx, reportResp.Conns, &Output{
			Type:    "VIDEO_STATE_UPDATED",
			Payload: reportResp.VideoState,
		}); err != nil {
			return fmt.Errorf("failed to broadcast video state: %w", err)
		}
	}

	return nil
}
