package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/synctube/server/internal/domain"
	"github.com/synctube/server/internal/service/room"
	"github.com/synctube/server/pkg/validator"
	"github.com/synctube/server/pkg/wsrouter"
)

var ErrValidationError = errors.New("validation error")

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	ConnectUser(context.Context, *room.ConnectUserParams) error
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	GetRoomState(context.Context, string) (domain.Room, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	ProcessCommand(context.Context, *room.ProcessCommandParams) (room.ProcessCommandResponse, error)
	UpdateVideoState(context.Context, *room.UpdateVideoStateParams) (room.UpdateVideoStateResponse, error)
	ShareVideo(context.Context, *room.ShareVideoParams) (room.ShareVideoResponse, error)
	ReportPlayerState(context.Context, *room.ReportPlayerStateParams) (room.ReportPlayerStateResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
	}

	wsmux := wsrouter.New()
	wsmux.Handle("ALIVE", typed(c, c.handleAlive))
	wsmux.Handle("SEND_MESSAGE", typed(c, c.handleSendMessage))
	wsmux.Handle("PROCESS_COMMAND", typed(c, c.handleProcessCommand))
	wsmux.Handle("SHARE_VIDEO", typed(c, c.handleShareVideo))
	wsmux.Handle("UPDATE_PLAYER_STATE", typed(c, c.handleUpdatePlayerState))
	wsmux.Handle("REPORT_PLAYER_STATE", typed(c, c.handleReportPlayerState))
	wsmux.OnError(c.handleWSError)
	c.wsmux = wsmux

	return c
}
