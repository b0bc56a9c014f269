package room

type SetRoomParams struct {
	RoomID    string
	Name      string
	CreatedAt int64
}

type SetUserParams struct {
	RoomID    string
	UserID    string
	Name      string
	AvatarURL string
	IsActive  bool
}

type GetUserParams struct {
	RoomID string
	UserID string
}

type UpdateUserIsActiveParams struct {
	RoomID   string
	UserID   string
	IsActive bool
}

type SetVideoStateParams struct {
	RoomID     string
	VideoState VideoState
}

type AddMessageParams struct {
	RoomID  string
	Message Message
}
