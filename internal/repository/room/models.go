package room

type Room struct {
	Name      string `redis:"name"`
	CreatedAt int64  `redis:"created_at"`
}

type User struct {
	Name      string `redis:"name"`
	AvatarURL string `redis:"avatar_url"`
	IsActive  bool   `redis:"is_active"`
}

type VideoState struct {
	VideoID     string  `redis:"video_id"`
	IsPlaying   bool    `redis:"is_playing"`
	CurrentTime int     `redis:"current_time"`
	Duration    int     `redis:"duration"`
	Speed       float64 `redis:"speed"`
	Volume      int     `redis:"volume"`
	UpdatedAt   int64   `redis:"updated_at"`
}

// Message is stored as a JSON entry in the room's append-only chat log.
type Message struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	IsCommand bool   `json:"is_command"`
}
