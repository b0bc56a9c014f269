// Package command parses slash-prefixed chat lines into playback directives
// and applies them to the shared video state. A line is parsed exactly once
// into a tagged variant, then matched exhaustively, so the no-op policy for
// malformed arguments is explicit per variant.
package command

import (
	"errors"
	"strconv"
	"strings"

	"github.com/synctube/server/pkg/youtube"
)

var (
	// ErrNotCommand marks a line with no slash prefix and no recognizable
	// video url. The caller treats it as a plain chat message.
	ErrNotCommand = errors.New("not a command")
	// ErrUnknownCommand is surfaced to the sender.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArgument marks a recognized command with a malformed or
	// out-of-range argument. The caller silently drops the directive.
	ErrInvalidArgument = errors.New("invalid command argument")
)

const (
	MinSpeed  = 0
	MaxSpeed  = 2
	MinVolume = 0
	MaxVolume = 100
)

type Command interface {
	isCommand()
}

type Play struct{}

type Pause struct{}

type Seek struct {
	Seconds int
}

type Speed struct {
	Rate float64
}

type Volume struct {
	Percent int
}

type Share struct {
	URL string
}

func (Play) isCommand()   {}
func (Pause) isCommand()  {}
func (Seek) isCommand()   {}
func (Speed) isCommand()  {}
func (Volume) isCommand() {}
func (Share) isCommand()  {}

// Parse interprets a chat line. Slash-prefixed lines dispatch on the first
// word (case-insensitive); a bare youtube link is an implicit share.
func Parse(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)

	if !strings.HasPrefix(trimmed, "/") {
		if youtube.IsVideoURL(trimmed) && youtube.ExtractVideoID(trimmed) != "" {
			return Share{URL: trimmed}, nil
		}

		return nil, ErrNotCommand
	}

	word, arg := splitCommand(trimmed)
	switch word {
	case "/play":
		return Play{}, nil
	case "/pause":
		return Pause{}, nil
	case "/seek":
		seconds, err := strconv.Atoi(arg)
		if err != nil || seconds < 0 {
			return nil, ErrInvalidArgument
		}
		return Seek{Seconds: seconds}, nil
	case "/speed":
		rate, err := strconv.ParseFloat(arg, 64)
		if err != nil || rate <= MinSpeed || rate > MaxSpeed {
			return nil, ErrInvalidArgument
		}
		return Speed{Rate: rate}, nil
	case "/volume":
		percent, err := strconv.Atoi(arg)
		if err != nil || percent < MinVolume || percent > MaxVolume {
			return nil, ErrInvalidArgument
		}
		return Volume{Percent: percent}, nil
	case "/share":
		return Share{URL: arg}, nil
	default:
		return nil, ErrUnknownCommand
	}
}

func splitCommand(line string) (word, arg string) {
	word, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(word), strings.TrimSpace(arg)
}
