package youtube

import "fmt"

var qualityLabels = map[string]string{
	"highres": "4K",
	"hd2160":  "4K",
	"hd1440":  "1440p",
	"hd1080":  "1080p",
	"hd720":   "720p",
	"large":   "480p",
	"medium":  "360p",
	"small":   "240p",
	"tiny":    "144p",
	"auto":    "Auto",
}

// FormatTime renders seconds as MM:SS. Negative input clamps to 00:00.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// QualityLabel maps a youtube quality code to a human label. Unknown codes
// pass through unchanged.
func QualityLabel(code string) string {
	if label, ok := qualityLabels[code]; ok {
		return label
	}

	return code
}
