package theme

import (
	"fmt"
	"strings"

	"github.com/kiliankoe/encore/internal/game"
)

type DefaultTheme struct{}

const (
	reset  = "\033[0m"
	gold   = "\033[1;33m"
	grey   = "\033[38;5;245m"
	bold   = "\033[1m"
	green  = "\033[1;32m"
	yellow = "\033[1;33m"
	red    = "\033[1;31m"
)

func (t *DefaultTheme) RenderLyric(nt game.NoteType, text string, active bool) string {
	style := ""
	switch {
	case nt.IsGolden():
		style = gold
	case nt == game.Freestyle || nt.IsRap():
		style = grey
	}
	if active {
		style += bold + "\033[4m" // underline the syllable being sung
	}
	if style == "" {
		return text
	}
	return style + text + reset
}

func (t *DefaultTheme) RenderAccuracy(accuracy float64) string {
	switch {
	case accuracy >= 0.9:
		return green + "●" + reset
	case accuracy >= 0.5:
		return yellow + "●" + reset
	default:
		return red + "●" + reset
	}
}

func (t *DefaultTheme) ScoreBar(score, max, width int) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	filled := score * width / max
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s]",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
	)
}
