package theme

import "github.com/kiliankoe/encore/internal/game"

type Theme interface {
	RenderLyric(t game.NoteType, text string, active bool) string
	RenderAccuracy(accuracy float64) string
	ScoreBar(score, max, width int) string
}
