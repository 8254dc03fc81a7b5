package testdata

import (
	"strings"

	"github.com/kiliankoe/encore/internal/game"
	"github.com/kiliankoe/encore/internal/parser"
)

// GetSong returns a small duet fixture in the catalog wire shape.
// bpm=120 gap=500 puts one chart beat at 125 ms.
func GetSong() (*game.Song, error) {
	return parser.DecodeSong(strings.NewReader(data))
}

const data = `{
  "id": "fixture",
  "metadata": {
    "title": "Fixture",
    "artist": "Nobody",
    "bpm": 120,
    "gap": 500,
    "duet_singer_p1": "One",
    "duet_singer_p2": "Two"
  },
  "notes": [
    {"note_type": "normal", "start_beat": 0, "length": 4, "pitch": 0, "text": "Do "},
    {"note_type": "golden", "start_beat": 4, "length": 4, "pitch": 2, "text": "re "},
    {"note_type": "normal", "start_beat": 8, "length": 4, "pitch": 4, "text": "mi"},
    {"note_type": "rap", "start_beat": 16, "length": 4, "pitch": 0, "text": "say "},
    {"note_type": "freestyle", "start_beat": 20, "length": 4, "pitch": 0, "text": "anything"},
    {"note_type": "normal", "start_beat": 28, "length": 8, "pitch": 7, "text": "so"}
  ],
  "line_breaks": [
    {"start_beat": 14},
    {"start_beat": 26, "end_beat": 27}
  ],
  "notes_p2": [
    {"note_type": "normal", "start_beat": 0, "length": 4, "pitch": 12, "text": "Ah "},
    {"note_type": "normal", "start_beat": 8, "length": 4, "pitch": 9, "text": "oh"}
  ],
  "line_breaks_p2": [
    {"start_beat": 6}
  ]
}`
