package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kiliankoe/encore/internal/game"
)

// Wire shape of a song record as served by the catalog API.
type songJSON struct {
	ID       string `json:"id"`
	Metadata struct {
		Title        string  `json:"title"`
		Artist       string  `json:"artist"`
		Bpm          float64 `json:"bpm"`
		Gap          float64 `json:"gap"`
		Genre        string  `json:"genre,omitempty"`
		Year         int     `json:"year,omitempty"`
		Language     string  `json:"language,omitempty"`
		DuetSingerP1 string  `json:"duet_singer_p1,omitempty"`
		DuetSingerP2 string  `json:"duet_singer_p2,omitempty"`
		AudioFile    string  `json:"audio_file,omitempty"`
		VideoFile    string  `json:"video_file,omitempty"`
	} `json:"metadata"`
	Notes        []noteJSON      `json:"notes"`
	NotesP2      []noteJSON      `json:"notes_p2,omitempty"`
	LineBreaks   []lineBreakJSON `json:"line_breaks"`
	LineBreaksP2 []lineBreakJSON `json:"line_breaks_p2,omitempty"`
}

type noteJSON struct {
	NoteType  string  `json:"note_type"`
	StartBeat float64 `json:"start_beat"`
	Length    float64 `json:"length"`
	Pitch     int     `json:"pitch"`
	Text      string  `json:"text"`
}

type lineBreakJSON struct {
	StartBeat float64  `json:"start_beat"`
	EndBeat   *float64 `json:"end_beat,omitempty"`
}

var noteTypeNames = map[string]game.NoteType{
	"normal":    game.Normal,
	"golden":    game.Golden,
	"freestyle": game.Freestyle,
	"rap":       game.Rap,
	"goldenrap": game.GoldenRap,
}

// DecodeSong reads one catalog song record.
func DecodeSong(r io.Reader) (*game.Song, error) {
	var sj songJSON
	if err := json.NewDecoder(r).Decode(&sj); nil != err {
		return nil, fmt.Errorf("unable to decode song record: %w", err)
	}

	song := &game.Song{
		Title:        sj.Metadata.Title,
		Artist:       sj.Metadata.Artist,
		Genre:        sj.Metadata.Genre,
		Year:         sj.Metadata.Year,
		Language:     sj.Metadata.Language,
		DuetSingerP1: sj.Metadata.DuetSingerP1,
		DuetSingerP2: sj.Metadata.DuetSingerP2,
		AudioFile:    sj.Metadata.AudioFile,
		VideoFile:    sj.Metadata.VideoFile,
	}

	p1, err := decodeChart(sj.Notes, sj.LineBreaks, sj.Metadata.Bpm, sj.Metadata.Gap)
	if nil != err {
		return nil, err
	}
	song.Tracks = []*game.Chart{p1}

	if len(sj.NotesP2) > 0 {
		p2, err := decodeChart(sj.NotesP2, sj.LineBreaksP2, sj.Metadata.Bpm, sj.Metadata.Gap)
		if nil != err {
			return nil, err
		}
		song.Tracks = append(song.Tracks, p2)
	}
	return song, nil
}

func decodeChart(notes []noteJSON, breaks []lineBreakJSON, bpm, gap float64) (*game.Chart, error) {
	chart := &game.Chart{Bpm: bpm, GapMs: gap}
	for _, n := range notes {
		t, ok := noteTypeNames[n.NoteType]
		if !ok {
			return nil, fmt.Errorf("unknown note type %q", n.NoteType)
		}
		chart.Notes = append(chart.Notes, game.Note{
			Type:      t,
			StartBeat: n.StartBeat,
			Length:    n.Length,
			Pitch:     n.Pitch,
			Text:      n.Text,
		})
	}
	for _, lb := range breaks {
		chart.LineBreaks = append(chart.LineBreaks, game.LineBreak{
			StartBeat: lb.StartBeat,
			EndBeat:   lb.EndBeat,
		})
	}
	return chart, nil
}
