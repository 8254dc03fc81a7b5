package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kiliankoe/encore/internal/game"
)

// DefaultParser reads UltraStar TXT charts.
//
// The format is line oriented: `#TAG:value` headers, then note lines
// `<type> <startBeat> <length> <pitch> <text>` where the type rune is
// one of `:` (normal), `*` (golden), `F` (freestyle), `R` (rap),
// `G` (golden rap), phrase boundaries `- <startBeat> [endBeat]`,
// `P1`/`P2` track switches for duets, and a final `E`.
type DefaultParser struct{}

func (p *DefaultParser) Parse(file string) (*game.Song, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	return p.ParseString(string(data))
}

func (p *DefaultParser) ParseString(content string) (*game.Song, error) {
	song := &game.Song{}
	bpm, gap := 0.0, 0.0
	haveTitle, haveArtist, haveBpm := false, false, false

	notes := [2][]game.Note{}
	lineBreaks := [2][]game.LineBreak{}
	track := 0
	duet := false

	for _, line := range strings.Split(strings.ReplaceAll(content, "\r", ""), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line[0] {
		case '#':
			tag, value := splitHeader(line[1:])
			switch tag {
			case "TITLE":
				song.Title = value
				haveTitle = true
			case "ARTIST":
				song.Artist = value
				haveArtist = true
			case "BPM":
				b, err := parseDecimal(value)
				if nil != err {
					return nil, fmt.Errorf("invalid BPM %q: %w", value, err)
				}
				bpm = b
				haveBpm = true
			case "GAP":
				g, err := parseDecimal(value)
				if nil != err {
					return nil, fmt.Errorf("invalid GAP %q: %w", value, err)
				}
				gap = g
			case "VIDEOGAP":
				if v, err := parseDecimal(value); nil == err {
					song.VideoGapMs = v * 1000
				}
			case "MP3", "AUDIO":
				song.AudioFile = value
			case "VIDEO":
				song.VideoFile = value
			case "COVER":
				song.CoverFile = value
			case "BACKGROUND":
				song.BackgroundFile = value
			case "GENRE":
				song.Genre = value
			case "YEAR":
				song.Year, _ = strconv.Atoi(value)
			case "LANGUAGE":
				song.Language = value
			case "EDITION":
				song.Edition = value
			case "CREATOR":
				song.Creator = value
			case "DUETSINGERP1", "P1":
				song.DuetSingerP1 = value
				duet = true
			case "DUETSINGERP2", "P2":
				song.DuetSingerP2 = value
				duet = true
			}
		case 'P':
			// Track switch for duets, "P1", "P 1", "P2", "P 2"
			duet = true
			n := strings.TrimSpace(line[1:])
			if strings.HasPrefix(n, "2") {
				track = 1
			} else {
				track = 0
			}
		case ':', '*', 'F', 'R', 'G':
			note, err := parseNoteLine(line)
			if nil != err {
				return nil, err
			}
			notes[track] = append(notes[track], note)
		case '-':
			lb, err := parseLineBreak(line)
			if nil != err {
				return nil, err
			}
			lineBreaks[track] = append(lineBreaks[track], lb)
		case 'E':
			if line == "E" {
				goto done
			}
		}
	}
done:

	if !haveTitle {
		return nil, fmt.Errorf("missing required TITLE tag")
	}
	if !haveArtist {
		return nil, fmt.Errorf("missing required ARTIST tag")
	}
	if !haveBpm {
		return nil, fmt.Errorf("missing required BPM tag")
	}

	song.Tracks = []*game.Chart{{
		Notes:      notes[0],
		LineBreaks: lineBreaks[0],
		Bpm:        bpm,
		GapMs:      gap,
	}}
	if duet && len(notes[1]) > 0 {
		song.Tracks = append(song.Tracks, &game.Chart{
			Notes:      notes[1],
			LineBreaks: lineBreaks[1],
			Bpm:        bpm,
			GapMs:      gap,
		})
	}
	return song, nil
}

func splitHeader(line string) (string, string) {
	tag, value, found := strings.Cut(line, ":")
	if !found {
		return strings.ToUpper(strings.TrimSpace(line)), ""
	}
	return strings.ToUpper(strings.TrimSpace(tag)), strings.TrimSpace(value)
}

// parseDecimal accepts a comma as the decimal separator, which older
// chart editors emit.
func parseDecimal(value string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
}

func parseNoteLine(line string) (game.Note, error) {
	var t game.NoteType
	switch line[0] {
	case ':':
		t = game.Normal
	case '*':
		t = game.Golden
	case 'F':
		t = game.Freestyle
	case 'R':
		t = game.Rap
	case 'G':
		t = game.GoldenRap
	}

	parts := strings.SplitN(strings.TrimSpace(line[1:]), " ", 4)
	if len(parts) < 4 {
		return game.Note{}, fmt.Errorf("invalid note line: %q", line)
	}
	start, err := strconv.ParseFloat(parts[0], 64)
	if nil != err {
		return game.Note{}, fmt.Errorf("invalid note start beat: %q", parts[0])
	}
	length, err := strconv.ParseFloat(parts[1], 64)
	if nil != err {
		return game.Note{}, fmt.Errorf("invalid note length: %q", parts[1])
	}
	pitch, err := strconv.Atoi(parts[2])
	if nil != err {
		return game.Note{}, fmt.Errorf("invalid note pitch: %q", parts[2])
	}

	return game.Note{
		Type:      t,
		StartBeat: start,
		Length:    length,
		Pitch:     pitch,
		Text:      parts[3],
	}, nil
}

func parseLineBreak(line string) (game.LineBreak, error) {
	parts := strings.Fields(line[1:])
	if len(parts) == 0 {
		return game.LineBreak{}, fmt.Errorf("invalid line break: %q", line)
	}
	start, err := strconv.ParseFloat(parts[0], 64)
	if nil != err {
		return game.LineBreak{}, fmt.Errorf("invalid line break beat: %q", parts[0])
	}
	lb := game.LineBreak{StartBeat: start}
	if len(parts) > 1 {
		if end, err := strconv.ParseFloat(parts[1], 64); nil == err {
			lb.EndBeat = &end
		}
	}
	return lb, nil
}
