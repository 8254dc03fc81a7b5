package game

import "sort"

// A phrase is "current" a little before its first note and a little
// after its last, so lyrics show up before they must be sung and
// linger briefly after.
const (
	PhraseLeadMs  = 2000.0
	PhraseTrailMs = 500.0
)

// GameNote is a chart note with its absolute time window resolved.
type GameNote struct {
	Note
	Index   int
	StartMs float64
	EndMs   float64
}

// Phrase is one lyric line, a run of notes between two line breaks.
type Phrase struct {
	Index int
	Notes []GameNote
}

func (p *Phrase) StartMs() float64 {
	return p.Notes[0].StartMs
}

func (p *Phrase) EndMs() float64 {
	return p.Notes[len(p.Notes)-1].EndMs
}

func (p *Phrase) Text() string {
	text := ""
	for _, n := range p.Notes {
		text += n.Text
	}
	return text
}

// Timeline answers clock-driven queries against one track's chart.
// It is immutable after construction; the clock reading is always
// supplied by the caller.
type Timeline struct {
	notes   []GameNote
	phrases []Phrase
}

func NewTimeline(c *Chart) *Timeline {
	mpb := c.MsPerBeat()
	notes := make([]GameNote, len(c.Notes))
	for i, n := range c.Notes {
		notes[i] = GameNote{
			Note:    n,
			Index:   i,
			StartMs: c.GapMs + n.StartBeat*mpb,
			EndMs:   c.GapMs + (n.StartBeat+n.Length)*mpb,
		}
	}

	// Scan notes in order, closing the open phrase every time a line
	// break is passed. Trailing notes form the final phrase.
	phrases := []Phrase{}
	current := []GameNote{}
	breaks := c.LineBreaks
	for _, n := range notes {
		for len(breaks) > 0 && n.StartBeat >= breaks[0].StartBeat {
			if len(current) > 0 {
				phrases = append(phrases, Phrase{Index: len(phrases), Notes: current})
				current = []GameNote{}
			}
			breaks = breaks[1:]
		}
		current = append(current, n)
	}
	if len(current) > 0 {
		phrases = append(phrases, Phrase{Index: len(phrases), Notes: current})
	}

	return &Timeline{notes: notes, phrases: phrases}
}

func (t *Timeline) Notes() []GameNote {
	return t.notes
}

func (t *Timeline) Phrases() []Phrase {
	return t.phrases
}

// CurrentNote returns the note whose window contains timeMs, or nil.
func (t *Timeline) CurrentNote(timeMs float64) *GameNote {
	idx := sort.Search(len(t.notes), func(i int) bool {
		return t.notes[i].StartMs > timeMs
	})
	// Later-starting notes shadow earlier ones if windows overlap.
	for i := idx - 1; i >= 0; i-- {
		if t.notes[i].EndMs >= timeMs {
			return &t.notes[i]
		}
	}
	return nil
}

// NextNote returns the first note starting strictly after timeMs, or nil.
func (t *Timeline) NextNote(timeMs float64) *GameNote {
	idx := sort.Search(len(t.notes), func(i int) bool {
		return t.notes[i].StartMs > timeMs
	})
	if idx == len(t.notes) {
		return nil
	}
	return &t.notes[idx]
}

// CurrentPhrase returns the phrase whose lead/trail window contains
// timeMs, or nil. With very short gaps between phrases the windows can
// overlap; the earlier phrase wins until its trail expires.
func (t *Timeline) CurrentPhrase(timeMs float64) *Phrase {
	for i := range t.phrases {
		p := &t.phrases[i]
		if timeMs >= p.StartMs()-PhraseLeadMs && timeMs <= p.EndMs()+PhraseTrailMs {
			return p
		}
	}
	return nil
}

// NextPhrase returns the phrase after the current one, or, with no
// current phrase, the first phrase starting strictly after timeMs.
func (t *Timeline) NextPhrase(timeMs float64) *Phrase {
	if cur := t.CurrentPhrase(timeMs); nil != cur {
		if cur.Index+1 < len(t.phrases) {
			return &t.phrases[cur.Index+1]
		}
		return nil
	}
	for i := range t.phrases {
		if t.phrases[i].StartMs() > timeMs {
			return &t.phrases[i]
		}
	}
	return nil
}

// NotesInRange returns all notes whose windows intersect [startMs, endMs].
func (t *Timeline) NotesInRange(startMs, endMs float64) []GameNote {
	notes := []GameNote{}
	for _, n := range t.notes {
		if n.StartMs <= endMs && n.EndMs >= startMs {
			notes = append(notes, n)
		}
	}
	return notes
}

// DurationMs is the end of the last-ending note, 0 for an empty chart.
func (t *Timeline) DurationMs() float64 {
	end := 0.0
	for _, n := range t.notes {
		if n.EndMs > end {
			end = n.EndMs
		}
	}
	return end
}
