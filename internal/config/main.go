package config

import (
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	Directory   = kingpin.Arg("directory", "Song directory (chart .txt + audio)").Required().ExistingDir()
	Players     = kingpin.Flag("players", "Number of demo singers").Default("1").Short('p').Int()
	Wobble      = kingpin.Flag("wobble", "Demo singer pitch error in semitones").Default("0.3").Short('w').Float64()
	FramePeriod = kingpin.Flag("frame-period", "Tick loop period").Default("16ms").Duration()
	MelodyOut   = kingpin.Flag("melody", "Write the melody as a MIDI file and exit").String()
	Verbose     = kingpin.Flag("verbose", "Print per-note results after the song").Short('v').Bool()
)

func init() {
	kingpin.Version("0.1.0")
	kingpin.Parse()
}

// TickInterval guards against a zero frame period from the flag.
func TickInterval() time.Duration {
	if *FramePeriod <= 0 {
		return 16 * time.Millisecond
	}
	return *FramePeriod
}
