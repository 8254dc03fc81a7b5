package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/eiannone/keyboard"

	"github.com/kiliankoe/encore/internal/config"
	"github.com/kiliankoe/encore/internal/game"
	"github.com/kiliankoe/encore/internal/input"
	"github.com/kiliankoe/encore/internal/media"
	"github.com/kiliankoe/encore/internal/melody"
	"github.com/kiliankoe/encore/internal/parser"
	"github.com/kiliankoe/encore/internal/pitch"
	"github.com/kiliankoe/encore/internal/render"
	"github.com/kiliankoe/encore/internal/score"
	"github.com/kiliankoe/encore/internal/session"
	"github.com/kiliankoe/encore/internal/theme"
)

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func findSongFiles(dir string) (chartFile, audioFile string, err error) {
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch path.Ext(info.Name()) {
		case ".txt":
			chartFile = p
		case ".mp3", ".ogg":
			audioFile = p
		}
		return nil
	})
	if nil != err {
		return "", "", fmt.Errorf("unable to walk song directory: %w", err)
	}
	if chartFile == "" {
		return "", "", errors.New("unable to find a chart .txt file in given directory")
	}
	return chartFile, audioFile, nil
}

func writeMelody(song *game.Song, file string) error {
	f, err := os.Create(file)
	if nil != err {
		return err
	}
	defer f.Close()
	return melody.Export(f, song.Tracks[0], song.Title)
}

func run() error {
	var psr parser.Parser = &parser.DefaultParser{}
	var r render.Renderer = &render.DefaultRenderer{}
	var th theme.Theme = &theme.DefaultTheme{}

	chartFile, audioFile, err := findSongFiles(*config.Directory)
	if nil != err {
		return err
	}

	song, err := psr.Parse(chartFile)
	if nil != err {
		return err
	}

	if *config.MelodyOut != "" {
		return writeMelody(song, *config.MelodyOut)
	}
	if audioFile == "" {
		return errors.New("unable to find .mp3/.ogg audio in given directory")
	}

	log.Printf("Opening %v (%v)\n", audioFile, chartFile)
	audio, err := media.NewBeepPlayer(audioFile)
	if nil != err {
		return err
	}

	timelines := make([]*game.Timeline, len(song.Tracks))
	for i, c := range song.Tracks {
		timelines[i] = game.NewTimeline(c)
	}

	opener := &demoOpener{
		timelines: timelines,
		clock:     audio.PositionMs,
		wobble:    *config.Wobble,
	}
	router := input.NewRouter(opener)

	sess := session.New(&score.DefaultScorer{}, router, func() pitch.Detector {
		return &zeroCrossingDetector{}
	})
	defer sess.Close()

	if err := sess.Load(song, audio); nil != err {
		return err
	}

	// Two singers share one stereo device, split left/right; any other
	// count gets a mono device each.
	if *config.Players == 2 {
		if err := addPlayer(sess, router, "demo", input.Left); nil != err {
			return err
		}
		if err := addPlayer(sess, router, "demo", input.Right); nil != err {
			return err
		}
	} else {
		for i := 0; i < *config.Players; i++ {
			if err := addPlayer(sess, router, fmt.Sprintf("demo-%d", i), input.Mono); nil != err {
				return err
			}
		}
	}

	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			log.Println("unable to close keyboard:", err)
		}
	}()

	if err := r.Init(); nil != err {
		return err
	}

	if err := sess.Start(); nil != err {
		r.Deinit()
		return err
	}

	loop(sess, r, th, keyChannel)

	r.Deinit()
	printResults(sess)
	return nil
}

func addPlayer(sess *session.Session, router *input.Router, device string, ch input.Channel) error {
	in, err := router.Connect(device, ch)
	if nil != err {
		// An unavailable input only silences that singer.
		log.Println("input unavailable:", err)
		return nil
	}
	_, err = sess.AddPlayer(in.ID.String(), in, 0)
	return err
}

func loop(sess *session.Session, r render.Renderer, th theme.Theme, keys <-chan keyboard.KeyEvent) {
	ticker := time.NewTicker(config.TickInterval())
	defer ticker.Stop()

	nowMs := 0.0
	for sess.State() != session.Finished {
		select {
		case key := <-keys:
			switch {
			case key.Key == keyboard.KeyEsc:
				return
			case key.Key == keyboard.KeySpace:
				if sess.State() == session.Playing {
					_ = sess.Pause()
				} else {
					_ = sess.Resume()
				}
			case key.Key == keyboard.KeyArrowRight:
				_ = sess.SeekMs(nowMs + 5000)
			}
		case <-ticker.C:
		}

		for _, e := range sess.Tick() {
			if t, ok := e.(session.TimeUpdated); ok {
				nowMs = t.TimeMs
			}
		}
		draw(sess, r, th, nowMs)
	}
}

func draw(sess *session.Session, r render.Renderer, th theme.Theme, nowMs float64) {
	r.Fill(1, 2, fmt.Sprintf("%v  %6.1fs", sess.State(), nowMs/1000))

	for track := 1; track <= sess.Tracks(); track++ {
		tl := sess.Timeline(track)
		row := 1 + 2*track
		r.ClearRow(row)

		phrase := tl.CurrentPhrase(nowMs)
		if nil == phrase {
			continue
		}
		current := tl.CurrentNote(nowMs)
		col := 2
		for _, n := range phrase.Notes {
			active := nil != current && current.Index == n.Index
			r.Fill(row, col, th.RenderLyric(n.Type, n.Text, active))
			col += len([]rune(n.Text))
		}
	}

	scorer := score.DefaultScorer{}
	for i, p := range sess.Players() {
		row := 4 + 2*sess.Tracks() + i
		max := scorer.MaxScore(sess.Timeline(p.Track).Notes())
		r.Fill(row, 2, fmt.Sprintf("%-12v %6v %s %s",
			p.Name,
			p.Score,
			th.ScoreBar(p.Score, max, 24),
			th.RenderAccuracy(p.Confidence()),
		))
	}

	r.Flush()
}

func printResults(sess *session.Session) {
	scorer := score.DefaultScorer{}
	for _, p := range sess.Players() {
		max := scorer.MaxScore(sess.Timeline(p.Track).Notes())
		fmt.Printf("%v: %v / %v\n", p.Name, p.Score, max)
		if !*config.Verbose {
			continue
		}
		for _, n := range sess.Timeline(p.Track).Notes() {
			result, ok := p.Results[n.Index]
			if !ok {
				continue
			}
			fmt.Printf("  %3v %-12q %3v/%3v  %4.0f%%\n",
				n.Index, n.Text, result.EarnedPoints, result.MaxPoints, result.Accuracy*100)
		}
	}
}
