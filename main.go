package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dhowden/tag"

	"github.com/nvaucher/lowtide/internal/config"
	"github.com/nvaucher/lowtide/internal/errmsg"
	"github.com/nvaucher/lowtide/internal/graph"
	"github.com/nvaucher/lowtide/internal/session"
	"github.com/nvaucher/lowtide/internal/state"
)

func main() {
	var (
		volume    = flag.Float64("volume", -1, "playback volume 0..1 (overrides config and saved state)")
		rate      = flag.Float64("rate", 0, "playback rate multiplier (overrides config)")
		loopStart = flag.Float64("loop-start", 0, "loop region start as a fraction of the duration")
		loopEnd   = flag.Float64("loop-end", 0, "loop region end as a fraction of the duration")
		resume    = flag.Bool("resume", false, "resume from the saved position")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <audio file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *volume, *rate, *loopStart, *loopEnd, *resume); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, volume, rate, loopStart, loopEnd float64, resume bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpStateLoad, err))
	}
	defer stateMgr.Close()

	saved, err := stateMgr.GetSettings()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpStateLoad, err))
	}

	// Priority: flag > config > saved state.
	if volume < 0 {
		volume = cfg.Volume
		if saved.Volume != 1.0 {
			volume = saved.Volume
		}
	}
	if rate <= 0 {
		rate = cfg.PlaybackRate
	}
	if loopEnd <= loopStart && cfg.HasLoopRegion() {
		loopStart, loopEnd = cfg.Loop.Start, cfg.Loop.End
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s", errmsg.FormatWith(errmsg.OpFileLoad, path, err))
	}
	printTags(path)

	g, err := graph.Open(graph.Config{
		SampleRate:   cfg.SampleRate,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}

	s, err := session.New(g, g.Clock())
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}
	defer s.Destroy()

	g.OnProcess(s.Tick)
	g.OnLoop(s.NotifyLoopWrap)

	sub := s.Subscribe()
	s.SetVolume(volume)
	s.SetPlaybackRate(rate)
	s.LoadBytes(data)

	for {
		select {
		case ev := <-sub.Ready:
			fmt.Printf("loaded %s (%s)\n", filepath.Base(path), formatSeconds(ev.Duration))
			if loopEnd > loopStart {
				s.UpdateSelection(loopStart, loopEnd)
			}
			if resume {
				if pos, err := stateMgr.GetPosition(); err == nil && pos.TrackPath == path {
					s.SeekTo(pos.Position)
				}
			}
			if err := s.Play(); err != nil {
				return fmt.Errorf("%s", errmsg.Format(errmsg.OpPlaybackStart, err))
			}

		case ev := <-sub.Process:
			fmt.Printf("\r%s / %s", formatSeconds(ev.Time), formatSeconds(s.Duration()))
			stateMgr.SavePosition(state.PositionState{TrackPath: path, Position: ev.Time})

		case <-sub.Finished:
			fmt.Println()
			saveErr := stateMgr.SaveSettings(state.SettingsState{
				Volume:       s.Volume(),
				PlaybackRate: s.PlaybackRate(),
				LoopEnabled:  loopEnd > loopStart,
				LoopStart:    loopStart,
				LoopEnd:      loopEnd,
			})
			if saveErr != nil {
				fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpStateSave, saveErr))
			}
			return nil

		case ev := <-sub.Error:
			return fmt.Errorf("%s", errmsg.FormatWith(errmsg.Op(ev.Op), path, ev.Err))

		case <-sub.Done:
			return nil
		}
	}
}

func printTags(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	if m.Title() != "" {
		fmt.Printf("%s - %s\n", m.Artist(), m.Title())
	}
}

func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second))
	m := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, sec)
}
