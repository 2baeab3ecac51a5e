// mimic - desktop input recording and replay
//
//	mimic record   Capture mouse/keyboard activity into an event log
//	mimic play     Replay a recorded event log
//	mimic ls       List recordings in the library and catalog
//	mimic inspect  Summarize and validate an event log
//	mimic simplify Condense an event log (merge move/scroll bursts)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mimic/internal/config"
	"mimic/internal/inhibit"
	"mimic/internal/library"
	"mimic/internal/logging"
	"mimic/internal/store"
	"mimic/pkg/capture"
	"mimic/pkg/events"
	"mimic/pkg/inject"
	"mimic/pkg/player"
	"mimic/pkg/recorder"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "record":
		cmdRecord()
	case "play":
		cmdPlay()
	case "ls":
		cmdList()
	case "inspect":
		cmdInspect()
	case "simplify":
		cmdSimplify()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`mimic - desktop input recording and replay

USAGE:
    mimic <command> [options]

COMMANDS:
    record              Capture input into an event log (Ctrl-C to stop)
    play <file|name>    Replay an event log
    ls                  List recordings
    inspect <file>      Summarize and validate an event log
    simplify <in> <out> Condense an event log
    help                Show this help message

EXAMPLES:
    mimic record -o session.json -duration 30s
    mimic record -name morning-routine
    mimic play session.json -speed 2.0 -on-error skip
    mimic play morning-routine
    mimic inspect session.json`)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	return cfg
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdRecord() {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	output := fs.String("o", "", "write the event log to this file")
	name := fs.String("name", "", "save the recording under this name in the catalog")
	duration := fs.Duration("duration", 0, "stop automatically after this long (0 = until Ctrl-C)")
	simplify := fs.Bool("simplify", false, "condense the recording before saving")
	configPath := fs.String("config", config.DefaultPath(), "config file")
	fs.Parse(os.Args[2:])

	if *output == "" && *name == "" {
		fatal(fmt.Errorf("record: need -o FILE or -name NAME"))
	}
	cfg := loadConfig(*configPath)
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fatal(err)
	}

	source := capture.NewEvdev()
	if ok, reason := source.Available(); !ok {
		fatal(fmt.Errorf("record: %s", reason))
	}

	rec := recorder.New(source, recorder.WithLogger(logger))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rec.Record(ctx); err != nil {
		fatal(err)
	}
	fmt.Println("Recording... press Ctrl-C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	if *duration > 0 {
		select {
		case <-sig:
		case <-time.After(*duration):
		}
	} else {
		<-sig
	}

	seq, err := rec.Stop()
	if err != nil {
		// Keep what was captured, but tell the user the tail is missing.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if *simplify || cfg.Recording.Simplify {
		seq = events.Simplify(seq, events.SimplifyOptions{
			MoveMergeGap:    time.Duration(cfg.Recording.MoveMergeMs) * time.Millisecond,
			ScrollMergeGap:  time.Duration(cfg.Recording.ScrollMergeMs) * time.Millisecond,
			DropZeroScrolls: true,
		})
	}

	if *output != "" {
		if err := seq.Save(*output); err != nil {
			fatal(err)
		}
		fmt.Printf("Saved %d events (%s) to %s\n", seq.Len(), seq.Duration(), *output)
	}
	if *name != "" {
		st, err := store.Open(cfg.Storage.DatabasePath)
		if err != nil {
			fatal(err)
		}
		defer st.Close()
		if _, err := st.Save(*name, seq); err != nil {
			fatal(err)
		}
		fmt.Printf("Saved %d events (%s) as %q\n", seq.Len(), seq.Duration(), *name)
	}
}

func cmdPlay() {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	speed := fs.Float64("speed", 0, "speed factor (overrides config)")
	onError := fs.String("on-error", "", "abort, skip, or retry (overrides config)")
	start := fs.Int("start", 0, "first event index to replay")
	end := fs.Int("end", 0, "one past the last event index (0 = end)")
	configPath := fs.String("config", config.DefaultPath(), "config file")
	fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		fatal(fmt.Errorf("play: need exactly one event log file or recording name"))
	}
	target := fs.Arg(0)
	cfg := loadConfig(*configPath)
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fatal(err)
	}

	seq, err := resolveSequence(cfg, target)
	if err != nil {
		fatal(err)
	}

	injector, err := inject.NewXdotool()
	if err != nil {
		fatal(err)
	}
	defer injector.Close()

	pcfg := player.Config{
		Speed:      cfg.Playback.Speed,
		Start:      *start,
		End:        *end,
		OnError:    player.Policy(cfg.Playback.OnError),
		MaxRetries: cfg.Playback.MaxRetries,
		Logger:     logger,
	}
	if *speed != 0 {
		pcfg.Speed = *speed
	}
	if *onError != "" {
		pcfg.OnError = player.Policy(*onError)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Playback.InhibitScreensaver {
		if inh, err := inhibit.Acquire("replaying recorded input"); err == nil {
			defer inh.Release()
		} else {
			logger.Warn("screensaver inhibition unavailable", "error", err)
		}
	}

	fmt.Printf("Replaying %d events (%s) at %gx...\n", seq.Len(), seq.Duration(), pcfg.Speed)
	if err := player.Replay(ctx, seq, injector, pcfg); err != nil {
		fatal(err)
	}
	fmt.Println("Done.")
}

// resolveSequence treats target as a file path first, then as a library
// or catalog name.
func resolveSequence(cfg *config.Config, target string) (*events.Sequence, error) {
	if _, err := os.Stat(target); err == nil {
		return events.Load(target)
	}

	lib, err := library.Open(cfg.Storage.Dir, logging.Nop())
	if err == nil {
		defer lib.Close()
		if seq, err := lib.Load(target); err == nil {
			return seq, nil
		}
	}

	st, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	seq, _, err := st.Get(target)
	return seq, err
}

func cmdList() {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath(), "config file")
	fs.Parse(os.Args[2:])
	cfg := loadConfig(*configPath)

	lib, err := library.Open(cfg.Storage.Dir, logging.Nop())
	if err == nil {
		defer lib.Close()
		entries := lib.List()
		if len(entries) > 0 {
			fmt.Printf("Library (%s):\n", lib.Dir())
			for _, e := range entries {
				if e.Err != nil {
					fmt.Printf("  %-30s [unreadable: %v]\n", e.Name, e.Err)
					continue
				}
				fmt.Printf("  %-30s %6d events  %s\n", e.Name, e.EventCount, e.Duration)
			}
		}
	}

	st, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		fatal(err)
	}
	defer st.Close()
	recs, err := st.List()
	if err != nil {
		fatal(err)
	}
	if len(recs) > 0 {
		fmt.Println("Catalog:")
		for _, r := range recs {
			fmt.Printf("  %-30s %6d events  %-12s %s\n",
				r.Name, r.EventCount, r.Duration, r.CreatedAt.Format(time.DateTime))
		}
	}
}

func cmdInspect() {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fatal(fmt.Errorf("inspect: need exactly one event log file"))
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	if err := events.ValidateLog(data); err != nil {
		fatal(err)
	}
	seq, err := events.Unmarshal(data)
	if err != nil {
		fatal(err)
	}

	counts := map[events.Kind]int{}
	for _, e := range seq.All() {
		counts[e.Kind()]++
	}
	fmt.Printf("%s: %d events, %s\n", path, seq.Len(), seq.Duration())
	for _, k := range []events.Kind{
		events.KindMouseMove, events.KindMousePress, events.KindMouseRelease,
		events.KindMouseScroll, events.KindKeyPress, events.KindKeyRelease,
	} {
		if counts[k] > 0 {
			fmt.Printf("  %-14s %d\n", k, counts[k])
		}
	}
}

func cmdSimplify() {
	fs := flag.NewFlagSet("simplify", flag.ExitOnError)
	moveMs := fs.Int("move-merge-ms", 200, "move-merge window in milliseconds")
	scrollMs := fs.Int("scroll-merge-ms", 400, "scroll-merge window in milliseconds")
	fs.Parse(os.Args[2:])
	if fs.NArg() != 2 {
		fatal(fmt.Errorf("simplify: need input and output file"))
	}

	seq, err := events.Load(fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	out := events.Simplify(seq, events.SimplifyOptions{
		MoveMergeGap:    time.Duration(*moveMs) * time.Millisecond,
		ScrollMergeGap:  time.Duration(*scrollMs) * time.Millisecond,
		DropZeroScrolls: true,
	})
	if err := out.Save(fs.Arg(1)); err != nil {
		fatal(err)
	}
	fmt.Printf("%d events -> %d events\n", seq.Len(), out.Len())
}
