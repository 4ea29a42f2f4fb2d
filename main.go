// Package main provides the audioscan command line tool. It watches
// PulseAudio/PipeWire sink inputs for meeting and media streams, inspects
// browser tabs over the DevTools protocol, and can route streams to a
// virtual sink for isolated capture.
//
// Usage:
//
//	audioscan <command> [flags]
//
// Commands:
//
//	list     List current audio streams
//	tabs     List browser tabs with audio state
//	status   Show streams with detected playback state
//	route    Route a stream to a virtual sink for capture
//	daemon   Run the detection daemon
//	version  Print version information
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/oszuidwest/zwfm-audioscan/internal/config"
	"github.com/oszuidwest/zwfm-audioscan/internal/daemon"
	"github.com/oszuidwest/zwfm-audioscan/internal/detector"
	"github.com/oszuidwest/zwfm-audioscan/internal/devtools"
	"github.com/oszuidwest/zwfm-audioscan/internal/pulse"
	"github.com/oszuidwest/zwfm-audioscan/internal/streams"
	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "list":
		err = runList(args)
	case "tabs":
		err = runTabs(args)
	case "status":
		err = runStatus(args)
	case "route":
		err = runRoute(args)
	case "daemon":
		err = runDaemon(args)
	case "version":
		err = runVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: audioscan <command> [flags]

Commands:
  list     List current audio streams
  tabs     List browser tabs with audio state
  status   Show streams with detected playback state
  route    Route a stream to a virtual sink for capture
  daemon   Run the detection daemon
  version  Print version information

Run 'audioscan <command> -h' for command flags.
`)
}

// requireMixer verifies the mixer tool is available. Without it nothing
// else can work, so callers treat a failure as fatal.
func requireMixer() error {
	if !pulse.HasPactl() {
		return fmt.Errorf("pactl not found: PulseAudio/PipeWire tools are required")
	}
	return nil
}

// loadConfig loads the configuration file, defaulting to config.json next
// to the binary.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		execPath, err := os.Executable()
		if err != nil {
			return nil, util.WrapError("get executable path", err)
		}
		path = filepath.Join(filepath.Dir(execPath), "config.json")
	}

	cfg := config.New(path)
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	if err := requireMixer(); err != nil {
		return err
	}

	list := streams.List()
	if *jsonOut {
		return printJSON(list)
	}

	if len(list) == 0 {
		fmt.Println("No audio streams found.")
		return nil
	}
	for _, s := range list {
		printStream(&s)
	}
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (default: config.json next to binary)")
	detectorType := fs.String("detector", "", "Detector type: pulse, browser or hybrid (default: from config)")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	if err := requireMixer(); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	snap := cfg.Snapshot()

	dtype := snap.Detector
	if *detectorType != "" {
		dtype = *detectorType
	}
	det, err := detector.New(dtype, snap.DetectorConfig())
	if err != nil {
		return err
	}

	ctx := context.Background()
	list := streams.List()
	for i := range list {
		list[i].State = det.StreamState(ctx, &list[i])
	}

	if *jsonOut {
		return printJSON(list)
	}

	if len(list) == 0 {
		fmt.Println("No audio streams found.")
		return nil
	}
	fmt.Printf("Detector: %s\n\n", dtype)
	for _, s := range list {
		printStream(&s)
	}
	return nil
}

func printStream(s *types.AudioStream) {
	flags := ""
	if s.IsTeams {
		flags += " [teams]"
	}
	if s.IsBrowser {
		flags += " [browser]"
	}
	fmt.Printf("#%d  %-8s  %s - %s%s\n", s.ID, s.State, s.Application, s.Media, flags)
	fmt.Printf("     sink=%s volume=%s monitor=%s\n", pulse.ShortenSinkName(s.SinkName), s.Volume, s.Monitor)
}

func runTabs(args []string) error {
	fs := flag.NewFlagSet("tabs", flag.ExitOnError)
	port := fs.Int("port", types.DefaultDebugPort, "Chrome remote debugging port")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	ctx := context.Background()
	client := devtools.NewClient(*port)
	if !client.Discover(ctx) {
		return fmt.Errorf("browser debugging endpoint unreachable on port %d (start the browser with --remote-debugging-port=%d)", *port, *port)
	}

	tabs := client.ListTabs(ctx, true)
	if *jsonOut {
		return printJSON(tabs)
	}

	if len(tabs) == 0 {
		fmt.Println("No page tabs found.")
		return nil
	}
	for _, t := range tabs {
		fmt.Printf("%-8s  %s\n", t.AudioState, t.Title)
		fmt.Printf("          %s\n", t.URL)
		for _, el := range t.MediaElements {
			fmt.Printf("          <%s> paused=%t muted=%t volume=%.2f\n", el.Tag, el.Paused, el.Muted, el.Volume)
		}
	}
	return nil
}

func runRoute(args []string) error {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (default: config.json next to binary)")
	streamID := fs.Int("id", -1, "Sink input ID to route (required)")
	sinkName := fs.String("sink", "", "Virtual sink name (default: from config)")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	if err := requireMixer(); err != nil {
		return err
	}
	if *streamID < 0 {
		return fmt.Errorf("missing -id: sink input ID to route")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	snap := cfg.Snapshot()

	sink := snap.VirtualSinkName
	if *sinkName != "" {
		sink = *sinkName
	}

	if err := pulse.CreateNullSink(sink); err != nil {
		return err
	}
	if err := pulse.MoveSinkInput(*streamID, sink); err != nil {
		return err
	}

	monitor := pulse.MonitorSource(sink)
	capture := pulse.CaptureCommand(monitor, "output.wav")

	slog.Info("stream routed", "stream_id", *streamID, "sink", sink, "monitor", monitor)

	if *jsonOut {
		return printJSON(map[string]any{
			"stream_id": *streamID,
			"sink":      sink,
			"monitor":   monitor,
			"capture":   capture,
		})
	}
	fmt.Printf("Stream #%d routed to %s\n", *streamID, sink)
	fmt.Printf("Monitor source: %s\n", monitor)
	fmt.Printf("Capture with:   %s\n", capture)
	return nil
}

func runDaemon(args []string) error {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (default: config.json next to binary)")
	dryRun := fs.Bool("dry-run", false, "Detect and log only, no notifications or captures")
	_ = fs.Parse(args)

	if err := requireMixer(); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, *dryRun)
	if err != nil {
		return err
	}

	vc := NewVersionChecker()
	defer vc.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), util.ShutdownSignals()...)
	defer stop()

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}

func runVersion() error {
	return printJSON(types.VersionInfo{
		Current:   normalizeVersion(Version),
		Commit:    Commit,
		BuildTime: util.FormatHumanTime(BuildTime),
	})
}
