// Command mediakitd runs the mediakit playback service against the
// simulated media capability, driving a scripted playlist through the
// full command/event channel surface. It exists to exercise the service
// end to end without a host platform.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/mediakit/pkg/channel"
	"github.com/go-drift/mediakit/pkg/log"
	"github.com/go-drift/mediakit/pkg/media"
	"github.com/go-drift/mediakit/pkg/mediatest"
	"github.com/go-drift/mediakit/pkg/view"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Usage string
	Run   func(args []string) error
}

var commands = []*Command{
	{
		Name:  "run",
		Short: "Run the scripted playlist against the simulated capability",
		Usage: "mediakitd run [--config mediakitd.yaml] [--tick 50ms]",
		Run:   runDemo,
	},
	{
		Name:  "version",
		Short: "Print version information",
		Usage: "mediakitd version",
		Run: func([]string) error {
			fmt.Printf("mediakitd %s (built %s)\n", Version, BuildTime)
			return nil
		},
	},
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}
	for _, cmd := range commands {
		if cmd.Name == args[0] {
			if err := cmd.Run(args[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "mediakitd %s: %v\n", cmd.Name, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintf(os.Stderr, "mediakitd: unknown command %q\n\n", args[0])
	printHelp()
	os.Exit(2)
}

func printHelp() {
	fmt.Println("mediakitd - video playback service demo harness")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-10s %s\n", cmd.Name, cmd.Short)
	}
}

func runDemo(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to mediakitd.yaml (built-in playlist when empty)")
	tick := fs.Duration("tick", 50*time.Millisecond, "simulated wall time per playlist entry")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: "mediakitd"})
	logger := log.WithComponent("demo")

	capability := mediatest.NewFakeCapability()
	capability.AutoSignalReady = true
	for _, e := range cfg.Library {
		capability.AddMedia(e.Location, mediatest.FakeMedia{
			DurationMs:  e.DurationMs,
			Width:       e.Width,
			Height:      e.Height,
			NotPlayable: e.Unplayable,
		})
	}

	// Serialized main execution context, the way an embedding runtime
	// would drive it. Every background completion marshals through here.
	queue := make(chan func(), 128)
	channel.RegisterDispatch(func(cb func()) { queue <- cb })
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case cb := <-queue:
				cb()
			case <-stop:
				return
			}
		}
	}()

	svc := media.NewService(capability)
	registry := view.NewRegistry()
	registry.RegisterFactory(view.NewVideoFactory(svc))

	// Create one embedded view per playlist entry up front, in order, so
	// the capability's player list lines up with the entries.
	type scriptedRun struct {
		item    PlaylistItem
		surface *view.VideoSurface
		player  *mediatest.FakePlayer
	}
	runs := make([]scriptedRun, 0, len(cfg.Playlist))
	for _, item := range cfg.Playlist {
		v, err := registry.Create(view.VideoViewType, map[string]any{
			"showNativeControls": item.Controls,
		})
		if err != nil {
			return err
		}
		runs = append(runs, scriptedRun{
			item:    item,
			surface: v.(*view.VideoSurface),
			player:  capability.LastPlayer(),
		})
	}

	g := new(errgroup.Group)
	for _, r := range runs {
		r := r
		g.Go(func() error {
			defer registry.Dispose(r.surface.ViewID())
			return playOne(logger, svc, r.item, r.surface, r.player, *tick)
		})
	}
	return g.Wait()
}

func playOne(logger zerolog.Logger, svc *media.Service, item PlaylistItem, surface *view.VideoSurface, player *mediatest.FakePlayer, tick time.Duration) error {
	c := surface.Controller()
	logger = logger.With().Str("entry", item.Name).Int64("player", c.ID()).Logger()

	events := make(chan media.Event, 16)
	cancel := svc.Listen(c.ID(), func(ev media.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer cancel()

	srcType := item.Type
	if srcType == "" {
		srcType = "network"
	}
	source := map[string]any{"path": item.Path, "type": srcType}
	if len(item.Headers) > 0 {
		source["headers"] = item.Headers
	}
	if _, err := channel.Invoke(media.MethodChannelName, "loadVideo", map[string]any{
		"playerId": c.ID(),
		"source":   source,
	}); err != nil {
		return err
	}

	switch ev := waitEvent(events).(type) {
	case media.ReadyEvent:
		logger.Info().
			Int("width", ev.Info.Width).
			Int("height", ev.Info.Height).
			Int64("durationMs", ev.Info.DurationMs).
			Msg("ready")
	case media.ErrorEvent:
		logger.Warn().Str("message", ev.Message).Msg("load failed")
		return nil
	case nil:
		return fmt.Errorf("%s: no load outcome", item.Name)
	}

	speed := item.Speed
	if speed <= 0 {
		speed = 1.0
	}
	if _, err := channel.Invoke(media.MethodChannelName, "play", map[string]any{
		"playerId": c.ID(),
		"speed":    speed,
	}); err != nil {
		return err
	}

	// Simulate the media running to completion.
	time.Sleep(tick)
	player.CompletePlayback()

	for {
		ev := waitEvent(events)
		if ev == nil {
			return fmt.Errorf("%s: playback never ended", item.Name)
		}
		if _, ok := ev.(media.EndedEvent); ok {
			break
		}
	}

	position, err := channel.Invoke(media.MethodChannelName, "getPlaybackPosition", map[string]any{
		"playerId": c.ID(),
	})
	if err != nil {
		return err
	}
	positionMs, _ := channel.ToInt64(position)
	logger.Info().Int64("positionMs", positionMs).Msg("ended")
	return nil
}

// waitEvent reads the next event with a bounded wait, returning nil on
// timeout.
func waitEvent(events <-chan media.Event) media.Event {
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		return nil
	}
}
