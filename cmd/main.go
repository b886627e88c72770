// clickhalo - on-screen mouse press indicator
// Shows a small indicator near the cursor while a mouse button is held,
// anywhere on screen, via a global input hook.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clickhalo/internal/api"
	"clickhalo/internal/config"
	"clickhalo/internal/event"
	"clickhalo/internal/hook"
	"clickhalo/internal/indicator"
	"clickhalo/internal/overlay"
	"clickhalo/internal/tray"
)

var (
	version  = "0.1.0"
	showVer  = flag.Bool("version", false, "Show version")
	probe    = flag.Bool("probe", false, "Log translated hook events instead of rendering indicators")
	tickMS   = flag.Int("tick", 0, "Override tick interval in milliseconds")
	unpaused = flag.Bool("force-start", false, "Ignore start_paused from the config")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("clickhalo version %s\n", version)
		return
	}

	cfgMgr, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	if err := cfgMgr.Load(); err != nil {
		log.Printf("Warning: failed to load config: %v", err)
	}

	if *probe {
		runProbe(cfgMgr)
		return
	}

	runService(cfgMgr)
}

func tickInterval(cfgMgr *config.Manager) time.Duration {
	if *tickMS > 0 {
		return time.Duration(*tickMS) * time.Millisecond
	}
	return cfgMgr.Get().TickInterval()
}

func runService(cfgMgr *config.Manager) {
	log.Printf("clickhalo %s starting...", version)

	cfg := cfgMgr.Get()

	queue := event.NewQueue()
	adapter := hook.New(queue)

	startPaused := cfg.General.StartPaused && !*unpaused
	if startPaused {
		adapter.EnableCapture(false)
	}

	loop := indicator.NewLoop(queue, tickInterval(cfgMgr))

	// Overlay windows; on unsupported platforms run hook+API only
	ov, err := overlay.New(overlay.OptionsFromConfig(cfg))
	if err != nil {
		log.Printf("Warning: %v", err)
	} else {
		loop.AddSink(ov)
		defer ov.Close()
	}

	// Status server doubles as the state-stream broadcaster
	if cfg.General.APIEnabled {
		apiServer := api.NewServer(cfgMgr, version, loop.Snapshot)
		loop.AddSink(apiServer)
		port := cfg.General.APIPort
		go func() {
			if err := apiServer.Start(port); err != nil {
				log.Printf("API server error: %v", err)
			}
		}()
	}

	// Live config edits adjust the tick cadence
	cfgMgr.RegisterChangeCallback(func() {
		loop.SetInterval(tickInterval(cfgMgr))
	})
	if err := cfgMgr.Watch(); err != nil {
		log.Printf("Warning: config watch failed: %v", err)
	}
	defer cfgMgr.Close()

	// Without the global hook the overlay is useless, so this one is fatal
	if err := adapter.Start(); err != nil {
		log.Fatalf("Failed to start global input hook: %v", err)
	}
	loop.Start()

	t := tray.New("clickhalo", "Mouse press indicator overlay")

	// pausing flushes synthetic releases inside the adapter, so a button
	// held at that moment cannot leave its indicator stuck on screen
	t.AddCheckItem("Pause indicators", startPaused, func(paused bool) {
		adapter.EnableCapture(!paused)
	})

	t.AddSeparator()

	t.AddMenuItem("Quit", func() {
		t.Stop()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		t.Stop()
	}()

	log.Println("clickhalo running. Press Ctrl+C to stop.")
	t.Run()

	loop.Stop()
	adapter.Stop()
}

// runProbe starts the hook and logs every translated event at the normal
// tick cadence, without drawing anything. Useful for checking that the
// hook works and watching queue depth.
func runProbe(cfgMgr *config.Manager) {
	log.Println("Starting hook probe... Press Ctrl+C to stop")

	queue := event.NewQueue()
	adapter := hook.New(queue)
	if err := adapter.Start(); err != nil {
		log.Fatalf("Failed to start global input hook: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(tickInterval(cfgMgr))
	defer ticker.Stop()

	state := indicator.NewState()
	count := 0
	for {
		select {
		case <-ticker.C:
			if depth := queue.Len(); depth > 100 {
				log.Printf("Probe: queue depth %d", depth)
			}
			for _, ev := range queue.DrainAll() {
				count++
				state.Apply(ev)
				switch ev.Kind {
				case event.ButtonDown:
					log.Printf("Event #%d: %s down", count, ev.Button)
				case event.ButtonUp:
					log.Printf("Event #%d: %s up", count, ev.Button)
				case event.PointerMoved:
					log.Printf("Event #%d: move to (%d, %d)", count, ev.X, ev.Y)
				}
			}
		case <-sigCh:
			adapter.Stop()
			snap := state.Snapshot()
			log.Printf("Probe finished: %d events, final state primary=%v secondary=%v at (%d, %d)",
				count, snap.Primary, snap.Secondary, snap.X, snap.Y)
			return
		}
	}
}
