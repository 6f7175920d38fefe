package chat

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"webchat-client/internal/bridge"
	"webchat-client/internal/client"
	"webchat-client/internal/cooldown"
	"webchat-client/internal/crypto"
	"webchat-client/internal/session"
	"webchat-client/internal/storage"
	"webchat-client/internal/ui"
	"webchat-client/internal/view"
)

// App encapsulates the client runtime components.
type App struct {
	Cfg *Config

	ctx    context.Context
	cancel context.CancelFunc

	runtime    *Runtime
	conn       *client.Client
	tui        *ui.TUIDisplay
	web        *bridge.Bridge
	transcript *storage.Transcript
	archive    *storage.Archiver
}

// NewApp wires all client dependencies according to the provided config and
// connects to the chat service.
func NewApp(cfg *Config) (*App, error) {
	username := sanitizeUsername(cfg.Username)
	if cfg.Token != "" {
		name, err := session.Username(cfg.Token)
		if err != nil {
			log.Printf("session token rejected (%v), continuing unauthenticated", err)
		} else {
			username = name
		}
	}
	if username == "" {
		return nil, errors.New("a username (or a valid session token) is required")
	}
	cfg.Username = username

	ctx, cancel := context.WithCancel(context.Background())

	box, err := crypto.NewBox(cfg.Passphrase)
	if err != nil {
		cancel()
		return nil, err
	}

	transcript, err := storage.OpenTranscript(cfg.TranscriptDB, box)
	if err != nil {
		log.Printf("transcript db unavailable (%v), running without persistence", err)
		transcript = nil
	}

	var archive *storage.Archiver
	if cfg.ArchiveDSN != "" {
		archive, err = storage.OpenArchive(cfg.ArchiveDSN)
		if err != nil {
			log.Printf("archive unavailable (%v), running without mirroring", err)
			archive = nil
		}
	}

	rt := &Runtime{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		transcript: transcript,
		archive:    archive,
		metrics:    newMetrics(),
	}

	var sinks []ui.Sink
	var tui *ui.TUIDisplay
	if cfg.UseCLI {
		sinks = append(sinks, ui.NewCLIDisplay(os.Stdout, ui.ShouldUseColor(cfg.NoColor)))
	}
	if cfg.UseTUI {
		tui = ui.NewTUIDisplay(cfg.Title(), rt.ProcessLine)
		sinks = append(sinks, tui)
	}
	sink := ui.NewMultiSink(sinks...)
	rt.sink = sink

	rt.controller = view.NewController(username, sink)
	rt.cool = cooldown.New(sink.ShowCooldown, func() { sink.ShowCooldown(0) })

	// Reload local context before live events start flowing; merge-by-id
	// keeps re-echoed history from duplicating.
	if recent, err := transcript.Recent(cfg.Scope(), cfg.HistorySize); err != nil {
		log.Printf("transcript load: %v", err)
	} else {
		for _, rec := range recent {
			if rec.System {
				continue
			}
			rt.controller.Render(rec.Message, rec.Own)
		}
	}

	conn, err := client.Dial(ctx, cfg.ServerURL, username, cfg.Recipient, cfg.Token, rt)
	if err != nil {
		cancel()
		_ = transcript.Close()
		_ = archive.Close()
		return nil, err
	}
	rt.conn = conn

	app := &App{
		Cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		runtime:    rt,
		conn:       conn,
		tui:        tui,
		transcript: transcript,
		archive:    archive,
	}
	if cfg.BridgeAddr != "" {
		app.web = bridge.New(cfg.BridgeAddr, rt)
	}
	return app, nil
}

// Start launches the channel reader and user interfaces.
func (a *App) Start() {
	go a.conn.Run(a.ctx)
	if a.tui != nil {
		go func() {
			if err := a.tui.Run(a.ctx); err != nil {
				log.Printf("tui error: %v", err)
			}
			a.cancel()
		}()
	}
	if a.Cfg.UseCLI {
		go a.runtime.ReadInput(os.Stdin)
	}
	if a.web != nil {
		go a.web.Run(a.ctx)
	}
}

// Shutdown stops background routines and releases resources.
func (a *App) Shutdown() {
	a.cancel()
	if a.conn != nil {
		a.conn.Close()
	}
	if a.runtime != nil && a.runtime.cool != nil {
		a.runtime.cool.Stop()
	}
	if a.transcript != nil {
		_ = a.transcript.Close()
	}
	if a.archive != nil {
		_ = a.archive.Close()
	}
}

// Done exposes the app context so callers can notice /quit and TUI exits.
func (a *App) Done() <-chan struct{} {
	return a.ctx.Done()
}

// WaitForShutdown blocks until SIGINT/SIGTERM or an internal stop, then
// shuts the app down.
func WaitForShutdown(app *App) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-app.Done():
	}
	log.Println("shutting down...")
	app.Shutdown()
}
