package chat

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const defaultTranscriptDBPath = "webchat-transcript.db"

// Config holds client runtime settings derived from CLI flags.
type Config struct {
	ServerURL    string
	Username     string
	Token        string
	Recipient    string
	HistorySize  int
	NoColor      bool
	UseTUI       bool
	UseCLI       bool
	DataDir      string
	TranscriptDB string
	Passphrase   string
	BridgeAddr   string
	ArchiveDSN   string
}

// LoadConfig parses CLI flags and returns a populated Config.
func LoadConfig() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ServerURL, "server", "ws://127.0.0.1:5000/ws", "chat service websocket url")
	flag.StringVar(&cfg.Username, "username", "", "identity shown to other users")
	flag.StringVar(&cfg.Token, "token", "", "session token from the service's login flow")
	flag.StringVar(&cfg.Recipient, "dm", "", "open a private thread with this user instead of the global room")
	flag.IntVar(&cfg.HistorySize, "history", 200, "amount of messages reloaded from the local transcript")
	flag.BoolVar(&cfg.NoColor, "no-color", false, "disable ANSI colors in CLI output")
	flag.BoolVar(&cfg.UseTUI, "tui", false, "enable terminal UI mode")
	flag.StringVar(&cfg.DataDir, "data-dir", "webchat-data", "base directory for local transcript data")
	flag.StringVar(&cfg.TranscriptDB, "transcript-db", defaultTranscriptDBPath, "path to the persisted transcript db")
	flag.StringVar(&cfg.Passphrase, "passphrase", os.Getenv("WEBCHAT_PASSPHRASE"), "encrypt the local transcript at rest")
	flag.StringVar(&cfg.BridgeAddr, "bridge-addr", "", "serve the local read-only web bridge on this address")
	flag.StringVar(&cfg.ArchiveDSN, "archive-dsn", os.Getenv("WEBCHAT_ARCHIVE_DSN"), "mirror the transcript into this Postgres DSN")

	flag.Parse()

	cfg.UseCLI = !cfg.UseTUI
	cfg.ensureDirs()
	return cfg
}

func (cfg *Config) ensureDirs() {
	if cfg.DataDir == "" {
		cfg.DataDir = "webchat-data"
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("init data dir: %v", err)
	}
	if cfg.TranscriptDB == defaultTranscriptDBPath {
		cfg.TranscriptDB = filepath.Join(cfg.DataDir, "transcript.db")
	}
}

// Scope names the conversation the process is attached to. The transcript
// store and archiver key their records by it.
func (cfg *Config) Scope() string {
	if cfg.Recipient != "" {
		return "dm:" + cfg.Recipient
	}
	return "global"
}

// Title is the human-readable scope name for UI chrome.
func (cfg *Config) Title() string {
	if cfg.Recipient != "" {
		return "DM with " + cfg.Recipient
	}
	return "Global Chat"
}

func sanitizeUsername(name string) string {
	return strings.TrimSpace(name)
}
