package bridge

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"

	"webchat-client/internal/cooldown"
	"webchat-client/internal/view"
)

// Runtime is the slice of the chat runtime the bridge exposes locally.
type Runtime interface {
	Controller() *view.Controller
	Cooldown() *cooldown.Mirror
	SendText(text string)
}

// Bridge serves a small local HTTP API over the live transcript so other
// tools on the same machine (scripts, a browser tab) can read the
// conversation and send into it. It goes through the exact same send gate as
// the terminal, so cooldowns apply identically.
type Bridge struct {
	addr string
	srv  *http.Server
	rt   Runtime
}

func New(addr string, rt Runtime) *Bridge {
	b := &Bridge{addr: addr, rt: rt}

	logger := httplog.NewLogger("bridge", httplog.Options{JSON: false})

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(httplog.RequestLogger(logger))

	r.Get("/healthz", b.handleHealth)
	r.Get("/api/history", b.handleHistory)
	r.Get("/api/cooldown", b.handleCooldown)
	r.Post("/api/send", b.handleSend)

	b.srv = &http.Server{Addr: addr, Handler: r}
	return b
}

// Router exposes the handler for tests.
func (b *Bridge) Router() http.Handler {
	return b.srv.Handler
}

func (b *Bridge) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = b.srv.Shutdown(context.Background())
	}()
	log.Printf("local bridge listening on http://%s", b.addr)
	if err := b.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("bridge error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (b *Bridge) handleHistory(w http.ResponseWriter, _ *http.Request) {
	rows := b.rt.Controller().Snapshot()
	if rows == nil {
		rows = []view.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (b *Bridge) handleCooldown(w http.ResponseWriter, _ *http.Request) {
	mirror := b.rt.Cooldown()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blocked":   mirror.IsBlocked(),
		"remaining": mirror.Remaining(),
	})
}

type sendRequest struct {
	Msg string `json:"msg"`
}

func (b *Bridge) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Msg == "" {
		http.Error(w, "msg required", http.StatusBadRequest)
		return
	}
	b.rt.SendText(req.Msg)
	w.WriteHeader(http.StatusAccepted)
}
