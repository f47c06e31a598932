// Package gateway exposes the liveness engine to the browser-side
// inference collaborator over a WebSocket: landmark frames stream in,
// status and verdict events stream out. One connection owns exactly
// one verification session, and its reader goroutine is the sole
// caller of the session's step function.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/presenceid/liveguard/pkg/config"
	"github.com/presenceid/liveguard/pkg/logging"
	"github.com/presenceid/liveguard/pkg/session"
)

// readIdleTimeout disconnects clients that stop sending frames.
const readIdleTimeout = 60 * time.Second

// Gateway is the HTTP/WebSocket front of the verification service.
type Gateway struct {
	cfg      *config.Config
	log      *logrus.Entry
	upgrader websocket.Upgrader
	metrics  *Metrics
	server   *http.Server
}

// New creates a gateway for the given configuration.
func New(cfg *config.Config) *Gateway {
	g := &Gateway{
		cfg:     cfg,
		log:     logging.Component("gateway"),
		metrics: NewMetrics(),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	allowed := g.cfg.Gateway.AllowedOrigin
	return allowed == "*" || r.Header.Get("Origin") == allowed
}

// Handler returns the gateway's HTTP routes.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleVerify)
	mux.HandleFunc("/api/health", g.handleHealth)
	mux.HandleFunc("/api/metrics", g.handleMetrics)
	return mux
}

// Run serves until ctx is cancelled, then drains connections within
// the configured shutdown timeout.
func (g *Gateway) Run(ctx context.Context) error {
	g.server = &http.Server{
		Addr:              g.cfg.Gateway.ListenAddr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.log.Infof("Listening on %s", g.cfg.Gateway.ListenAddr)
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	g.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(g.cfg.Gateway.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	return g.server.Shutdown(shutdownCtx)
}

// handleVerify owns one verification session for the lifetime of the
// WebSocket connection.
func (g *Gateway) handleVerify(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log := g.log.WithField("session", sessionID)

	g.metrics.SessionStarted()
	defer g.metrics.SessionEnded()
	log.Info("Session started")

	opts := []session.Option{
		// The client's camera is the externally held capture
		// resource; the release message tells it to let go.
		session.WithReleaser(func() {
			_ = conn.WriteJSON(releaseMessage{Type: msgTypeRelease})
		}),
	}
	if g.cfg.Session.DebugTelemetry {
		opts = append(opts, session.WithTelemetry(func(point string, fields map[string]interface{}) {
			log.WithFields(fields).Debugf("telemetry: %s", point)
		}))
	}
	ctrl := session.New(g.cfg, opts...)
	defer ctrl.Stop()

	if err := conn.WriteJSON(sessionMessage{
		Type:             msgTypeSession,
		SessionID:        sessionID,
		TimeLimitSeconds: g.cfg.Session.TimeLimitSeconds,
	}); err != nil {
		return
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))

		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("Read failed: %v", err)
			}
			return
		}

		switch msg.Type {
		case msgTypeFrame:
			if msg.Frame == nil {
				continue
			}
			events := ctrl.Step(msg.Frame.toLandmarkFrame())
			g.metrics.FrameProcessed()
			for _, ev := range events {
				if err := conn.WriteJSON(ev); err != nil {
					log.Warnf("Write failed: %v", err)
					return
				}
			}
			if ctrl.State().Terminal() {
				if v := ctrl.Verdict(); v != nil {
					g.metrics.RecordVerdict(string(v.Outcome))
					log.Infof("Session resolved: %s", v.Outcome)
				}
				return
			}

		case msgTypeStop:
			ctrl.Stop()
			log.Info("Session stopped by client")
			return

		default:
			log.Debugf("Ignoring unknown message type %q", msg.Type)
		}
	}
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (g *Gateway) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(g.metrics.Snapshot())
}
