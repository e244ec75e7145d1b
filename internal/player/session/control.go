package session

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

const (
	dialTimeout    = 10 * time.Second
	reconnectDelay = 30 * time.Second
)

// ControlListener keeps a websocket open to the provider's control channel
// and triggers an early refresh whenever the schedule changes server-side.
// It is an optimization only; the 5-minute refresh driver remains the
// guarantee of convergence, so every failure here just waits and redials.
type ControlListener struct {
	session    *Session
	socketURL  string
	terminalID string
	logger     zerolog.Logger
}

// NewControlListener derives the control socket URL from the provider base URL
func NewControlListener(s *Session, baseURL, terminalID string, logger zerolog.Logger) (*ControlListener, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/api/v1alpha1/terminals/" + terminalID + "/ws"

	return &ControlListener{
		session:    s,
		socketURL:  u.String(),
		terminalID: terminalID,
		logger:     logger.With().Str("component", "control").Logger(),
	}, nil
}

// Run dials and listens until the context is canceled, redialing on any error
func (l *ControlListener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil && ctx.Err() == nil {
			l.logger.Warn().Err(err).Msg("control channel lost, will redial")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *ControlListener) listen(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, l.socketURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	l.logger.Info().Str("url", redacted(l.socketURL)).Msg("control channel connected")
	l.sendStatus(conn)

	// Close the socket when the context ends so ReadMessage unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg v1alpha1.ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			l.logger.Warn().Err(err).Msg("undecodable control message")
			continue
		}

		if msg.Type == v1alpha1.ControlMessageRefresh {
			l.logger.Info().Msg("refresh nudge received")
			l.session.Refresh(ctx)
			l.sendStatus(conn)
		}
	}
}

// sendStatus reports the current player state back over the channel so
// operators can see what each screen is showing
func (l *ControlListener) sendStatus(conn *websocket.Conn) {
	snap := l.session.Snapshot()
	now := time.Now().UTC()

	status := &v1alpha1.ControlStatus{
		Connectivity:  string(snap.Connectivity),
		ClockOffsetMS: snap.ClockOffset.Milliseconds(),
		UpdatedAt:     now,
	}
	if snap.ActiveEvent != nil {
		status.ActiveEventID = snap.ActiveEvent.ID.String()
	}

	msg := v1alpha1.ControlMessage{
		TypeMeta:  v1alpha1.TypeMeta{Kind: "ControlMessage", APIVersion: "v1alpha1"},
		Type:      v1alpha1.ControlMessageStatus,
		Timestamp: now,
		Status:    status,
	}
	if err := conn.WriteJSON(msg); err != nil {
		l.logger.Warn().Err(err).Msg("failed to send status report")
	}
}

// redacted strips query strings from logged URLs
func redacted(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
