package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/launchdash/pkg/dashboard"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
	wsWriteWait  = 10 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsRequest is an update sent over the socket. ID is echoed in the reply.
type wsRequest struct {
	ID string `json:"id"`
	dashboard.Update
}

type wsResponse struct {
	ID      string         `json:"id,omitempty"`
	Outputs map[string]any `json:"outputs,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// handleWS runs one session: a reader applying updates and a single writer
// that owns the connection for replies and pings.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxUpdateBody)

	wsConnections.Inc()
	defer wsConnections.Dec()

	out := make(chan wsResponse, 16)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	// writer
	go func() {
		defer close(writerDone)
		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()
		for {
			select {
			case msg := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug().Err(err).Msg("websocket write failed")
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// reader
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}
		if mt != websocket.TextMessage {
			continue
		}

		resp := s.handleWSMessage(data)
		select {
		case out <- resp:
		case <-writerDone:
			close(done)
			return
		}
	}
	close(done)
	<-writerDone
}

func (s *server) handleWSMessage(data []byte) wsResponse {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		updatesTotal.WithLabelValues("ws", "bad_request").Inc()
		return wsResponse{Error: "invalid json: " + err.Error()}
	}
	res, err := s.apply("ws", req.Update)
	if err != nil {
		return wsResponse{ID: req.ID, Error: err.Error()}
	}
	return wsResponse{ID: req.ID, Outputs: res.Outputs}
}
