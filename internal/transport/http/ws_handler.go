package http

import (
	"context"
	"errors"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/metrics"
	"github.com/vovakirdan/wireboard/internal/proto"
	"github.com/vovakirdan/wireboard/internal/utils"
)

// WSHandler upgrades HTTP connections and streams hub events to them.
type WSHandler struct {
	hub   *core.Hub
	table string
	log   *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler for table.
func NewWSHandler(hub *core.Hub, table string, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, table: table, log: logger}
}

// Handle serves GET /ws?table=messages&event=insert.
func (h *WSHandler) Handle(c *gin.Context) {
	h.ServeHTTP(c.Writer, c.Request)
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		table = h.table
	}
	event := r.URL.Query().Get("event")
	if event == "" {
		event = core.EventNameInsert
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx := r.Context()

	if coreErr := core.ValidateTopic(table, event, h.table); coreErr != nil {
		_ = wsjson.Write(ctx, conn, proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: coreErr.Code, Msg: coreErr.Message},
		})
		conn.Close(websocket.StatusPolicyViolation, coreErr.Code)
		return
	}

	client := core.NewClient(utils.NewID(), core.TopicName(table, event))
	if !h.hub.RegisterClient(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.hub.UnregisterClient(client)

	metrics.RealtimeSubscribers.Inc()
	defer metrics.RealtimeSubscribers.Dec()

	h.log.Debug().Str("client_id", client.ID).Str("topic", client.Topic).Msg("ws client subscribed")

	// Subscribers never send; CloseRead handles control frames and cancels
	// ctx once the peer goes away.
	ctx = conn.CloseRead(ctx)

	err = h.writeLoop(ctx, conn, client)
	if err != nil && !errors.Is(err, context.Canceled) {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(websocket.StatusNormalClosure, "closing")
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
