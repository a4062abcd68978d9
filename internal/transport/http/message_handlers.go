package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/metrics"
	"github.com/vovakirdan/wireboard/internal/proto"
	"github.com/vovakirdan/wireboard/internal/pubsub"
	"github.com/vovakirdan/wireboard/internal/store"
)

// MessageHandlers provides HTTP handlers for the message table.
type MessageHandlers struct {
	store      store.Store
	pub        pubsub.Publisher
	table      string
	maxContent int
	maxBatch   int
	log        *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.Store, pub pubsub.Publisher, cfg *config.Config, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		store:      st,
		pub:        pub,
		table:      cfg.Table,
		maxContent: cfg.MaxContentLength,
		maxBatch:   cfg.MaxBatchSize,
		log:        logger,
	}
}

// List returns every message of the table.
// GET /api/:table?order=created_at.desc
func (h *MessageHandlers) List(c *gin.Context) {
	if !h.checkTable(c) {
		return
	}

	order := store.Order(c.DefaultQuery("order", string(store.OrderCreatedDesc)))
	if !order.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unsupported order %q", order)})
		return
	}

	msgs, err := h.store.ListMessages(c.Request.Context(), order)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, recordsFromStore(msgs))
}

// Insert stores a batch of messages and announces them to subscribers.
// POST /api/:table
func (h *MessageHandlers) Insert(c *gin.Context) {
	if !h.checkTable(c) {
		return
	}

	var req []proto.NewMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid insert request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty batch"})
		return
	}
	if h.maxBatch > 0 && len(req) > h.maxBatch {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("batch exceeds %d messages", h.maxBatch)})
		return
	}

	contents := make([]string, 0, len(req))
	for i, row := range req {
		if err := board.ValidateContent(row.Content, h.maxContent); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("message %d: %v", i, err)})
			return
		}
		contents = append(contents, row.Content)
	}

	msgs, err := h.store.InsertMessages(c.Request.Context(), contents)
	if err != nil {
		h.log.Error().Err(err).Int("count", len(contents)).Msg("failed to insert messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	metrics.MessagesInserted.Add(float64(len(msgs)))
	metrics.InsertBatchSize.Observe(float64(len(msgs)))

	// The rows are stored; a failed announcement only delays other clients
	// until their next refresh.
	if err := h.pub.Publish(c.Request.Context(), h.table, boardFromStore(msgs)); err != nil {
		h.log.Warn().Err(err).Int("count", len(msgs)).Msg("failed to publish inserted messages")
	}

	h.log.Debug().Int("count", len(msgs)).Msg("messages inserted")
	c.JSON(http.StatusCreated, recordsFromStore(msgs))
}

func (h *MessageHandlers) checkTable(c *gin.Context) bool {
	if table := c.Param("table"); table != h.table {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("unknown table %q", table)})
		return false
	}
	return true
}
