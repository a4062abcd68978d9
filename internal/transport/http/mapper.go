package http

import (
	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/proto"
	"github.com/vovakirdan/wireboard/internal/store"
)

func recordFromStore(m *store.Message) proto.MessageRecord {
	return proto.MessageRecord{
		ID:        m.ID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func recordsFromStore(msgs []*store.Message) []proto.MessageRecord {
	out := make([]proto.MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, recordFromStore(m))
	}
	return out
}

func boardFromStore(msgs []*store.Message) []board.Message {
	out := make([]board.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, board.Message{
			ID:        board.Confirmed(m.ID),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

func recordFromBoard(m board.Message) proto.MessageRecord {
	id, _ := m.ID.ServerID()
	return proto.MessageRecord{
		ID:        id,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventSubscribed:
		return proto.Outbound{
			Type:     proto.OutboundTypeEvent,
			Event:    proto.EventSubscribed,
			Protocol: proto.ProtocolVersion,
		}
	case core.EventInsert:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventInsert,
			Data:  recordFromBoard(event.Message),
		}
	default:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: core.ErrCodeUnknownEvent, Msg: core.ErrUnknownEvent.Error()},
		}
	}
}
