package core

import (
	"context"
	"strconv"
	"testing"

	"github.com/vovakirdan/wireboard/internal/board"
)

func benchmarkTopicBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	topic := TopicName("messages", EventNameInsert)
	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient("c"+strconv.Itoa(i), topic)
		hub.RegisterClient(c)
		<-c.Events // subscribed
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}

	msgs := []board.Message{{ID: board.Confirmed(1), Content: "payload"}}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := hub.Publish(ctx, "messages", msgs); err != nil {
			b.Fatal(err)
		}
		<-target.Events
	}
}

func BenchmarkTopicBroadcast_10(b *testing.B)  { benchmarkTopicBroadcast(b, 10) }
func BenchmarkTopicBroadcast_100(b *testing.B) { benchmarkTopicBroadcast(b, 100) }
func BenchmarkTopicBroadcast_500(b *testing.B) { benchmarkTopicBroadcast(b, 500) }
