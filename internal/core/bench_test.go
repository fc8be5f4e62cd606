package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/store"
	"github.com/lingobridge/lingobridge-server/internal/store/memory"
	"github.com/lingobridge/lingobridge-server/internal/translate"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := memory.New()
	logger := zerolog.Nop()
	// Same-language session: the pipeline skips the translator entirely,
	// so the benchmark measures routing and fan-out.
	coord := translate.NewCoordinator(&stubTranslator{}, translate.NewContextBuilder(st, 10), time.Second, &logger)
	router := NewRouter(st, coord, &logger)
	go router.Run(ctx)

	sender := NewClient("sender")
	router.RegisterClient(sender)
	joinCustomer(sender, "bench", "sender", "en")

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient(fmt.Sprintf("c%d", i))
		router.RegisterClient(c)
		joinCustomer(c, "bench", "client", "en")
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
	go func() {
		for range sender.Events {
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sendText(sender, "bench", store.RoleCustomer, "payload", "en")
		for {
			ev := <-target.Events
			if ev.Kind == EventNewMessage {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
