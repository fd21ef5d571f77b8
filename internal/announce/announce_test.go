package announce

import (
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/gavelpoint/auctioneer/internal/auction"
	"github.com/gavelpoint/auctioneer/internal/broadcast"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	blockFor time.Duration
}

func (f *fakeSender) ChannelMessageSend(_ string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.blockFor > 0 {
		time.Sleep(f.blockFor)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	return &discordgo.Message{}, nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestAnnouncer(t *testing.T, sender *fakeSender) *Announcer {
	t.Helper()
	a := &Announcer{
		sender:    sender,
		channelID: "chan-1",
		logger:    slog.New(slog.DiscardHandler),
		queue:     make(chan string, queueSize),
		done:      make(chan struct{}),
	}
	go a.sendLoop()
	t.Cleanup(func() { _ = a.Stop() })
	return a
}

func waitForMessages(t *testing.T, sender *fakeSender, want int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		msgs := sender.messages()
		if len(msgs) >= want {
			return msgs
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d messages, want %d: %v", len(msgs), want, msgs)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEmit_SaleAnnounced(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAnnouncer(t, sender)

	a.Emit(broadcast.TopicLotSold, auction.SaleRecord{
		PlayerName: "V. Sharma",
		TeamName:   "Tigers",
		Amount:     120,
	})

	msgs := waitForMessages(t, sender, 1)
	for _, want := range []string{"V. Sharma", "Tigers", "120"} {
		if !strings.Contains(msgs[0], want) {
			t.Errorf("message %q missing %q", msgs[0], want)
		}
	}
}

func TestEmit_IgnoresQuietTopics(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAnnouncer(t, sender)

	a.Emit(broadcast.TopicBidChanged, auction.CurrentBid{Amount: 50})
	a.Emit(broadcast.TopicStatusChanged, auction.StatusRunning)
	a.Emit(broadcast.TopicStatsChanged, auction.Stats{})

	// Announce something real so the queue is observably drained past the
	// quiet topics.
	a.Emit(broadcast.TopicStatusChanged, auction.StatusFinished)

	msgs := waitForMessages(t, sender, 1)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1: %v", len(msgs), msgs)
	}
}

func TestEmit_FinishAnnounced(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAnnouncer(t, sender)

	a.Emit(broadcast.TopicStatusChanged, auction.StatusFinished)

	waitForMessages(t, sender, 1)
}

// Emit runs inside the engine's locked mutate-publish cycle, so a slow
// Discord API must never stall it.
func TestEmit_DoesNotBlockOnSlowSender(t *testing.T) {
	sender := &fakeSender{blockFor: 300 * time.Millisecond}
	a := newTestAnnouncer(t, sender)

	start := time.Now()
	for i := 0; i < 5; i++ {
		a.Emit(broadcast.TopicLotSold, auction.SaleRecord{
			PlayerName: "V. Sharma",
			TeamName:   "Tigers",
			Amount:     100 + i,
		})
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("Emit blocked for %v behind a slow sender", elapsed)
	}

	waitForMessages(t, sender, 5)
}

func TestEmit_DropsWhenQueueFull(t *testing.T) {
	sender := &fakeSender{}
	a := &Announcer{
		sender:    sender,
		channelID: "chan-1",
		logger:    slog.New(slog.DiscardHandler),
		queue:     make(chan string, 1),
		done:      make(chan struct{}),
	}
	// No sender loop: the queue stays full after the first message.

	a.Emit(broadcast.TopicStatusChanged, auction.StatusFinished)

	done := make(chan struct{})
	go func() {
		a.Emit(broadcast.TopicStatusChanged, auction.StatusFinished)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full queue")
	}
}

func TestEmit_AfterStopIsNoOp(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAnnouncer(t, sender)

	if err := a.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// Must neither panic nor enqueue.
	a.Emit(broadcast.TopicStatusChanged, auction.StatusFinished)
	if msgs := sender.messages(); len(msgs) != 0 {
		t.Errorf("got %d messages after stop, want 0", len(msgs))
	}
}
