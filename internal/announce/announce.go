// Package announce posts auction milestones to a Discord channel. It is an
// optional sink: the league's community follows sales there while the
// spectator UI uses the WebSocket stream.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/gavelpoint/auctioneer/internal/auction"
	"github.com/gavelpoint/auctioneer/internal/broadcast"
	"github.com/gavelpoint/auctioneer/internal/config"
)

const queueSize = 64

// messageSender is the slice of the Discord session the announcer needs.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer forwards selected broadcast topics to a Discord channel. Emit
// only enqueues; a single sender goroutine does the Discord round trips, so
// a slow or rate-limited Discord API never blocks the auction.
type Announcer struct {
	session   *discordgo.Session
	sender    messageSender
	channelID string
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan string
	done   chan struct{}
}

// New creates an announcer and starts its sender loop. The session is not
// opened until Start.
func New(cfg config.AnnouncerConfig, logger *slog.Logger) (*Announcer, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	a := &Announcer{
		session:   session,
		sender:    session,
		channelID: cfg.ChannelID,
		logger:    logger,
		queue:     make(chan string, queueSize),
		done:      make(chan struct{}),
	}
	go a.sendLoop()
	return a, nil
}

// Start opens the Discord connection.
func (a *Announcer) Start(ctx context.Context) error {
	a.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.logger.InfoContext(ctx, "announcer is ready", slog.String("user", s.State.User.Username))
	})
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	return nil
}

// Stop drains the queue, stops the sender loop and closes the Discord
// connection.
func (a *Announcer) Stop() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	if a.session == nil {
		return nil
	}
	return a.session.Close()
}

// Emit implements broadcast.Gateway for the topics worth announcing; the
// rest are ignored. It never blocks: messages are queued for the sender
// goroutine, and when the queue is full the announcement is dropped.
func (a *Announcer) Emit(topic string, payload any) {
	msg, ok := format(topic, payload)
	if !ok {
		return
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- msg:
	default:
		a.logger.Warn("announcement queue full, dropping", slog.String("topic", topic))
	}
}

// sendLoop performs the Discord round trips, one message at a time.
// Delivery is best-effort.
func (a *Announcer) sendLoop() {
	defer close(a.done)
	for msg := range a.queue {
		if _, err := a.sender.ChannelMessageSend(a.channelID, msg); err != nil {
			a.logger.Error("sending announcement", slog.Any("error", err))
		}
	}
}

// format renders the channel message for a topic, or reports false for
// topics that are not announced.
func format(topic string, payload any) (string, bool) {
	switch topic {
	case broadcast.TopicLotSold:
		rec, ok := payload.(auction.SaleRecord)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("**SOLD!** %s goes to %s for %d", rec.PlayerName, rec.TeamName, rec.Amount), true
	case broadcast.TopicLotUnsold:
		p, ok := payload.(auction.Player)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%s goes unsold", p.Name), true
	case broadcast.TopicSaleReverted:
		p, ok := payload.(auction.Player)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("Sale of %s has been reversed", p.Name), true
	case broadcast.TopicFastTrackStarted:
		n, ok := payload.(int)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("Fast-track round! %d unsold players are back on the block", n), true
	case broadcast.TopicStatusChanged:
		status, ok := payload.(auction.Status)
		if !ok || status != auction.StatusFinished {
			return "", false
		}
		return "The auction has finished. Thanks for following along!", true
	default:
		return "", false
	}
}
