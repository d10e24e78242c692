// Package authbus carries sign-in and sign-out notifications to the app
// sessions that asked for them. One topic per app session.
package authbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const topicPrefix = "auth."

// Change describes the session an app session now holds. SignedIn false
// means the session ended.
type Change struct {
	SignedIn    bool      `json:"signed_in"`
	AccessToken string    `json:"access_token,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

type Bus struct {
	pubSub *gochannel.GoChannel
	wg     sync.WaitGroup
}

func New(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 16,
			// keeps per-topic order and lets Publish return after the change is applied
			BlockPublishUntilSubscriberAck: true,
		}, logger),
	}
}

func Topic(appSessionID string) string {
	return topicPrefix + appSessionID
}

// Publish returns after every current subscriber of the topic has handled the change.
func (b *Bus) Publish(appSessionID string, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal auth change: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubSub.Publish(Topic(appSessionID), msg)
}

// Subscribe delivers changes for appSessionID to onChange, in order, from a
// single goroutine. The returned func stops delivery and waits for that
// goroutine; calling it again is a no-op.
func (b *Bus) Subscribe(appSessionID string, onChange func(Change)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	messages, err := b.pubSub.Subscribe(ctx, Topic(appSessionID))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", Topic(appSessionID), err)
	}

	done := make(chan struct{})
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(done)
		for msg := range messages {
			var change Change
			if err := json.Unmarshal(msg.Payload, &change); err == nil {
				onChange(change)
			}
			msg.Ack()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

func (b *Bus) Close() error {
	err := b.pubSub.Close()
	b.wg.Wait()
	return err
}
