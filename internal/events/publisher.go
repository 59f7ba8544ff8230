// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/metrics"
	"github.com/tomtom215/leaguesync/internal/models"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "leaguesync"

// ErrClosed is returned after Close.
var ErrClosed = errors.New("publisher is closed")

// Publisher serialises reports and hands them to a watermill publisher.
type Publisher struct {
	pub    message.Publisher
	prefix string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps an existing watermill publisher.
func NewPublisher(pub message.Publisher, topicPrefix string) *Publisher {
	if topicPrefix == "" {
		topicPrefix = DefaultTopicPrefix
	}
	return &Publisher{pub: pub, prefix: topicPrefix}
}

// NewNATSPublisher connects to NATS. With JetStream enabled, streams are
// auto-provisioned and message IDs are tracked for deduplication.
func NewNATSPublisher(cfg *config.NATSConfig) (*Publisher, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())

	natsOpts := []natsgo.Option{
		natsgo.Name("leaguesync"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      !cfg.JetStream,
			AutoProvision: cfg.JetStream,
			TrackMsgId:    cfg.JetStream,
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return NewPublisher(pub, cfg.TopicPrefix), nil
}

// BatchTopic is the topic batch reports are published on.
func (p *Publisher) BatchTopic() string { return p.prefix + ".batch.completed" }

// GameSyncTopic is the topic manual sync reports are published on.
func (p *Publisher) GameSyncTopic() string { return p.prefix + ".game.synced" }

// PublishBatch publishes a finished batch report.
func (p *Publisher) PublishBatch(ctx context.Context, report *models.BatchReport) error {
	return p.publish(ctx, p.BatchTopic(), report.RunID, string(report.Status), report)
}

// PublishGameSync publishes a manual sync report.
func (p *Publisher) PublishGameSync(ctx context.Context, report *models.GameSyncReport) error {
	status := "failed"
	switch {
	case report.Result.Skipped:
		status = "skipped"
	case report.Result.Success:
		status = "success"
	}
	return p.publish(ctx, p.GameSyncTopic(), report.RunID, status, report)
}

func (p *Publisher) publish(ctx context.Context, topic, runID, status string, payload any) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serialize report: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("run_id", runID)
	msg.Metadata.Set("status", status)
	msg.Metadata.Set(natsgo.MsgIdHdr, topic+":"+runID)

	err = p.pub.Publish(topic, msg)
	metrics.RecordPublish(topic, err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close closes the underlying publisher. Safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.pub.Close()
}
