// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

/*
Package events publishes finished sync reports to the message bus.

Topics (prefix from nats.topic_prefix):

  - <prefix>.batch.completed: one BatchReport per scheduled batch
  - <prefix>.game.synced: one GameSyncReport per manual sync

The downstream personalization service subscribes to these to refresh its
per-user caches. Publishing is best effort; callers log failures and carry on.

NewNATSPublisher connects to NATS through watermill-nats. Tests and
single-node deployments can pass any watermill message.Publisher, such as
pubsub/gochannel, to NewPublisher.
*/
package events
