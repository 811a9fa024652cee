//  Copyright (C) 2023-2024 Quay Labs, Inc.
//
//  This program is free software: you can redistribute it and/or modify
//  it under the terms of the GNU Affero General Public License as
//  published by the Free Software Foundation, either version 3 of the
//  License, or (at your option) any later version.
//
//  This program is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU Affero General Public License for more details.
//
//  You should have received a copy of the GNU Affero General Public License
//  along with this program.  If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/defiweb/go-eth/types"
	logger "github.com/sirupsen/logrus"
)

// DefaultPollInterval is the cadence of filter-change and confirmation
// polls.
const DefaultPollInterval = time.Second

// teardownTimeout bounds the filter uninstall call that runs after polling
// has already ended.
const teardownTimeout = 5 * time.Second

// LogMatcher decides whether a delivered log is the one a wait operation is
// looking for. Implementations must be pure: no remote calls, no shared
// mutable state. In stateless mode the full log history is re-scanned, so a
// matcher must also be idempotent with respect to logs it has accepted
// before.
type LogMatcher interface {
	Matches(log types.Log) bool
}

// LogMatcherFunc adapts a plain function to the LogMatcher interface.
type LogMatcherFunc func(log types.Log) bool

func (f LogMatcherFunc) Matches(log types.Log) bool {
	return f(log)
}

// MatchAny accepts every log. Useful when the topic filter alone is
// selective enough.
var MatchAny = LogMatcherFunc(func(types.Log) bool { return true })

// EventWatcher waits for contract events using server-side filters.
type EventWatcher struct {
	client       RpcClient
	pollInterval time.Duration
}

func NewEventWatcher(client RpcClient) *EventWatcher {
	return &EventWatcher{
		client:       client,
		pollInterval: DefaultPollInterval,
	}
}

// WaitForEvent installs a log filter for the given event signature and
// topic groups, polls it once per interval until a log passes the matcher
// or the budget elapses, and uninstalls the filter on every exit path.
//
// Topic groups follow the filter convention: group i constrains topic
// position i+1 (position 0 is the signature hash), nil means wildcard and
// values within a group are alternatives.
//
// Returns the matched log, an EventNotFoundError when the budget ran out,
// or the failed poll's error. An uninstall failure surfaces as a
// FilterTeardownError only when there is no match to report; a match
// already in hand is never discarded over cleanup.
func (w *EventWatcher) WaitForEvent(
	ctx context.Context,
	timeout time.Duration,
	addresses []types.Address,
	event string,
	topics [][]types.Hash,
	matcher LogMatcher,
) (*types.Log, error) {
	topic0, err := EventTopic(event)
	if err != nil {
		return nil, err
	}
	query := NewLogFilter(addresses, nil, nil, append([][]types.Hash{{topic0}}, topics...))

	filterID, err := w.client.NewFilter(ctx, query)
	if err != nil {
		ErrorsCounter.WithLabelValues("new_filter").Inc()
		return nil, fmt.Errorf("failed to install filter for %q: %w", event, err)
	}
	logger.Debugf("Installed filter %v for %q", filterID, event)

	found, pollErr := w.pollFilter(ctx, filterID, timeout, matcher)

	// Teardown runs no matter how polling ended. The handle is owned by
	// this wait operation alone and is released exactly once. It carries
	// its own deadline so a cancelled caller still releases the handle.
	teardownCtx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()
	removed, teardownErr := w.client.UninstallFilter(teardownCtx, filterID)
	if teardownErr == nil && !removed {
		teardownErr = fmt.Errorf("node refused to uninstall filter %v", filterID)
	}
	if teardownErr != nil {
		FilterLeaksCounter.Inc()
		logger.Warnf("Filter %v may be leaked on the node: %v", filterID, teardownErr)
	}

	switch {
	case pollErr != nil:
		return nil, pollErr
	case found != nil:
		EventsMatchedCounter.WithLabelValues(event).Inc()
		return found, nil
	case teardownErr != nil:
		return nil, &FilterTeardownError{FilterID: filterID, Err: teardownErr}
	default:
		return nil, &EventNotFoundError{Event: event}
	}
}

// pollFilter drains filter changes on a fixed cadence until a log passes
// the matcher or the budget elapses. Logs are evaluated in arrival order;
// changes semantics guarantee each log is seen at most once.
func (w *EventWatcher) pollFilter(
	ctx context.Context,
	filterID *big.Int,
	timeout time.Duration,
	matcher LogMatcher,
) (*types.Log, error) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			PollsCounter.Inc()
			logs, err := w.client.FilterChanges(ctx, filterID)
			if err != nil {
				ErrorsCounter.WithLabelValues("filter_changes").Inc()
				return nil, fmt.Errorf("failed to poll filter %v: %w", filterID, err)
			}
			for _, log := range logs {
				if matcher.Matches(log) {
					log := log
					return &log, nil
				}
			}
		}
	}
	return nil, nil
}

// WaitForEventAlt is the stateless sibling of WaitForEvent: it sleeps for
// the full wait time unconditionally, then issues a single log query over
// the implicit full range and returns the first log the matcher accepts.
// The delay is a floor, not an optimization; it is honored even when the
// event is already present. No server-side filter is created and nothing
// is retried.
func (w *EventWatcher) WaitForEventAlt(
	ctx context.Context,
	waitTime time.Duration,
	addresses []types.Address,
	event string,
	topics [][]types.Hash,
	matcher LogMatcher,
) (*types.Log, error) {
	topic0, err := EventTopic(event)
	if err != nil {
		return nil, err
	}
	query := NewLogFilter(addresses, nil, nil, append([][]types.Hash{{topic0}}, topics...))

	timer := time.NewTimer(waitTime)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	logs, err := w.client.GetLogs(ctx, query)
	if err != nil {
		ErrorsCounter.WithLabelValues("get_logs").Inc()
		return nil, fmt.Errorf("failed to get logs for %q: %w", event, err)
	}
	for _, log := range logs {
		if matcher.Matches(log) {
			EventsMatchedCounter.WithLabelValues(event).Inc()
			log := log
			return &log, nil
		}
	}
	return nil, &EventNotFoundError{Event: event}
}
