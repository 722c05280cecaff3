// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/logdb"
)

// EventFilter selects events by name, ref and actor. Empty fields match all.
type EventFilter struct {
	Name  string
	Ref   *compute.Bytes32
	Actor *compute.Address
}

func parseEventFilter(query url.Values) (*EventFilter, error) {
	f := &EventFilter{Name: query.Get("name")}
	if s := query.Get("ref"); s != "" {
		ref, err := compute.ParseBytes32(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "ref"))
		}
		f.Ref = &ref
	}
	if s := query.Get("actor"); s != "" {
		actor, err := compute.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "actor"))
		}
		f.Actor = &actor
	}
	return f, nil
}

func (f *EventFilter) Match(ev *logdb.Event) bool {
	if f.Name != "" && f.Name != ev.Name {
		return false
	}
	if f.Ref != nil && *f.Ref != ev.Ref {
		return false
	}
	if f.Actor != nil && *f.Actor != ev.Actor {
		return false
	}
	return true
}

func (f *EventFilter) criteria() *logdb.EventCriteria {
	c := &logdb.EventCriteria{Ref: f.Ref, Actor: f.Actor}
	if f.Name != "" {
		name := f.Name
		c.Name = &name
	}
	return c
}

// backfill reads indexed events from height from up to, but excluding, height to.
func backfill(ctx context.Context, db logdb.Reader, filter *EventFilter, from, to uint64, limit uint64) ([]*logdb.Event, error) {
	if from >= to {
		return nil, nil
	}
	evs, err := db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{filter.criteria()},
		Range:       &logdb.Range{Unit: logdb.Height, From: from, To: to - 1},
		Options:     &logdb.Options{Limit: limit + 1},
	})
	if err != nil {
		return nil, err
	}
	if uint64(len(evs)) > limit {
		return nil, utils.Forbidden(errors.Errorf("more than %d events to backfill, narrow the filter or raise pos", limit))
	}
	return evs, nil
}
