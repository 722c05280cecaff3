// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/logdb"
)

type EventCriteria struct {
	Name  *string          `json:"name,omitempty"`
	Ref   *compute.Bytes32 `json:"ref,omitempty"`
	Actor *compute.Address `json:"actor,omitempty"`
}

type Options struct {
	Offset uint64  `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
	}
	if o.Offset > math.MaxInt64 {
		return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64))
	}
	return nil
}

type Range struct {
	Unit logdb.RangeType `json:"unit,omitempty"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

func (r *Range) Validate() error {
	if r == nil {
		return nil
	}
	if r.Unit != "" && r.Unit != logdb.Height && r.Unit != logdb.Time {
		return fmt.Errorf("range.unit must be either 'height' or 'time', got '%s'", r.Unit)
	}
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return fmt.Errorf("range.to must be greater than or equal to range.from")
	}
	return nil
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *Range           `json:"range,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Order       logdb.Order      `json:"order,omitempty"`
}

func (f *EventFilter) Validate(limit uint64) error {
	if err := f.Range.Validate(); err != nil {
		return err
	}
	if err := f.Options.Validate(limit); err != nil {
		return err
	}
	if f.Order != "" && f.Order != logdb.ASC && f.Order != logdb.DESC {
		return fmt.Errorf("order must be either 'asc' or 'desc', got '%s'", f.Order)
	}
	// {} is accepted and matches everything, null is not
	for i, c := range f.CriteriaSet {
		if c == nil {
			return fmt.Errorf("criteriaSet[%d]: null not allowed", i)
		}
	}
	return nil
}

// ConvertEventFilter converts a validated filter. The limit is taken from the
// options, or limit when they set none.
func ConvertEventFilter(filter *EventFilter, limit uint64) *logdb.EventFilter {
	f := &logdb.EventFilter{
		Options: &logdb.Options{Limit: limit},
		Order:   filter.Order,
	}
	if o := filter.Options; o != nil {
		f.Options.Offset = o.Offset
		if o.Limit != nil {
			f.Options.Limit = *o.Limit
		}
	}
	if r := filter.Range; r != nil {
		rng := &logdb.Range{Unit: r.Unit, To: math.MaxUint64}
		if rng.Unit == "" {
			rng.Unit = logdb.Height
		}
		if r.From != nil {
			rng.From = *r.From
		}
		if r.To != nil {
			rng.To = *r.To
		}
		f.Range = rng
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Name:  c.Name,
			Ref:   c.Ref,
			Actor: c.Actor,
		})
	}
	return f
}
