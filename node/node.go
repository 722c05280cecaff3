// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node serializes ledger operations: each runs against a fresh view of
// the committed state, and only a successful one is committed, indexed and published.
package node

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/engine"
	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/engine/tasks"
	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/builtin/token"
	"github.com/vechain/compute/cache"
	"github.com/vechain/compute/co"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/kv"
	"github.com/vechain/compute/log"
	"github.com/vechain/compute/logdb"
	"github.com/vechain/compute/state"
	"github.com/vechain/compute/xenv"
)

var logger = log.WithContext("pkg", "node")

var (
	stateBucket = kv.Bucket("state/")
	metaAddress = compute.BytesToAddress([]byte("Node"))
	slotHeight  = compute.BytesToBytes32([]byte("height"))
)

// Clock is the time and height source the node drives.
type Clock interface {
	xenv.Clock
	Advance() uint64
	Set(height uint64)
}

// Options for Node.
type Options struct {
	StateCacheSize int // bytes
	ModelCacheSize int // entries
	SkipLogs       bool
	SkipNTP        bool
}

// Ledger is the set of builtins an operation runs against.
// Clock is pinned: time and height do not move while the operation runs.
type Ledger struct {
	Engine *engine.Engine
	Token  *token.Token
	Params *params.Params
	Clock  xenv.Clock
}

type pinnedClock struct {
	now, height uint64
}

func (c pinnedClock) Now() uint64    { return c.now }
func (c pinnedClock) Height() uint64 { return c.height }

// Receipt describes a committed operation.
type Receipt struct {
	Op     string
	Height uint64
	Time   uint64
	Events []*logdb.Event
}

type Node struct {
	lock   sync.RWMutex
	stater *state.Stater
	clock  Clock
	logDB  *logdb.LogDB
	opts   Options

	models      *cache.LRU[compute.Bytes32, *tasks.Model]
	receiptFeed event.Feed
	feedScope   event.SubscriptionScope
	committed   co.Signal
	goes        co.Goes
	logDBFailed bool
	lastCommit  time.Time
}

// New creates a node over store. logDB may be nil when events are not indexed.
func New(store kv.Store, logDB *logdb.LogDB, clock Clock, opts Options) (*Node, error) {
	size := opts.ModelCacheSize
	if size <= 0 {
		size = 256
	}
	models, err := cache.NewLRU[compute.Bytes32, *tasks.Model](size)
	if err != nil {
		return nil, err
	}
	n := &Node{
		stater: state.NewStater(stateBucket.NewStore(store), opts.StateCacheSize),
		clock:  clock,
		logDB:  logDB,
		opts:   opts,
		models: models,
	}

	// resume heights after the last committed operation
	raw, err := n.stater.NewState().GetStorage(metaAddress, slotHeight)
	if err != nil {
		return nil, errors.Wrap(err, "load height")
	}
	if h := binary.BigEndian.Uint64(raw[24:]); h > clock.Height() {
		clock.Set(h)
	}
	if err := n.alignLogs(); err != nil {
		return nil, err
	}
	metricHeight().Set(int64(clock.Height()))
	return n, nil
}

// alignLogs drops indexed events at or above the next height. They belong to
// operations the state store does not hold, e.g. after restoring an older store.
func (n *Node) alignLogs() error {
	if n.logDB == nil {
		return nil
	}
	newest, err := n.logDB.NewestHeight()
	if err != nil {
		return err
	}
	next := n.clock.Height()
	if newest < next {
		return nil
	}
	w := n.logDB.NewWriter()
	if err := w.Truncate(next); err != nil {
		_ = w.Rollback()
		return errors.Wrap(err, "truncate event index")
	}
	if err := w.Commit(); err != nil {
		return errors.Wrap(err, "truncate event index")
	}
	logger.Warn("event index ahead of ledger, truncated", "from", next, "newest", newest)
	return nil
}

// newLedger builds the builtins over st, all reading the same pinned clock.
func (n *Node) newLedger(st *state.State, clock xenv.Clock) *Ledger {
	tok := token.New(compute.TokenAddress, st)
	prm := params.New(compute.ParamsAddress, st)
	return &Ledger{
		Engine: engine.New(compute.EngineAddress, st, tok, prm, clock),
		Token:  tok,
		Params: prm,
		Clock:  clock,
	}
}

func (n *Node) pin() pinnedClock {
	return pinnedClock{now: n.clock.Now(), height: n.clock.Height()}
}

// Height returns the height the next operation runs at.
func (n *Node) Height() uint64 {
	return n.clock.Height()
}

// Now returns the current ledger time.
func (n *Node) Now() uint64 {
	return n.clock.Now()
}

// View runs fn against the committed state. Writes made by fn are discarded.
func (n *Node) View(fn func(*Ledger) error) error {
	n.lock.RLock()
	defer n.lock.RUnlock()

	return fn(n.newLedger(n.stater.NewState(), n.pin()))
}

// Exec runs op as one atomic operation. A failed op leaves no trace;
// a successful one is committed, moves the height forward and has its events
// indexed and published.
func (n *Node) Exec(name string, op func(*Ledger) error) (*Receipt, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	start := time.Now()
	st := n.stater.NewState()
	clock := n.pin()
	ledger := n.newLedger(st, clock)
	height, now := clock.height, clock.now

	if err := op(ledger); err != nil {
		result := "failed"
		if reverts.IsRevertErr(err) {
			result = "reverted"
		}
		metricOpCount().AddWithLabel(1, map[string]string{"op": name, "result": result})
		logger.Debug("operation failed", "op", name, "height", height, "err", err)
		return nil, err
	}

	var next [32]byte
	binary.BigEndian.PutUint64(next[24:], height+1)
	st.SetStorage(metaAddress, slotHeight, next)

	stage := st.Stage()
	if err := stage.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	n.clock.Advance()
	n.lastCommit = time.Now()

	receipt := &Receipt{
		Op:     name,
		Height: height,
		Time:   now,
		Events: convertEvents(ledger.Engine.Events(), height, now),
	}
	n.invalidateModels(receipt.Events)
	n.writeLogs(receipt)
	n.receiptFeed.Send(receipt)
	n.committed.Broadcast()

	metricOpCount().AddWithLabel(1, map[string]string{"op": name, "result": "ok"})
	metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": name})
	metricHeight().Set(int64(height + 1))
	logger.Debug("operation committed", "op", name, "height", height, "slots", stage.Len(), "events", len(receipt.Events))
	return receipt, nil
}

func (n *Node) writeLogs(receipt *Receipt) {
	if n.logDB == nil || n.opts.SkipLogs || n.logDBFailed || len(receipt.Events) == 0 {
		return
	}
	w := n.logDB.NewWriter()
	if err := w.Write(receipt.Height, receipt.Time, receipt.Events); err != nil {
		_ = w.Rollback()
		n.failLogs(err)
		return
	}
	if err := w.Commit(); err != nil {
		n.failLogs(err)
	}
}

// failLogs stops indexing. The ledger stays authoritative, the index can be rebuilt.
func (n *Node) failLogs(err error) {
	logger.Warn("failed to write logs, indexing stopped", "err", err)
	n.logDBFailed = true
}

// Health returns the wall time of the last commit, zero if none since start,
// and whether event indexing has stopped on a write failure.
func (n *Node) Health() (lastCommit time.Time, indexFailed bool) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	return n.lastCommit, n.logDBFailed
}

// SubscribeReceipts delivers the receipt of every committed operation to ch.
func (n *Node) SubscribeReceipts(ch chan *Receipt) event.Subscription {
	return n.feedScope.Track(n.receiptFeed.Subscribe(ch))
}

// Committed returns a channel closed by the next commit.
func (n *Node) Committed() <-chan struct{} {
	return n.committed.Wait()
}

// LogDB returns the event index, nil if disabled.
func (n *Node) LogDB() *logdb.LogDB {
	return n.logDB
}

// Model returns the model id, cached until its next change.
func (n *Node) Model(id compute.Bytes32) (*tasks.Model, error) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	return n.models.GetOrLoad(id, func(id compute.Bytes32) (*tasks.Model, error) {
		return n.newLedger(n.stater.NewState(), n.pin()).Engine.Model(id)
	})
}

func (n *Node) invalidateModels(events []*logdb.Event) {
	for _, ev := range events {
		switch ev.Name {
		case engine.EventModelRegistered, engine.EventSolutionMineableRateChange:
			n.models.Remove(ev.Ref)
		}
	}
}

// Close stops background loops and unsubscribes all receipt subscribers.
func (n *Node) Close() {
	n.goes.Stop()
	n.feedScope.Close()
}
