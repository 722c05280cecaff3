// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/log"
	"github.com/vechain/compute/logdb"
	"github.com/vechain/compute/node"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxBackfill = 1000
)

type Subscriptions struct {
	node      *node.Node
	upgrader  *websocket.Upgrader
	cache     *messageCache
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func New(n *node.Node, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		node: n,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		cache: newMessageCache(maxBackfill),
		done:  make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	filter, err := parseEventFilter(query)
	if err != nil {
		return err
	}
	var pos *uint64
	if p := query.Get("pos"); p != "" {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "pos"))
		}
		if s.node.LogDB() == nil {
			return utils.Forbidden(errors.New("pos: event index disabled"))
		}
		pos = &v
	}

	// subscribe before reading the head, receipts below head are covered by the backfill
	receipts := make(chan *node.Receipt, 64)
	sub := s.node.SubscribeReceipts(receipts)
	defer sub.Unsubscribe()

	head := s.node.Height()
	var pending []*logdb.Event
	if pos != nil {
		if pending, err = backfill(req.Context(), s.node.LogDB(), filter, *pos, head, maxBackfill); err != nil {
			return err
		}
	}

	s.wg.Add(1)
	defer s.wg.Done()
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has responded already
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	if err := s.pipe(conn, sub, receipts, filter, head, pending); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(
	conn *websocket.Conn,
	sub event.Subscription,
	receipts <-chan *node.Receipt,
	filter *EventFilter,
	head uint64,
	pending []*logdb.Event,
) error {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, ev := range pending {
		if err := s.send(conn, ev); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case r := <-receipts:
			if r.Height < head {
				continue
			}
			for _, ev := range r.Events {
				if !filter.Match(ev) {
					continue
				}
				if err := s.send(conn, ev); err != nil {
					return err
				}
			}
		case err := <-sub.Err():
			return err
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			return conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
		}
	}
}

func (s *Subscriptions) send(conn *websocket.Conn, ev *logdb.Event) error {
	msg, err := s.cache.GetOrAdd(ev)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

// Close disconnects all subscribers and waits for their handlers to return.
func (s *Subscriptions) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
