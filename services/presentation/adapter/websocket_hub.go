package adapter

import (
	"context"
	"github.com/coder/websocket"
	"github.com/orbs-network/govnr"
	"github.com/orbs-network/orbs-tally/instrumentation/logfields"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/services/presentation"
	"github.com/orbs-network/orbs-tally/services/tally"
	"github.com/orbs-network/scribe/log"
	"net/http"
	"time"
)

const clientSendBufferSize = 16
const writeTimeout = 5 * time.Second

// one browser connected via websocket
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes the view of every applied result to all connected websocket clients
type Hub struct {
	govnr.TreeSupervisor
	logger log.Logger

	clients    map[*client]bool
	latest     []byte
	broadcast  chan []byte
	register   chan *client
	unregister chan *client

	connected *metric.Gauge
}

func NewHub(ctx context.Context, parentLogger log.Logger, registry metric.Registry) *Hub {
	h := &Hub{
		logger:     parentLogger.WithTags(log.String("adapter", "websocket-hub")),
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, publishQueueSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		connected:  registry.NewGauge("Tally.Stream.Clients.Count"),
	}

	h.Supervise(govnr.Forever(ctx, "websocket hub", logfields.GovnrErrorer(h.logger), func() {
		h.run(ctx)
	}))
	return h
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.connected.Update(int64(len(h.clients)))
			if h.latest != nil {
				c.send <- h.latest
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.connected.Update(int64(len(h.clients)))
			}

		case message := <-h.broadcast:
			h.latest = message
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// too slow to keep up
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.connected.Update(int64(len(h.clients)))

		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		}
	}
}

func (h *Hub) HandleAggregationResult(result *tally.AggregationResult) {
	message, err := presentation.ViewOf(result).Marshal()
	if err != nil {
		h.logger.Error("failed marshaling tally view", log.Error(err))
		return
	}

	for {
		select {
		case h.broadcast <- message:
			return
		default:
		}

		// the oldest pending snapshot makes room for the newest
		select {
		case <-h.broadcast:
			h.logger.Info("websocket broadcast queue is full, dropping oldest snapshot", log.Uint64("newest-cycle", result.Cycle))
		default:
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.Info("failed accepting websocket connection", log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendBufferSize)}
	select {
	case h.register <- c:
	case <-r.Context().Done():
		conn.Close(websocket.StatusGoingAway, "")
		return
	}

	// nothing is expected from the browser; CloseRead ends the context when it goes away
	ctx := conn.CloseRead(r.Context())
	h.writePump(ctx, c)
}

func (h *Hub) writePump(ctx context.Context, c *client) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				h.logger.Info("failed writing to websocket client", log.Error(err))
				h.leave(c)
				return
			}
		case <-ctx.Done():
			h.leave(c)
			return
		}
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-time.After(writeTimeout):
	}
}
