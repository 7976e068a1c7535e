package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/gravitas-015/hexward/internal/gamemap"
	"github.com/gravitas-015/hexward/internal/network"
	"github.com/gravitas-015/hexward/pkg/hex"
	"github.com/gravitas-015/hexward/pkg/models"
	"github.com/paulmach/orb"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	id     string
	ws     *websocket.Conn
	server *Server
	player *models.Player

	// Buffered channel for outbound messages
	send chan []byte

	// Per-connection query budget
	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates a connection for an authenticated player
func NewConnection(ws *websocket.Conn, server *Server, player *models.Player) *Connection {
	q := server.config.Query
	player.Connected = true
	player.ConnectedAt = time.Now()
	return &Connection{
		id:      uuid.NewString(),
		ws:      ws,
		server:  server,
		player:  player,
		send:    make(chan []byte, 256),
		limiter: rate.NewLimiter(rate.Limit(q.RateLimit), q.Burst),
		done:    make(chan struct{}),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.server.session.AddPlayer(c.player)
	c.sendWelcome()

	go c.writePump()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the server
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		c.player.LastSeen = time.Now()

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Failed to parse client message: %v", err)
			c.SendError("", network.ErrCodeInvalidMessage, "Failed to parse message")
			continue
		}

		if !c.limiter.Allow() {
			c.SendError(clientMsg.ID, network.ErrCodeRateLimited, "Too many requests")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-c.server.ctx.Done():
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	c.server.metrics.messagesTotal.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case network.MsgTypeCell, network.MsgTypeNeighbors, network.MsgTypeRange,
		network.MsgTypeRing, network.MsgTypeLine, network.MsgTypePixel:
		if !c.canRead(msg.ID) {
			return
		}
	}

	switch msg.Type {
	case network.MsgTypeCell:
		c.handleCell(msg)
	case network.MsgTypeSet:
		c.handleSet(msg)
	case network.MsgTypeRemove:
		c.handleRemove(msg)
	case network.MsgTypeNeighbors:
		c.handleNeighbors(msg)
	case network.MsgTypeRange, network.MsgTypeRing:
		c.handleArea(msg)
	case network.MsgTypeLine:
		c.handleLine(msg)
	case network.MsgTypePixel:
		c.handlePixel(msg)
	case network.MsgTypePing:
		c.reply(msg.ID, network.MsgTypePong, map[string]interface{}{"timestamp": time.Now().Unix()})
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.SendError(msg.ID, network.ErrCodeUnknownType, "Unknown message type")
	}
}

func (c *Connection) handleCell(msg *network.ClientMessage) {
	var req network.PointPayload
	if !c.decode(msg, &req) || !c.validPoint(msg.ID, req.Point) {
		return
	}
	v, err := c.server.gameMap.GetHex(req.Point)
	if err != nil {
		c.sendMapError(msg.ID, err)
		return
	}
	c.reply(msg.ID, network.MsgTypeCell, cell(v))
}

func (c *Connection) handleSet(msg *network.ClientMessage) {
	if !c.canEdit(msg.ID) {
		return
	}
	var req network.SetPayload
	if !c.decode(msg, &req) || !c.validPoint(msg.ID, req.Point) {
		return
	}
	v, err := c.server.gameMap.SetHex(req.Point, gamemap.Hex{Terrain: req.Terrain})
	if err != nil {
		c.sendMapError(msg.ID, err)
		return
	}
	log.Printf("Player %s set %v to %q", c.player.Username, req.Point, req.Terrain)
	c.reply(msg.ID, network.MsgTypeCell, cell(v))
}

func (c *Connection) handleRemove(msg *network.ClientMessage) {
	if !c.canEdit(msg.ID) {
		return
	}
	var req network.PointPayload
	if !c.decode(msg, &req) || !c.validPoint(msg.ID, req.Point) {
		return
	}
	if err := c.server.gameMap.RemoveHex(req.Point); err != nil {
		c.sendMapError(msg.ID, err)
		return
	}
	log.Printf("Player %s removed %v", c.player.Username, req.Point)
	c.reply(msg.ID, network.MsgTypeRemoved, req)
}

func (c *Connection) handleNeighbors(msg *network.ClientMessage) {
	var req network.PointPayload
	if !c.decode(msg, &req) || !c.validPoint(msg.ID, req.Point) {
		return
	}
	c.reply(msg.ID, network.MsgTypeCells, network.CellsPayload{Cells: cells(c.server.gameMap.Neighbors(req.Point))})
}

func (c *Connection) handleArea(msg *network.ClientMessage) {
	var req network.AreaPayload
	if !c.decode(msg, &req) || !c.validPoint(msg.ID, req.Center) {
		return
	}
	if req.Radius < 0 {
		c.SendError(msg.ID, network.ErrCodeInvalidPayload, "Radius must be non-negative")
		return
	}
	if limit := c.server.config.Query.MaxRadius; req.Radius > limit {
		c.SendError(msg.ID, network.ErrCodeRadiusTooLarge, fmt.Sprintf("Radius %d exceeds limit %d", req.Radius, limit))
		return
	}

	var views []gamemap.CellView
	if msg.Type == network.MsgTypeRing {
		views = c.server.gameMap.Ring(req.Center, req.Radius)
	} else {
		views = c.server.gameMap.Range(req.Center, req.Radius)
	}
	c.reply(msg.ID, network.MsgTypeCells, network.CellsPayload{Cells: cells(views)})
}

func (c *Connection) handleLine(msg *network.ClientMessage) {
	var req network.LinePayload
	if !c.decode(msg, &req) || !c.validPoint(msg.ID, req.From) || !c.validPoint(msg.ID, req.To) {
		return
	}
	if d, limit := hex.Distance(req.From, req.To), 2*c.server.config.Query.MaxRadius; d > limit {
		c.SendError(msg.ID, network.ErrCodeRadiusTooLarge, fmt.Sprintf("Line length %d exceeds limit %d", d, limit))
		return
	}
	c.reply(msg.ID, network.MsgTypeCells, network.CellsPayload{Cells: cells(c.server.gameMap.Line(req.From, req.To))})
}

func (c *Connection) handlePixel(msg *network.ClientMessage) {
	var req network.PixelPayload
	if !c.decode(msg, &req) {
		return
	}
	p, in := c.server.gameMap.PointAt(orb.Point{req.X, req.Y})
	c.reply(msg.ID, network.MsgTypePoint, network.PointResultPayload{Point: p, InBounds: in})
}

func (c *Connection) decode(msg *network.ClientMessage, v interface{}) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		log.Printf("Failed to parse %s payload: %v", msg.Type, err)
		c.SendError(msg.ID, network.ErrCodeInvalidPayload, fmt.Sprintf("Invalid %s payload", msg.Type))
		return false
	}
	return true
}

func (c *Connection) validPoint(id string, p hex.Point) bool {
	if _, err := hex.NewPoint(p.Q, p.R, p.S); err != nil {
		c.SendError(id, network.ErrCodeInvalidCoordinate, err.Error())
		return false
	}
	return true
}

func (c *Connection) canRead(id string) bool {
	if !c.player.CanReadMap() {
		c.SendError(id, network.ErrCodeForbidden, "Map queries not permitted")
		return false
	}
	return true
}

func (c *Connection) canEdit(id string) bool {
	if !c.player.CanEditMap() {
		c.SendError(id, network.ErrCodeForbidden, "Map edits not permitted")
		return false
	}
	return true
}

func (c *Connection) sendMapError(id string, err error) {
	switch {
	case errors.Is(err, hex.ErrAbsentKey):
		c.SendError(id, network.ErrCodeAbsent, err.Error())
	case errors.Is(err, hex.ErrOutOfBounds):
		c.SendError(id, network.ErrCodeOutOfBounds, err.Error())
	case errors.Is(err, hex.ErrInvalidCoordinate):
		c.SendError(id, network.ErrCodeInvalidCoordinate, err.Error())
	default:
		log.Printf("Map error: %v", err)
		c.SendError(id, network.ErrCodeInvalidPayload, err.Error())
	}
}

func (c *Connection) sendWelcome() {
	c.reply("", network.MsgTypeWelcome, network.WelcomePayload{
		PlayerID:     c.player.ID,
		Username:     c.player.Username,
		ConnectionID: c.id,
		CanRead:      c.player.CanReadMap(),
		CanEdit:      c.player.CanEditMap(),
		Map:          mapInfo(c.server.gameMap.Info()),
	})
}

func (c *Connection) reply(id, msgType string, payload interface{}) {
	c.SendMessage(&network.ServerMessage{Type: msgType, ID: id, Payload: payload})
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		log.Printf("Send buffer full, dropping message")
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(id, code, message string) {
	c.server.metrics.errorsTotal.WithLabelValues(code).Inc()
	c.reply(id, network.MsgTypeError, network.ErrorPayload{
		Code:    code,
		Message: message,
	})
}

// Close stops the connection; safe to call more than once
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.player.Connected = false
		c.server.session.RemovePlayer(c.player.ID)
		// unblock readPump
		c.ws.SetReadDeadline(time.Now())
	})
}
