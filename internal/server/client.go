package server

import (
	"context"
	"net/http"
	"time"

	"lizard-state/internal/domain"
	"lizard-state/internal/engine"
	"lizard-state/pkg/api"
	"lizard-state/pkg/logger"
	"lizard-state/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и GameService
type Client struct {
	Game     *engine.GameService
	Conn     *websocket.Conn
	Send     chan api.ServerResponse
	EntityID domain.EntityID

	// done закрывается, когда writePump завершился.
	done chan struct{}
	log  *logrus.Entry
}

func NewClient(game *engine.GameService, conn *websocket.Conn) *Client {
	return &Client{
		Game: game,
		Conn: conn,
		Send: make(chan api.ServerResponse, 256),
		done: make(chan struct{}),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "ws_client",
			"conn_id":   utils.GenerateID(),
		}),
	}
}

// readPump читает команды от клиента
func (c *Client) readPump() {
	var gameUpdates chan api.ServerResponse
	defer func() {
		if gameUpdates != nil {
			c.Game.Hub.Release(c.EntityID, gameUpdates)
			c.log.WithField("entity_id", c.EntityID).Info("Client disconnected")
		} else {
			close(c.Send)
		}
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 1. HANDSHAKE (JOIN)
	var loginCmd api.ClientCommand
	if err := c.Conn.ReadJSON(&loginCmd); err != nil {
		c.log.WithError(err).Warn("Handshake failed")
		return
	}

	// 2. ВЫБОР СУЩНОСТИ И ПОДПИСКА НА ОБНОВЛЕНИЯ
	id, updates, err := c.Game.Join(loginCmd.Token)
	if err != nil {
		c.log.WithError(err).Warn("Join rejected")
		c.Send <- api.ServerResponse{Type: api.ResponseError, Error: err.Error()}
		return
	}
	c.EntityID = id
	c.log = c.log.WithField("entity_id", id)
	gameUpdates = updates
	c.log.Info("Client logged in")

	// 3. Пересылка из Hub в writePump
	go forward(gameUpdates, c.Send, c.done)

	// INIT - первая отрисовка
	ctx := context.Background()
	c.Game.ProcessCommand(ctx, api.ClientCommand{Action: api.ActionJoin, Token: c.EntityID.String()})

	// 4. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Error("WS error")
			}
			break
		}
		// Клиент действует только от имени своей сущности.
		cmd.Token = c.EntityID.String()
		c.Game.ProcessCommand(ctx, cmd)
	}
}

// forward пересылает обновления хаба в send и закрывает send, когда хаб
// закрыл updates (Release или повторный вход той же сущности). После
// закрытия done писать некому: пересылка прекращается.
func forward(updates <-chan api.ServerResponse, send chan<- api.ServerResponse, done <-chan struct{}) {
	defer close(send)
	for msg := range updates {
		select {
		case send <- msg:
		case <-done:
			return
		}
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		close(c.done)
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
