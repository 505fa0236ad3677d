package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ClientConn 一条 WebSocket 连接：有界发送队列 + 读写两个协程
type ClientConn struct {
	ws    *websocket.Conn
	codec Codec
	send  chan Frame

	closeOnce sync.Once
}

func NewClientConn(ws *websocket.Conn, codec Codec, queueSize int) *ClientConn {
	return &ClientConn{
		ws:    ws,
		codec: codec,
		send:  make(chan Frame, queueSize),
	}
}

func (c *ClientConn) Codec() Codec { return c.codec }

// Send 非阻塞入队；队列满说明对端太慢，返回 ErrSendQueueFull 由 Game 断开该连接
// 只允许 Game goroutine 调用
func (c *ClientConn) Send(f Frame) error {
	select {
	case c.send <- f:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close 关闭发送队列；写协程写完剩余消息后发送关闭帧并关闭底层连接
func (c *ClientConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.send)
	})
	return nil
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定时 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(f.Type, f.Data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，解码后投递给 Game
func (c *ClientConn) readPump(g *Game, id PlayerID, maxBytes int, log *zap.SugaredLogger) {
	defer func() { _ = c.ws.Close() }()
	// 读泵退出时，通知 Game 在其循环中移除该玩家
	defer g.Leave(id)

	c.ws.SetReadLimit(int64(maxBytes))
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		frameType, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugw("ws read", "player", id, "err", err)
			}
			return
		}
		msg, err := DecodeClientMessage(frameType, payload)
		if err != nil {
			log.Debugw("bad frame", "player", id, "err", err)
			// 空 type 会在命令处理中记为 unknownCommand
			msg = ClientMessage{}
		}
		if err := g.Submit(id, msg); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 无鉴权的公开服务：允许所有来源
		return true
	},
}

// HandleWS WebSocket 接入：/ws?codec=msgpack 选择二进制编码，默认 JSON
// cfg 只读取启动时确定的传输参数
func HandleWS(g *Game, cfg Config, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codec, err := CodecByName(r.URL.Query().Get("codec"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnw("upgrade", "remote", r.RemoteAddr, "err", err)
			return
		}

		client := NewClientConn(ws, codec, cfg.SendQueueSize)
		id, err := g.Join(r.Context(), client)
		if err != nil {
			// 满员：直接关闭，不发送任何原因
			_ = ws.Close()
			return
		}

		go client.writePump()
		go client.readPump(g, id, cfg.MaxMessageBytes, log)
	}
}
