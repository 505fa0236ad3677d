package server

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrSendQueueFull 连接发送队列已满（慢消费者）
var ErrSendQueueFull = errors.New("send queue full")

// Conn 房间视角下的一条客户端连接；测试中可替换为假连接
type Conn interface {
	Codec() Codec
	// Send 非阻塞入队，队列满时返回 ErrSendQueueFull
	Send(Frame) error
	Close() error
}

// Connections 在线连接表，只由 Game goroutine 访问
type Connections struct {
	conns   map[PlayerID]Conn
	metrics *Metrics
}

func NewConnections(m *Metrics) *Connections {
	return &Connections{conns: make(map[PlayerID]Conn), metrics: m}
}

func (c *Connections) Add(id PlayerID, conn Conn) { c.conns[id] = conn }

func (c *Connections) Remove(id PlayerID) (Conn, bool) {
	conn, ok := c.conns[id]
	if ok {
		delete(c.conns, id)
	}
	return conn, ok
}

func (c *Connections) Len() int { return len(c.conns) }

func encodeFrame(codec Codec, ev Event) (Frame, error) {
	b, err := codec.Encode(ev)
	if err != nil {
		return Frame{}, fmt.Errorf("encode %s as %s: %w", ev.EventType(), codec.Name(), err)
	}
	return Frame{Type: codec.FrameType(), Data: b}, nil
}

// SendTo 单播；连接不存在时静默忽略
func (c *Connections) SendTo(id PlayerID, ev Event) error {
	conn, ok := c.conns[id]
	if !ok {
		return nil
	}
	f, err := encodeFrame(conn.Codec(), ev)
	if err != nil {
		return err
	}
	if err := conn.Send(f); err != nil {
		return err
	}
	c.metrics.IncFramesEnqueued()
	return nil
}

// Send 广播给除 exclude 外的所有连接，每种编码只序列化一次
// 返回入队失败的连接 id，由调用方按断线处理；某种编码失败时只跳过使用该编码的连接，
// 其余连接照常投递，编码错误在循环结束后一并返回
func (c *Connections) Send(ev Event, exclude PlayerID) (failed []PlayerID, err error) {
	c.metrics.IncEventsBroadcast()
	frames := make(map[string]Frame, 2)
	broken := make(map[string]bool)
	for id, conn := range c.conns {
		if exclude != "" && id == exclude {
			continue
		}
		codec := conn.Codec()
		if broken[codec.Name()] {
			continue
		}
		f, ok := frames[codec.Name()]
		if !ok {
			var encErr error
			f, encErr = encodeFrame(codec, ev)
			if encErr != nil {
				broken[codec.Name()] = true
				err = multierr.Append(err, encErr)
				continue
			}
			frames[codec.Name()] = f
		}
		if sendErr := conn.Send(f); sendErr != nil {
			failed = append(failed, id)
			continue
		}
		c.metrics.IncFramesEnqueued()
	}
	return failed, err
}

// CloseAll 关闭并清空全部连接
func (c *Connections) CloseAll() error {
	var err error
	for id, conn := range c.conns {
		err = multierr.Append(err, conn.Close())
		delete(c.conns, id)
	}
	return err
}
