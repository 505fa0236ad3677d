package server

import "errors"

// ErrCapacityExceeded 玩家数已达上限，连接将被直接关闭
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrGameStopped Game 循环已退出
var ErrGameStopped = errors.New("game stopped")

// Reason 命令被拒绝的原因
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonCapacityExceeded Reason = "capacityExceeded"
	ReasonInvalidReference Reason = "invalidReference"
	ReasonOutOfRange       Reason = "outOfRange"
	ReasonNoInventorySpace Reason = "noInventorySpace"
	ReasonUnknownCommand   Reason = "unknownCommand"
)

// Reasons 全部拒绝原因，用于指标初始化
var Reasons = []Reason{
	ReasonCapacityExceeded,
	ReasonInvalidReference,
	ReasonOutOfRange,
	ReasonNoInventorySpace,
	ReasonUnknownCommand,
}

// Result 一条命令的处理结果
type Result struct {
	Command string
	Reason  Reason
}

func (r Result) Accepted() bool { return r.Reason == ReasonNone }

func accepted(cmd string) Result { return Result{Command: cmd} }

func rejected(cmd string, reason Reason) Result { return Result{Command: cmd, Reason: reason} }
