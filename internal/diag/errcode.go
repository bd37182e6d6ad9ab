package diag

import (
	"context"
	"errors"
	"os"
	"time"

	"tilemeta/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown      Code = "unknown"
	CodeParse        Code = "parse"
	CodeInvariant    Code = "invariant"
	CodePrecondition Code = "precondition"
	CodeConfig       Code = "config"
	CodeCancel       Code = "cancel"
	CodeIO           Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	// 标识解析
	if errors.Is(err, contract.ErrMalformedIdentifier) {
		return CodeParse
	}
	// 不变量（校验门闩与路径越界）
	if errors.Is(err, contract.ErrInconsistentFieldLength) ||
		errors.Is(err, contract.ErrDuplicateIdentifier) ||
		errors.Is(err, contract.ErrInvariantViolation) ||
		errors.Is(err, contract.ErrPathInvalid) {
		return CodeInvariant
	}
	// 前置条件（数据源不可用）
	if errors.Is(err, contract.ErrMissingBoundaryData) ||
		errors.Is(err, contract.ErrMissingTargetData) ||
		errors.Is(err, contract.ErrTemplateInvalid) {
		return CodePrecondition
	}
	// I/O
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
