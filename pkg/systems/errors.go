package systems

import (
	"errors"
	"fmt"
)

// 使用错误（调用方 bug），总是包装在 *UsageError 中返回
var (
	// ErrWaveInProgress 非 Idle 状态下调用 StartWave
	ErrWaveInProgress = errors.New("wave already in progress")

	// ErrNotStarted 在任何 StartWave 之前调用 Tick
	ErrNotStarted = errors.New("no wave has been started")

	// ErrWaveNotDraining 波次尚未进入 Draining 就报告完成
	ErrWaveNotDraining = errors.New("wave is not draining")

	// ErrWaveMismatch 报告完成的波次号与当前波次不一致
	ErrWaveMismatch = errors.New("reported wave does not match active wave")
)

// ConfigurationError 波次配置无法解析（致命），波次不会开始
type ConfigurationError struct {
	Wave int
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for wave %d: %v", e.Wave, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UsageError 在错误的状态下调用控制器操作
type UsageError struct {
	Op    string     // 被调用的操作名
	State SpawnState // 调用时控制器所处状态
	Err   error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s called in state %s: %v", e.Op, e.State, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}
