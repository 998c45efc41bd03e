// core/errors.go
package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotLoaded          = errors.New("task store not loaded")
	ErrAlreadyLoaded      = errors.New("task store already loaded")
	ErrPositionOutOfRange = errors.New("task position out of range")
	ErrTaskNotFound       = errors.New("task not found")
	ErrValidation         = errors.New("invalid task")
	ErrPersistFailed      = errors.New("persisting tasks failed")
)

// ValidationError 表示保存被拒绝，列表和表单保持不变
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid task: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistError 表示内存中的修改已生效但写入存储失败；内存状态为准
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist tasks after %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersistFailed, e.Err}
}

// IsWarning 报告 err 是否只是持久化警告（修改已经生效）
func IsWarning(err error) bool {
	return errors.Is(err, ErrPersistFailed)
}
