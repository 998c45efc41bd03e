// types/types.go
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// 任务状态枚举
type Status string

const (
	StatusUnset      Status = ""
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses 按界面显示顺序列出所有可选状态（不含未设置）
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusUnset, StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	if s == StatusUnset {
		return "(unset)"
	}
	return string(s)
}

// ParseStatus 接受不区分大小写的状态名，"" / "(unset)" / "unset" 视为未设置
func ParseStatus(s string) (Status, error) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "", "(unset)", "unset", "none":
		return StatusUnset, nil
	case "pending":
		return StatusPending, nil
	case "in progress", "in-progress", "inprogress", "in_progress":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return StatusUnset, fmt.Errorf("unknown status %q", s)
}

// 任务记录；身份由ID决定，不依赖在列表中的位置
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

func NewID() string {
	return uuid.New().String()
}

// legacyTask 兼容旧数据中的 text / option 字段名
type legacyTask struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Text        *string `json:"text"`
	Status      *Status `json:"status"`
	Option      *Status `json:"option"`
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var raw legacyTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task{ID: raw.ID, Title: raw.Title}
	switch {
	case raw.Description != nil:
		t.Description = *raw.Description
	case raw.Text != nil:
		t.Description = *raw.Text
	}
	switch {
	case raw.Status != nil:
		t.Status = *raw.Status
	case raw.Option != nil:
		t.Status = *raw.Option
	}
	return nil
}

// 序列化整个任务列表
func EncodeTasks(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// 反序列化任务列表；JSON null 视为空列表
func DecodeTasks(data string) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal([]byte(data), &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}
