// core/filter.go
package core

import "github.com/chhz0/tasklist/types"

// FilterTasks 返回匹配条件的任务子序列（保持原顺序）；All 返回整个列表的副本
func FilterTasks(tasks []types.Task, c types.Criterion) []types.Task {
	out := make([]types.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Entry 是过滤视图中的一行，Position 指向主列表中的位置
type Entry struct {
	Position int
	Task     types.Task
}

func FilterEntries(tasks []types.Task, c types.Criterion) []Entry {
	out := make([]Entry, 0, len(tasks))
	for i, t := range tasks {
		if c.Match(t) {
			out = append(out, Entry{Position: i, Task: t})
		}
	}
	return out
}
