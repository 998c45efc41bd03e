package core

import (
	"testing"

	"github.com/chhz0/tasklist/types"
)

func TestFilterTasks(t *testing.T) {
	tasks := []types.Task{
		{ID: "1", Title: "a", Status: types.StatusPending},
		{ID: "2", Title: "b", Status: types.StatusCompleted},
		{ID: "3", Title: "c", Status: types.StatusPending},
		{ID: "4", Title: "d", Status: types.StatusUnset},
	}
	cases := []struct {
		name string
		c    types.Criterion
		want []string
	}{
		{"all", types.CriterionAll, []string{"1", "2", "3", "4"}},
		{"pending", types.ByStatus(types.StatusPending), []string{"1", "3"}},
		{"completed", types.ByStatus(types.StatusCompleted), []string{"2"}},
		{"in progress", types.ByStatus(types.StatusInProgress), nil},
		{"unset", types.CriterionUnset, []string{"4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterTasks(tasks, tc.c)
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("got[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	tasks := []types.Task{{ID: "1", Title: "a"}}
	got := FilterTasks(tasks, types.CriterionAll)
	got[0].Title = "changed"
	if tasks[0].Title != "a" {
		t.Fatal("FilterTasks returned a slice aliasing its input")
	}
}

func TestFilterEntriesKeepMasterPositions(t *testing.T) {
	tasks := []types.Task{
		{ID: "1", Status: types.StatusCompleted},
		{ID: "2", Status: types.StatusPending},
	}
	got := FilterEntries(tasks, types.ByStatus(types.StatusPending))
	if len(got) != 1 || got[0].Position != 1 || got[0].Task.ID != "2" {
		t.Fatalf("entries = %+v", got)
	}
}
