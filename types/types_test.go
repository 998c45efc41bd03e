package types

import "testing"

func TestDecodeTasksAcceptsLegacyFieldNames(t *testing.T) {
	data := `[
		{"title":"Buy milk","text":"2%","option":"Pending"},
		{"id":"abc","title":"Write report","description":"Q3","status":"In Progress"},
		{"text":"old entry","option":""}
	]`
	tasks, err := DecodeTasks(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("len(tasks) = %d, want 3", len(tasks))
	}
	if tasks[0].Description != "2%" || tasks[0].Status != StatusPending {
		t.Fatalf("legacy task = %+v", tasks[0])
	}
	if tasks[1].ID != "abc" || tasks[1].Description != "Q3" || tasks[1].Status != StatusInProgress {
		t.Fatalf("canonical task = %+v", tasks[1])
	}
	if tasks[2].Title != "" || tasks[2].Description != "old entry" || tasks[2].Status != StatusUnset {
		t.Fatalf("untitled legacy task = %+v", tasks[2])
	}
}

func TestDecodeTasksPrefersCanonicalNames(t *testing.T) {
	tasks, err := DecodeTasks(`[{"title":"t","description":"new","text":"old","status":"Completed","option":"Pending"}]`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tasks[0].Description != "new" || tasks[0].Status != StatusCompleted {
		t.Fatalf("task = %+v, want canonical fields to win", tasks[0])
	}
}

func TestDecodeTasksNullAndMalformed(t *testing.T) {
	tasks, err := DecodeTasks("null")
	if err != nil {
		t.Fatalf("decode null: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("null payload = %#v, want empty list", tasks)
	}
	if _, err := DecodeTasks("{not json"); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := DecodeTasks(`{"title":"x"}`); err == nil {
		t.Fatal("expected error for non-array payload")
	}
}

func TestEncodeTasksWritesCanonicalNames(t *testing.T) {
	got, err := EncodeTasks([]Task{{ID: "1", Title: "a", Description: "b", Status: StatusCompleted}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `[{"id":"1","title":"a","description":"b","status":"Completed"}]`
	if got != want {
		t.Fatalf("encode = %s, want %s", got, want)
	}
	empty, err := EncodeTasks(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if empty != "[]" {
		t.Fatalf("encode nil = %s, want []", empty)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"Pending", StatusPending, false},
		{"  in progress ", StatusInProgress, false},
		{"in-progress", StatusInProgress, false},
		{"COMPLETED", StatusCompleted, false},
		{"", StatusUnset, false},
		{"(unset)", StatusUnset, false},
		{"blocked", StatusUnset, true},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseStatus(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCriterion(t *testing.T) {
	c, err := ParseCriterion("ALL")
	if err != nil || !c.IsAll() {
		t.Fatalf("ParseCriterion(ALL) = %v, %v", c, err)
	}
	c, err = ParseCriterion("pending")
	if err != nil {
		t.Fatalf("ParseCriterion(pending): %v", err)
	}
	if c.IsAll() || c.Status() != StatusPending {
		t.Fatalf("criterion = %v, want Pending", c)
	}
	if !c.Match(Task{Status: StatusPending}) || c.Match(Task{Status: StatusCompleted}) {
		t.Fatal("pending criterion matched the wrong tasks")
	}
	if !CriterionAll.Match(Task{Status: StatusCompleted}) {
		t.Fatal("All must match every task")
	}
	if len(Criteria()) != 5 {
		t.Fatalf("len(Criteria()) = %d, want 5", len(Criteria()))
	}
	if CriterionUnset.String() != "(unset)" {
		t.Fatalf("CriterionUnset.String() = %q", CriterionUnset.String())
	}
}
