package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/metalagman/taskgraph/internal/model"
)

func TestWriteFormatted_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	plan := model.ExecutionPlan{Order: []string{"a", "b"}, Levels: [][]string{{"a"}, {"b"}}}
	if err := writeFormatted(&buf, plan, "json"); err != nil {
		t.Fatalf("writeFormatted returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"order"`) {
		t.Fatalf("json output missing order field: %s", buf.String())
	}
}

func TestWriteFormatted_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	estimate := model.EffortEstimate{TaskID: "root", TotalEffort: 11, TaskCount: 4}
	if err := writeFormatted(&buf, estimate, "yaml"); err != nil {
		t.Fatalf("writeFormatted returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "task_id: root") {
		t.Fatalf("yaml output missing task_id: %s", buf.String())
	}
}

func TestWriteFormatted_UnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeFormatted(&buf, struct{}{}, "toml"); err == nil {
		t.Fatal("writeFormatted returned nil error, want error")
	}
}
