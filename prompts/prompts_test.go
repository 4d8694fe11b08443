package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephgoksu/TaskTalk/models"
)

func TestFormatTaskLine(t *testing.T) {
	pending := models.Task{ID: "1716200000000", Description: "Buy milk"}
	if got := FormatTaskLine(pending); got != "1716200000000: Buy milk (pending)" {
		t.Errorf("pending line mismatch: got %q", got)
	}

	done := models.Task{ID: "42", Description: "Call mom", Completed: true}
	if got := FormatTaskLine(done); got != "42: Call mom (completed)" {
		t.Errorf("completed line mismatch: got %q", got)
	}
}

func TestFormatTaskList_Empty(t *testing.T) {
	if got := FormatTaskList(nil); got != EmptyListPlaceholder {
		t.Errorf("empty list should render the placeholder, got %q", got)
	}
}

func TestFormatTaskList_PreservesOrder(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Description: "First"},
		{ID: "2", Description: "Second", Completed: true},
		{ID: "3", Description: "Third"},
	}

	got := FormatTaskList(tasks)
	want := "1: First (pending)\n2: Second (completed)\n3: Third (pending)"
	if got != want {
		t.Errorf("list mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestBuildChatPrompt(t *testing.T) {
	tasks := []models.Task{{ID: "1", Description: "Buy milk"}}
	prompt := BuildChatPrompt(tasks)

	if !strings.Contains(prompt, "1: Buy milk (pending)") {
		t.Error("prompt should embed the rendered task list")
	}
	if !strings.Contains(prompt, "add_multiple_tasks") {
		t.Error("prompt should document the batch action format")
	}
	if strings.Contains(prompt, "%s") {
		t.Error("placeholder should be consumed by rendering")
	}
}

func TestBuildChatPrompt_Deterministic(t *testing.T) {
	tasks := []models.Task{{ID: "1", Description: "Buy milk"}}
	if BuildChatPrompt(tasks) != BuildChatPrompt(tasks) {
		t.Error("prompt building must be a pure function of its inputs")
	}
}

func TestGetPrompt_DefaultWhenNoOverride(t *testing.T) {
	got, err := GetPrompt(KeyChatSystem, t.TempDir())
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if got != ChatSystemPrompt {
		t.Error("missing override file should fall back to the default prompt")
	}
}

func TestGetPrompt_Override(t *testing.T) {
	dir := t.TempDir()
	custom := "Custom assistant.\n\nTasks:\n%s\n"
	if err := os.WriteFile(filepath.Join(dir, "chat_system_prompt.txt"), []byte(custom), 0o644); err != nil {
		t.Fatalf("failed to write override: %v", err)
	}

	got, err := GetPrompt(KeyChatSystem, dir)
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if got != custom {
		t.Errorf("override should win: got %q", got)
	}
}

func TestGetPrompt_UnknownKey(t *testing.T) {
	if _, err := GetPrompt(PromptKey("Nope"), ""); err == nil {
		t.Error("expected error for unknown prompt key")
	}
}
