package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestAppendEvictsOldestFirst(t *testing.T) {
	store := NewStore(3)
	for i := 0; i < 5; i++ {
		store.Append("s1", RoleUser, fmt.Sprintf("turn-%d", i))
	}

	turns := store.Window("s1", 0)
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns after eviction, got %d", len(turns))
	}
	for i, turn := range turns {
		want := fmt.Sprintf("turn-%d", i+2)
		if turn.Content != want {
			t.Fatalf("turn %d: expected %q, got %q", i, want, turn.Content)
		}
	}
}

func TestWindowNeverExceedsRequestedCap(t *testing.T) {
	store := NewStore(10)
	for i := 0; i < 10; i++ {
		store.Append("s1", RoleAssistant, fmt.Sprintf("t%d", i))
	}
	turns := store.Window("s1", 4)
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	if turns[0].Content != "t6" || turns[3].Content != "t9" {
		t.Fatalf("window returned wrong slice: %v", turns)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	store := NewStore(5)
	store.Append("a", RoleUser, "hello a")
	store.Append("b", RoleUser, "hello b")
	store.Clear("a")

	if got := store.Window("a", 0); len(got) != 0 {
		t.Fatalf("cleared session should be empty, got %d turns", len(got))
	}
	if got := store.Window("b", 0); len(got) != 1 || got[0].Content != "hello b" {
		t.Fatalf("unrelated session was disturbed: %v", got)
	}
}

func TestConcurrentAppendsPreserveCount(t *testing.T) {
	store := NewStore(1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				store.Append("shared", RoleUser, fmt.Sprintf("w%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()

	if got := len(store.Window("shared", 0)); got != 500 {
		t.Fatalf("expected 500 turns, got %d", got)
	}
}

func TestRenderTranscript(t *testing.T) {
	store := NewStore(5)
	store.Append("s", RoleUser, "List department X's staff")
	store.Append("s", RoleAssistant, "Here are the staff members.")

	transcript := Render(store.Window("s", 0))
	if !strings.Contains(transcript, "User: List department X's staff") {
		t.Fatalf("transcript missing user turn: %q", transcript)
	}
	if !strings.Contains(transcript, "Assistant: Here are the staff members.") {
		t.Fatalf("transcript missing assistant turn: %q", transcript)
	}
}
