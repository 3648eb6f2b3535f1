package generate

import (
	"reflect"
	"testing"
)

func TestMapGenerated_OnlyTargetedSlots(t *testing.T) {
	// index 1 is an empty constraints block that was not part of the request
	slots := []slot{{index: 0, blockType: "task"}, {index: 2, blockType: "format"}}
	generated := map[string]string{"task": "X", "constraints": "Y", "format": "Z"}

	updates, ignored := mapGenerated(slots, generated)

	want := map[int]string{0: "X", 2: "Z"}
	if !reflect.DeepEqual(updates, want) {
		t.Errorf("updates = %v, want %v", updates, want)
	}
	if !reflect.DeepEqual(ignored, []string{"constraints"}) {
		t.Errorf("ignored = %v", ignored)
	}
}

func TestMapGenerated_FirstMatchWins(t *testing.T) {
	slots := []slot{{index: 3, blockType: "examples"}, {index: 5, blockType: "examples"}}
	updates, _ := mapGenerated(slots, map[string]string{"examples": "E"})
	if !reflect.DeepEqual(updates, map[int]string{3: "E"}) {
		t.Errorf("updates = %v", updates)
	}
}

func TestMapGenerated_BlankContentSkipped(t *testing.T) {
	slots := []slot{{index: 0, blockType: "task"}}
	updates, ignored := mapGenerated(slots, map[string]string{"task": "  "})
	if len(updates) != 0 || len(ignored) != 0 {
		t.Errorf("updates = %v, ignored = %v", updates, ignored)
	}
}
