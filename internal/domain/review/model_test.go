package review

import (
	"testing"

	"github.com/topbestgames/platform/internal/core"
)

func TestReviewValidate(t *testing.T) {
	r := Review{Content: "Tight combat, great soundtrack.", Rating: 5, GameID: 1, UserID: 2}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid review rejected: %v", err)
	}

	for _, bad := range []int{0, -1, 6, 10} {
		r := r
		r.Rating = bad
		if err := r.Validate(); !core.IsValidationError(err) {
			t.Errorf("rating %d: expected validation error, got %v", bad, err)
		}
	}

	r.Content = ""
	if err := r.Validate(); err == nil || err.Error() != "content: is required" {
		t.Errorf("expected required error, got %v", err)
	}
}

func TestPatchTouchesRating(t *testing.T) {
	content := "edited"
	rating := 3
	approved := true

	if (Patch{Content: &content}).TouchesRating() {
		t.Error("content-only patch must not trigger recomputation")
	}
	if !(Patch{Rating: &rating}).TouchesRating() {
		t.Error("rating patch must trigger recomputation")
	}
	if !(Patch{IsApproved: &approved}).TouchesRating() {
		t.Error("approval patch must trigger recomputation")
	}
}
