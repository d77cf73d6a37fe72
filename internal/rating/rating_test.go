package rating

import "testing"

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []int{4}, 4.0},
		{"exact mean", []int{4, 5}, 4.5},
		{"rounds down", []int{4, 4, 5}, 4.3},
		{"rounds up", []int{4, 5, 5}, 4.7},
		{"repeating third", []int{5, 5, 4}, 4.7},
		{"all fives", []int{5, 5, 5, 5}, 5.0},
		{"all ones", []int{1, 1}, 1.0},
		{"half rounds away from zero", []int{1, 2, 2, 2}, 1.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.ratings); got != tt.want {
				t.Errorf("Aggregate(%v) = %v, want %v", tt.ratings, got, tt.want)
			}
		})
	}
}
