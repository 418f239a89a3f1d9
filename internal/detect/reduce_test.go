package detect

import (
	"testing"
	"time"

	"github.com/pfrederiksen/f1-events/internal/openf1"
)

func pos(driver, position int, at time.Time) openf1.Position {
	return openf1.Position{DriverNumber: driver, Position: position, Date: at}
}

func TestReduceLatest(t *testing.T) {
	base := time.Date(2025, 5, 4, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input []openf1.Position
		want  map[int]int // driver -> expected position
	}{
		{
			name:  "empty batch",
			input: nil,
			want:  map[int]int{},
		},
		{
			name: "one observation per driver",
			input: []openf1.Position{
				pos(1, 1, base),
				pos(44, 2, base),
			},
			want: map[int]int{1: 1, 44: 2},
		},
		{
			name: "latest observation wins regardless of input order",
			input: []openf1.Position{
				pos(1, 3, base.Add(10 * time.Second)),
				pos(1, 1, base),
				pos(1, 2, base.Add(5 * time.Second)),
			},
			want: map[int]int{1: 3},
		},
		{
			name: "exact timestamp tie keeps the later input element",
			input: []openf1.Position{
				pos(16, 4, base),
				pos(16, 5, base),
			},
			want: map[int]int{16: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReduceLatest(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for driver, wantPos := range tt.want {
				entry, ok := got[driver]
				if !ok {
					t.Fatalf("driver %d missing from reduced map", driver)
				}
				if entry.Position != wantPos {
					t.Errorf("driver %d: got position %d, want %d", driver, entry.Position, wantPos)
				}
			}
		})
	}
}

func TestReduceLatestDoesNotMutateInput(t *testing.T) {
	base := time.Now()
	input := []openf1.Position{pos(1, 1, base), pos(1, 2, base.Add(time.Second))}
	ReduceLatest(input)
	if input[0].Position != 1 || input[1].Position != 2 {
		t.Error("input slice was mutated")
	}
}
