package google

import "testing"

func TestFindRowByID(t *testing.T) {
	values := [][]any{
		{"id"},
		{"1"},
		{int64(2)},
		{},
		{"not a number"},
		{"42"},
	}

	tests := []struct {
		name string
		id   int64
		want int
	}{
		{"first data row", 1, 2},
		{"numeric cell", 2, 3},
		{"after gap and junk", 42, 6},
		{"missing id", 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findRowByID(values, tt.id); got != tt.want {
				t.Errorf("findRowByID(%d) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestFindRowByID_Empty(t *testing.T) {
	if got := findRowByID(nil, 1); got != 0 {
		t.Errorf("findRowByID(nil) = %d, want 0", got)
	}
}
