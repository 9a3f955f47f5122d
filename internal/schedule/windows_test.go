package schedule

import (
	"math"
	"testing"
	"time"
)

func TestComputeWindows(t *testing.T) {
	tests := []struct {
		name      string
		startHour float64
		durations []float64
		delays    []time.Duration
		want      []Window
	}{
		{
			name:      "back to back",
			startHour: 20,
			durations: []float64{1, 1},
			delays:    []time.Duration{0, 0},
			want:      []Window{{20, 21}, {21, 22}},
		},
		{
			name:      "wraps past midnight",
			startHour: 23,
			durations: []float64{2},
			delays:    []time.Duration{0},
			want:      []Window{{23, 1}},
		},
		{
			name:      "delays shift later targets",
			startHour: 21,
			durations: []float64{1.5, 0.5},
			delays:    []time.Duration{30 * time.Minute, 15 * time.Minute},
			want:      []Window{{21.5, 23}, {23.25, 23.75}},
		},
		{
			name:      "ordering kept across midnight",
			startHour: 22,
			durations: []float64{1.5, 1, 3},
			delays:    nil,
			want:      []Window{{22, 23.5}, {23.5, 0.5}, {0.5, 3.5}},
		},
		{
			name:      "second night wrap",
			startHour: 18,
			durations: []float64{20, 10},
			delays:    []time.Duration{0, time.Hour},
			want:      []Window{{18, 14}, {15, 1}},
		},
		{
			name:      "empty",
			startHour: 20,
			want:      []Window{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeWindows(tt.startHour, tt.durations, tt.delays)
			if len(got) != len(tt.want) {
				t.Fatalf("ComputeWindows() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i].Start-tt.want[i].Start) > 1e-9 || math.Abs(got[i].End-tt.want[i].End) > 1e-9 {
					t.Errorf("window %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWindow_Crosses(t *testing.T) {
	if !(Window{Start: 23, End: 1}).Crosses() {
		t.Error("23->1 should cross midnight")
	}
	if (Window{Start: 20, End: 21}).Crosses() {
		t.Error("20->21 should not cross midnight")
	}
}

func TestMaxDuration(t *testing.T) {
	tests := []struct {
		start, sunrise, want float64
	}{
		{20, 6, 10},
		{1, 6, 5},
		{18.5, 7.25, 12.75},
		{6, 6, 0},
	}

	for _, tt := range tests {
		if got := MaxDuration(tt.start, tt.sunrise); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("MaxDuration(%v, %v) = %v, want %v", tt.start, tt.sunrise, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{24, 0},
		{25.5, 1.5},
		{-1, 23},
		{49, 1},
	}
	for _, tt := range tests {
		if got := wrap(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("wrap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
