package core

import "testing"

func TestPerPerson(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		count  int
		want   int64
	}{
		{"four-way dinner", 120000, 4, 30000},
		{"no split", 120000, 1, 120000},
		{"zero count treated as one", 120000, 0, 120000},
		{"negative count treated as one", 120000, -3, 120000},
		{"uneven split rounds half-up", 1000, 3, 333},
		{"cent remainder rounds up", 100, 3, 33},
		{"zero amount", 0, 5, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PerPerson(Money{Cents: tc.amount}, tc.count)
			if got.Cents != tc.want {
				t.Errorf("PerPerson(%d, %d) = %d, want %d", tc.amount, tc.count, got.Cents, tc.want)
			}
		})
	}
}

// Recombining count × per-person must approximate the total within one cent
// per participant.
func TestPerPersonRecombines(t *testing.T) {
	amounts := []int64{1, 99, 100, 1000, 1234, 120000, 999999}
	for _, cents := range amounts {
		for n := 1; n <= 12; n++ {
			per := PerPerson(Money{Cents: cents}, n)
			diff := per.Cents*int64(n) - cents
			if diff < 0 {
				diff = -diff
			}
			if diff > int64(n) {
				t.Fatalf("amount %d split %d ways: recombined drift %d exceeds %d", cents, n, diff, n)
			}
		}
	}
}

func TestSplitCountFromNames(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"Alice,Bob,Charlie", 3},
		{"Alice, Bob , Charlie", 3},
		{"Alice", 1},
		{"Alice,,Bob", 2},
		{",,,", 1},
		{"", 1},
		{"   ", 1},
	}
	for _, tc := range cases {
		if got := SplitCountFromNames(tc.in); got != tc.want {
			t.Errorf("SplitCountFromNames(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSplitParticipants(t *testing.T) {
	got := SplitParticipants(" Alice , , Bob ")
	if len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
		t.Fatalf("SplitParticipants = %v, want [Alice Bob]", got)
	}
	if got := SplitParticipants("  "); got != nil {
		t.Fatalf("whitespace-only list should yield no participants, got %v", got)
	}
}
