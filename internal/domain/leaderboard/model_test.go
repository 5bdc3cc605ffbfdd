package leaderboard

import "testing"

func TestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []Entry
		want []Entry
	}{
		{
			name: "tie at the top skips the next rank",
			in:   []Entry{{EntityID: "C", Points: 30}, {EntityID: "B", Points: 50}, {EntityID: "A", Points: 50}},
			want: []Entry{{EntityID: "A", Points: 50, Rank: 1}, {EntityID: "B", Points: 50, Rank: 1}, {EntityID: "C", Points: 30, Rank: 3}},
		},
		{
			name: "competition ranking 1 2 2 4",
			in: []Entry{
				{EntityID: "d", Points: 10},
				{EntityID: "c", Points: 20},
				{EntityID: "b", Points: 20},
				{EntityID: "a", Points: 40},
			},
			want: []Entry{
				{EntityID: "a", Points: 40, Rank: 1},
				{EntityID: "b", Points: 20, Rank: 2},
				{EntityID: "c", Points: 20, Rank: 2},
				{EntityID: "d", Points: 10, Rank: 4},
			},
		},
		{
			name: "empty",
			in:   nil,
			want: []Entry{},
		},
	}

	for _, tc := range tests {
		got := Rank(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %d entries, got %d", tc.name, len(tc.want), len(got))
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: row %d got=%+v want=%+v", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []Entry{{EntityID: "b", Points: 1}, {EntityID: "a", Points: 2}}
	_ = Rank(in)
	if in[0].EntityID != "b" || in[0].Rank != 0 {
		t.Fatalf("input mutated: %+v", in)
	}
}
