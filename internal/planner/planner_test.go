package planner

import "testing"

func TestPackSingleEasyTopic(t *testing.T) {
	chunks := Pack([]Topic{{Course: "Math", Name: "Algebra", Difficulty: DifficultyEasy}}, 2)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Day != 1 {
		t.Fatalf("expected day 1, got %d", c.Day)
	}
	// quota 120, single topic: base 120, easy -5 = 115
	if c.Minutes != 115 {
		t.Fatalf("expected 115 minutes, got %d", c.Minutes)
	}
	if c.BreakAfter == nil || *c.BreakAfter != 10 {
		t.Fatalf("expected break_after 10, got %v", c.BreakAfter)
	}
	if c.Course != "Math" || c.Topic != "Algebra" {
		t.Fatalf("unexpected chunk identity: %+v", c)
	}
}

func TestPackQuotaCapsSecondTopic(t *testing.T) {
	topics := []Topic{
		{Course: "Phys", Name: "Motion", Difficulty: DifficultyHard},
		{Course: "Phys", Name: "Energy", Difficulty: DifficultyHard},
	}
	chunks := Pack(topics, 1)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	// quota 60, base 30, hard +10 = 40 each; second is capped at the 20
	// minutes left in day 1.
	if chunks[0].Day != 1 || chunks[0].Minutes != 40 {
		t.Fatalf("chunk 0: expected day 1 / 40 min, got day %d / %d min", chunks[0].Day, chunks[0].Minutes)
	}
	if chunks[0].BreakAfter == nil || *chunks[0].BreakAfter != 10 {
		t.Fatalf("chunk 0: expected break_after 10, got %v", chunks[0].BreakAfter)
	}
	if chunks[1].Day != 1 || chunks[1].Minutes != 20 {
		t.Fatalf("chunk 1: expected day 1 / 20 min, got day %d / %d min", chunks[1].Day, chunks[1].Minutes)
	}
	if chunks[1].BreakAfter != nil {
		t.Fatalf("chunk 1: expected no break, got %v", *chunks[1].BreakAfter)
	}
}

func TestPackBadHoursFallsBack(t *testing.T) {
	chunks := Pack([]Topic{{Course: "Math", Name: "Algebra", Difficulty: DifficultyMedium}}, 0)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	// falls back to 2.0 hours: quota 120, base 120
	if chunks[0].Minutes != 120 {
		t.Fatalf("expected 120 minutes from default budget, got %d", chunks[0].Minutes)
	}
}

func TestPackEmptyTopics(t *testing.T) {
	chunks := Pack(nil, 2)
	if len(chunks) != 0 {
		t.Fatalf("expected empty plan, got %d chunks", len(chunks))
	}
}

func TestPackOneChunkPerTopicInOrder(t *testing.T) {
	topics := []Topic{
		{Course: "A", Name: "t1", Difficulty: DifficultyHard},
		{Course: "B", Name: "t2", Difficulty: DifficultyEasy},
		{Course: "C", Name: "t3", Difficulty: DifficultyMedium},
		{Course: "D", Name: "t4", Difficulty: DifficultyHard},
		{Course: "E", Name: "t5", Difficulty: DifficultyEasy},
	}
	for _, hours := range []float64{0.25, 0.5, 1, 2, 3.5, 8} {
		chunks := Pack(topics, hours)
		if len(chunks) != len(topics) {
			t.Fatalf("hours=%v: expected %d chunks, got %d", hours, len(topics), len(chunks))
		}
		quota := int(hours * 60)
		prevDay := 1
		for i, c := range chunks {
			if c.Topic != topics[i].Name {
				t.Fatalf("hours=%v: chunk %d out of order: got %q want %q", hours, i, c.Topic, topics[i].Name)
			}
			if c.Day < prevDay {
				t.Fatalf("hours=%v: day went backwards at chunk %d: %d -> %d", hours, i, prevDay, c.Day)
			}
			prevDay = c.Day
			if c.Minutes < 1 || c.Minutes > quota {
				t.Fatalf("hours=%v: chunk %d minutes %d outside (0,%d]", hours, i, c.Minutes, quota)
			}
		}
		if chunks[0].Day != 1 {
			t.Fatalf("hours=%v: first chunk on day %d, want 1", hours, chunks[0].Day)
		}
	}
}

func TestPackBaseMinutesFloor(t *testing.T) {
	// 12 topics on a 1h budget: 60/12=5, floored to base 20. Easy topics get
	// 15, quota caps everything after the first two chunks of each day.
	topics := make([]Topic, 12)
	for i := range topics {
		topics[i] = Topic{Course: "C", Name: "t", Difficulty: DifficultyMedium}
	}
	chunks := Pack(topics, 1)
	if len(chunks) != 12 {
		t.Fatalf("expected 12 chunks, got %d", len(chunks))
	}
	if chunks[0].Minutes != 20 {
		t.Fatalf("expected floored base of 20 minutes, got %d", chunks[0].Minutes)
	}
}

func TestPackUnknownDifficulty(t *testing.T) {
	chunks := Pack([]Topic{{Course: "X", Name: "y", Difficulty: Difficulty("brutal")}}, 2)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	// schedules like medium, keeps the tier it was given
	if chunks[0].Minutes != 120 {
		t.Fatalf("expected medium-sized chunk, got %d", chunks[0].Minutes)
	}
	if chunks[0].Difficulty != "brutal" {
		t.Fatalf("difficulty rewritten to %q", chunks[0].Difficulty)
	}
	if chunks[0].Hint != Hint("brutal") {
		t.Fatalf("unexpected hint %q", chunks[0].Hint)
	}
}

func TestBreakAfterThresholds(t *testing.T) {
	cases := []struct {
		name    string
		minutes int
		want    *int
	}{
		{name: "long_chunk", minutes: 60, want: intPtr(10)},
		{name: "above_long", minutes: 115, want: intPtr(10)},
		{name: "medium_chunk", minutes: 30, want: intPtr(5)},
		{name: "just_below_long", minutes: 59, want: intPtr(5)},
		{name: "short_chunk", minutes: 29, want: nil},
		{name: "tiny_chunk", minutes: 15, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := breakAfter(tc.minutes)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("breakAfter(%d)=%d, want nil", tc.minutes, *got)
			case tc.want != nil && got == nil:
				t.Fatalf("breakAfter(%d)=nil, want %d", tc.minutes, *tc.want)
			case tc.want != nil && *got != *tc.want:
				t.Fatalf("breakAfter(%d)=%d, want %d", tc.minutes, *got, *tc.want)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	cases := []struct {
		in   string
		want Difficulty
	}{
		{in: "easy", want: DifficultyEasy},
		{in: " HARD ", want: DifficultyHard},
		{in: "Medium", want: DifficultyMedium},
		{in: "", want: DifficultyMedium},
		{in: "  ", want: DifficultyMedium},
		{in: "weird", want: Difficulty("weird")},
	}
	for _, tc := range cases {
		if got := ParseDifficulty(tc.in); got != tc.want {
			t.Fatalf("ParseDifficulty(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func intPtr(v int) *int { return &v }
