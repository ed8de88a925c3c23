// Package planner packs study topics into day-by-day chunks against a fixed
// daily time quota. It is pure: no I/O, no shared state, safe for concurrent
// use.
package planner

import (
	"math"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty lowercases and trims the input. An empty value becomes
// medium; anything else is kept as-is so unknown tiers surface in the plan
// while still scheduling like medium.
func ParseDifficulty(input string) Difficulty {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DifficultyMedium
	}
	return Difficulty(normalized)
}

type Topic struct {
	Course     string
	Name       string
	Difficulty Difficulty
}

// Chunk is one scheduled unit of study time. BreakAfter is the recommended
// rest in minutes, nil when the chunk is too short to warrant one.
type Chunk struct {
	Day        int
	Course     string
	Topic      string
	Difficulty Difficulty
	Minutes    int
	Hint       string
	BreakAfter *int
}

const (
	// DefaultDailyHours is used when the caller's budget is missing,
	// unparsable, or not positive.
	DefaultDailyHours = 2.0

	minBaseMinutes  = 20
	minTopicMinutes = 15
)

// Pack allocates topics into scheduled chunks, in input order, sharing one
// pair of day/used-today counters across all topics. Empty input yields an
// empty plan.
//
// Each topic currently emits exactly one chunk, capped at the remaining
// quota for the current day. The carve loop keeps its day-rollover
// structure, but it exits unconditionally after the first carve, so a long
// topic is never split across days. Whether that cap or a genuine
// multi-day split is wanted is still an open product question; until it is
// answered the single-chunk behavior is kept and pinned by tests.
func Pack(topics []Topic, dailyHours float64) []Chunk {
	if len(topics) == 0 {
		return []Chunk{}
	}

	hours := dailyHours
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = DefaultDailyHours
	}
	dailyQuota := int(hours * 60)

	base := dailyQuota / len(topics)
	if base < minBaseMinutes {
		base = minBaseMinutes
	}

	chunks := make([]Chunk, 0, len(topics))
	day := 1
	usedToday := 0

	for _, topic := range topics {
		suggested := base
		switch topic.Difficulty {
		case DifficultyEasy:
			suggested -= 5
		case DifficultyHard:
			suggested += 10
		}
		if suggested < minTopicMinutes {
			suggested = minTopicMinutes
		}

		remaining := suggested
		for remaining > 0 {
			if usedToday >= dailyQuota {
				day++
				usedToday = 0
			}

			size := remaining
			if left := dailyQuota - usedToday; size > left {
				size = left
			}
			remaining -= size
			usedToday += size

			chunks = append(chunks, Chunk{
				Day:        day,
				Course:     topic.Course,
				Topic:      topic.Name,
				Difficulty: topic.Difficulty,
				Minutes:    size,
				Hint:       Hint(topic.Difficulty),
				BreakAfter: breakAfter(size),
			})

			break
		}
	}

	return chunks
}

func breakAfter(minutes int) *int {
	switch {
	case minutes >= 60:
		rest := 10
		return &rest
	case minutes >= 30:
		rest := 5
		return &rest
	default:
		return nil
	}
}

// Hint returns the fixed study tip for a difficulty tier.
func Hint(d Difficulty) string {
	switch d {
	case DifficultyEasy:
		return "Quick win 🎯 - Build confidence with this topic"
	case DifficultyMedium:
		return "Steady pace 🚀 - Focus on core concepts"
	case DifficultyHard:
		return "Deep focus 🔥 - Break into smaller parts"
	default:
		return "Stay focused! ⭐"
	}
}
