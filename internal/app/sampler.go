package app

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"english-quiz-service/internal/domain"
)

// shuffler serializes access to a *rand.Rand, which is not safe for concurrent use.
type shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newShuffler(src rand.Source) *shuffler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &shuffler{rnd: rand.New(src)}
}

func (s *shuffler) shuffle(qs []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

// sampleLevel shuffles a single level's questions and keeps at most count (0 keeps all).
func (s *shuffler) sampleLevel(questions []domain.Question, count int) []domain.Question {
	out := append([]domain.Question(nil), questions...)
	s.shuffle(out)
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out
}

// sampleMixed draws count questions spread over levels in proportion to how many
// each level holds. Leftover slots go to the largest fractional shares, ties broken
// by order. count <= 0 or count >= len(questions) returns the whole bank shuffled.
func (s *shuffler) sampleMixed(questions []domain.Question, count int, order []domain.Level) []domain.Question {
	if count <= 0 || count >= len(questions) {
		return s.sampleLevel(questions, 0)
	}

	groups := groupByLevel(questions, order)
	total := len(questions)

	type share struct {
		idx   int
		quota int
		rem   int
	}
	shares := make([]share, len(groups))
	assigned := 0
	for i, g := range groups {
		n := len(g.questions)
		shares[i] = share{idx: i, quota: count * n / total, rem: count * n % total}
		assigned += shares[i].quota
	}

	byRemainder := append([]share(nil), shares...)
	sort.SliceStable(byRemainder, func(i, j int) bool { return byRemainder[i].rem > byRemainder[j].rem })
	for i := 0; i < count-assigned; i++ {
		shares[byRemainder[i].idx].quota++
	}

	out := make([]domain.Question, 0, count)
	for i, g := range groups {
		out = append(out, s.sampleLevel(g.questions, shares[i].quota)...)
	}
	s.shuffle(out)
	return out
}

type levelGroup struct {
	level     domain.Level
	questions []domain.Question
}

// groupByLevel buckets questions following order; levels missing from order come last, sorted by name.
func groupByLevel(questions []domain.Question, order []domain.Level) []levelGroup {
	buckets := make(map[domain.Level][]domain.Question)
	for _, q := range questions {
		buckets[q.Level] = append(buckets[q.Level], q)
	}

	groups := make([]levelGroup, 0, len(buckets))
	seen := make(map[domain.Level]bool, len(order))
	for _, lvl := range order {
		if qs, ok := buckets[lvl]; ok && !seen[lvl] {
			groups = append(groups, levelGroup{level: lvl, questions: qs})
			seen[lvl] = true
		}
	}

	var extra []domain.Level
	for lvl := range buckets {
		if !seen[lvl] {
			extra = append(extra, lvl)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, lvl := range extra {
		groups = append(groups, levelGroup{level: lvl, questions: buckets[lvl]})
	}
	return groups
}
