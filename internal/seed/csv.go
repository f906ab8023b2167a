package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"english-quiz-service/internal/domain"
)

// ParseQuestionsCSV reads rows of level,question,option1..optionN,correct where
// correct is the 1-based number of the right option. Blank option cells are skipped.
func ParseQuestionsCSV(r io.Reader) ([]domain.Question, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	var optionCols []int
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		cols[name] = i
		if strings.HasPrefix(name, "option") {
			optionCols = append(optionCols, i)
		}
	}
	for _, required := range []string{"level", "question", "correct"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}
	if len(optionCols) < 2 {
		return nil, errors.New("need at least two option columns")
	}

	var out []domain.Question
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		q := domain.Question{
			Level: domain.Level(strings.TrimSpace(row[cols["level"]])),
			Text:  strings.TrimSpace(row[cols["question"]]),
		}
		for _, c := range optionCols {
			if opt := strings.TrimSpace(row[c]); opt != "" {
				q.Options = append(q.Options, opt)
			}
		}
		correct, err := strconv.Atoi(strings.TrimSpace(row[cols["correct"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: correct: %w", line, err)
		}
		q.CorrectIndex = correct - 1
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, q)
	}
	return out, nil
}
