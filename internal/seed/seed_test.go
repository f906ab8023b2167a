package seed

import (
	"strings"
	"testing"

	"english-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleQuestionsAreValid(t *testing.T) {
	qs := Questions()
	require.Len(t, qs, 30)

	seen := make(map[string]bool)
	perLevel := make(map[domain.Level]int)
	for _, q := range qs {
		require.NoError(t, q.Validate(), q.ID)
		assert.False(t, seen[q.ID], "duplicate id %s", q.ID)
		seen[q.ID] = true
		perLevel[q.Level]++
	}
	for _, lvl := range sampleOrder {
		assert.Equal(t, 6, perLevel[lvl], lvl)
	}
}

func TestParseQuestionsCSV(t *testing.T) {
	input := `level,question,option1,option2,option3,option4,correct
A1,What color is grass?,Red,Green,Blue,,2
B2,"She succeeded ___ passing the exam.",in,on,at,for,1
`
	qs, err := ParseQuestionsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, domain.Level("A1"), qs[0].Level)
	assert.Equal(t, []string{"Red", "Green", "Blue"}, qs[0].Options)
	assert.Equal(t, 1, qs[0].CorrectIndex)
	assert.Equal(t, "She succeeded ___ passing the exam.", qs[1].Text)
	assert.Equal(t, 0, qs[1].CorrectIndex)
}

func TestParseQuestionsCSVRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"missing column":       "level,question,option1,option2\nA1,q,a,b\n",
		"correct not a number": "level,question,option1,option2,correct\nA1,q,a,b,x\n",
		"correct out of range": "level,question,option1,option2,correct\nA1,q,a,b,3\n",
		"zero correct":         "level,question,option1,option2,correct\nA1,q,a,b,0\n",
	}
	for name, input := range cases {
		_, err := ParseQuestionsCSV(strings.NewReader(input))
		assert.Error(t, err, name)
	}

	qs, err := ParseQuestionsCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, qs)
}
