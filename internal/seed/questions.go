package seed

import (
	"fmt"

	"english-quiz-service/internal/domain"
)

type sample struct {
	text    string
	options []string
	correct int
}

var samples = map[domain.Level][]sample{
	"A1": {
		{"What is your name?", []string{"My name is John", "I am fine", "Thank you", "Goodbye"}, 0},
		{"How are you?", []string{"Hello", "My name is Anna", "I am fine", "Thank you"}, 2},
		{"What color is the sky?", []string{"Red", "Blue", "Green", "Yellow"}, 1},
		{"How many fingers do you have?", []string{"5", "15", "20", "10"}, 3},
		{"What do you eat for breakfast?", []string{"Bread", "Shoes", "Car", "Book"}, 0},
		{"Where do you live?", []string{"On the moon", "In a book", "In a house", "With a pen"}, 2},
	},
	"A2": {
		{"What ___ you doing?", []string{"is", "are", "am", "be"}, 1},
		{"I ___ to school every day.", []string{"go", "goes", "going", "went"}, 0},
		{"He ___ like pizza.", []string{"don't", "isn't", "doesn't", "aren't"}, 2},
		{"We ___ to the park last weekend.", []string{"go", "went", "goes", "going"}, 1},
		{"___ you speak English?", []string{"Does", "Doing", "Did", "Do"}, 3},
		{"I ___ my homework now.", []string{"am doing", "do", "does", "did"}, 0},
	},
	"B1": {
		{"If I ___ rich, I would travel the world.", []string{"am", "were", "is", "be"}, 1},
		{"She has been ___ for two hours.", []string{"wait", "waits", "waiting", "waited"}, 2},
		{"I ___ in this city for 5 years.", []string{"live", "have lived", "lives", "am living"}, 1},
		{"They ___ when I called them.", []string{"were sleeping", "slept", "sleep", "sleeping"}, 0},
		{"I regret ___ that decision.", []string{"make", "makes", "made", "making"}, 3},
		{"She is used to ___ up early.", []string{"get", "getting", "gets", "got"}, 1},
	},
	"B2": {
		{"Had I known about the party, I ___ there.", []string{"would go", "would have gone", "went", "go"}, 1},
		{"She accused him of ___ her.", []string{"lie", "lies", "lying", "lied"}, 2},
		{"The manager demanded that the report ___ immediately.", []string{"be submitted", "is submitted", "was submitted", "submit"}, 0},
		{"I would rather you ___ here now.", []string{"are not", "were not", "not be", "not are"}, 1},
		{"He prides himself ___ being honest.", []string{"in", "at", "on", "for"}, 2},
		{"I am looking forward ___ you soon.", []string{"to see", "seeing", "see", "to seeing"}, 3},
	},
	"C1": {
		{"Notwithstanding the difficulties, the project ___ successfully.", []string{"proceeded", "proceeds", "proceeding", "proceed"}, 0},
		{"The politician's rhetoric was replete ___ cliches.", []string{"in", "with", "at", "on"}, 1},
		{"The CEO's decision was predicated ___ inaccurate data.", []string{"in", "at", "on", "with"}, 2},
		{"She exhibited remarkable ___ in the face of adversity.", []string{"fortitude", "fortitudes", "fortify", "fortified"}, 0},
		{"The scientist's hypothesis was ___ by empirical evidence.", []string{"corroborate", "corroborating", "corroborates", "corroborated"}, 3},
		{"His argument was so specious that it ___ no scrutiny.", []string{"withstands", "withstood", "withstanding", "withstand"}, 1},
	},
}

var sampleOrder = []domain.Level{"A1", "A2", "B1", "B2", "C1"}

// Questions returns the built-in CEFR sample bank.
func Questions() []domain.Question {
	var out []domain.Question
	for _, lvl := range sampleOrder {
		for i, s := range samples[lvl] {
			out = append(out, domain.Question{
				ID:           fmt.Sprintf("%s-%02d", lvl, i+1),
				Level:        lvl,
				Text:         s.text,
				Options:      append([]string(nil), s.options...),
				CorrectIndex: s.correct,
			})
		}
	}
	return out
}
