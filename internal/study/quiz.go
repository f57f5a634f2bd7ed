package study

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultExplanation fills in questions the model gave no explanation for.
const DefaultExplanation = "No explanation provided."

var (
	questionLine = regexp.MustCompile(`^\**\s*(?:Q(?:uestion)?\s*)?(\d+)[.):]\**\s*(.*)$`)
	optionLine   = regexp.MustCompile(`^([A-D])[.)]\s*(.+)$`)
	correctLine  = regexp.MustCompile(`(?i)^\**\s*correct answer\s*:?\**\s*:?\s*\(?([A-D])\b`)
	explainLine  = regexp.MustCompile(`(?i)^\**\s*explanation\s*:?\**\s*:?\s*(.*)$`)
)

// Question is one multiple-choice question.
type Question struct {
	Number  int       `json:"number"`
	Text    string    `json:"question"`
	Options [4]string `json:"options"`
	// Answer is the letter of the correct option, A to D.
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// ParseQuiz parses numbered questions, each followed by options A. to D., a
// "Correct answer: X" line and an optional "Explanation:". Text before the first
// question is ignored. Any malformed question fails the whole parse.
func ParseQuiz(raw string) ([]Question, error) {
	var questions []Question
	var cur *question

	flush := func() error {
		if cur == nil {
			return nil
		}
		q, err := cur.build()
		if err != nil {
			return err
		}
		questions = append(questions, q)
		return nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := questionLine.FindStringSubmatch(line); m != nil {
			if err := flush(); err != nil {
				return nil, err
			}
			number, _ := strconv.Atoi(m[1])
			cur = &question{number: number, text: strings.TrimSpace(m[2])}
			continue
		}
		if cur == nil {
			continue
		}

		switch {
		case optionLine.MatchString(line) && cur.answer == "":
			m := optionLine.FindStringSubmatch(line)
			cur.options[m[1][0]-'A'] = strings.TrimSpace(m[2])
		case correctLine.MatchString(line):
			cur.answer = strings.ToUpper(correctLine.FindStringSubmatch(line)[1])
		case explainLine.MatchString(line):
			cur.explanation = strings.TrimSpace(explainLine.FindStringSubmatch(line)[1])
			cur.inExplanation = true
		case cur.inExplanation:
			cur.explanation = strings.TrimSpace(cur.explanation + " " + line)
		case cur.answer == "" && cur.options[0] == "":
			cur.text = strings.TrimSpace(cur.text + " " + line)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions found")
	}
	return questions, nil
}

type question struct {
	number        int
	text          string
	options       [4]string
	answer        string
	explanation   string
	inExplanation bool
}

func (q *question) build() (Question, error) {
	if q.text == "" {
		return Question{}, fmt.Errorf("question %d has no text", q.number)
	}
	for i, opt := range q.options {
		if opt == "" {
			return Question{}, fmt.Errorf("question %d is missing option %c", q.number, 'A'+i)
		}
	}
	if q.answer == "" {
		return Question{}, fmt.Errorf("question %d has no correct answer", q.number)
	}
	explanation := q.explanation
	if explanation == "" {
		explanation = DefaultExplanation
	}
	return Question{
		Number:      q.number,
		Text:        q.text,
		Options:     q.options,
		Answer:      q.answer,
		Explanation: explanation,
	}, nil
}
