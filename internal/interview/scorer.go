package interview

import (
	"fmt"
	"math"
	"strings"
)

// Exchange is one answered question.
type Exchange struct {
	Sequence int    `json:"sequence"`
	Question string `json:"question"`
	Response string `json:"response"`
}

// Feedback is the scored result of a completed interview.
type Feedback struct {
	OverallScore       int    `json:"overall_score"`
	CommunicationScore int    `json:"communication_score"`
	TechnicalScore     int    `json:"technical_score"`
	Strengths          string `json:"strengths"`
	Improvements       string `json:"improvements"`
	DetailedFeedback   string `json:"detailed_feedback"`
}

var exampleMarkers = []string{"example", "time when", "situation"}

const detailedFeedbackTemplate = `Overall Performance: %d/10

Your interview showed %s potential. %s

%s

For %s interviews, focus on demonstrating both your technical knowledge and your communication skills. %s

Keep practicing and you'll continue to improve!`

// Score grades a completed interview.
//
// Communication rises with average answer length: floor(avg/50)+5, kept
// within 5..10. Technical is 8 when any answer cites an example, 6 otherwise.
// Overall is their mean rounded half up.
func Score(role Role, exchanges []Exchange) (Feedback, error) {
	cfg, ok := table[role]
	if !ok {
		return Feedback{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if len(exchanges) == 0 {
		return Feedback{}, ErrNoExchanges
	}

	total := 0
	for _, e := range exchanges {
		total += textLength(e.Response)
	}
	avgLength := float64(total) / float64(len(exchanges))

	communication := clamp(int(math.Floor(avgLength/50))+5, 5, 10)
	hasExamples := usesExamples(exchanges)
	technical := 6
	if hasExamples {
		technical = 8
	}
	overall := roundHalfUp(float64(communication+technical) / 2)

	var strengths []string
	if avgLength > 100 {
		strengths = append(strengths, "Provided detailed, thoughtful responses")
	}
	if hasExamples {
		strengths = append(strengths, "Used concrete examples to illustrate points")
	}
	if asksQuestions(exchanges) {
		strengths = append(strengths, "Asked engaging questions")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Completed the interview and showed interest")
	}

	var improvements []string
	if avgLength < 80 {
		improvements = append(improvements, "Provide more detailed responses with specific examples")
	}
	if !hasExamples {
		improvements = append(improvements, "Use the STAR method (Situation, Task, Action, Result) for behavioral questions")
	}
	improvements = append(improvements, "Practice articulating your thoughts more clearly")
	if role == RoleEngineer {
		improvements = append(improvements, "Be ready to discuss technical trade-offs and decisions")
	}

	return Feedback{
		OverallScore:       overall,
		CommunicationScore: communication,
		TechnicalScore:     technical,
		Strengths:          strings.Join(strengths, "; "),
		Improvements:       strings.Join(improvements, "; "),
		DetailedFeedback:   detailedFeedback(role, cfg.Title, overall, avgLength, hasExamples),
	}, nil
}

func detailedFeedback(role Role, title string, overall int, avgLength float64, hasExamples bool) string {
	tier := "good"
	if overall >= 7 {
		tier = "strong"
	}

	depth := "Consider expanding your responses with more details and examples."
	if avgLength > 100 {
		depth = "Your responses were well-developed and showed depth of thought."
	}

	examples := "Try to include more specific examples from your past experiences."
	if hasExamples {
		examples = "You did well providing concrete examples from your experience."
	}

	var closing string
	switch role {
	case RoleSales:
		closing = "Show your passion for building relationships and closing deals."
	case RoleEngineer:
		closing = "Be ready to discuss technical challenges and your problem-solving approach."
	default:
		closing = "Emphasize your customer-first mindset and problem-solving abilities."
	}

	return strings.TrimSpace(fmt.Sprintf(detailedFeedbackTemplate, overall, tier, depth, examples, title, closing))
}

func usesExamples(exchanges []Exchange) bool {
	for _, e := range exchanges {
		answer := strings.ToLower(e.Response)
		for _, m := range exampleMarkers {
			if strings.Contains(answer, m) {
				return true
			}
		}
	}
	return false
}

func asksQuestions(exchanges []Exchange) bool {
	for _, e := range exchanges {
		if strings.Contains(e.Response, "?") {
			return true
		}
	}
	return false
}

// roundHalfUp rounds x to the nearest integer, .5 going up (6.5 -> 7, not 6).
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
