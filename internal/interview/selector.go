package interview

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// ClosingQuestion is asked once the scripted questions are exhausted.
const ClosingQuestion = "Thank you for your responses. Do you have any questions for me about the role or company?"

// followUpMinLength is the answer length a follow-up needs to be considered.
const followUpMinLength = 50

// Rand is the random source the selector draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Question is the next prompt for the candidate.
type Question struct {
	Text       string `json:"question"`
	IsFollowUp bool   `json:"is_follow_up"`
}

// FirstQuestion returns the opening scripted question for role.
func FirstQuestion(role Role) (string, error) {
	cfg, ok := table[role]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return cfg.Questions[0], nil
}

// NextQuestion picks the question after an answer.
//
// currentIndex counts the scripted questions asked so far; follow-ups do not
// advance it. When the coin flip lands above 0.5 and the previous answer is
// longer than 50 characters, the first follow-up keyword found in the answer
// (in script order) yields a randomly chosen follow-up. Otherwise the
// scripted question at currentIndex is returned, or ClosingQuestion once the
// script is exhausted.
func NextQuestion(rng Rand, role Role, currentIndex int, previousResponse string) (Question, error) {
	cfg, ok := table[role]
	if !ok {
		return Question{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if currentIndex < 0 {
		return Question{}, fmt.Errorf("%w: %d", ErrInvalidIndex, currentIndex)
	}

	shouldFollowUp := rng.Float64() > 0.5 && textLength(previousResponse) > followUpMinLength

	if shouldFollowUp && currentIndex > 0 {
		answer := strings.ToLower(previousResponse)
		for _, tr := range cfg.FollowUps {
			if strings.Contains(answer, tr.Keyword) {
				return Question{Text: tr.Questions[rng.IntN(len(tr.Questions))], IsFollowUp: true}, nil
			}
		}
	}

	if currentIndex < len(cfg.Questions) {
		return Question{Text: cfg.Questions[currentIndex]}, nil
	}
	return Question{Text: ClosingQuestion}, nil
}

// textLength measures s in UTF-16 code units, which is how answer lengths
// have always been counted for scoring.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
