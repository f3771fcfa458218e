// Package practice runs an interview in the terminal.
package practice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/MikeSquared-Agency/rehearse/internal/interview"
	"github.com/MikeSquared-Agency/rehearse/internal/session"
)

// Prompter asks the user for input.
type Prompter interface {
	SelectRole(roles []interview.Role) (interview.Role, error)
	Answer(question string) (string, error)
}

// TerminalPrompter prompts on the controlling terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) SelectRole(roles []interview.Role) (interview.Role, error) {
	items := make([]string, len(roles))
	for i, role := range roles {
		cfg, err := interview.Config(role)
		if err != nil {
			return "", err
		}
		items[i] = fmt.Sprintf("%s - %s", cfg.Title, cfg.Description)
	}

	prompt := promptui.Select{
		Label: "Choose a role to practice",
		Items: items,
		Size:  len(items),
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return roles[i], nil
}

func (TerminalPrompter) Answer(question string) (string, error) {
	prompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("answer cannot be empty")
			}
			return nil
		},
	}
	return prompt.Run()
}

// Run drives one interview for userID through p and prints the feedback to
// out. An empty role asks the user to pick one.
func Run(ctx context.Context, svc *session.Service, userID string, role interview.Role, p Prompter, out io.Writer) error {
	if role == "" {
		picked, err := p.SelectRole(interview.Roles)
		if err != nil {
			return fmt.Errorf("select role: %w", err)
		}
		role = picked
	}

	sess, err := svc.Start(ctx, userID, role)
	if err != nil {
		return err
	}
	cfg, err := interview.Config(role)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s interview (%d answers)\n\n", cfg.Title, svc.RequiredExchanges())

	question := interview.Question{Text: sess.CurrentQuestion}
	for n := 1; ; n++ {
		label := fmt.Sprintf("Q%d", n)
		if question.IsFollowUp {
			label += " (follow-up)"
		}
		fmt.Fprintf(out, "%s: %s\n", label, question.Text)

		answer, err := p.Answer(question.Text)
		if err != nil {
			return fmt.Errorf("read answer: %w", err)
		}

		res, err := svc.Respond(ctx, userID, sess.ID, answer)
		if errors.Is(err, session.ErrEmptyResponse) {
			n--
			continue
		}
		if err != nil {
			return err
		}
		if res.Completed {
			break
		}
		question = *res.Next
	}

	fb, err := svc.Feedback(ctx, userID, sess.ID)
	if err != nil {
		return err
	}
	PrintFeedback(out, fb.Feedback)
	return nil
}

// PrintFeedback writes a scored interview in a readable layout.
func PrintFeedback(out io.Writer, fb interview.Feedback) {
	fmt.Fprintf(out, "\nOverall: %d/10  Communication: %d/10  Technical: %d/10\n\n",
		fb.OverallScore, fb.CommunicationScore, fb.TechnicalScore)

	fmt.Fprintln(out, "Strengths:")
	for _, s := range strings.Split(fb.Strengths, "; ") {
		fmt.Fprintf(out, "  + %s\n", s)
	}
	fmt.Fprintln(out, "Areas to improve:")
	for _, s := range strings.Split(fb.Improvements, "; ") {
		fmt.Fprintf(out, "  - %s\n", s)
	}
	fmt.Fprintf(out, "\n%s\n", fb.DetailedFeedback)
}
