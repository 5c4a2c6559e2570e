package runner

import (
	"fmt"
	"regexp"
	"strings"
)

const finalAnswerMarker = "Final Answer:"

const (
	msgMissingAction      = "Invalid Format: Missing 'Action:' after 'Thought:'"
	msgMissingActionInput = "Invalid Format: Missing 'Action Input:' after 'Action:'"
	msgInvalidResponse    = "Invalid or incomplete response"
)

var (
	actionRE      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyRE  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputRE = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

// Decision is a successfully parsed model output: a tool call, or a final
// answer when Final is true.
type Decision struct {
	Final  bool
	Answer string
	Tool   string
	Input  string
	Log    string // model text that produced the decision
}

// ParseError reports model output that is neither a well-formed action nor a
// final answer. Observation is what gets fed back to the model.
type ParseError struct {
	Reason      string
	Observation string
	Output      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse model output: %s", e.Reason)
}

// ParseOutput classifies one model response.
func ParseOutput(text string) (Decision, error) {
	hasAnswer := strings.Contains(text, finalAnswerMarker)
	if m := actionRE.FindStringSubmatch(text); m != nil {
		if hasAnswer {
			return Decision{}, &ParseError{
				Reason:      "both a final answer and a parse-able action were found",
				Observation: msgInvalidResponse,
				Output:      text,
			}
		}
		input := m[2]
		// Models that ignore the stop sequence keep writing past the action.
		if i := strings.Index(input, "\nObservation"); i >= 0 {
			input = input[:i]
		}
		input = strings.Trim(strings.TrimSpace(input), "\"")
		return Decision{
			Tool:  strings.TrimSpace(m[1]),
			Input: input,
			Log:   text,
		}, nil
	}
	if hasAnswer {
		parts := strings.Split(text, finalAnswerMarker)
		return Decision{
			Final:  true,
			Answer: strings.TrimSpace(parts[len(parts)-1]),
			Log:    text,
		}, nil
	}
	switch {
	case !actionOnlyRE.MatchString(text):
		return Decision{}, &ParseError{Reason: msgMissingAction, Observation: msgMissingAction, Output: text}
	case !actionInputRE.MatchString(text):
		return Decision{}, &ParseError{Reason: msgMissingActionInput, Observation: msgMissingActionInput, Output: text}
	default:
		return Decision{}, &ParseError{Reason: "unrecognized format", Observation: msgInvalidResponse, Output: text}
	}
}
