package runner_test

import (
	"errors"
	"testing"

	"github.com/petasbytes/search-agent/internal/runner"
)

func TestParseOutput_Action(t *testing.T) {
	cases := []struct {
		name, text, tool, input string
	}{
		{"plain", "Thought: look it up\nAction: search\nAction Input: machine learning", "search", "machine learning"},
		{"quoted", "Action: arxiv\nAction Input: \"attention is all you need\"", "arxiv", "attention is all you need"},
		{"numbered", "Action 1: wikipedia\nAction 1 Input: Go (programming language)", "wikipedia", "Go (programming language)"},
		{"json", "Action: search\nAction Input: {\"query\": \"golang\"}", "search", `{"query": "golang"}`},
		{"past stop", "Action: search\nAction Input: golang\nObservation: invented result", "search", "golang"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := runner.ParseOutput(tc.text)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if d.Final || d.Tool != tc.tool || d.Input != tc.input {
				t.Fatalf("got %+v", d)
			}
			if d.Log != tc.text {
				t.Fatalf("log should be the raw text, got %q", d.Log)
			}
		})
	}
}

func TestParseOutput_FinalAnswer(t *testing.T) {
	d, err := runner.ParseOutput("Thought: I now know the final answer\nFinal Answer:  Paris is the capital.\n")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !d.Final || d.Answer != "Paris is the capital." {
		t.Fatalf("got %+v", d)
	}
}

func TestParseOutput_Errors(t *testing.T) {
	cases := []struct {
		name, text, observation string
	}{
		{"no action", "I am not sure what to do.", "Invalid Format: Missing 'Action:' after 'Thought:'"},
		{"no input", "Thought: x\nAction: search", "Invalid Format: Missing 'Action Input:' after 'Action:'"},
		{"both", "Action: search\nAction Input: x\nFinal Answer: y", "Invalid or incomplete response"},
		{"empty", "", "Invalid Format: Missing 'Action:' after 'Thought:'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runner.ParseOutput(tc.text)
			var pe *runner.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.Observation != tc.observation {
				t.Fatalf("observation: got %q want %q", pe.Observation, tc.observation)
			}
			if pe.Output != tc.text {
				t.Fatalf("output not preserved: %q", pe.Output)
			}
		})
	}
}
