package runner

import (
	"fmt"
	"strings"

	"github.com/petasbytes/search-agent/tools"
)

const (
	observationPrefix = "Observation: "
	thoughtPrefix     = "Thought:"
)

// stopSequences end a generation before the model invents its own observation.
var stopSequences = []string{"\nObservation:", "\n\tObservation:"}

const promptPrefix = `Answer the following questions as best you can. You have access to the following tools:`

const formatInstructions = `Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question`

// systemPrompt lists the tools and the reply format.
func systemPrompt(defs []tools.ToolDefinition) string {
	var b strings.Builder
	b.WriteString(promptPrefix)
	b.WriteString("\n\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "%s: %s Call signature: %s.\n", d.Name, d.Description, d.Signature())
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, formatInstructions, strings.Join(tools.Names(defs), ", "))
	return b.String()
}

// userPrompt renders the question followed by the scratchpad so far.
func userPrompt(question, scratchpad string) string {
	return "Begin!\n\nQuestion: " + question + "\n" + thoughtPrefix + scratchpad
}

// scratchEntry records one completed step for the next model call.
func scratchEntry(log, observation string) string {
	return log + "\n" + observationPrefix + observation + "\n" + thoughtPrefix + " "
}

// parseErrorObservation is the corrective text fed back after unparseable output.
func parseErrorObservation(pe *ParseError) string {
	return pe.Observation + ". Please respond in the expected format: either an Action with an Action Input, or a Final Answer."
}

// unknownToolObservation names the valid tools.
func unknownToolObservation(name string, defs []tools.ToolDefinition) string {
	return fmt.Sprintf("%s is not a valid tool, try one of [%s].", name, strings.Join(tools.Names(defs), ", "))
}

// omittedNote stands in for steps dropped from the scratchpad.
func omittedNote(n int) string {
	return fmt.Sprintf(" (%d earlier steps omitted)\n%s ", n, thoughtPrefix)
}
