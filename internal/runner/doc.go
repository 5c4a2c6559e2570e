// Package runner drives the bounded ReAct agent loop.
//
// Each step is exactly one model call. The model's text is parsed into either an
// action (a tool name plus its input) or a final answer. Actions are executed
// sequentially and their results are fed back as observations; unparseable
// output is fed back as a corrective observation and consumes a step.
//
// Flow:
//
//	Question -> Thought/Action/Action Input -> Observation -> ... -> Final Answer
//
// Invariants:
//   - at most MaxSteps model calls per Run;
//   - tool and parse failures become observations, never errors;
//   - provider failures abort the run and are returned to the caller.
package runner
