// Package memory holds the conversation shown in the chat view.
//
// Storage model:
//   - Turns are kept in memory only, for the lifetime of one interactive session.
//   - The log is append-only: insertion order is display order is chronological order.
//   - Tool calls and observations are transient; only user prompts and final
//     assistant replies are recorded.
package memory
