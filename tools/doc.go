// Package tools defines the lookup tool contract and its implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, limits, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Lookup tools: search (DuckDuckGo), arxiv, wikipedia.
//   - Lookup(): exact-name resolution over the closed tool set.
//
// Contract: query text in, excerpt text out. Zero results yield a sentinel string,
// not an error. Backend failures are returned as ToolError so the agent loop can
// feed them back to the model as an observation.
package tools
