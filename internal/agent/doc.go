// Package agent answers a query by driving a model through repeated
// completion steps, running the MCP tool calls each step asks for.
package agent
