// Package common provides shared helpers for the MCP tool packages:
// argument extraction and the instrumentation wrapper applied to every
// tool handler.
package common
