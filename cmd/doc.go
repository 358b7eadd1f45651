// Package cmd implements the command-line interface for calendar-mcp.
//
// Commands:
//   - serve: start the MCP server over stdio or streamable HTTP
//   - parse: parse a natural-language query and print the result as JSON
//   - auth: run the Google OAuth flow and save the token
//   - version: print version information
//   - generate-docs: generate markdown documentation for all MCP tools
package cmd
