// Package mcp implements a synchronous, single-threaded-per-session server for the Model
// Context Protocol (MCP), revision 2025-03-26, over JSON-RPC 2.0. It exposes tools,
// resources and prompts to an LLM host via a stdio transport or a stateless HTTP
// transport that promotes its response to Server-Sent Events when a tool emits
// notifications during its own execution.
//
// The client side of MCP is out of scope: this package only ever plays the server role.
package mcp
