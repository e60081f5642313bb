// Package mcpclient connects to capability providers that speak the Model Context Protocol.
//
// A Descriptor describes how to launch one provider process: the command, its arguments, the
// working directory and environment overrides. Connecting spawns the process, performs the
// protocol handshake and returns a tool.Connection that can discover and invoke capabilities.
//
//	conn, err := mcpclient.Descriptor{
//	    Name:    "math",
//	    Command: "go",
//	    Args:    []string{"run", "./examples/mathserver"},
//	}.Connect(ctx)
//
// InProcess wraps an mcp-go server living in the same process, which is what the tests and the
// embedded example servers use.
package mcpclient
