package mcp

import "encoding/base64"

// base64Encode renders binary resource contents the way resources/read
// requires: standard base64, no line wrapping.
func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
