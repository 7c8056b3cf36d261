package commands

import (
	"encoding/json"
	"io"
)

// printJSON writes v indented, as every listing command does.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
