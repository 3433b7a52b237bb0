package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
)

// readInput returns the command input: the file named by --file, the
// positional argument, or stdin when the argument is absent or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	file, _ := cmd.Flags().GetString("file")
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return b, nil
	case len(args) == 1 && args[0] != "-":
		return []byte(args[0]), nil
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	}
}

// parseHex decodes hex text. Whitespace anywhere and a leading "0x" are
// ignored, so wrapped hex dumps can be pasted as is.
func parseHex(b []byte) ([]byte, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(b))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, fmt.Errorf("no hex input")
	}
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return out, nil
}

func writeLine(cmd *cobra.Command, b []byte) error {
	w := cmd.OutOrStdout()
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
