package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsdfat8/diam2json/codec"
)

func newMessageCmd() *cobra.Command {
	messageCmd := &cobra.Command{
		Use:   "message [hex|-]",
		Short: "Decode a Diameter message to JSON",
		Long: `Decode a Diameter message to JSON.

The message is read as hex from the argument, from --file, or from stdin.
With --raw the input is binary and may hold several back-to-back messages;
each is printed on its own line.

Example:
  diam2json message 0100006c80000118...
  diam2json message --raw -f capture.bin --header`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var frames [][]byte
			if raw, _ := cmd.Flags().GetBool("raw"); raw {
				frames, err = codec.ReadMessages(bytes.NewReader(input))
				if err != nil {
					return fmt.Errorf("message %d: %w", len(frames)+1, err)
				}
			} else {
				b, err := parseHex(input)
				if err != nil {
					return err
				}
				frames = [][]byte{b}
			}

			dec := codec.NewDecoder(e.dict)
			for i, frame := range frames {
				msg, err := dec.DecodeMessage(frame)
				if err != nil {
					return fmt.Errorf("message %d: %w", i+1, err)
				}
				out, err := e.mapper.Marshal(msg)
				if err != nil {
					return fmt.Errorf("message %d: %w", i+1, err)
				}
				if err := writeLine(cmd, out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	messageCmd.Flags().StringP("file", "f", "", "Read input from file")
	messageCmd.Flags().Bool("raw", false, "Input is binary instead of hex")
	return messageCmd
}
