package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsdfat8/diam2json/codec"
)

func newAVPCmd() *cobra.Command {
	avpCmd := &cobra.Command{
		Use:   "avp [hex|-]",
		Short: "Decode a single AVP to a JSON record",
		Long: `Decode a single AVP, without a message header, to a JSON record.

Example:
  diam2json avp 0000010840000031707473...`,
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
			b, err := parseHex(input)
			if err != nil {
				return err
			}

			avp, n, err := codec.DecodeAVP(b, e.dict)
			if err != nil {
				return err
			}
			if n != len(b) {
				return fmt.Errorf("%d trailing bytes after AVP", len(b)-n)
			}
			out, err := e.mapper.MarshalAVP(avp)
			if err != nil {
				return err
			}
			return writeLine(cmd, out)
		},
	}
	avpCmd.Flags().StringP("file", "f", "", "Read input from file")
	return avpCmd
}
