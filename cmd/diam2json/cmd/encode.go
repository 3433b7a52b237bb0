package cmd

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/hsdfat8/diam2json/jsonmap"
)

func newEncodeCmd() *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:   "encode [json|-]",
		Short: "Encode JSON records back to Diameter bytes",
		Long: `Encode JSON back to Diameter wire bytes.

A {header, avps} document encodes to a full message. A bare array of AVP
records encodes to the concatenated AVPs. Output is hex unless --raw.

Example:
  diam2json encode -f dwr.json
  diam2json message 0100006c... --header | diam2json encode`,
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
			out, err := encodeJSON(e.mapper, input)
			if err != nil {
				return err
			}

			if raw, _ := cmd.Flags().GetBool("raw"); raw {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return writeLine(cmd, []byte(hex.EncodeToString(out)))
		},
	}
	encodeCmd.Flags().StringP("file", "f", "", "Read input from file")
	encodeCmd.Flags().Bool("raw", false, "Write binary instead of hex")
	return encodeCmd
}

func encodeJSON(m *jsonmap.Mapper, input []byte) ([]byte, error) {
	doc, err := jsonmap.ParseJSON(input)
	if err != nil {
		return nil, err
	}

	if doc.Header != nil {
		msg, err := m.JSONToMessage(doc)
		if err != nil {
			return nil, err
		}
		return msg.Encode()
	}

	avps, err := m.JSONToTree(doc.AVPs)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, a := range avps {
		b, err := a.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
