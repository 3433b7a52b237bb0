package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hsdfat8/diam2json/codec"
	"github.com/hsdfat8/diam2json/jsonmap"
	"github.com/hsdfat8/diam2json/pkg/capture"
	"github.com/hsdfat8/diam2json/pkg/logger"
	"github.com/hsdfat8/diam2json/pkg/metrics"
)

// frameRecord is one decoded message of a capture, with the frame it came
// from.
type frameRecord struct {
	Frame     int               `json:"frame"`
	Time      time.Time         `json:"time"`
	Transport string            `json:"transport"`
	Src       string            `json:"src"`
	Dst       string            `json:"dst"`
	Message   *jsonmap.Document `json:"message"`
}

func newPcapCmd() *cobra.Command {
	pcapCmd := &cobra.Command{
		Use:   "pcap <file>",
		Short: "Decode the Diameter messages of a pcap or pcapng capture",
		Long: `Decode every Diameter message found in a pcap or pcapng capture.

Messages are taken from TCP segments and SCTP DATA chunks on the configured
ports (capture.ports, default 3868) and printed one JSON object per line.
Messages that fail to decode are logged and counted, not fatal.

Example:
  diam2json pcap gx.pcapng --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd)
			if err != nil {
				return err
			}

			packets, stats, err := capture.ReadFile(args[0], capture.Options{Ports: e.cfg.Capture.Ports})
			if err != nil {
				return err
			}
			logger.Log.Debugw("Capture read", "file", args[0],
				"frames", stats.Frames, "packets", stats.Packets,
				"messages", stats.Messages, "skipped", stats.Skipped)

			m := metrics.NewMessageTypeMetrics()
			if err := decodePackets(cmd.OutOrStdout(), e, packets, m); err != nil {
				return err
			}

			logger.Log.Debugw(metrics.CompactMetrics("pcap", m, e.dict))
			if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
				fmt.Fprint(cmd.ErrOrStderr(), metrics.FormatMetrics("pcap", m, e.dict))
			}
			return nil
		},
	}
	pcapCmd.Flags().Bool("stats", false, "Print per message type counts to stderr")
	return pcapCmd
}

func decodePackets(w io.Writer, e *env, packets []capture.Packet, m *metrics.MessageTypeMetrics) error {
	dec := codec.NewDecoder(e.dict)
	for _, pkt := range packets {
		log := logger.WithFields("frame", pkt.Index, "src", pkt.Src, "dst", pkt.Dst)
		for _, raw := range pkt.Messages {
			msg, err := dec.DecodeMessage(raw)
			if err != nil {
				m.ObserveFailure()
				log.Warnw("Failed to decode message", "error", err)
				continue
			}
			m.Observe(msg)

			doc, err := e.mapper.MessageToDocument(msg)
			if err != nil {
				m.ObserveFailure()
				log.Warnw("Failed to convert message", "error", err)
				continue
			}

			out, err := marshalFrame(frameRecord{
				Frame:     pkt.Index,
				Time:      pkt.Timestamp.UTC(),
				Transport: pkt.Transport,
				Src:       pkt.Src,
				Dst:       pkt.Dst,
				Message:   doc,
			}, e.cfg.Output.Indent)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
				return err
			}
		}
	}
	return nil
}

func marshalFrame(f frameRecord, indent string) ([]byte, error) {
	if indent != "" {
		return json.MarshalIndent(f, "", indent)
	}
	return json.Marshal(f)
}
