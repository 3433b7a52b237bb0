// Package capture pulls Diameter messages out of pcap and pcapng files.
//
// Messages are taken from TCP segments on the configured ports and from SCTP
// DATA chunks. There is no stream reassembly: a segment or chunk must start
// on a message boundary, and a message split across segments is skipped.
package capture

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/hsdfat8/diam2json/codec"
	"github.com/hsdfat8/diam2json/pkg/logger"
)

// DefaultPort is the IANA port for Diameter over TCP and SCTP.
const DefaultPort = 3868

// SCTP payload protocol identifiers assigned to Diameter.
const (
	ppidDiameter     = 46
	ppidDiameterDTLS = 47
)

const (
	sctpChunkHeaderLength = 16
	sctpChunkData         = 0
	pcapngMagic           = 0x0a0d0d0a
)

// Options selects which traffic is read.
type Options struct {
	// Ports carrying Diameter. Empty means DefaultPort.
	Ports []uint16
}

// Packet is one captured frame holding at least one complete message.
type Packet struct {
	Index     int // 1-based frame number in the capture
	Timestamp time.Time
	Transport string // "tcp" or "sctp"
	Src       string
	Dst       string
	Messages  [][]byte
}

// Stats summarizes a capture read.
type Stats struct {
	Frames   int // frames read from the file
	Packets  int // frames that yielded messages
	Messages int
	Skipped  int // Diameter frames dropped because they did not split cleanly
}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// ReadFile reads a capture file.
func ReadFile(path string, opts Options) ([]Packet, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()
	return Read(f, opts)
}

// Read reads a pcap or pcapng stream.
func Read(r io.Reader, opts Options) ([]Packet, Stats, error) {
	src, err := newSource(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open capture: %w", err)
	}

	ports := make(map[uint16]bool)
	for _, p := range opts.Ports {
		ports[p] = true
	}
	if len(ports) == 0 {
		ports[DefaultPort] = true
	}

	var (
		packets []Packet
		stats   Stats
	)
	for {
		data, ci, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return packets, stats, fmt.Errorf("failed to read frame %d: %w", stats.Frames+1, err)
		}
		stats.Frames++

		pkt, ok := extract(data, src.LinkType(), ports)
		if !ok {
			continue
		}
		pkt.Index = stats.Frames
		pkt.Timestamp = ci.Timestamp
		if len(pkt.Messages) == 0 {
			stats.Skipped++
			continue
		}
		stats.Packets++
		stats.Messages += len(pkt.Messages)
		packets = append(packets, pkt)
	}
	return packets, stats, nil
}

func newSource(r io.Reader) (packetSource, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, err
	}
	if binary.LittleEndian.Uint32(magic) == pcapngMagic {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// extract returns the Diameter messages of one frame. ok is false for
// frames that carry no Diameter traffic at all.
func extract(data []byte, linkType layers.LinkType, ports map[uint16]bool) (Packet, bool) {
	packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	var src, dst string
	if nl := packet.NetworkLayer(); nl != nil {
		src, dst = nl.NetworkFlow().Src().String(), nl.NetworkFlow().Dst().String()
	}

	if tcp, ok := packet.Layer(layers.LayerTypeTCP).(*layers.TCP); ok {
		if (!ports[uint16(tcp.SrcPort)] && !ports[uint16(tcp.DstPort)]) || len(tcp.Payload) == 0 {
			return Packet{}, false
		}
		pkt := Packet{
			Transport: "tcp",
			Src:       hostPort(src, uint16(tcp.SrcPort)),
			Dst:       hostPort(dst, uint16(tcp.DstPort)),
		}
		pkt.Messages = split(tcp.Payload, pkt.Src)
		return pkt, true
	}

	if sctp, ok := packet.Layer(layers.LayerTypeSCTP).(*layers.SCTP); ok {
		onPort := ports[uint16(sctp.SrcPort)] || ports[uint16(sctp.DstPort)]
		pkt := Packet{
			Transport: "sctp",
			Src:       hostPort(src, uint16(sctp.SrcPort)),
			Dst:       hostPort(dst, uint16(sctp.DstPort)),
		}
		found := false
		for _, chunk := range sctpDataChunks(sctp.Payload) {
			if !onPort && chunk.ppid != ppidDiameter && chunk.ppid != ppidDiameterDTLS {
				continue
			}
			found = true
			if !chunk.complete {
				logger.Log.Debugw("skipping fragmented SCTP DATA chunk", "src", pkt.Src, "tsn", chunk.tsn)
				continue
			}
			pkt.Messages = append(pkt.Messages, split(chunk.data, pkt.Src)...)
		}
		return pkt, found
	}

	return Packet{}, false
}

func hostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

// split cuts a payload into messages. A payload that does not divide into
// whole messages yields only the complete ones before the break.
func split(payload []byte, from string) [][]byte {
	msgs, err := codec.ReadMessages(bytes.NewReader(payload))
	if err != nil {
		logger.Log.Debugw("payload does not split into whole messages", "src", from, "bytes", len(payload), "error", err)
	}
	return msgs
}

type dataChunk struct {
	tsn      uint32
	ppid     uint32
	complete bool
	data     []byte
}

// sctpDataChunks walks the chunks following the SCTP common header and
// returns the DATA chunks. gopacket decodes only the first chunk of a
// bundle, so the chunk list is read directly.
func sctpDataChunks(b []byte) []dataChunk {
	var chunks []dataChunk
	for len(b) >= 4 {
		length := int(binary.BigEndian.Uint16(b[2:4]))
		if length < 4 || length > len(b) {
			break
		}
		if b[0] == sctpChunkData && length >= sctpChunkHeaderLength {
			chunks = append(chunks, dataChunk{
				tsn:      binary.BigEndian.Uint32(b[4:8]),
				ppid:     binary.BigEndian.Uint32(b[12:16]),
				complete: b[1]&0x03 == 0x03,
				data:     b[sctpChunkHeaderLength:length],
			})
		}
		next := length + (4-length%4)%4
		if next > len(b) {
			break
		}
		b = b[next:]
	}
	return chunks
}
