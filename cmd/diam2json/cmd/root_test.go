package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dwrHex        = "0100006c8000011800000000a3734495a375f3e40000010840000031707473642d362e6d6f64756c652d322e54504550545330312e74616977616e6d6f62696c652e636f6d000000000001284000001874616977616e6d6f62696c652e636f6d000001164000000c5416d236"
	originHostHex = "0000010840000031707473642d362e6d6f64756c652d322e54504550545330312e74616977616e6d6f62696c652e636f6d000000"
)

// run executes the CLI with args and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMessageCommand(t *testing.T) {
	out, _, err := run(t, "", "message", dwrHex)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "Origin-Host", records[0]["name"])
	assert.Equal(t, "taiwanmobile.com", records[1]["value"])
	assert.Equal(t, float64(1410781750), records[2]["value"])
}

func TestMessageCommandHeader(t *testing.T) {
	out, _, err := run(t, "", "message", "--header", "--indent", "  ", "0x"+dwrHex)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"header\"")

	var doc struct {
		Header map[string]any `json:"header"`
		AVPs   []any          `json:"avps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, float64(280), doc.Header["command_code"])
	assert.Equal(t, "Device-Watchdog-Request", doc.Header["command_name"])
	assert.Len(t, doc.AVPs, 3)
}

func TestMessageCommandStdinAndFile(t *testing.T) {
	// wrapped hex dump on stdin
	out, _, err := run(t, dwrHex[:60]+"\n"+dwrHex[60:]+"\n", "message")
	require.NoError(t, err)
	assert.Contains(t, out, "Origin-State-Id")

	b, err := hex.DecodeString(dwrHex)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "two.bin")
	require.NoError(t, os.WriteFile(path, append(append([]byte(nil), b...), b...), 0o644))

	out, _, err = run(t, "", "message", "--raw", "-f", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
}

func TestMessageCommandErrors(t *testing.T) {
	_, _, err := run(t, "", "message", "zz")
	assert.ErrorContains(t, err, "invalid hex input")

	_, _, err = run(t, "", "message", "")
	assert.ErrorContains(t, err, "no hex input")

	_, _, err = run(t, "", "message", dwrHex[:100])
	assert.Error(t, err)

	_, _, err = run(t, "", "message", "--log-level", "verbose", dwrHex)
	assert.ErrorContains(t, err, "invalid configuration")

	_, _, err = run(t, "", "message", "--dict", "/nonexistent/vendor.toml", dwrHex)
	assert.ErrorContains(t, err, "dictionary config")
}

func TestAVPCommand(t *testing.T) {
	out, _, err := run(t, "", "avp", originHostHex)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, float64(264), rec["code"])
	assert.Equal(t, float64(49), rec["length"])
	assert.Equal(t, "ptsd-6.module-2.TPEPTS01.taiwanmobile.com", rec["value"])

	_, _, err = run(t, "", "avp", originHostHex+"00000000")
	assert.ErrorContains(t, err, "4 trailing bytes after AVP")
}

func TestEncodeCommand(t *testing.T) {
	out, _, err := run(t, "", "encode", `[{"code":264,"value":"ptsd-6.module-2.TPEPTS01.taiwanmobile.com"}]`)
	require.NoError(t, err)
	assert.Equal(t, originHostHex+"\n", out)

	_, _, err = run(t, "", "encode", `[{"name":"No-Such-AVP","value":1}]`)
	assert.ErrorContains(t, err, "unknown AVP name")
}

func TestMessageEncodeRoundTrip(t *testing.T) {
	doc, _, err := run(t, "", "message", "--header", dwrHex)
	require.NoError(t, err)

	out, _, err := run(t, doc, "encode")
	require.NoError(t, err)
	assert.Equal(t, dwrHex, strings.TrimSpace(out))

	raw, _, err := run(t, doc, "encode", "--raw", "-")
	require.NoError(t, err)
	assert.Equal(t, dwrHex, hex.EncodeToString([]byte(raw)))
}

func tcpFrame(t *testing.T, payload []byte) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 6},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("10.0.0.1"),
		DstIP:    net.ParseIP("10.0.0.2"),
	}
	tcp := &layers.TCP{SrcPort: 40000, DstPort: 3868, ACK: true, PSH: true, Window: 65535}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(payload)))
	return buf.Bytes()
}

func TestPcapCommand(t *testing.T) {
	good, err := hex.DecodeString(dwrHex)
	require.NoError(t, err)
	// Origin-Host length pushed past the end of the message
	bad := append([]byte(nil), good...)
	bad[27] = 0xff

	path := filepath.Join(t.TempDir(), "dwr.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	for i, payload := range [][]byte{good, bad} {
		frame := tcpFrame(t, payload)
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Date(2024, 5, 1, 10, 0, i, 0, time.UTC),
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		require.NoError(t, w.WritePacket(ci, frame))
	}
	require.NoError(t, f.Close())

	out, stderr, err := run(t, "", "pcap", "--stats", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	var rec frameRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, 1, rec.Frame)
	assert.Equal(t, "tcp", rec.Transport)
	assert.Equal(t, "10.0.0.1:40000", rec.Src)
	require.NotNil(t, rec.Message.Header)
	assert.Equal(t, uint32(280), rec.Message.Header.CommandCode)
	assert.Len(t, rec.Message.AVPs, 3)

	assert.Contains(t, stderr, "DWR")
	assert.Contains(t, stderr, "│ Decode failures                 │         1 │")

	_, _, err = run(t, "", "pcap", filepath.Join(t.TempDir(), "missing.pcap"))
	assert.Error(t, err)
}
