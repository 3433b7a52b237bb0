package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsdfat8/diam2json/codec"
	"github.com/hsdfat8/diam2json/dictionary"
	"github.com/hsdfat8/diam2json/models_base"
)

func dwr() *codec.Message {
	return &codec.Message{
		Header: codec.Header{CommandCode: 280, Flags: codec.CommandFlags{Request: true}},
		AVPs: []*codec.AVP{
			{Header: codec.AVPHeader{Code: 264}, Name: "Origin-Host", Data: models_base.DiameterIdentity("a")},
			{Header: codec.AVPHeader{Code: 60001}, Name: dictionary.UnknownName(60001), Data: models_base.OctetString("x")},
			{Header: codec.AVPHeader{Code: 443}, Name: "Subscription-Id", Data: codec.Grouped{
				{Header: codec.AVPHeader{Code: 444}, Name: "Subscription-Id-Data", Data: models_base.UTF8String("1")},
			}},
		},
	}
}

func TestObserve(t *testing.T) {
	m := NewMessageTypeMetrics()
	m.Observe(dwr())
	m.Observe(dwr())
	m.Increment(MessageKey{Code: 280})
	m.ObserveFailure()

	assert.Equal(t, uint64(2), m.Get(MessageKey{Code: 280, Request: true}))
	assert.Equal(t, uint64(1), m.Get(MessageKey{Code: 280}))
	assert.Equal(t, uint64(0), m.Get(MessageKey{Code: 257, Request: true}))
	assert.Equal(t, uint64(8), m.AVPs())
	assert.Equal(t, uint64(2), m.UnknownAVPs())
	assert.Equal(t, uint64(1), m.Failures())
	assert.Len(t, m.GetAll(), 2)

	m.Reset()
	assert.Empty(t, m.GetAll())
	assert.Zero(t, m.AVPs())
	assert.Zero(t, m.Failures())
}

func TestIncrementConcurrent(t *testing.T) {
	m := NewMessageTypeMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Increment(MessageKey{Code: 272, Request: true})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(800), m.Get(MessageKey{Code: 272, Request: true}))
}

func TestCommandCodeToName(t *testing.T) {
	dict := dictionary.Base()

	tests := []struct {
		key  MessageKey
		want string
	}{
		{MessageKey{Code: 280, Request: true}, "DWR"},
		{MessageKey{Code: 280}, "DWA"},
		{MessageKey{Code: 272, Request: true}, "CCR"},
		{MessageKey{Code: 9999, Request: true}, "CMD_9999_REQ"},
		{MessageKey{Code: 9999}, "CMD_9999_ANS"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CommandCodeToName(dict, tt.key))
	}
	assert.Equal(t, "CMD_280_REQ", CommandCodeToName(nil, MessageKey{Code: 280, Request: true}))
}

func TestFormatMetrics(t *testing.T) {
	m := NewMessageTypeMetrics()
	m.Increment(MessageKey{Code: 280})
	m.Observe(dwr())
	m.Increment(MessageKey{Code: 257, Request: true})

	out := FormatMetrics("pcap", m, dictionary.Base())
	require.Contains(t, out, "pcap Metrics by Message Type:")

	// rows are ordered by code, requests before answers
	cer := strings.Index(out, "CER")
	dwrRow := strings.Index(out, "DWR")
	dwa := strings.Index(out, "DWA")
	require.True(t, cer >= 0 && dwrRow >= 0 && dwa >= 0, out)
	assert.Less(t, cer, dwrRow)
	assert.Less(t, dwrRow, dwa)
	assert.Contains(t, out, "│ TOTAL                           │         3 │")
	assert.Contains(t, out, "│ Unknown AVPs                    │         1 │")

	compact := CompactMetrics("pcap", m, dictionary.Base())
	assert.Equal(t, "pcap: [CER=1] [DWR=1] [DWA=1] (Total=3, Failures=0)", compact)
}
