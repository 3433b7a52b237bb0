package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hsdfat8/diam2json/codec"
	"github.com/hsdfat8/diam2json/dictionary"
)

// MessageKey identifies a message type: command code plus the R-bit.
type MessageKey struct {
	Code    uint32
	Request bool
}

// MessageTypeMetrics counts decoded messages per message type, together with
// AVP totals and decode failures.
type MessageTypeMetrics struct {
	counters map[MessageKey]*atomic.Uint64
	mu       sync.RWMutex

	avps     atomic.Uint64
	unknown  atomic.Uint64
	failures atomic.Uint64
}

// NewMessageTypeMetrics creates a new MessageTypeMetrics instance
func NewMessageTypeMetrics() *MessageTypeMetrics {
	return &MessageTypeMetrics{
		counters: make(map[MessageKey]*atomic.Uint64),
	}
}

// Increment increments the counter for a specific message type
func (m *MessageTypeMetrics) Increment(key MessageKey) {
	m.mu.Lock()
	counter, exists := m.counters[key]
	if !exists {
		counter = &atomic.Uint64{}
		m.counters[key] = counter
	}
	m.mu.Unlock()
	counter.Add(1)
}

// Observe records a decoded message: its type, and every AVP in it at any
// depth, noting those the dictionary did not know.
func (m *MessageTypeMetrics) Observe(msg *codec.Message) {
	m.Increment(MessageKey{Code: msg.Header.CommandCode, Request: msg.Header.Flags.Request})
	m.observeAVPs(msg.AVPs)
}

func (m *MessageTypeMetrics) observeAVPs(avps []*codec.AVP) {
	for _, a := range avps {
		m.avps.Add(1)
		if a.Name == dictionary.UnknownName(a.Header.Code) {
			m.unknown.Add(1)
		}
		m.observeAVPs(a.Children())
	}
}

// ObserveFailure records a message that could not be decoded.
func (m *MessageTypeMetrics) ObserveFailure() {
	m.failures.Add(1)
}

// Get returns the count for a specific message type
func (m *MessageTypeMetrics) Get(key MessageKey) uint64 {
	m.mu.RLock()
	counter, exists := m.counters[key]
	m.mu.RUnlock()

	if !exists {
		return 0
	}
	return counter.Load()
}

// GetAll returns a snapshot of all message type counters
func (m *MessageTypeMetrics) GetAll() map[MessageKey]uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[MessageKey]uint64)
	for key, counter := range m.counters {
		result[key] = counter.Load()
	}
	return result
}

// AVPs returns the number of AVPs seen, grouped children included.
func (m *MessageTypeMetrics) AVPs() uint64 { return m.avps.Load() }

// UnknownAVPs returns how many of those were missing from the dictionary.
func (m *MessageTypeMetrics) UnknownAVPs() uint64 { return m.unknown.Load() }

// Failures returns the number of messages that failed to decode.
func (m *MessageTypeMetrics) Failures() uint64 { return m.failures.Load() }

// Reset clears all counters
func (m *MessageTypeMetrics) Reset() {
	m.mu.Lock()
	m.counters = make(map[MessageKey]*atomic.Uint64)
	m.mu.Unlock()
	m.avps.Store(0)
	m.unknown.Store(0)
	m.failures.Store(0)
}

// CommandLookup resolves command definitions; *dictionary.Dictionary
// implements it.
type CommandLookup interface {
	Command(code uint32, request bool) (*dictionary.CommandDefinition, bool)
}

// CommandCodeToName returns the abbreviation of a message type, e.g. "DWR",
// falling back to CMD_<code>_REQ / CMD_<code>_ANS.
func CommandCodeToName(commands CommandLookup, key MessageKey) string {
	if commands != nil {
		if cmd, ok := commands.Command(key.Code, key.Request); ok {
			if cmd.Abbreviation != "" {
				return cmd.Abbreviation
			}
			return cmd.Name
		}
	}
	if key.Request {
		return fmt.Sprintf("CMD_%d_REQ", key.Code)
	}
	return fmt.Sprintf("CMD_%d_ANS", key.Code)
}

// sortedKeys orders message types by code, requests first.
func sortedKeys(counters map[MessageKey]uint64) []MessageKey {
	keys := make([]MessageKey, 0, len(counters))
	for key := range counters {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Code != keys[j].Code {
			return keys[i].Code < keys[j].Code
		}
		return keys[i].Request && !keys[j].Request
	})
	return keys
}

// FormatMetrics formats the metrics for display
func FormatMetrics(title string, metrics *MessageTypeMetrics, commands CommandLookup) string {
	var b strings.Builder
	counters := metrics.GetAll()

	fmt.Fprintf(&b, "\n%s Metrics by Message Type:\n", title)
	b.WriteString("┌─────────────────────────────────┬───────────┐\n")
	b.WriteString("│ Message Type                    │ Count     │\n")
	b.WriteString("├─────────────────────────────────┼───────────┤\n")

	total := uint64(0)
	for _, key := range sortedKeys(counters) {
		fmt.Fprintf(&b, "│ %-31s │ %9d │\n", CommandCodeToName(commands, key), counters[key])
		total += counters[key]
	}

	b.WriteString("├─────────────────────────────────┼───────────┤\n")
	fmt.Fprintf(&b, "│ %-31s │ %9d │\n", "TOTAL", total)
	fmt.Fprintf(&b, "│ %-31s │ %9d │\n", "AVPs", metrics.AVPs())
	fmt.Fprintf(&b, "│ %-31s │ %9d │\n", "Unknown AVPs", metrics.UnknownAVPs())
	fmt.Fprintf(&b, "│ %-31s │ %9d │\n", "Decode failures", metrics.Failures())
	b.WriteString("└─────────────────────────────────┴───────────┘\n")

	return b.String()
}

// CompactMetrics formats the metrics in a compact format (single line)
func CompactMetrics(title string, metrics *MessageTypeMetrics, commands CommandLookup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", title)
	counters := metrics.GetAll()
	total := uint64(0)

	for _, key := range sortedKeys(counters) {
		if count := counters[key]; count > 0 {
			fmt.Fprintf(&b, "[%s=%d] ", CommandCodeToName(commands, key), count)
			total += count
		}
	}

	fmt.Fprintf(&b, "(Total=%d, Failures=%d)", total, metrics.Failures())
	return b.String()
}
