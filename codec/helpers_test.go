package codec

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hsdfat8/diam2json/dictionary"
	"github.com/hsdfat8/diam2json/models_base"
)

const gxHost = "ptsd-6.module-2.TPEPTS01.taiwanmobile.com"

// readHexFixture loads a hex dump from testdata.
func readHexFixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", name, err)
	}
	b, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("Fixture %s is not hex: %v", name, err)
	}
	return b
}

// testDictionary is the base dictionary plus a self-nesting Grouped AVP.
func testDictionary(t testing.TB) *dictionary.Dictionary {
	t.Helper()
	d := dictionary.Base()
	if err := d.Register(dictionary.AVPDefinition{Name: "Test-Nest", Code: 9000, VendorID: 99999, Type: models_base.GroupedType}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return d
}

func mustEncode(t testing.TB, a *AVP) []byte {
	t.Helper()
	b, err := a.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return b
}
