package dictionary

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hsdfat8/diam2json/models_base"
)

// tomlFile is the vendor extension format:
//
//	[[avp]]
//	name = "My-Counter"
//	code = 5001
//	vendor_id = 99999
//	type = "Unsigned64"
//	mandatory = true
//
//	[[avp]]
//	name = "My-Mode"
//	code = 5002
//	vendor_id = 99999
//	type = "Enumerated"
//	enum = { OFF = 0, ON = 1 }
type tomlFile struct {
	AVPs     []tomlAVP     `toml:"avp"`
	Commands []tomlCommand `toml:"command"`
}

type tomlAVP struct {
	Name      string           `toml:"name"`
	Code      uint32           `toml:"code"`
	VendorID  uint32           `toml:"vendor_id"`
	Type      string           `toml:"type"`
	Mandatory bool             `toml:"mandatory"`
	Protected bool             `toml:"protected"`
	Enum      map[string]int32 `toml:"enum"`
}

type tomlCommand struct {
	Name          string `toml:"name"`
	Code          uint32 `toml:"code"`
	ApplicationID uint32 `toml:"application_id"`
	Request       bool   `toml:"request"`
}

// LoadTOMLFile loads a TOML dictionary extension file.
func (d *Dictionary) LoadTOMLFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return d.LoadTOML(file, filename)
}

// LoadTOML registers the AVPs and commands of a TOML dictionary extension.
// Entries replace existing definitions with the same code and vendor.
func (d *Dictionary) LoadTOML(r io.Reader, source string) error {
	var f tomlFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return ErrParse{Source: source, Reason: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return ErrParse{Source: source, Reason: fmt.Sprintf("unknown keys: %v", undecoded)}
	}

	for i, a := range f.AVPs {
		typeID, ok := models_base.Available[a.Type]
		if !ok {
			return ErrParse{Source: source, Reason: fmt.Sprintf("avp[%d] %s: unknown type %q", i, a.Name, a.Type)}
		}
		def := AVPDefinition{
			Name:       a.Name,
			Code:       a.Code,
			VendorID:   a.VendorID,
			Type:       typeID,
			Must:       a.Mandatory,
			MayEncrypt: a.Protected,
		}
		if len(a.Enum) > 0 {
			def.Enum = make(map[int32]string, len(a.Enum))
			for name, v := range a.Enum {
				def.Enum[v] = name
			}
		}
		if err := d.Register(def); err != nil {
			return ErrParse{Source: source, Reason: fmt.Sprintf("avp[%d]: %v", i, err)}
		}
	}

	for _, c := range f.Commands {
		d.RegisterCommand(CommandDefinition{
			Name:          c.Name,
			Abbreviation:  generateAbbreviation(c.Name),
			Code:          c.Code,
			ApplicationID: c.ApplicationID,
			Request:       c.Request,
		})
	}
	return nil
}

// LoadFile loads a dictionary file, choosing the parser by extension:
// .toml for TOML extensions, anything else as the .proto dialect.
func (d *Dictionary) LoadFile(filename string) error {
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		return d.LoadTOMLFile(filename)
	}
	return d.LoadProtoFile(filename)
}
