// Package dictionary maps AVP codes to names and data types.
//
// A Dictionary is filled once, by Register or one of the loaders, and is
// read-only afterwards. Lookups take no locks, so a populated Dictionary may
// be shared by any number of concurrent decoders.
package dictionary

import (
	"fmt"
	"strconv"

	"github.com/hsdfat8/diam2json/models_base"
)

// AVPDefinition describes one AVP as known to the dictionary.
type AVPDefinition struct {
	Name       string // e.g., "Origin-Host"
	Code       uint32
	VendorID   uint32 // 0 for IETF AVPs
	Type       models_base.TypeID
	Must       bool             // M-bit (Mandatory)
	MayEncrypt bool             // P-bit (Protected)
	Enum       map[int32]string // symbolic names for Enumerated values
}

// EnumName returns the symbolic name of an Enumerated value.
func (d *AVPDefinition) EnumName(v int32) (string, bool) {
	name, ok := d.Enum[v]
	return name, ok
}

// EnumValue resolves a symbolic name back to its Enumerated value.
func (d *AVPDefinition) EnumValue(name string) (int32, bool) {
	for v, n := range d.Enum {
		if n == name {
			return v, true
		}
	}
	return 0, false
}

// Provider is what the codec needs from a dictionary. A miss is reported by
// the boolean and is never an error.
type Provider interface {
	Lookup(code, vendorID uint32) (*AVPDefinition, bool)
	LookupByName(name string) (*AVPDefinition, bool)
}

// CommandDefinition names a Diameter command.
type CommandDefinition struct {
	Name          string // e.g., "Device-Watchdog-Request"
	Abbreviation  string // e.g., "DWR"
	Code          uint32
	ApplicationID uint32
	Request       bool
}

type avpKey struct {
	code     uint32
	vendorID uint32
}

type cmdKey struct {
	code    uint32
	request bool
}

// Dictionary is the in-memory Provider.
type Dictionary struct {
	byCode   map[avpKey]*AVPDefinition
	byName   map[string]*AVPDefinition
	commands map[cmdKey]*CommandDefinition
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		byCode:   make(map[avpKey]*AVPDefinition),
		byName:   make(map[string]*AVPDefinition),
		commands: make(map[cmdKey]*CommandDefinition),
	}
}

// Register adds or replaces an AVP definition. It must not be called once
// the dictionary is in use by decoders.
func (d *Dictionary) Register(def AVPDefinition) error {
	if def.Name == "" {
		return ErrInvalidDefinition{Name: def.Name, Code: def.Code, Reason: "name is required"}
	}
	if def.Code == 0 {
		return ErrInvalidDefinition{Name: def.Name, Code: def.Code, Reason: "code is required"}
	}
	if def.Type == models_base.UnknownType {
		return ErrInvalidDefinition{Name: def.Name, Code: def.Code, Reason: "type is required"}
	}
	k := avpKey{code: def.Code, vendorID: def.VendorID}
	if old, ok := d.byCode[k]; ok && old.Name != def.Name {
		delete(d.byName, old.Name)
	}
	stored := def
	d.byCode[k] = &stored
	d.byName[def.Name] = &stored
	return nil
}

// RegisterCommand adds or replaces a command definition.
func (d *Dictionary) RegisterCommand(cmd CommandDefinition) {
	stored := cmd
	d.commands[cmdKey{code: cmd.Code, request: cmd.Request}] = &stored
}

// Lookup implements Provider.
func (d *Dictionary) Lookup(code, vendorID uint32) (*AVPDefinition, bool) {
	def, ok := d.byCode[avpKey{code: code, vendorID: vendorID}]
	return def, ok
}

// LookupByName implements Provider.
func (d *Dictionary) LookupByName(name string) (*AVPDefinition, bool) {
	def, ok := d.byName[name]
	return def, ok
}

// Command returns the definition of a command, if known.
func (d *Dictionary) Command(code uint32, request bool) (*CommandDefinition, bool) {
	cmd, ok := d.commands[cmdKey{code: code, request: request}]
	return cmd, ok
}

// CommandName returns the command name, or "Command-<code>" when unknown.
func (d *Dictionary) CommandName(code uint32, request bool) string {
	if cmd, ok := d.Command(code, request); ok {
		return cmd.Name
	}
	return "Command-" + strconv.FormatUint(uint64(code), 10)
}

// Len returns the number of registered AVPs.
func (d *Dictionary) Len() int {
	return len(d.byCode)
}

// UnknownName is the display name given to AVPs missing from the dictionary.
func UnknownName(code uint32) string {
	return fmt.Sprintf("Unknown-%d", code)
}
