package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hsdfat8/diam2json/models_base"
)

// protoParser reads the .proto-style dictionary dialect:
//
//	const VENDOR_3GPP = 10415;
//	avp Origin-Host { code = 264; type = DiameterIdentity; must = true; }
//	enum CC-Request-Type { INITIAL_REQUEST = 1; }
//	command Device-Watchdog-Request { code = 280; request = true; }
//
// Grouped sub-blocks inside avp and field lines inside command blocks are
// accepted and ignored; only names, codes and types matter for decoding.
type protoParser struct {
	source   string
	avps     []*protoAVP
	enums    map[string]map[int32]string
	commands []CommandDefinition
	consts   map[string]uint64
}

type protoAVP struct {
	def  AVPDefinition
	enum string
	line int
}

func newProtoParser(source string) *protoParser {
	return &protoParser{
		source: source,
		enums:  make(map[string]map[int32]string),
		consts: make(map[string]uint64),
	}
}

// LoadProtoFile loads a .proto-style dictionary file.
func (d *Dictionary) LoadProtoFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return d.LoadProto(file, filename)
}

// LoadProto parses a .proto-style dictionary and registers its AVPs and
// commands. Enum blocks attach to the AVP that names them with
// `enum = <Name>`, or to the AVP with the same name as the enum.
func (d *Dictionary) LoadProto(r io.Reader, source string) error {
	p := newProtoParser(source)
	if err := p.parse(r); err != nil {
		return err
	}
	for _, a := range p.avps {
		def := a.def
		enumName := a.enum
		if enumName == "" {
			enumName = def.Name
		}
		if values, ok := p.enums[enumName]; ok {
			def.Enum = values
		} else if a.enum != "" {
			return ErrParse{Source: source, Line: a.line, Reason: fmt.Sprintf("AVP %s references unknown enum %s", def.Name, a.enum)}
		}
		if err := d.Register(def); err != nil {
			return ErrParse{Source: source, Line: a.line, Reason: err.Error()}
		}
	}
	for _, cmd := range p.commands {
		d.RegisterCommand(cmd)
	}
	return nil
}

func (p *protoParser) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	var currentBlock string
	var blockLines []string
	blockStart, lineNr, depth := 0, 0, 0

	for scanner.Scan() {
		lineNr++
		line := stripComment(scanner.Text())

		if line == "" {
			continue
		}

		if currentBlock == "" {
			switch {
			case strings.HasPrefix(line, "syntax"), strings.HasPrefix(line, "package "), strings.HasPrefix(line, "option "):
				continue
			case strings.HasPrefix(line, "const "):
				if err := p.parseConst(line, lineNr); err != nil {
					return err
				}
				continue
			case strings.HasPrefix(line, "avp "):
				currentBlock = "avp"
			case strings.HasPrefix(line, "command "):
				currentBlock = "command"
			case strings.HasPrefix(line, "enum "):
				currentBlock = "enum"
			default:
				return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("unexpected statement %q", line)}
			}
			blockStart = lineNr
			blockLines = nil
			depth = 0
		}

		// Single-line blocks are split into statements so that
		// `avp X { code = 1; type = Unsigned32; }` parses like the long form.
		for _, stmt := range splitStatements(line) {
			blockLines = append(blockLines, stmt)
			if strings.HasSuffix(stmt, "{") {
				depth++
			}
			if stmt == "}" {
				depth--
			}
		}

		if depth == 0 {
			var err error
			switch currentBlock {
			case "avp":
				err = p.parseAVPBlock(blockLines, blockStart)
			case "command":
				err = p.parseCommandBlock(blockLines, blockStart)
			case "enum":
				err = p.parseEnumBlock(blockLines, blockStart)
			}
			if err != nil {
				return err
			}
			currentBlock = ""
			blockLines = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if currentBlock != "" {
		return ErrParse{Source: p.source, Line: blockStart, Reason: fmt.Sprintf("unterminated %s block", currentBlock)}
	}
	return nil
}

func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func splitStatements(line string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range line {
		switch r {
		case '{':
			cur.WriteRune(r)
			flush()
		case '}':
			flush()
			out = append(out, "}")
		case ';':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

func blockName(first string) string {
	parts := strings.Fields(strings.TrimSuffix(first, "{"))
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func splitProperty(line string) (string, string, bool) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// parseAVPBlock parses an AVP definition block
func (p *protoParser) parseAVPBlock(lines []string, lineNr int) error {
	name := blockName(lines[0])
	if name == "" {
		return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid AVP declaration: %s", lines[0])}
	}

	avp := &protoAVP{def: AVPDefinition{Name: name}, line: lineNr}
	inGroupedBlock := false

	for _, line := range lines[1 : len(lines)-1] {
		if strings.HasPrefix(line, "grouped") && strings.HasSuffix(line, "{") {
			inGroupedBlock = true
			continue
		}
		if inGroupedBlock {
			if line == "}" {
				inGroupedBlock = false
			}
			continue
		}

		key, value, ok := splitProperty(line)
		if !ok {
			continue
		}

		switch key {
		case "code":
			code, err := p.number(value, 32)
			if err != nil {
				return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid code for AVP %s: %v", name, err)}
			}
			avp.def.Code = uint32(code)
		case "type":
			typeID, ok := models_base.Available[value]
			if !ok {
				return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("unknown type %s for AVP %s", value, name)}
			}
			avp.def.Type = typeID
		case "must":
			avp.def.Must = value == "true"
		case "may_encrypt":
			avp.def.MayEncrypt = value == "true"
		case "vendor_id":
			vendorID, err := p.number(value, 32)
			if err != nil {
				return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid vendor_id for AVP %s: %v", name, err)}
			}
			avp.def.VendorID = uint32(vendorID)
		case "enum":
			avp.enum = value
		}
	}

	p.avps = append(p.avps, avp)
	return nil
}

// parseCommandBlock parses a command definition block
func (p *protoParser) parseCommandBlock(lines []string, lineNr int) error {
	name := blockName(lines[0])
	if name == "" {
		return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid command declaration: %s", lines[0])}
	}

	cmd := CommandDefinition{Name: name}

	for _, line := range lines[1 : len(lines)-1] {
		key, value, ok := splitProperty(line)
		// Field definitions ("fixed required Origin-Host origin_host = 1")
		// have a space before the '='.
		if !ok || strings.Contains(key, " ") {
			continue
		}
		switch key {
		case "code":
			code, err := p.number(value, 24)
			if err != nil {
				return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid code for command %s: %v", name, err)}
			}
			cmd.Code = uint32(code)
		case "application_id":
			appID, err := p.number(value, 32)
			if err != nil {
				return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid application_id for command %s: %v", name, err)}
			}
			cmd.ApplicationID = uint32(appID)
		case "request":
			cmd.Request = value == "true"
		}
	}

	cmd.Abbreviation = generateAbbreviation(name)
	p.commands = append(p.commands, cmd)
	return nil
}

// parseEnumBlock parses an enum definition block
func (p *protoParser) parseEnumBlock(lines []string, lineNr int) error {
	name := blockName(lines[0])
	if name == "" {
		return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid enum declaration: %s", lines[0])}
	}

	values := make(map[int32]string)
	for _, line := range lines[1 : len(lines)-1] {
		valueName, valueStr, ok := splitProperty(line)
		if !ok {
			continue
		}
		value, err := strconv.ParseInt(valueStr, 10, 32)
		if err != nil {
			return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid enum value for %s.%s: %v", name, valueName, err)}
		}
		values[int32(value)] = valueName
	}

	p.enums[name] = values
	return nil
}

// parseConst parses a const declaration
func (p *protoParser) parseConst(line string, lineNr int) error {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "const "), ";")
	name, valueStr, ok := splitProperty(line)
	if !ok {
		return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid const declaration: %s", line)}
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return ErrParse{Source: p.source, Line: lineNr, Reason: fmt.Sprintf("invalid const value for %s: %v", name, err)}
	}
	p.consts[name] = value
	return nil
}

// number parses a decimal literal or a previously declared const.
func (p *protoParser) number(s string, bits int) (uint64, error) {
	if v, ok := p.consts[s]; ok {
		if bits < 64 && v >= 1<<uint(bits) {
			return 0, fmt.Errorf("const %s out of range", s)
		}
		return v, nil
	}
	return strconv.ParseUint(s, 10, bits)
}

// generateAbbreviation generates command abbreviation from name
func generateAbbreviation(name string) string {
	parts := strings.Split(name, "-")
	abbr := ""
	for _, part := range parts {
		if len(part) > 0 {
			abbr += strings.ToUpper(string(part[0]))
		}
	}
	return abbr
}
