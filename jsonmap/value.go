package jsonmap

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"strconv"
	"time"

	"github.com/hsdfat8/diam2json/dictionary"
	"github.com/hsdfat8/diam2json/models_base"
)

// maxSafeInteger is the largest integer a float64 JSON number holds exactly.
const maxSafeInteger = 1<<53 - 1

// leafJSON renders a non-Grouped value.
func leafJSON(v models_base.Type) (json.RawMessage, error) {
	switch x := v.(type) {
	case models_base.OctetString:
		return json.Marshal(hex.EncodeToString([]byte(x)))
	case models_base.UTF8String, models_base.DiameterIdentity, models_base.DiameterURI,
		models_base.IPFilterRule, models_base.QoSFilterRule:
		return json.Marshal(string(x.Serialize()))
	case models_base.Integer32:
		return json.RawMessage(strconv.FormatInt(int64(x), 10)), nil
	case models_base.Enumerated:
		return json.RawMessage(strconv.FormatInt(int64(x), 10)), nil
	case models_base.Unsigned32:
		return json.RawMessage(strconv.FormatUint(uint64(x), 10)), nil
	case models_base.Integer64:
		s := strconv.FormatInt(int64(x), 10)
		if x > maxSafeInteger || x < -maxSafeInteger {
			return json.Marshal(s)
		}
		return json.RawMessage(s), nil
	case models_base.Unsigned64:
		s := strconv.FormatUint(uint64(x), 10)
		if x > maxSafeInteger {
			return json.Marshal(s)
		}
		return json.RawMessage(s), nil
	case models_base.Float32:
		return floatJSON(float64(x), 32)
	case models_base.Float64:
		return floatJSON(float64(x), 64)
	case models_base.Address:
		return json.Marshal(net.IP(x).String())
	case models_base.Time:
		return json.Marshal(time.Time(x).UTC().Format(time.RFC3339))
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// NaN and the infinities have no JSON number form and travel as strings.
func floatJSON(f float64, bits int) (json.RawMessage, error) {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(s)
	}
	return json.RawMessage(s), nil
}

// parseLeaf builds a non-Grouped value of type id from its JSON form. def
// is used for symbolic Enumerated names and may be nil.
func parseLeaf(id models_base.TypeID, def *dictionary.AVPDefinition, raw json.RawMessage) (models_base.Type, error) {
	v, err := scalar(raw)
	if err != nil {
		return nil, err
	}

	switch id {
	case models_base.UTF8StringType, models_base.DiameterIdentityType, models_base.DiameterURIType,
		models_base.IPFilterRuleType, models_base.QoSFilterRuleType:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return models_base.Text(id, s), nil

	case models_base.Integer32Type:
		n, err := parseInt(v, 32)
		return models_base.Integer32(n), err

	case models_base.EnumeratedType:
		if s, ok := v.(string); ok && def != nil {
			if n, found := def.EnumValue(s); found {
				return models_base.Enumerated(n), nil
			}
		}
		n, err := parseInt(v, 32)
		return models_base.Enumerated(n), err

	case models_base.Integer64Type:
		n, err := parseInt(v, 64)
		return models_base.Integer64(n), err

	case models_base.Unsigned32Type:
		n, err := parseUint(v, 32)
		return models_base.Unsigned32(n), err

	case models_base.Unsigned64Type:
		n, err := parseUint(v, 64)
		return models_base.Unsigned64(n), err

	case models_base.Float32Type:
		f, err := parseFloat(v, 32)
		return models_base.Float32(f), err

	case models_base.Float64Type:
		f, err := parseFloat(v, 64)
		return models_base.Float64(f), err

	case models_base.AddressType:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		ip := net.ParseIP(s)
		if ip == nil {
			return nil, fmt.Errorf("%q is not an IP address", s)
		}
		if v4 := ip.To4(); v4 != nil {
			ip = v4
		}
		return models_base.Address(ip), nil

	case models_base.TimeType:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, err
		}
		return models_base.NewTime(t)
	}

	// OctetString and anything the dictionary could not type.
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return models_base.OctetString(b), nil
}

func scalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %s", kind(v))
	}
	return s, nil
}

// numeric accepts a JSON number or a decimal string.
func numeric(v any) (string, error) {
	switch x := v.(type) {
	case json.Number:
		return x.String(), nil
	case string:
		return x, nil
	}
	return "", fmt.Errorf("expected a number, got %s", kind(v))
}

func parseInt(v any, bits int) (int64, error) {
	s, err := numeric(v)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, bits)
}

func parseUint(v any, bits int) (uint64, error) {
	s, err := numeric(v)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(s, 10, bits)
}

func parseFloat(v any, bits int) (float64, error) {
	s, err := numeric(v)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, bits)
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case json.Number:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	}
	return fmt.Sprintf("%T", v)
}
