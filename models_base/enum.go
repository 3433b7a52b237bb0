package models_base

import "fmt"

// Enumerated is carried on the wire as an Integer32. Symbolic names live in
// the dictionary, not in the value.
type Enumerated Integer32

func DecodeEnumerated(b []byte) (Type, error) {
	if err := checkWidth("Enumerated", b, 4); err != nil {
		return nil, err
	}
	v, _ := DecodeInteger32(b)
	return Enumerated(v.(Integer32)), nil
}

func (n Enumerated) Serialize() []byte {
	return Integer32(n).Serialize()
}

func (n Enumerated) Len() int {
	return 4
}

func (n Enumerated) Padding() int {
	return 0
}

func (n Enumerated) Type() TypeID {
	return EnumeratedType
}

func (n Enumerated) String() string {
	return fmt.Sprintf("Enumerated{%d}", n)
}
