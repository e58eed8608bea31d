package program

// OffsetType defines the type of a program offset.
type OffsetType uint8

const (
	UnknownOffset OffsetType = 0
	CodeOffset    OffsetType = 1 << iota // offset is code or part of an instruction
	DataOffset                           // offset could not be decoded as an instruction
)

// IsType returns whether the offset is of given type.
func (o *Offset) IsType(typ OffsetType) bool {
	return o.Type&typ != 0
}

// SetType sets the type of the offset.
func (o *Offset) SetType(typ OffsetType) {
	o.Type |= typ
}
