// Package valuecodec bridges the framing layer's opaque argument/result
// bytes to Go values, delegating the actual MessagePack encoding to
// github.com/vmihailenco/msgpack/v5 and adding the runtime's one custom
// extension: a big-endian, variable-width millisecond timestamp.
package valuecodec

// Kind is a static type descriptor for one parameter or return slot, as
// supplied by the call registry. The value codec never infers a type from
// bytes alone; it always decodes against a Kind the registry already knows.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindBoolean
	KindString
	KindBytes
	KindTimestamp
	KindRecord
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindTimestamp:
		return "Timestamp"
	case KindRecord:
		return "Record"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}
