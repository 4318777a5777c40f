package valuecodec

import (
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	msgpack.RegisterExt(TimestampExtID, (*Timestamp)(nil))
}

// Codec encodes and decodes argument/result values against a Kind supplied
// by the call registry. It never inspects bytes to guess a type.
type Codec struct{}

// New returns a ready-to-use Codec. The zero value would work too; New
// exists for symmetry with the teacher's other adapter constructors.
func New() *Codec {
	return &Codec{}
}

// Encode renders value as MessagePack bytes. value must already be the Go
// type Decode returns for kind; a mismatch is a programmer error in the
// invoker, reported as a TypeMismatch DecodeError for consistency with
// Decode's error shape.
func (c *Codec) Encode(kind Kind, value interface{}) ([]byte, error) {
	if err := checkAssignable(kind, value); err != nil {
		return nil, err
	}
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, newDecodeError(ErrKindMalformed, "encode %s: %v", kind, err)
	}
	return data, nil
}

// Decode parses data as a MessagePack value of the given Kind. On success
// the returned interface{} holds the Go type for that Kind, in Kind order:
// int64, float64, bool, string, []byte, Timestamp, map[string]interface{},
// or []interface{}.
func (c *Codec) Decode(kind Kind, data []byte) (interface{}, error) {
	target, err := zeroPointer(kind)
	if err != nil {
		return nil, err
	}
	if err := msgpack.Unmarshal(data, target); err != nil {
		return nil, newDecodeError(ErrKindTypeMismatch, "decode %s: %v", kind, err)
	}
	return reflect.ValueOf(target).Elem().Interface(), nil
}

func zeroPointer(kind Kind) (interface{}, error) {
	switch kind {
	case KindInteger:
		return new(int64), nil
	case KindFloat:
		return new(float64), nil
	case KindBoolean:
		return new(bool), nil
	case KindString:
		return new(string), nil
	case KindBytes:
		return new([]byte), nil
	case KindTimestamp:
		return new(Timestamp), nil
	case KindRecord:
		return new(map[string]interface{}), nil
	case KindArray:
		return new([]interface{}), nil
	default:
		return nil, newDecodeError(ErrKindUnsupportedKind, "unknown kind %d", kind)
	}
}

func checkAssignable(kind Kind, value interface{}) error {
	target, err := zeroPointer(kind)
	if err != nil {
		return err
	}
	want := reflect.TypeOf(target).Elem()
	got := reflect.TypeOf(value)
	if got == nil || !got.AssignableTo(want) {
		return newDecodeError(ErrKindTypeMismatch, "expected %s (%s), got %v", kind, want, got)
	}
	return nil
}

// String renders a value produced by Decode for inclusion in log lines and
// Failure messages, without leaking full record/array contents.
func String(kind Kind, value interface{}) string {
	switch kind {
	case KindRecord, KindArray, KindBytes:
		return fmt.Sprintf("%s(...)", kind)
	default:
		return fmt.Sprintf("%v", value)
	}
}
