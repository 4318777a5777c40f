package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/valuecodec"
)

func addInvoker(ctx context.Context, args []interface{}, progress ProgressFunc, fail FailureFunc) (interface{}, error) {
	a := args[0].(int64)
	b := args[1].(int64)
	return a + b, nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("add", []valuecodec.Kind{valuecodec.KindInteger, valuecodec.KindInteger}, valuecodec.KindInteger, CapabilityNone, addInvoker))

	d, err := r.Lookup("add", 2)
	require.NoError(t, err)
	assert.Equal(t, "add", d.Name)
	assert.Equal(t, valuecodec.KindInteger, d.ReturnKind)

	result, err := d.Invoker(context.Background(), []interface{}{int64(2), int64(3)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result)
}

func TestLookupNotFound(t *testing.T) {
	r := New()
	_, err := r.Lookup("missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupArityMismatch(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("add", []valuecodec.Kind{valuecodec.KindInteger, valuecodec.KindInteger}, valuecodec.KindInteger, CapabilityNone, addInvoker))

	_, err := r.Lookup("add", 1)
	assert.ErrorIs(t, err, ErrArityMismatch)

	_, err = r.Lookup("add", 3)
	assert.ErrorIs(t, err, ErrArityMismatch)
}

func TestRegisterDuplicateName(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("add", nil, valuecodec.KindInteger, CapabilityNone, addInvoker))

	err := r.Register("add", nil, valuecodec.KindInteger, CapabilityNone, addInvoker)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRegisterAfterSealFails(t *testing.T) {
	r := New()
	r.Seal()
	assert.True(t, r.Sealed())

	err := r.Register("add", nil, valuecodec.KindInteger, CapabilityNone, addInvoker)
	assert.ErrorIs(t, err, ErrSealed)
}

func TestRegisterRejectsNilInvoker(t *testing.T) {
	r := New()
	err := r.Register("add", nil, valuecodec.KindInteger, CapabilityNone, nil)
	assert.Error(t, err)
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := New()
	err := r.Register("", nil, valuecodec.KindInteger, CapabilityNone, addInvoker)
	assert.Error(t, err)
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "none", CapabilityNone.String())
	assert.Equal(t, "progress", CapabilityProgress.String())
	assert.Equal(t, "failure", CapabilityFailure.String())
	assert.Equal(t, "both", CapabilityBoth.String())
}
