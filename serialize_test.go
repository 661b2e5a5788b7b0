package gojaprotoview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	v := e.run(t, `
		const T = pb.messageType('test.SimpleMessage');
		const m = new T();
		m.set('name', 'hello');
		m.set('value', 42);
		const data = pb.encode(m);
		const m2 = pb.decode(T, data);
		pb.equals(m, m2);
	`)
	require.Equal(t, true, v.Export())
}

func TestEncodeReturnsUint8Array(t *testing.T) {
	e := newTestEnv(t)
	v := e.run(t, `
		const m = new (pb.messageType('test.SimpleMessage'))();
		m.set('value', 1);
		pb.encode(m) instanceof Uint8Array;
	`)
	require.Equal(t, true, v.Export())
}

func TestEncodePureHostMessage(t *testing.T) {
	e := newTestEnv(t)
	v := e.run(t, `
		const T = pb.messageType('test.NestedInner');
		const real = new T();
		real.set('value', 5);
		const fake = {$type: 'test.NestedInner', serializeBinary: () => real.serializeBinary()};
		pb.decode(T, pb.encode(fake)).get('value');
	`)
	require.Equal(t, int64(5), v.Export())
}

func TestDecodeErrors(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, `const T = pb.messageType('test.SimpleMessage');`)
	e.mustFail(t, `pb.decode(T, 'not-bytes')`)
	e.mustFail(t, `pb.decode(T, new Uint8Array([0xff, 0xff, 0xff]))`)
	e.mustFail(t, `pb.decode({}, new Uint8Array(0))`)
}

func TestSerializeBinaryMethod(t *testing.T) {
	e := newTestEnv(t)
	v := e.run(t, `
		const T = pb.messageType('test.SimpleMessage');
		const m = new T();
		m.set('name', 'x');
		pb.equals(pb.decode(T, m.serializeBinary()), m);
	`)
	require.Equal(t, true, v.Export())
}

func TestToJSON(t *testing.T) {
	e := newTestEnv(t)
	v := e.run(t, `
		const m = new (pb.messageType('test.SimpleMessage'))();
		m.set('name', 'hello');
		m.set('value', 42);
		const j = pb.toJSON(m);
		j.name + ':' + j.value;
	`)
	require.Equal(t, "hello:42", v.Export())
}

func TestFromJSON(t *testing.T) {
	e := newTestEnv(t)
	v := e.run(t, `
		const T = pb.messageType('test.SimpleMessage');
		const m = pb.fromJSON(T, {name: 'y', value: 3});
		m.get('name') + ':' + m.get('value');
	`)
	require.Equal(t, "y:3", v.Export())
}

func TestFromJSONDiscardsUnknown(t *testing.T) {
	e := newTestEnv(t)
	v := e.run(t, `
		const T = pb.messageType('test.SimpleMessage');
		pb.fromJSON(T, {name: 'z', bogus: true}).get('name');
	`)
	require.Equal(t, "z", v.Export())
}

func TestJSONRoundTripNested(t *testing.T) {
	e := newTestEnv(t)
	v := e.run(t, `
		const T = pb.messageType('test.NestedOuter');
		const o = new T();
		o.get('nested_inner').set('value', 8);
		o.set('name', 'n');
		pb.equals(pb.fromJSON(T, pb.toJSON(o)), o);
	`)
	require.Equal(t, true, v.Export())
}
