package gojaprotoview

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/proto"
)

// jsEquals is the JS-facing implementation of pb.equals(a, b).
// It compares two wrapped messages using [proto.Equal].
func (m *Module) jsEquals(call goja.FunctionCall) goja.Value {
	a, err := m.unwrapMessage(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("equals: first argument: %s", err))
	}
	b, err := m.unwrapMessage(call.Argument(1))
	if err != nil {
		panic(m.runtime.NewTypeError("equals: second argument: %s", err))
	}
	return m.runtime.ToValue(proto.Equal(a.Interface(), b.Interface()))
}

// jsClone is the JS-facing implementation of pb.clone(msg).
// It deep-copies a wrapped or pure-host message, returning a new
// wrapped message that shares no storage with the original.
func (m *Module) jsClone(call goja.FunctionCall) goja.Value {
	arg := call.Argument(0)
	if msg, err := m.unwrapMessage(arg); err == nil {
		return m.wrapMessage(proto.Clone(msg.Interface()).ProtoReflect())
	}
	msg, err := m.allocateAndCopy(arg)
	if err != nil {
		var cf *copyFailure
		if errors.As(err, &cf) {
			panic(m.runtime.NewGoError(fmt.Errorf("clone: %w", cf.err)))
		}
		panic(m.runtime.NewTypeError("clone: %s", err))
	}
	return m.wrapMessage(msg)
}

// jsIsMessage is the JS-facing implementation of
// pb.isMessage(value[, typeName]). It reports whether the value is a
// wrapped protobuf message, optionally of the given fully-qualified
// type.
func (m *Module) jsIsMessage(call goja.FunctionCall) goja.Value {
	msg, err := m.unwrapMessage(call.Argument(0))
	if err != nil {
		return m.runtime.ToValue(false)
	}
	typeName := call.Argument(1)
	if typeName != nil && !goja.IsUndefined(typeName) {
		return m.runtime.ToValue(string(msg.Descriptor().FullName()) == typeName.String())
	}
	return m.runtime.ToValue(true)
}

// jsIsFieldSet is the JS-facing implementation of
// pb.isFieldSet(msg, fieldName). It reports field presence per protobuf
// Has semantics: explicit presence for messages and optional fields,
// non-default/non-empty otherwise.
func (m *Module) jsIsFieldSet(call goja.FunctionCall) goja.Value {
	msg, err := m.unwrapMessage(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("isFieldSet: %s", err))
	}
	fd := m.resolveField(msg.Descriptor(), call.Argument(1).String())
	return m.runtime.ToValue(msg.Has(fd))
}

// jsClearField is the JS-facing implementation of
// pb.clearField(msg, fieldName). It resets the field to its default
// (empty for repeated and map fields).
func (m *Module) jsClearField(call goja.FunctionCall) goja.Value {
	msg, err := m.unwrapMessage(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("clearField: %s", err))
	}
	fd := m.resolveField(msg.Descriptor(), call.Argument(1).String())
	msg.Clear(fd)
	return goja.Undefined()
}
