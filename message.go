package gojaprotoview

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// wrapMessage creates a JS object aliasing a [protoreflect.Message],
// with get/set/has/clear/whichOneof/clearOneof/serializeBinary/toString
// methods and a $type read-only property. The wrapper never copies: all
// reads and writes go through the message's own storage.
func (m *Module) wrapMessage(msg protoreflect.Message) *goja.Object {
	obj := m.runtime.NewObject()
	msgDesc := msg.Descriptor()

	// Back-reference to the underlying message; doubles as the sentinel
	// that marks wrapped native messages.
	_ = obj.Set("_pbMsg", &messageHolder{msg: msg})

	// $type — read-only accessor returning the fully-qualified name.
	_ = obj.DefineAccessorProperty("$type",
		m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
			return m.runtime.ToValue(string(msgDesc.FullName()))
		}),
		nil,
		goja.FLAG_FALSE,
		goja.FLAG_TRUE,
	)

	// get(fieldName) — field value, or a live view for repeated/map fields.
	_ = obj.Set("get", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		fd := m.resolveField(msgDesc, call.Argument(0).String())
		return m.getFieldValue(msg, fd)
	}))

	// set(fieldName, value) — singular fields only.
	_ = obj.Set("set", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		fd := m.resolveField(msgDesc, call.Argument(0).String())
		m.setFieldValue(msg, fd, call.Argument(1))
		return goja.Undefined()
	}))

	// has(fieldName) — check whether a field has been set.
	_ = obj.Set("has", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		fd := m.resolveField(msgDesc, call.Argument(0).String())
		return m.runtime.ToValue(msg.Has(fd))
	}))

	// clear(fieldName) — clear a field to its default.
	_ = obj.Set("clear", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		fd := m.resolveField(msgDesc, call.Argument(0).String())
		msg.Clear(fd)
		return goja.Undefined()
	}))

	// whichOneof(oneofName) — return the name of the set oneof field, or undefined.
	_ = obj.Set("whichOneof", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		od := m.resolveOneof(msgDesc, call.Argument(0).String())
		fd := msg.WhichOneof(od)
		if fd == nil {
			return goja.Undefined()
		}
		return m.runtime.ToValue(string(fd.Name()))
	}))

	// clearOneof(oneofName) — clear whichever field is set in a oneof group.
	_ = obj.Set("clearOneof", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		od := m.resolveOneof(msgDesc, call.Argument(0).String())
		if fd := msg.WhichOneof(od); fd != nil {
			msg.Clear(fd)
		}
		return goja.Undefined()
	}))

	// serializeBinary() — binary wire bytes. Together with $type this
	// makes wrapped messages satisfy the same protocol expected of
	// pure-host messages.
	_ = obj.Set("serializeBinary", m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
		data, err := proto.Marshal(msg.Interface())
		if err != nil {
			panic(m.runtime.NewGoError(err))
		}
		return m.newUint8Array(data)
	}))

	// toString() — one-line debug form.
	_ = obj.Set("toString", m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
		return m.runtime.ToValue(messageRepr(msg))
	}))

	return obj
}

// unwrapMessage extracts the [protoreflect.Message] from a JS value that
// was created by [Module.wrapMessage].
func (m *Module) unwrapMessage(val goja.Value) (protoreflect.Message, error) {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, fmt.Errorf("expected protobuf message, got null/undefined")
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("expected protobuf message object")
	}

	msgVal := obj.Get("_pbMsg")
	if msgVal == nil || goja.IsUndefined(msgVal) {
		return nil, fmt.Errorf("not a protobuf message wrapper")
	}

	holder, ok := msgVal.Export().(*messageHolder)
	if !ok || holder == nil || holder.msg == nil {
		return nil, fmt.Errorf("not a protobuf message wrapper")
	}
	return holder.msg, nil
}

// resolveField looks up a field descriptor by proto field name. Panics
// with a JS TypeError if the field is not found.
func (m *Module) resolveField(msgDesc protoreflect.MessageDescriptor, name string) protoreflect.FieldDescriptor {
	fd := msgDesc.Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(m.runtime.NewTypeError("field %q not found on message %q", name, msgDesc.FullName()))
	}
	return fd
}

// resolveOneof looks up a oneof descriptor by name, panicking with a JS
// TypeError if absent.
func (m *Module) resolveOneof(msgDesc protoreflect.MessageDescriptor, name string) protoreflect.OneofDescriptor {
	od := msgDesc.Oneofs().ByName(protoreflect.Name(name))
	if od == nil {
		panic(m.runtime.NewTypeError("oneof %q not found on message %q", name, msgDesc.FullName()))
	}
	return od
}

// getFieldValue classifies fd and returns the host representation:
// a map view, a repeated view, an aliasing sub-message wrapper, or a
// converted scalar.
//
// Reading a singular sub-message field materialises it (the mutable
// aliasing handle requires storage to point into), so the field reports
// as set afterwards. This matches dynamic-language protobuf semantics,
// where reading msg.sub hands out a live sub-message.
func (m *Module) getFieldValue(msg protoreflect.Message, fd protoreflect.FieldDescriptor) goja.Value {
	switch {
	case fd.IsMap():
		return m.wrapMapField(msg, fd)
	case fd.IsList():
		return m.wrapRepeatedField(msg, fd)
	case m.category(fd) == categoryMessage:
		return m.wrapMessage(msg.Mutable(fd).Message())
	default:
		return m.toHostValue(msg.Get(fd), fd)
	}
}

// setFieldValue writes a singular field. Repeated and map fields are
// never reassigned wholesale; they are mutated through their views.
// Type checks precede all mutation, so a failed set leaves the message
// unchanged. null/undefined clears the field.
func (m *Module) setFieldValue(msg protoreflect.Message, fd protoreflect.FieldDescriptor, val goja.Value) {
	if fd.IsMap() || fd.IsList() {
		panic(m.runtime.NewTypeError(
			"cannot assign field %q on message %q: repeated and map fields are mutated through their views",
			fd.Name(), msg.Descriptor().FullName()))
	}

	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		msg.Clear(fd)
		return
	}

	if m.category(fd) == categoryMessage {
		src, err := m.messageFromHost(val, fd.Message())
		if err != nil {
			m.throwFieldError(fd, err)
		}
		copyMessageContent(msg.Mutable(fd).Message(), src)
		return
	}

	pv, err := m.fromHostValue(val, fd)
	if err != nil {
		m.throwFieldError(fd, err)
	}
	msg.Set(fd, pv)
}

// jsGetAttr is the JS-facing implementation of pb.getAttr(msg, name).
func (m *Module) jsGetAttr(call goja.FunctionCall) goja.Value {
	msg, err := m.unwrapMessage(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("getAttr: %s", err))
	}
	fd := m.resolveField(msg.Descriptor(), call.Argument(1).String())
	return m.getFieldValue(msg, fd)
}

// jsSetAttr is the JS-facing implementation of
// pb.setAttr(msg, name, value).
func (m *Module) jsSetAttr(call goja.FunctionCall) goja.Value {
	msg, err := m.unwrapMessage(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("setAttr: %s", err))
	}
	fd := m.resolveField(msg.Descriptor(), call.Argument(1).String())
	m.setFieldValue(msg, fd, call.Argument(2))
	return goja.Undefined()
}

// throwFieldError raises a conversion failure as the appropriate JS
// error: copy failures (wire-format parse during deep copy) surface as
// Go errors, everything else as TypeError.
func (m *Module) throwFieldError(fd protoreflect.FieldDescriptor, err error) {
	var cf *copyFailure
	if errors.As(err, &cf) {
		panic(m.runtime.NewGoError(fmt.Errorf("field %s: %w", fd.Name(), cf.err)))
	}
	panic(m.runtime.NewTypeError("field %s: %s", fd.Name(), err))
}
