package gojaprotoview

import (
	"fmt"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// fieldCategory is the closed set of scalar categories the reflection
// API distinguishes. Every field kind collapses into exactly one
// category; all per-kind behaviour (host conversion in either direction,
// repr) is selected through [categoryTable] so the kind switch exists in
// one place only.
type fieldCategory int

const (
	categoryBool fieldCategory = iota
	categoryInt32
	categoryInt64
	categoryUint32
	categoryUint64
	categoryFloat
	categoryDouble
	categoryString
	categoryBytes
	categoryEnum
	categoryMessage

	categoryCount
)

// categoryOf classifies a field descriptor. An unknown kind is an
// internal invariant break, not a user error.
func categoryOf(fd protoreflect.FieldDescriptor) (fieldCategory, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return categoryBool, nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return categoryInt32, nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return categoryInt64, nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return categoryUint32, nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return categoryUint64, nil
	case protoreflect.FloatKind:
		return categoryFloat, nil
	case protoreflect.DoubleKind:
		return categoryDouble, nil
	case protoreflect.StringKind:
		return categoryString, nil
	case protoreflect.BytesKind:
		return categoryBytes, nil
	case protoreflect.EnumKind:
		return categoryEnum, nil
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return categoryMessage, nil
	default:
		return 0, fmt.Errorf("unsupported field kind: %s", fd.Kind())
	}
}

// category classifies fd, raising a JS error on an unknown kind.
func (m *Module) category(fd protoreflect.FieldDescriptor) fieldCategory {
	c, err := categoryOf(fd)
	if err != nil {
		panic(m.runtime.NewGoError(err))
	}
	return c
}

// categoryOps bundles the per-category operations. fromHost is nil for
// the message category: message writes always go through the copying
// helpers (copyMessageContent, appendMessageElement) because the copy
// target determines the mechanics.
type categoryOps struct {
	toHost   func(m *Module, v protoreflect.Value, fd protoreflect.FieldDescriptor) goja.Value
	fromHost func(m *Module, val goja.Value, fd protoreflect.FieldDescriptor) (protoreflect.Value, error)
	repr     func(m *Module, v protoreflect.Value, fd protoreflect.FieldDescriptor) string
}

var categoryTable [categoryCount]categoryOps

// The message entries close over wrapMessage, which reads the table back
// through toHostValue; populating the table in init keeps that reference
// cycle out of package-level initialization.
func init() {
	categoryTable = [categoryCount]categoryOps{
		categoryBool: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.runtime.ToValue(v.Bool())
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				b, err := m.hostToBool(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfBool(b), nil
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return boolText(v.Bool())
			},
		},
		categoryInt32: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.runtime.ToValue(v.Int())
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				n, err := m.hostToInt32(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfInt32(n), nil
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return intText(v.Int())
			},
		},
		categoryInt64: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.int64ToHost(v.Int())
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				n, err := m.hostToInt64(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfInt64(n), nil
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return intText(v.Int())
			},
		},
		categoryUint32: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.runtime.ToValue(v.Uint())
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				n, err := m.hostToUint32(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfUint32(n), nil
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return uintText(v.Uint())
			},
		},
		categoryUint64: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.uint64ToHost(v.Uint())
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				n, err := m.hostToUint64(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfUint64(n), nil
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return uintText(v.Uint())
			},
		},
		categoryFloat: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.runtime.ToValue(v.Float())
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				f, err := m.hostToFloat(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfFloat32(float32(f)), nil
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return floatText(v.Float(), 32)
			},
		},
		categoryDouble: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.runtime.ToValue(v.Float())
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				f, err := m.hostToFloat(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfFloat64(f), nil
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return floatText(v.Float(), 64)
			},
		},
		categoryString: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.runtime.ToValue(v.String())
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				s, err := m.hostToString(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfString(s), nil
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return stringText(v.String())
			},
		},
		categoryBytes: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				// Copied both ways: the returned buffer must not window
				// the message's own storage.
				b := v.Bytes()
				buf := make([]byte, len(b))
				copy(buf, b)
				return m.newUint8Array(buf)
			},
			fromHost: func(m *Module, val goja.Value, _ protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				b, err := m.extractBytes(val)
				if err != nil {
					return protoreflect.Value{}, err
				}
				return protoreflect.ValueOfBytes(b), nil
			},
			repr: func(_ *Module, _ protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return "<Binary String>"
			},
		},
		categoryEnum: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.runtime.ToValue(int32(v.Enum()))
			},
			fromHost: func(m *Module, val goja.Value, fd protoreflect.FieldDescriptor) (protoreflect.Value, error) {
				return m.hostToEnum(val, fd)
			},
			repr: func(_ *Module, v protoreflect.Value, fd protoreflect.FieldDescriptor) string {
				return enumText(v.Enum(), fd)
			},
		},
		categoryMessage: {
			toHost: func(m *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) goja.Value {
				return m.wrapMessage(v.Message())
			},
			repr: func(_ *Module, v protoreflect.Value, _ protoreflect.FieldDescriptor) string {
				return messageRepr(v.Message())
			},
		},
	}
}

// toHostValue converts a reflection value to its host representation.
// Message values are wrapped aliasing, never copied.
func (m *Module) toHostValue(v protoreflect.Value, fd protoreflect.FieldDescriptor) goja.Value {
	return categoryTable[m.category(fd)].toHost(m, v, fd)
}

// fromHostValue converts a host value to a reflection value via the
// strict per-category cast. Not valid for the message category.
func (m *Module) fromHostValue(val goja.Value, fd protoreflect.FieldDescriptor) (protoreflect.Value, error) {
	ops := categoryTable[m.category(fd)]
	if ops.fromHost == nil {
		return protoreflect.Value{}, fmt.Errorf("internal: no scalar cast for field kind %s", fd.Kind())
	}
	return ops.fromHost(m, val, fd)
}

// valueRepr renders a single element the way container reprs display it.
func (m *Module) valueRepr(v protoreflect.Value, fd protoreflect.FieldDescriptor) string {
	return categoryTable[m.category(fd)].repr(m, v, fd)
}
