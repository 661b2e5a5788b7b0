package gojaprotoview

import (
	"fmt"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Host message probing. Two shapes of host value denote a protobuf
// message: a wrapper created by this module (carries _pbMsg), and a
// "pure-host" message — any JS object with a $type string property and a
// serializeBinary() method. Wrapped messages expose $type and
// serializeBinary too, so consumers of the protocol need not distinguish.

// copyFailure marks a wire-format failure during a cross-host deep copy,
// so boundaries can raise it as a runtime error rather than a TypeError.
type copyFailure struct {
	err error
}

func (e *copyFailure) Error() string { return e.err.Error() }

func (e *copyFailure) Unwrap() error { return e.err }

// hostFullName returns the fully-qualified protobuf type name of a
// wrapped or pure-host message value.
func (m *Module) hostFullName(val goja.Value) (protoreflect.FullName, error) {
	if msg, err := m.unwrapMessage(val); err == nil {
		return msg.Descriptor().FullName(), nil
	}
	if obj, ok := val.(*goja.Object); ok {
		if typeVal := obj.Get("$type"); typeVal != nil && !goja.IsUndefined(typeVal) {
			if name, ok := typeVal.Export().(string); ok && name != "" {
				return protoreflect.FullName(name), nil
			}
		}
	}
	return "", fmt.Errorf("cannot determine protobuf type of %s", jsTypeDesc(val))
}

// hostSerialize returns the binary wire form of a wrapped or pure-host
// message value. Pure-host messages are serialized by their own
// serializeBinary method, called exactly once.
func (m *Module) hostSerialize(val goja.Value) ([]byte, error) {
	if msg, err := m.unwrapMessage(val); err == nil {
		data, err := proto.Marshal(msg.Interface())
		if err != nil {
			return nil, err
		}
		return data, nil
	}

	obj, ok := val.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("expected protobuf message, got %s", jsTypeDesc(val))
	}
	serializeFn, ok := goja.AssertFunction(obj.Get("serializeBinary"))
	if !ok {
		return nil, fmt.Errorf("value has no serializeBinary method")
	}
	result, err := serializeFn(obj)
	if err != nil {
		return nil, fmt.Errorf("serializeBinary: %w", err)
	}
	data, err := m.extractBytes(result)
	if err != nil {
		return nil, fmt.Errorf("serializeBinary result: %w", err)
	}
	return data, nil
}

// messageFromHost resolves a host value as a message of the given type,
// for use as a copy source. Wrapped messages of the right full name are
// returned directly (callers copy, never alias). Pure-host messages
// cross over via serialize-then-parse. Plain objects without a $type are
// treated as field initialisers. Type checks happen before any
// conversion work.
func (m *Module) messageFromHost(val goja.Value, want protoreflect.MessageDescriptor) (protoreflect.Message, error) {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, fmt.Errorf("expected message of type %s, got %s", want.FullName(), jsTypeDesc(val))
	}

	if src, err := m.unwrapMessage(val); err == nil {
		if got := src.Descriptor().FullName(); got != want.FullName() {
			return nil, fmt.Errorf("message type mismatch: expected %s, got %s", want.FullName(), got)
		}
		return src, nil
	}

	obj, ok := val.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("expected message of type %s, got %s", want.FullName(), jsTypeDesc(val))
	}

	if typeVal := obj.Get("$type"); typeVal != nil && !goja.IsUndefined(typeVal) {
		if name, isStr := typeVal.Export().(string); isStr && name != "" {
			if protoreflect.FullName(name) != want.FullName() {
				return nil, fmt.Errorf("message type mismatch: expected %s, got %s", want.FullName(), name)
			}
			data, err := m.hostSerialize(obj)
			if err != nil {
				return nil, err
			}
			dm := dynamicpb.NewMessage(want)
			if err := proto.Unmarshal(data, dm); err != nil {
				return nil, &copyFailure{err: fmt.Errorf("error copying message: %w", err)}
			}
			return dm, nil
		}
	}

	// Plain object initialiser: populate field by field.
	return m.objectToMessage(obj, want)
}

// objectToMessage converts a plain JS object to a [dynamicpb.Message] by
// iterating the message descriptor's fields and extracting matching
// properties from the object.
func (m *Module) objectToMessage(obj *goja.Object, msgDesc protoreflect.MessageDescriptor) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(msgDesc)
	fields := msgDesc.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		fieldVal := obj.Get(string(fd.Name()))
		if fieldVal == nil || goja.IsUndefined(fieldVal) || goja.IsNull(fieldVal) {
			continue
		}
		switch {
		case fd.IsMap():
			if err := m.populateMap(msg, fd, fieldVal); err != nil {
				return nil, err
			}
		case fd.IsList():
			if err := m.populateRepeated(msg, fd, fieldVal); err != nil {
				return nil, err
			}
		case m.category(fd) == categoryMessage:
			src, err := m.messageFromHost(fieldVal, fd.Message())
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fd.Name(), err)
			}
			copyMessageContent(msg.Mutable(fd).Message(), src)
		default:
			pv, err := m.fromHostValue(fieldVal, fd)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fd.Name(), err)
			}
			msg.Set(fd, pv)
		}
	}
	return msg, nil
}

// appendMessageElement deep-copies a host message value into a freshly
// allocated element and appends it, transferring ownership to the list.
func (m *Module) appendMessageElement(list protoreflect.List, fd protoreflect.FieldDescriptor, val goja.Value) error {
	src, err := m.messageFromHost(val, fd.Message())
	if err != nil {
		return err
	}
	elem := list.NewElement().Message()
	copyMessageContent(elem, src)
	list.Append(protoreflect.ValueOfMessage(elem))
	return nil
}

// copyMessageContent replaces dst's content with src's. dst keeps its
// identity, so handles aliasing dst observe the new content. Assigning a
// slot's own aliasing handle back to it is a no-op; clearing dst first
// would empty src before the merge could read it.
func copyMessageContent(dst, src protoreflect.Message) {
	if dst.Interface() == src.Interface() {
		return
	}
	dst.Range(func(fd protoreflect.FieldDescriptor, _ protoreflect.Value) bool {
		dst.Clear(fd)
		return true
	})
	proto.Merge(dst.Interface(), src.Interface())
}

// allocateByName resolves a message descriptor through the module's
// registries and allocates a default dynamic instance.
func (m *Module) allocateByName(fullName protoreflect.FullName) (*dynamicpb.Message, error) {
	msgDesc, err := m.findMessageDescriptor(fullName)
	if err != nil {
		return nil, fmt.Errorf("message type %q not found: %w", fullName, err)
	}
	return dynamicpb.NewMessage(msgDesc), nil
}

// allocateAndCopy allocates a native message matching the host value's
// type and fills it from the value's wire form (a single serialization).
func (m *Module) allocateAndCopy(val goja.Value) (*dynamicpb.Message, error) {
	fullName, err := m.hostFullName(val)
	if err != nil {
		return nil, err
	}
	msg, err := m.allocateByName(fullName)
	if err != nil {
		return nil, err
	}
	data, err := m.hostSerialize(val)
	if err != nil {
		return nil, err
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, &copyFailure{err: fmt.Errorf("error copying message: %w", err)}
	}
	return msg, nil
}

// jsFullName is the JS-facing implementation of pb.fullName(value).
// It returns the fully-qualified type name of a wrapped or pure-host
// message.
func (m *Module) jsFullName(call goja.FunctionCall) goja.Value {
	fullName, err := m.hostFullName(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("fullName: %s", err))
	}
	return m.runtime.ToValue(string(fullName))
}

// jsCheckType is the JS-facing implementation of
// pb.checkType(value, typeName). It throws a TypeError unless the value
// is a message of the given fully-qualified type.
func (m *Module) jsCheckType(call goja.FunctionCall) goja.Value {
	fullName, err := m.hostFullName(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("checkType: %s", err))
	}
	want := call.Argument(1).String()
	if string(fullName) != want {
		panic(m.runtime.NewTypeError("checkType: expected message of type %q, got %q", want, fullName))
	}
	return goja.Undefined()
}

// jsNewMessage is the JS-facing implementation of
// pb.newMessage(fullName). It allocates a default instance of the named
// type.
func (m *Module) jsNewMessage(call goja.FunctionCall) goja.Value {
	fullName := call.Argument(0).String()
	msg, err := m.allocateByName(protoreflect.FullName(fullName))
	if err != nil {
		panic(m.runtime.NewGoError(err))
	}
	return m.wrapMessage(msg)
}
