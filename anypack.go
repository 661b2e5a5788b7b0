package gojaprotoview

import (
	"strings"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/anypb"
)

const anyFullName = protoreflect.FullName("google.protobuf.Any")

// jsAnyPack is the JS-facing implementation of pb.anyPack(msg).
// It packs a wrapped or pure-host message into a new
// google.protobuf.Any, serializing the source exactly once.
func (m *Module) jsAnyPack(call goja.FunctionCall) goja.Value {
	arg := call.Argument(0)
	fullName, err := m.hostFullName(arg)
	if err != nil {
		panic(m.runtime.NewTypeError("anyPack: %s", err))
	}
	data, err := m.hostSerialize(arg)
	if err != nil {
		panic(m.runtime.NewTypeError("anyPack: %s", err))
	}
	anyMsg := &anypb.Any{
		TypeUrl: "type.googleapis.com/" + string(fullName),
		Value:   data,
	}
	return m.wrapMessage(anyMsg.ProtoReflect())
}

// jsAnyUnpack is the JS-facing implementation of
// pb.anyUnpack(any[, msgType]). It unpacks a google.protobuf.Any into a
// new wrapped message. When a messageType constructor is given the
// packed type must match it; otherwise the type is resolved from the
// type URL through the module's registries.
func (m *Module) jsAnyUnpack(call goja.FunctionCall) goja.Value {
	anyMsg, err := m.unwrapMessage(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("anyUnpack: %s", err))
	}
	if got := anyMsg.Descriptor().FullName(); got != anyFullName {
		panic(m.runtime.NewTypeError("anyUnpack: expected %s, got %s", anyFullName, got))
	}

	fields := anyMsg.Descriptor().Fields()
	typeURL := anyMsg.Get(fields.ByName("type_url")).String()
	value := anyMsg.Get(fields.ByName("value")).Bytes()
	packedName := protoreflect.FullName(lastSlash(typeURL))

	var msgDesc protoreflect.MessageDescriptor
	if ctorArg := call.Argument(1); ctorArg != nil && !goja.IsUndefined(ctorArg) {
		msgDesc, err = m.extractMessageDesc(ctorArg)
		if err != nil {
			panic(m.runtime.NewTypeError("anyUnpack: %s", err))
		}
		if msgDesc.FullName() != packedName {
			panic(m.runtime.NewTypeError("anyUnpack: Any contains %q, not %q", packedName, msgDesc.FullName()))
		}
	} else {
		msgDesc, err = m.findMessageDescriptor(packedName)
		if err != nil {
			panic(m.runtime.NewTypeError("anyUnpack: message type %q not found", packedName))
		}
	}

	msg := dynamicpb.NewMessage(msgDesc)
	if err := proto.Unmarshal(value, msg); err != nil {
		panic(m.runtime.NewGoError(err))
	}
	return m.wrapMessage(msg)
}

// jsAnyIs is the JS-facing implementation of pb.anyIs(any, typeName).
// It reports whether the Any's packed type matches the given
// fully-qualified name. typeName may also be a messageType constructor.
func (m *Module) jsAnyIs(call goja.FunctionCall) goja.Value {
	anyMsg, err := m.unwrapMessage(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewTypeError("anyIs: %s", err))
	}
	if got := anyMsg.Descriptor().FullName(); got != anyFullName {
		panic(m.runtime.NewTypeError("anyIs: expected %s, got %s", anyFullName, got))
	}

	var want string
	typeArg := call.Argument(1)
	if msgDesc, err := m.extractMessageDesc(typeArg); err == nil {
		want = string(msgDesc.FullName())
	} else {
		want = typeArg.String()
	}

	fields := anyMsg.Descriptor().Fields()
	typeURL := anyMsg.Get(fields.ByName("type_url")).String()
	return m.runtime.ToValue(lastSlash(typeURL) == want)
}

// lastSlash returns the portion of s after the final '/', or s itself
// when there is none. Any type URLs carry the full name there.
func lastSlash(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
