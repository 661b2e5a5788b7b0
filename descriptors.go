package gojaprotoview

import (
	"strconv"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Schema loading. Descriptors arrive as serialized descriptorpb payloads
// (the output of protoc --descriptor_set_out) and are registered into the
// module's local registries, never the process-global ones, so two
// modules on the same process can hold different schemas for the same
// names. A file that is already present is skipped rather than rejected:
// loading the same set twice is a no-op, and overlapping sets (shared
// dependency files) load cleanly.

// jsLoadDescriptorSet is the JS-facing implementation of
// pb.loadDescriptorSet(bytes). Returns an array of the fully-qualified
// message and enum names registered by this call.
func (m *Module) jsLoadDescriptorSet(call goja.FunctionCall) goja.Value {
	data, err := m.extractBytes(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewGoError(err))
	}

	names, err := m.loadDescriptorSetBytes(data)
	if err != nil {
		panic(m.runtime.NewGoError(err))
	}

	return m.namesArray(names)
}

// jsLoadFileDescriptorProto is the JS-facing implementation of
// pb.loadFileDescriptorProto(bytes), the single-file variant. The file's
// imports must already be resolvable (previously loaded, or known to the
// configured file registry).
func (m *Module) jsLoadFileDescriptorProto(call goja.FunctionCall) goja.Value {
	data, err := m.extractBytes(call.Argument(0))
	if err != nil {
		panic(m.runtime.NewGoError(err))
	}

	names, err := m.loadFileDescriptorProtoBytes(data)
	if err != nil {
		panic(m.runtime.NewGoError(err))
	}

	return m.namesArray(names)
}

func (m *Module) namesArray(names []string) goja.Value {
	arr := m.runtime.NewArray()
	for i, name := range names {
		_ = arr.Set(strconv.Itoa(i), m.runtime.ToValue(name))
	}
	return arr
}

// loadDescriptorSetBytes parses a serialized FileDescriptorSet and
// registers every new file's types. Files resolve their imports against
// earlier files in the same set, so a topologically ordered set (as
// protoc emits with --include_imports) loads in one call.
func (m *Module) loadDescriptorSetBytes(data []byte) ([]string, error) {
	fds := new(descriptorpb.FileDescriptorSet)
	if err := proto.Unmarshal(data, fds); err != nil {
		return nil, err
	}

	resolver := m.fileResolver()

	var names []string
	for _, fdp := range fds.GetFile() {
		if _, err := m.localFiles.FindFileByPath(fdp.GetName()); err == nil {
			continue
		}

		fd, err := protodesc.NewFile(fdp, resolver)
		if err != nil {
			return nil, err
		}
		if regErr := m.localFiles.RegisterFile(fd); regErr != nil {
			// The FindFileByPath check above catches already-registered
			// paths; anything RegisterFile still rejects is a duplicate
			// under another name, skipped the same way.
			continue
		}
		names = append(names, m.registerFileTypes(fd)...)
	}
	return names, nil
}

// loadFileDescriptorProtoBytes parses and registers one serialized
// FileDescriptorProto.
func (m *Module) loadFileDescriptorProtoBytes(data []byte) ([]string, error) {
	fdp := new(descriptorpb.FileDescriptorProto)
	if err := proto.Unmarshal(data, fdp); err != nil {
		return nil, err
	}

	if _, err := m.localFiles.FindFileByPath(fdp.GetName()); err == nil {
		return nil, nil
	}

	fd, err := protodesc.NewFile(fdp, m.fileResolver())
	if err != nil {
		return nil, err
	}
	if regErr := m.localFiles.RegisterFile(fd); regErr != nil {
		return nil, nil
	}
	return m.registerFileTypes(fd), nil
}

// registerFileTypes walks every message and enum the file declares,
// nested declarations included, and registers a dynamic type for each in
// the module's local type registry. Map-entry messages register too;
// they are harmless and filtering them buys nothing. Returns the names
// registered by this call.
func (m *Module) registerFileTypes(fd protoreflect.FileDescriptor) []string {
	var names []string
	m.registerMessageTree(fd.Messages(), &names)
	m.registerEnumSet(fd.Enums(), &names)
	return names
}

func (m *Module) registerMessageTree(msgs protoreflect.MessageDescriptors, names *[]string) {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if err := m.localTypes.RegisterMessage(dynamicpb.NewMessageType(md)); err == nil {
			*names = append(*names, string(md.FullName()))
		}
		m.registerMessageTree(md.Messages(), names)
		m.registerEnumSet(md.Enums(), names)
	}
}

func (m *Module) registerEnumSet(enums protoreflect.EnumDescriptors, names *[]string) {
	for i := 0; i < enums.Len(); i++ {
		ed := enums.Get(i)
		if err := m.localTypes.RegisterEnum(dynamicpb.NewEnumType(ed)); err == nil {
			*names = append(*names, string(ed.FullName()))
		}
	}
}
