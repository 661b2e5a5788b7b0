// Package gojaprotoview exposes live Protocol Buffers messages to the
// [goja] JavaScript runtime as attribute-addressable objects with mutable
// repeated-field and map-field views, implemented entirely on the protobuf
// reflection API (protoreflect + dynamicpb) rather than generated
// accessors.
//
// # Why Views?
//
// Unlike codecs that convert a message into plain host values, the wrappers
// returned by this package alias the underlying message storage. Reading a
// sub-message field returns a handle onto the same memory, so mutations
// made through the handle are visible through the parent, and vice versa.
// Repeated and map fields are exposed as container views that read and
// write the field in place. A view holds a reference to its parent message
// and keeps it alive for as long as the view itself is referenced.
//
// # Overview
//
// The module exposes its functionality through the [goja_nodejs/require]
// module system, making it available to JavaScript code via:
//
//	const pb = require('protoview');
//
// # JavaScript API
//
// Descriptor loading:
//   - pb.loadDescriptorSet(bytes) — loads a serialized FileDescriptorSet
//   - pb.loadFileDescriptorProto(bytes) — loads a single FileDescriptorProto
//
// Message types:
//   - pb.messageType(fullName) — looks up a message type by fully-qualified name
//   - pb.enumType(fullName) — looks up an enum type by fully-qualified name
//   - pb.newMessage(fullName) — allocates a default instance by name
//
// Attribute access:
//   - pb.getAttr(msg, name) — field value, or a live view for repeated/map fields
//   - pb.setAttr(msg, name, value) — singular fields only; repeated and map
//     fields are mutated through their views, never reassigned
//
// Serialization:
//   - pb.encode(msg) — encodes a wrapped or pure-host message to binary
//   - pb.decode(msgType, bytes) — decodes binary data to a message
//   - pb.toJSON(msg) — converts a message to its proto3 JSON representation
//   - pb.fromJSON(msgType, obj) — creates a message from a proto3 JSON object
//
// Message utilities:
//   - pb.equals(msg1, msg2) — compares two messages for structural equality
//   - pb.clone(msg) — deep copy; accepts wrapped or pure-host messages
//   - pb.isMessage(value[, typeName]) — type guard for wrapped messages
//   - pb.fullName(value) — fully-qualified type name of a wrapped or pure-host message
//   - pb.checkType(value, typeName) — throws unless the type name matches
//   - pb.isFieldSet(msg, fieldName) — checks whether a field has been explicitly set
//   - pb.clearField(msg, fieldName) — resets a field to its default value
//   - pb.anyPack(msg) — wraps a message into a google.protobuf.Any
//   - pb.anyUnpack(any, msgType) — extracts a message from an Any
//   - pb.anyIs(any, typeNameOrMsgType) — checks if an Any contains a given type
//
// # Message Wrapper
//
// Messages returned by messageType constructors, decode, and sub-message
// field reads are JavaScript objects with the following members:
//   - msg.get(fieldName) — field value or container view
//   - msg.set(fieldName, value) — sets a singular field
//   - msg.has(fieldName) — checks whether a field is set
//   - msg.clear(fieldName) — clears a field
//   - msg.whichOneof(name) — returns the set field name in a oneof group
//   - msg.clearOneof(name) — clears whichever field is set in a oneof group
//   - msg.serializeBinary() — binary wire bytes (Uint8Array)
//   - msg.toString() — one-line debug form
//   - msg.$type — read-only fully-qualified type name
//
// Any JavaScript object carrying a $type string property and a
// serializeBinary() method is accepted wherever a message value is
// expected (a "pure-host" message); content crosses over via a single
// serialize-then-parse, after the type name has been checked.
//
// # Type Mapping
//
// Scalar protobuf types are mapped to JavaScript types:
//   - int32, sint32, sfixed32 → number
//   - int64, sint64, sfixed64 → number (or BigInt for large values)
//   - uint32, fixed32 → number
//   - uint64, fixed64 → number (or BigInt for large values)
//   - float, double → number
//   - bool → boolean
//   - string → string
//   - bytes → Uint8Array
//
// Conversions from JavaScript are strict: a string is never accepted for a
// numeric field, a string is never accepted for a bytes field, and integer
// fields reject fractional numbers. Failed conversions throw a TypeError
// and leave the message unchanged.
//
// # Container Views
//
// Repeated fields: length accessor plus get(i), set(i, v), add([v]),
// insert(i, v), delete(i), extend(array), clear(), forEach(cb),
// toString(). Indexes are bounds-checked (RangeError).
//
// Map fields: size accessor plus get(k), tryGet(k), set(k, v), has(k),
// contains(k), delete(k), clear(), forEach(cb), entries(), toString().
// get(k) on a missing key inserts and returns a default-valued entry,
// matching protobuf map semantics in dynamic languages; tryGet(k) is the
// non-inserting variant.
//
// # Usage
//
//	registry := require.NewRegistry()
//	registry.RegisterNativeModule("protoview", gojaprotoview.Require())
//
//	rt := goja.New()
//	registry.Enable(rt)
//
//	rt.RunString(`
//	    const pb = require('protoview');
//	    pb.loadDescriptorSet(descriptorBytes);
//	    const MyMsg = pb.messageType('my.package.MyMessage');
//	    const msg = new MyMsg();
//	    msg.set('name', 'hello');
//	    msg.get('tags').set('env', 'prod');
//	    const encoded = pb.encode(msg);
//	`)
//
// [goja]: github.com/dop251/goja
// [goja_nodejs/require]: github.com/dop251/goja_nodejs/require
package gojaprotoview
