package gojaprotoview

import (
	"sort"
	"strconv"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Element repr formats, as shown by container views and wrapper
// toString: numbers decimal, strings single-quoted, bytes an opaque
// marker, enums symbolic, messages a one-line debug form. The message
// form is hand-rolled rather than prototext because prototext
// deliberately randomises its whitespace, which would make reprs (and
// anything asserting on them) non-deterministic.

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func intText(v int64) string {
	return strconv.FormatInt(v, 10)
}

func uintText(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func floatText(v float64, bits int) string {
	return strconv.FormatFloat(v, 'g', -1, bits)
}

func stringText(s string) string {
	return "'" + s + "'"
}

func enumText(n protoreflect.EnumNumber, fd protoreflect.FieldDescriptor) string {
	if evd := fd.Enum().Values().ByNumber(n); evd != nil {
		return string(evd.Name())
	}
	return strconv.FormatInt(int64(n), 10)
}

// messageRepr renders a message as a deterministic one-line debug
// string: set fields in field-number order, text-format-style. Empty
// messages render as "".
func messageRepr(msg protoreflect.Message) string {
	type fieldVal struct {
		fd protoreflect.FieldDescriptor
		v  protoreflect.Value
	}
	var fields []fieldVal
	msg.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		fields = append(fields, fieldVal{fd, v})
		return true
	})
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].fd.Number() < fields[j].fd.Number()
	})

	var parts []string
	for _, f := range fields {
		switch {
		case f.fd.IsMap():
			parts = append(parts, mapEntryTexts(f.fd, f.v.Map())...)
		case f.fd.IsList():
			list := f.v.List()
			for i := 0; i < list.Len(); i++ {
				parts = append(parts, fieldText(f.fd, list.Get(i)))
			}
		default:
			parts = append(parts, fieldText(f.fd, f.v))
		}
	}
	return strings.Join(parts, " ")
}

// fieldText renders one singular value of a field, text-format-style.
func fieldText(fd protoreflect.FieldDescriptor, v protoreflect.Value) string {
	name := string(fd.Name())
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		inner := messageRepr(v.Message())
		if inner == "" {
			return name + " {}"
		}
		return name + " { " + inner + " }"
	default:
		return name + ": " + scalarText(fd, v)
	}
}

// scalarText renders a non-message value inside a message debug string.
// Strings and bytes use double-quoted escaped form here, unlike the
// single-quoted element repr.
func scalarText(fd protoreflect.FieldDescriptor, v protoreflect.Value) string {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return boolText(v.Bool())
	case protoreflect.StringKind:
		return strconv.Quote(v.String())
	case protoreflect.BytesKind:
		return strconv.Quote(string(v.Bytes()))
	case protoreflect.EnumKind:
		return enumText(v.Enum(), fd)
	case protoreflect.FloatKind:
		return floatText(v.Float(), 32)
	case protoreflect.DoubleKind:
		return floatText(v.Float(), 64)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return uintText(v.Uint())
	default:
		return intText(v.Int())
	}
}

// mapEntryTexts renders a map field's entries sorted by key.
func mapEntryTexts(fd protoreflect.FieldDescriptor, pm protoreflect.Map) []string {
	keyDesc := fd.MapKey()
	valueDesc := fd.MapValue()
	name := string(fd.Name())

	type entry struct {
		sortKey string
		text    string
	}
	var entries []entry
	pm.Range(func(mk protoreflect.MapKey, v protoreflect.Value) bool {
		keyText := scalarText(keyDesc, mk.Value())
		entries = append(entries, entry{
			sortKey: keyText,
			text:    name + " { key: " + keyText + " " + fieldText(valueDesc, v) + " }",
		})
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].sortKey < entries[j].sortKey })

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.text
	}
	return texts
}
