package gojaprotoview

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/reflect/protoreflect"
)

const (
	maxSafeInteger = int64(1<<53 - 1)
	minSafeInteger = -maxSafeInteger
)

// int64ToHost converts an int64 to a JS value. Values within the safe
// integer range are returned as numbers; values outside use BigInt.
func (m *Module) int64ToHost(v int64) goja.Value {
	if v >= minSafeInteger && v <= maxSafeInteger {
		return m.runtime.ToValue(v)
	}
	return m.runtime.ToValue(new(big.Int).SetInt64(v))
}

// uint64ToHost converts a uint64 to a JS value. Values within the safe
// integer range are returned as numbers; values outside use BigInt.
func (m *Module) uint64ToHost(v uint64) goja.Value {
	if v <= uint64(maxSafeInteger) {
		return m.runtime.ToValue(v)
	}
	return m.runtime.ToValue(new(big.Int).SetUint64(v))
}

// hostToInt64 casts a JS value to int64. Accepts numbers with integral
// values and BigInt; everything else is a type error. Coercion is
// deliberately strict: a failed cast must raise, not guess.
func (m *Module) hostToInt64(val goja.Value) (int64, error) {
	switch v := val.Export().(type) {
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got fractional number %v", v)
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("value %v overflows int64", v)
		}
		return int64(v), nil
	case *big.Int:
		if !v.IsInt64() {
			return 0, fmt.Errorf("BigInt value %s overflows int64", v.String())
		}
		return v.Int64(), nil
	default:
		return 0, fmt.Errorf("expected number, got %s", jsTypeDesc(val))
	}
}

// hostToUint64 casts a JS value to uint64, rejecting negatives.
func (m *Module) hostToUint64(val goja.Value) (uint64, error) {
	switch v := val.Export().(type) {
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned field", v)
		}
		return uint64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got fractional number %v", v)
		}
		if v < 0 {
			return 0, fmt.Errorf("negative value %v for unsigned field", v)
		}
		if v >= math.MaxUint64 {
			return 0, fmt.Errorf("value %v overflows uint64", v)
		}
		return uint64(v), nil
	case *big.Int:
		if v.Sign() < 0 {
			return 0, fmt.Errorf("negative BigInt for unsigned field")
		}
		if !v.IsUint64() {
			return 0, fmt.Errorf("BigInt value %s overflows uint64", v.String())
		}
		return v.Uint64(), nil
	default:
		return 0, fmt.Errorf("expected number, got %s", jsTypeDesc(val))
	}
}

// hostToInt32 casts to int64 and range-checks into int32.
func (m *Module) hostToInt32(val goja.Value) (int32, error) {
	v, err := m.hostToInt64(val)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("value %d overflows int32", v)
	}
	return int32(v), nil
}

// hostToUint32 casts to uint64 and range-checks into uint32.
func (m *Module) hostToUint32(val goja.Value) (uint32, error) {
	v, err := m.hostToUint64(val)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("value %d overflows uint32", v)
	}
	return uint32(v), nil
}

// hostToFloat casts a JS value to float64. Accepts numbers and BigInt.
func (m *Module) hostToFloat(val goja.Value) (float64, error) {
	switch v := val.Export().(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %s", jsTypeDesc(val))
	}
}

// hostToBool casts a JS value to bool. Only actual booleans are
// accepted; JS truthiness would silently mask type errors.
func (m *Module) hostToBool(val goja.Value) (bool, error) {
	if b, ok := val.Export().(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("expected boolean, got %s", jsTypeDesc(val))
}

// hostToString casts a JS value to string. Byte buffers are rejected:
// text and opaque bytes are distinct host kinds, discriminated only by
// the descriptor's wire type.
func (m *Module) hostToString(val goja.Value) (string, error) {
	if s, ok := val.Export().(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string, got %s", jsTypeDesc(val))
}

// hostToEnum casts a JS value to a protobuf enum Value. Accepts numeric
// values and symbolic value names.
func (m *Module) hostToEnum(val goja.Value, fd protoreflect.FieldDescriptor) (protoreflect.Value, error) {
	if s, ok := val.Export().(string); ok {
		enumDesc := fd.Enum()
		evd := enumDesc.Values().ByName(protoreflect.Name(s))
		if evd == nil {
			return protoreflect.Value{}, fmt.Errorf("unknown enum value name %q for %s", s, enumDesc.FullName())
		}
		return protoreflect.ValueOfEnum(evd.Number()), nil
	}

	v, err := m.hostToInt64(val)
	if err != nil {
		return protoreflect.Value{}, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return protoreflect.Value{}, fmt.Errorf("enum value %d overflows int32", v)
	}
	return protoreflect.ValueOfEnum(protoreflect.EnumNumber(int32(v))), nil
}

// mapKeyFromHost converts a JS value to a [protoreflect.MapKey]. Keys
// that arrive from plain-object initialisers are strings regardless of
// the key type, so numeric and bool key kinds additionally accept their
// string spellings.
func (m *Module) mapKeyFromHost(val goja.Value, fd protoreflect.FieldDescriptor) (protoreflect.MapKey, error) {
	exported := val.Export()

	switch fd.Kind() {
	case protoreflect.BoolKind:
		switch v := exported.(type) {
		case bool:
			return protoreflect.ValueOfBool(v).MapKey(), nil
		case string:
			switch v {
			case "true":
				return protoreflect.ValueOfBool(true).MapKey(), nil
			case "false":
				return protoreflect.ValueOfBool(false).MapKey(), nil
			}
			return protoreflect.MapKey{}, fmt.Errorf("invalid bool map key %q", v)
		}
		return protoreflect.MapKey{}, fmt.Errorf("expected boolean map key, got %s", jsTypeDesc(val))

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		v, err := m.mapKeyInt(val, exported)
		if err != nil {
			return protoreflect.MapKey{}, err
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return protoreflect.MapKey{}, fmt.Errorf("map key value %d overflows int32", v)
		}
		return protoreflect.ValueOfInt32(int32(v)).MapKey(), nil

	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		v, err := m.mapKeyInt(val, exported)
		if err != nil {
			return protoreflect.MapKey{}, err
		}
		return protoreflect.ValueOfInt64(v).MapKey(), nil

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		v, err := m.mapKeyUint(val, exported)
		if err != nil {
			return protoreflect.MapKey{}, err
		}
		if v > math.MaxUint32 {
			return protoreflect.MapKey{}, fmt.Errorf("map key value %d overflows uint32", v)
		}
		return protoreflect.ValueOfUint32(uint32(v)).MapKey(), nil

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		v, err := m.mapKeyUint(val, exported)
		if err != nil {
			return protoreflect.MapKey{}, err
		}
		return protoreflect.ValueOfUint64(v).MapKey(), nil

	case protoreflect.StringKind:
		s, err := m.hostToString(val)
		if err != nil {
			return protoreflect.MapKey{}, err
		}
		return protoreflect.ValueOfString(s).MapKey(), nil

	default:
		return protoreflect.MapKey{}, fmt.Errorf("unsupported map key kind: %s", fd.Kind())
	}
}

func (m *Module) mapKeyInt(val goja.Value, exported interface{}) (int64, error) {
	if s, ok := exported.(string); ok {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer map key %q", s)
		}
		return v, nil
	}
	return m.hostToInt64(val)
}

func (m *Module) mapKeyUint(val goja.Value, exported interface{}) (uint64, error) {
	if s, ok := exported.(string); ok {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid unsigned map key %q", s)
		}
		return v, nil
	}
	return m.hostToUint64(val)
}

// mapKeyToHost converts a [protoreflect.MapKey] to a JS value.
func (m *Module) mapKeyToHost(mk protoreflect.MapKey, fd protoreflect.FieldDescriptor) goja.Value {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return m.runtime.ToValue(mk.Bool())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return m.runtime.ToValue(mk.Int())
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return m.int64ToHost(mk.Int())
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return m.runtime.ToValue(mk.Uint())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return m.uint64ToHost(mk.Uint())
	default:
		return m.runtime.ToValue(mk.String())
	}
}

// populateRepeated appends the elements of a JS array-like value to a
// repeated field. Used by plain-object initialisers; element conversion
// failures abort with elements appended so far retained.
func (m *Module) populateRepeated(msg protoreflect.Message, fd protoreflect.FieldDescriptor, val goja.Value) error {
	obj := val.ToObject(m.runtime)
	if obj == nil {
		return fmt.Errorf("expected array for repeated field %s", fd.Name())
	}

	lenVal := obj.Get("length")
	if lenVal == nil || goja.IsUndefined(lenVal) {
		return fmt.Errorf("expected array for repeated field %s", fd.Name())
	}

	length := int(lenVal.ToInteger())
	list := msg.Mutable(fd).List()
	for i := 0; i < length; i++ {
		elem := obj.Get(strconv.Itoa(i))
		if elem == nil || goja.IsUndefined(elem) || goja.IsNull(elem) {
			continue
		}
		if err := m.appendElement(list, fd, elem); err != nil {
			return fmt.Errorf("repeated field %s[%d]: %w", fd.Name(), i, err)
		}
	}

	return nil
}

// appendElement appends one host value to a repeated field's list,
// deep-copying message elements.
func (m *Module) appendElement(list protoreflect.List, fd protoreflect.FieldDescriptor, val goja.Value) error {
	if m.category(fd) == categoryMessage {
		return m.appendMessageElement(list, fd, val)
	}
	pv, err := m.fromHostValue(val, fd)
	if err != nil {
		return err
	}
	list.Append(pv)
	return nil
}

// populateMap fills a map field from a JS Map (entries() protocol) or a
// plain object.
func (m *Module) populateMap(msg protoreflect.Message, fd protoreflect.FieldDescriptor, val goja.Value) error {
	obj := val.ToObject(m.runtime)
	if obj == nil {
		return fmt.Errorf("expected object for map field %s", fd.Name())
	}

	keyDesc := fd.MapKey()
	protoMap := msg.Mutable(fd).Map()

	// JS Map and friends expose entries().
	entriesVal := obj.Get("entries")
	if entriesVal != nil && !goja.IsUndefined(entriesVal) {
		if entriesFn, ok := goja.AssertFunction(entriesVal); ok {
			iterVal, callErr := entriesFn(obj)
			if callErr == nil {
				iterObj := iterVal.ToObject(m.runtime)
				if nextFn, nextOk := goja.AssertFunction(iterObj.Get("next")); nextOk {
					for {
						result, err := nextFn(iterObj)
						if err != nil {
							return fmt.Errorf("map field %s iterator: %w", fd.Name(), err)
						}
						resObj := result.ToObject(m.runtime)
						if resObj.Get("done").ToBoolean() {
							break
						}
						entry := resObj.Get("value").ToObject(m.runtime)
						k := entry.Get("0")
						v := entry.Get("1")

						if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
							continue
						}

						mk, err := m.mapKeyFromHost(k, keyDesc)
						if err != nil {
							return fmt.Errorf("map field %s key: %w", fd.Name(), err)
						}
						if err := m.setMapValue(protoMap, fd, mk, v); err != nil {
							return fmt.Errorf("map field %s value: %w", fd.Name(), err)
						}
					}
					return nil
				}
			}
		}
	}

	// Plain object: iterate own property keys.
	for _, key := range obj.Keys() {
		v := obj.Get(key)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		mk, err := m.mapKeyFromHost(m.runtime.ToValue(key), keyDesc)
		if err != nil {
			return fmt.Errorf("map field %s key %q: %w", fd.Name(), key, err)
		}
		if err := m.setMapValue(protoMap, fd, mk, v); err != nil {
			return fmt.Errorf("map field %s value for key %q: %w", fd.Name(), key, err)
		}
	}

	return nil
}

// setMapValue stores one host value into a map field, deep-copying
// message values.
func (m *Module) setMapValue(protoMap protoreflect.Map, fd protoreflect.FieldDescriptor, mk protoreflect.MapKey, val goja.Value) error {
	valueDesc := fd.MapValue()
	if m.category(valueDesc) == categoryMessage {
		src, err := m.messageFromHost(val, valueDesc.Message())
		if err != nil {
			return err
		}
		entry := protoMap.NewValue().Message()
		copyMessageContent(entry, src)
		protoMap.Set(mk, protoreflect.ValueOfMessage(entry))
		return nil
	}
	mv, err := m.fromHostValue(val, valueDesc)
	if err != nil {
		return err
	}
	protoMap.Set(mk, mv)
	return nil
}
