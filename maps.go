package gojaprotoview

import (
	"sort"
	"strings"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// wrapMapField creates a JS view over a map field, keyed through native
// reflection map lookup. Like the repeated view, it reads and writes the
// parent message's field in place.
func (m *Module) wrapMapField(msg protoreflect.Message, fd protoreflect.FieldDescriptor) *goja.Object {
	obj := m.runtime.NewObject()
	keyDesc := fd.MapKey()
	valueDesc := fd.MapValue()

	mapKey := func(call goja.FunctionCall) protoreflect.MapKey {
		mk, err := m.mapKeyFromHost(call.Argument(0), keyDesc)
		if err != nil {
			panic(m.runtime.NewTypeError("map field %q key: %s", fd.Name(), err))
		}
		return mk
	}

	// size — read-only dynamic accessor.
	_ = obj.DefineAccessorProperty("size",
		m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
			return m.runtime.ToValue(msg.Get(fd).Map().Len())
		}),
		nil,
		goja.FLAG_FALSE,
		goja.FLAG_TRUE,
	)

	// get(key) — value for key. A missing key is inserted with a
	// default value and that value returned (a mutating read, matching
	// protobuf map semantics in dynamic languages). Message values alias
	// the stored entry.
	_ = obj.Set("get", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		mk := mapKey(call)
		protoMap := msg.Mutable(fd).Map()
		if m.category(valueDesc) == categoryMessage {
			return m.wrapMessage(protoMap.Mutable(mk).Message())
		}
		if !protoMap.Has(mk) {
			protoMap.Set(mk, protoMap.NewValue())
		}
		return m.toHostValue(protoMap.Get(mk), valueDesc)
	}))

	// tryGet(key) — non-inserting read; undefined when absent.
	_ = obj.Set("tryGet", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		mk := mapKey(call)
		v := msg.Get(fd).Map().Get(mk)
		if !v.IsValid() {
			return goja.Undefined()
		}
		return m.toHostValue(v, valueDesc)
	}))

	// set(key, value) — store value for key. Message values are
	// deep-copied in. Null/undefined removes the entry.
	_ = obj.Set("set", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		mk := mapKey(call)
		v := call.Argument(1)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			msg.Mutable(fd).Map().Clear(mk)
			return goja.Undefined()
		}
		if err := m.setMapValue(msg.Mutable(fd).Map(), fd, mk, v); err != nil {
			m.throwFieldError(fd, err)
		}
		return goja.Undefined()
	}))

	// has(key) / contains(key) — non-inserting presence check.
	hasFn := m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		mk := mapKey(call)
		return m.runtime.ToValue(msg.Get(fd).Map().Has(mk))
	})
	_ = obj.Set("has", hasFn)
	_ = obj.Set("contains", hasFn)

	// delete(key) — remove entry.
	_ = obj.Set("delete", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		mk := mapKey(call)
		msg.Mutable(fd).Map().Clear(mk)
		return goja.Undefined()
	}))

	// clear() — remove all entries.
	_ = obj.Set("clear", m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
		msg.Clear(fd)
		return goja.Undefined()
	}))

	// forEach(callback) — iterate entries as (value, key).
	_ = obj.Set("forEach", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(m.runtime.NewTypeError("forEach requires a function"))
		}
		protoMap := msg.Get(fd).Map()
		protoMap.Range(func(mk protoreflect.MapKey, v protoreflect.Value) bool {
			jk := m.mapKeyToHost(mk, keyDesc)
			jv := m.toHostValue(v, valueDesc)
			if _, err := callback(goja.Undefined(), jv, jk); err != nil {
				panic(err)
			}
			return true
		})
		return goja.Undefined()
	}))

	// entries() — iterator of [key, value] pairs.
	_ = obj.Set("entries", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		var pairs []goja.Value
		protoMap := msg.Get(fd).Map()
		protoMap.Range(func(mk protoreflect.MapKey, v protoreflect.Value) bool {
			pair := m.runtime.NewArray()
			_ = pair.Set("0", m.mapKeyToHost(mk, keyDesc))
			_ = pair.Set("1", m.toHostValue(v, valueDesc))
			pairs = append(pairs, pair)
			return true
		})

		idx := 0
		iter := m.runtime.NewObject()
		_ = iter.Set("next", m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
			result := m.runtime.NewObject()
			if idx >= len(pairs) {
				_ = result.Set("done", true)
				_ = result.Set("value", goja.Undefined())
			} else {
				_ = result.Set("done", false)
				_ = result.Set("value", pairs[idx])
				idx++
			}
			return result
		}))
		return iter
	}))

	// toString() — "{}" when empty, "{k1: v1, k2: v2, …}" otherwise,
	// entries sorted by key repr for determinism (reflection map order
	// is arbitrary).
	_ = obj.Set("toString", m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
		protoMap := msg.Get(fd).Map()
		var entries []string
		protoMap.Range(func(mk protoreflect.MapKey, v protoreflect.Value) bool {
			entries = append(entries, m.valueRepr(mk.Value(), keyDesc)+": "+m.valueRepr(v, valueDesc))
			return true
		})
		sort.Strings(entries)
		return m.runtime.ToValue("{" + strings.Join(entries, ", ") + "}")
	}))

	return obj
}
