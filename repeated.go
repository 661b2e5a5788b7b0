package gojaprotoview

import (
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// wrapRepeatedField creates a JS view over a repeated field. The view
// holds the parent message and reads/writes the field in place; it is a
// window onto the field, not a snapshot.
func (m *Module) wrapRepeatedField(msg protoreflect.Message, fd protoreflect.FieldDescriptor) *goja.Object {
	obj := m.runtime.NewObject()

	// length — read-only dynamic accessor.
	_ = obj.DefineAccessorProperty("length",
		m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
			return m.runtime.ToValue(msg.Get(fd).List().Len())
		}),
		nil,
		goja.FLAG_FALSE,
		goja.FLAG_TRUE,
	)

	// get(index) — element at index. Message elements alias storage.
	_ = obj.Set("get", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		list := msg.Mutable(fd).List()
		idx := m.checkListIndex(call.Argument(0), list.Len())
		return m.toHostValue(list.Get(idx), fd)
	}))

	// set(index, value) — replace element at index. Message elements are
	// deep-copied into the existing slot so prior handles stay valid.
	_ = obj.Set("set", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		list := msg.Mutable(fd).List()
		idx := m.checkListIndex(call.Argument(0), list.Len())
		val := call.Argument(1)
		if m.category(fd) == categoryMessage {
			src, err := m.messageFromHost(val, fd.Message())
			if err != nil {
				m.throwFieldError(fd, err)
			}
			copyMessageContent(list.Get(idx).Message(), src)
			return goja.Undefined()
		}
		pv, err := m.fromHostValue(val, fd)
		if err != nil {
			m.throwFieldError(fd, err)
		}
		list.Set(idx, pv)
		return goja.Undefined()
	}))

	// add([value]) — append. Without an argument, appends a
	// default-valued element and returns it.
	_ = obj.Set("add", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		list := msg.Mutable(fd).List()
		val := call.Argument(0)
		if goja.IsUndefined(val) {
			if m.category(fd) == categoryMessage {
				return m.wrapMessage(list.AppendMutable().Message())
			}
			list.Append(list.NewElement())
			return m.toHostValue(list.Get(list.Len()-1), fd)
		}
		if goja.IsNull(val) {
			panic(m.runtime.NewTypeError("cannot add null to repeated field %q", fd.Name()))
		}
		if err := m.appendElement(list, fd, val); err != nil {
			m.throwFieldError(fd, err)
		}
		return goja.Undefined()
	}))

	// extend(array) — append every element of an array-like value. Not
	// transactional: elements appended before a failure remain.
	_ = obj.Set("extend", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		val := call.Argument(0)
		var lenVal goja.Value
		arr, _ := val.(*goja.Object)
		if arr != nil {
			lenVal = arr.Get("length")
		}
		if arr == nil || lenVal == nil || goja.IsUndefined(lenVal) {
			panic(m.runtime.NewTypeError("extend: value is not a sequence"))
		}
		list := msg.Mutable(fd).List()
		length := int(lenVal.ToInteger())
		for i := 0; i < length; i++ {
			if err := m.appendElement(list, fd, arr.Get(strconv.Itoa(i))); err != nil {
				m.throwFieldError(fd, err)
			}
		}
		return goja.Undefined()
	}))

	// insert(index, value) — append, then bubble the new element down to
	// index by pairwise swaps. Index may be one past the end.
	_ = obj.Set("insert", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		list := msg.Mutable(fd).List()
		idx := m.checkListIndex(call.Argument(0), list.Len()+1)
		if err := m.appendElement(list, fd, call.Argument(1)); err != nil {
			m.throwFieldError(fd, err)
		}
		for j := list.Len() - 1; j > idx; j-- {
			swapListElements(list, j, j-1)
		}
		return goja.Undefined()
	}))

	// delete(index) — bubble the element up to the last position by
	// pairwise swaps, then drop the tail. Safe for every element kind,
	// sub-messages included.
	_ = obj.Set("delete", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		list := msg.Mutable(fd).List()
		idx := m.checkListIndex(call.Argument(0), list.Len())
		last := list.Len() - 1
		for j := idx; j < last; j++ {
			swapListElements(list, j, j+1)
		}
		list.Truncate(last)
		return goja.Undefined()
	}))

	// clear() — reset the field to empty.
	_ = obj.Set("clear", m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
		msg.Clear(fd)
		return goja.Undefined()
	}))

	// forEach(callback) — iterate elements as (value, index).
	_ = obj.Set("forEach", m.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(m.runtime.NewTypeError("forEach requires a function"))
		}
		list := msg.Get(fd).List()
		for i := 0; i < list.Len(); i++ {
			val := m.toHostValue(list.Get(i), fd)
			if _, err := callback(goja.Undefined(), val, m.runtime.ToValue(i)); err != nil {
				panic(err)
			}
		}
		return goja.Undefined()
	}))

	// toString() — "[]" when empty, "[e1, e2, …]" otherwise.
	_ = obj.Set("toString", m.runtime.ToValue(func(goja.FunctionCall) goja.Value {
		list := msg.Get(fd).List()
		elems := make([]string, list.Len())
		for i := 0; i < list.Len(); i++ {
			elems[i] = m.valueRepr(list.Get(i), fd)
		}
		return m.runtime.ToValue("[" + strings.Join(elems, ", ") + "]")
	}))

	return obj
}

// checkListIndex casts a host index and enforces 0 <= idx < allowed,
// panicking with a JS RangeError on violation. allowed is the current
// size, or size+1 for one-past-end insertion.
func (m *Module) checkListIndex(val goja.Value, allowed int) int {
	idx, err := m.hostToInt64(val)
	if err != nil {
		panic(m.runtime.NewTypeError("index: %s", err))
	}
	if idx < 0 || idx >= int64(allowed) {
		panic(m.newRangeError("index %d out of range [0, %d)", idx, allowed))
	}
	return int(idx)
}

// swapListElements exchanges two elements of a repeated field.
func swapListElements(list protoreflect.List, i, j int) {
	vi, vj := list.Get(i), list.Get(j)
	list.Set(i, vj)
	list.Set(j, vi)
}
