package evaluator

import (
	"math"

	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// getMember implements property read (`obj.name`) across every runtime
// value kind: plain Objects are a string-keyed bag,
// Instances consult their Class's method/getter/field chain, Classes
// expose their static surface, and the built-in container kinds (Array,
// String, Map, Set, Promise, Generator) expose a fixed host-provided
// method table.
func (ev *Evaluator) getMember(obj runtime.Value, name string) runtime.Value {
	switch v := obj.(type) {
	case *runtime.Object:
		if val, ok := v.Get(name); ok {
			return val
		}
		return runtime.Undefined{}
	case *runtime.Instance:
		if val, ok := v.Fields[name]; ok {
			return val
		}
		if val, ok := v.Private[name]; ok {
			return val
		}
		if getter, ok := lookupGetter(v.Class, name); ok {
			return ev.invokeFunction(getter, v, nil)
		}
		if fn, ok := lookupMethod(v.Class, name); ok {
			return fn
		}
		return runtime.Undefined{}
	case *runtime.Class:
		if val, ok := v.StaticFields[name]; ok {
			return val
		}
		if fn, ok := v.StaticMethods[name]; ok {
			return fn
		}
		if getter, ok := v.Getters[name]; ok {
			return ev.invokeFunction(getter, v, nil)
		}
		if name == "name" {
			return runtime.String(v.Name)
		}
		return runtime.Undefined{}
	case *runtime.Array:
		return ev.arrayMember(v, name)
	case runtime.String:
		return stringMember(v, name)
	case *runtime.Map:
		return mapMember(v, name)
	case *runtime.Set:
		return setMember(v, name)
	case *runtime.WeakMap:
		return weakMapMember(v, name)
	case *runtime.WeakSet:
		return weakSetMember(v, name)
	case *runtime.Promise:
		return ev.promiseMember(v, name)
	case *runtime.Generator:
		return ev.generatorMember(v, name)
	case *runtime.Namespace:
		if val, ok := v.Members[name]; ok {
			return val
		}
		return runtime.Undefined{}
	case *runtime.Enum:
		if val, ok := v.Members[name]; ok {
			return val
		}
		if memberName, ok := v.Reverse[name]; ok {
			return runtime.String(memberName)
		}
		return runtime.Undefined{}
	case *runtime.Error:
		switch name {
		case "message":
			return runtime.String(v.Message)
		case "name":
			return runtime.String(v.Name)
		case "stack":
			if v.Stack != "" {
				return runtime.String(v.Name + ": " + v.Message + "\n" + v.Stack)
			}
			return runtime.String(v.Name + ": " + v.Message)
		case "cause":
			if v.Cause == nil {
				return runtime.Undefined{}
			}
			return v.Cause
		case "errors": // AggregateError
			return v.Cause
		}
		if v.Name == "SuppressedError" {
			switch name {
			case "suppressed":
				return v.Suppressed
			case "error":
				return v.Error_
			}
		}
		return runtime.Undefined{}
	case *runtime.Function:
		if val, ok := v.Properties[name]; ok {
			return val
		}
		switch name {
		case "name":
			return runtime.String(v.Name)
		case "length":
			return runtime.Number(len(v.Params))
		}
		return runtime.Undefined{}
	case *runtime.Date, *runtime.RegExp, *runtime.TypedBuffer:
		return runtime.Undefined{}
	default:
		return runtime.Undefined{}
	}
}

// setMember implements property write (`obj.name = v`).
func (ev *Evaluator) setMember(obj runtime.Value, name string, v runtime.Value) {
	switch o := obj.(type) {
	case *runtime.Object:
		o.Set(name, v)
	case *runtime.Instance:
		if setter, ok := lookupSetter(o.Class, name); ok {
			ev.invokeFunction(setter, o, []runtime.Value{v})
			return
		}
		if _, isPrivate := o.Private[name]; isPrivate {
			o.Private[name] = v
			return
		}
		o.Fields[name] = v
	case *runtime.Class:
		if setter, ok := o.Setters[name]; ok {
			ev.invokeFunction(setter, o, []runtime.Value{v})
			return
		}
		o.StaticFields[name] = v
	}
}

// getIndexed implements `obj[expr]` reads: numeric indexing for
// Array/String, string- or symbol-keyed lookup for Object, and a
// stringified-key fallback (`instance[computedName]`) for everything
// else.
func (ev *Evaluator) getIndexed(obj runtime.Value, idx runtime.Value) runtime.Value {
	switch v := obj.(type) {
	case *runtime.Array:
		i, ok := toIndex(idx)
		if !ok || i < 0 || i >= len(v.Elements) {
			return runtime.Undefined{}
		}
		return v.Elements[i]
	case runtime.String:
		i, ok := toIndex(idx)
		runes := []rune(string(v))
		if !ok || i < 0 || i >= len(runes) {
			return runtime.Undefined{}
		}
		return runtime.String(string(runes[i]))
	case *runtime.Object:
		if sym, ok := idx.(*runtime.Symbol); ok {
			if val, ok := v.GetSymbol(sym); ok {
				return val
			}
			return runtime.Undefined{}
		}
		return ev.getMember(v, toStringValue(idx))
	case *runtime.Instance:
		if sym, ok := idx.(*runtime.Symbol); ok {
			if val, ok := v.SymbolFields[sym.ID]; ok {
				return val
			}
			return runtime.Undefined{}
		}
		return ev.getMember(v, toStringValue(idx))
	default:
		if _, ok := idx.(*runtime.Symbol); ok {
			return runtime.Undefined{}
		}
		return ev.getMember(obj, toStringValue(idx))
	}
}

// setIndexed implements `obj[expr] = v`.
func (ev *Evaluator) setIndexed(obj runtime.Value, idx runtime.Value, v runtime.Value) {
	switch o := obj.(type) {
	case *runtime.Array:
		i, ok := toIndex(idx)
		if !ok || i < 0 {
			return
		}
		for len(o.Elements) <= i {
			o.Elements = append(o.Elements, runtime.Undefined{})
		}
		o.Elements[i] = v
	case *runtime.Object:
		if sym, ok := idx.(*runtime.Symbol); ok {
			o.SetSymbol(sym, v)
			return
		}
		o.Set(toStringValue(idx), v)
	case *runtime.Instance:
		if sym, ok := idx.(*runtime.Symbol); ok {
			o.SymbolFields[sym.ID] = v
			return
		}
		ev.setMember(o, toStringValue(idx), v)
	default:
		ev.setMember(obj, toStringValue(idx), v)
	}
}

func toIndex(v runtime.Value) (int, bool) {
	f := toNumber(v)
	if math.IsNaN(f) || f < 0 {
		return 0, false
	}
	return int(f), true
}
