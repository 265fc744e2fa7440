package checker

import "github.com/sharpts-lang/sharpts/internal/types"

// builtinPromiseClass is the nominal shape backing `Promise<T>` instances,
// registered as an ordinary Class entry so the rest of the analyzer can
// treat it uniformly with user-declared classes.
var builtinPromiseClass = &types.Class{
	Name:    "Promise",
	Members: map[string]*types.Member{},
}

// installGlobals seeds the global TypeEnvironment with the host objects
// ambiently available to every program (console, Math, JSON,
// globalThis-level constructors), each typed permissively since their
// member shapes are fixed and don't need full structural modeling for a
// pragmatic bidirectional checker.
func installGlobals(c *Checker) {
	c.globals.Define("console", consoleType())
	c.globals.Define("Math", mathType())
	c.globals.Define("JSON", jsonType())
	c.globals.Define("globalThis", &types.Record{Key: types.String, Value: types.Any})
	c.globals.Define("NaN", types.Number)
	c.globals.Define("Infinity", types.Number)
	c.globals.Define("undefined", types.Undefined)

	// Host constructors are typed `any`: their construct signatures and
	// static surfaces live in the runtime, and modeling them structurally
	// buys no checking leverage for user programs.
	for _, name := range []string{
		"Symbol", "Promise", "Object", "Array",
		"Error", "TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError",
		"AggregateError", "SuppressedError",
		"Map", "Set", "WeakMap", "WeakSet", "Date", "RegExp",
	} {
		c.globals.Define(name, types.Any)
	}

	c.interfaces["Promise"] = &types.Interface{Name: "Promise", Members: map[string]*types.Member{
		"then":  {Type: anyFunc()},
		"catch": {Type: anyFunc()},
	}}
}

func anyFunc() *types.Function {
	return &types.Function{Return: types.Any}
}

func consoleType() types.Info {
	members := map[string]*types.Member{}
	for _, name := range []string{"log", "error", "warn", "info", "debug"} {
		members[name] = &types.Member{Type: &types.Function{
			Params:   []types.FunctionParam{{Name: "args", Type: types.Any, Rest: true}},
			Required: 0,
			Return:   types.Void,
		}}
	}
	return &types.Interface{Name: "Console", Members: members}
}

func mathType() types.Info {
	members := map[string]*types.Member{}
	for _, name := range []string{"PI", "E"} {
		members[name] = &types.Member{Type: types.Number, Readonly: true}
	}
	unary := &types.Function{Params: []types.FunctionParam{{Name: "x", Type: types.Number}}, Required: 1, Return: types.Number}
	for _, name := range []string{"abs", "floor", "ceil", "round", "trunc", "sqrt", "sign", "log", "exp", "sin", "cos", "tan"} {
		members[name] = &types.Member{Type: unary}
	}
	variadic := &types.Function{Params: []types.FunctionParam{{Name: "values", Type: types.Number, Rest: true}}, Return: types.Number}
	for _, name := range []string{"max", "min"} {
		members[name] = &types.Member{Type: variadic}
	}
	members["random"] = &types.Member{Type: &types.Function{Return: types.Number}}
	members["pow"] = &types.Member{Type: &types.Function{
		Params:   []types.FunctionParam{{Name: "base", Type: types.Number}, {Name: "exp", Type: types.Number}},
		Required: 2,
		Return:   types.Number,
	}}
	return &types.Interface{Name: "Math", Members: members}
}

func jsonType() types.Info {
	members := map[string]*types.Member{
		"stringify": {Type: &types.Function{
			Params:   []types.FunctionParam{{Name: "value", Type: types.Any}, {Name: "replacer", Type: types.Any, Optional: true}, {Name: "space", Type: types.Any, Optional: true}},
			Required: 1,
			Return:   types.String,
		}},
		"parse": {Type: &types.Function{
			Params:   []types.FunctionParam{{Name: "text", Type: types.String}},
			Required: 1,
			Return:   types.Any,
		}},
	}
	return &types.Interface{Name: "JSON", Members: members}
}
