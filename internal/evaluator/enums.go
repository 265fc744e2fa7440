package evaluator

import (
	"math"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// execEnumDecl materializes an enum declaration as a runtime Enum value.
// Numeric auto-increment starts at 0 and continues from the previous
// member; a member after a string member must carry its own initializer
// (validated by the checker, so a missing one here evaluates to
// undefined rather than crashing). Non-const numeric enums also populate
// the reverse value -> name map; const enums do not, and their
// initializers are evaluated by the restricted const-enum interpreter.
func execEnumDecl(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.EnumDecl)
	e := &runtime.Enum{Name: n.Name, Members: map[string]runtime.Value{}, Const: n.Const}
	if !n.Const {
		e.Reverse = map[string]string{}
	}

	next := 0.0
	autoOK := true
	for _, m := range n.Members {
		var v runtime.Value
		switch {
		case m.Initializer == nil && autoOK:
			v = runtime.Number(next)
		case m.Initializer == nil:
			v = runtime.Undefined{}
		case n.Const:
			cv, err := constEnumValue(e, m.Initializer)
			if err != nil {
				return ExecutionResult{Kind: ThrowResult, Value: err}
			}
			v = cv
		default:
			v = ev.Eval(ctx, m.Initializer)
		}
		e.Members[m.Name] = v
		if num, ok := v.(runtime.Number); ok {
			next = float64(num) + 1
			autoOK = true
			if e.Reverse != nil {
				e.Reverse[num.String()] = m.Name
			}
		} else {
			autoOK = false
		}
	}
	ctx.env.Define(n.Name, e, false)
	return normal(runtime.Undefined{})
}

// constEnumValue evaluates a const-enum member initializer with the
// restricted grammar: literals, references to prior members of the same
// enum, unary +/-/~, and binary arithmetic/bitwise/string-concat. Any
// other construct is a SyntaxError, not a silent fallback to the full
// evaluator.
func constEnumValue(e *runtime.Enum, expr ast.Expression) (runtime.Value, *runtime.Error) {
	switch n := expr.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.LitNumber:
			return runtime.Number(n.Number), nil
		case ast.LitString:
			return runtime.String(n.Str), nil
		}
		return nil, constEnumError()
	case *ast.Grouping:
		return constEnumValue(e, n.Inner)
	case *ast.Variable:
		if v, ok := e.Members[n.Name.Name]; ok {
			return v, nil
		}
		return nil, constEnumError()
	case *ast.Identifier:
		if v, ok := e.Members[n.Name]; ok {
			return v, nil
		}
		return nil, constEnumError()
	case *ast.Get:
		// EnumName.Member self-reference.
		enumRef := false
		switch base := n.Object.(type) {
		case *ast.Variable:
			enumRef = base.Name.Name == e.Name
		case *ast.Identifier:
			enumRef = base.Name == e.Name
		}
		if enumRef {
			if v, ok := e.Members[n.Name.Name]; ok {
				return v, nil
			}
		}
		return nil, constEnumError()
	case *ast.Unary:
		operand, err := constEnumValue(e, n.Operand)
		if err != nil {
			return nil, err
		}
		num, ok := operand.(runtime.Number)
		if !ok {
			return nil, constEnumError()
		}
		switch n.Op {
		case ast.UnaryPlus:
			return num, nil
		case ast.UnaryMinus:
			return -num, nil
		case ast.UnaryBitwiseNot:
			return runtime.Number(float64(^int64(num))), nil
		}
		return nil, constEnumError()
	case *ast.Binary:
		left, err := constEnumValue(e, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := constEnumValue(e, n.Right)
		if err != nil {
			return nil, err
		}
		return constEnumBinary(n.Op, left, right)
	}
	return nil, constEnumError()
}

func constEnumBinary(op ast.BinaryOp, left, right runtime.Value) (runtime.Value, *runtime.Error) {
	if ls, ok := left.(runtime.String); ok {
		rs, ok := right.(runtime.String)
		if !ok || op != ast.BinAdd {
			return nil, constEnumError()
		}
		return ls + rs, nil
	}
	ln, lok := left.(runtime.Number)
	rn, rok := right.(runtime.Number)
	if !lok || !rok {
		return nil, constEnumError()
	}
	a, b := float64(ln), float64(rn)
	switch op {
	case ast.BinAdd:
		return runtime.Number(a + b), nil
	case ast.BinSub:
		return runtime.Number(a - b), nil
	case ast.BinMul:
		return runtime.Number(a * b), nil
	case ast.BinDiv:
		return runtime.Number(a / b), nil
	case ast.BinMod:
		return runtime.Number(math.Mod(a, b)), nil
	case ast.BinPow:
		return runtime.Number(math.Pow(a, b)), nil
	case ast.BinBitAnd:
		return runtime.Number(float64(int64(a) & int64(b))), nil
	case ast.BinBitOr:
		return runtime.Number(float64(int64(a) | int64(b))), nil
	case ast.BinBitXor:
		return runtime.Number(float64(int64(a) ^ int64(b))), nil
	case ast.BinShl:
		return runtime.Number(float64(int32(a) << (uint32(b) & 31))), nil
	case ast.BinShr:
		return runtime.Number(float64(int32(a) >> (uint32(b) & 31))), nil
	case ast.BinUShr:
		return runtime.Number(float64(uint32(int64(a)) >> (uint32(b) & 31))), nil
	}
	return nil, constEnumError()
}

func constEnumError() *runtime.Error {
	return newError("SyntaxError", "const enum member initializers must be constant expressions")
}
