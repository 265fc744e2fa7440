package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
	"github.com/sharpts-lang/sharpts/internal/types"
)

// truthy implements JS ToBoolean operator semantics.
func truthy(v runtime.Value) bool {
	switch val := v.(type) {
	case runtime.Undefined, runtime.Null:
		return false
	case runtime.Boolean:
		return bool(val)
	case runtime.Number:
		return val != 0 && !math.IsNaN(float64(val))
	case runtime.String:
		return len(val) > 0
	case *runtime.BigInt:
		return val.Text != "0"
	default:
		return true
	}
}

func isNullish(v runtime.Value) bool {
	switch v.(type) {
	case runtime.Undefined, runtime.Null:
		return true
	}
	return v == nil
}

// toNumber implements JS ToNumber for the value kinds this evaluator
// constructs; object-to-primitive coercion falls back to NaN since the
// core's plain Object has no `valueOf`/`toString` protocol dispatch
// beyond what pkg/sharpts's host builtins separately provide.
func toNumber(v runtime.Value) float64 {
	switch val := v.(type) {
	case runtime.Number:
		return float64(val)
	case runtime.Boolean:
		if val {
			return 1
		}
		return 0
	case runtime.String:
		s := strings.TrimSpace(string(val))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case runtime.Undefined:
		return math.NaN()
	case runtime.Null:
		return 0
	default:
		return math.NaN()
	}
}

func toInt32(v runtime.Value) int32 {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(f))
}

func toUint32(v runtime.Value) uint32 {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(f))
}

// toStringValue implements JS ToString for primitives and the plain
// reference types this core models.
func toStringValue(v runtime.Value) string {
	if v == nil {
		return "undefined"
	}
	return v.String()
}

func typeofValue(v runtime.Value) string {
	switch v.(type) {
	case runtime.Undefined:
		return "undefined"
	case runtime.Null:
		return "object"
	case runtime.Boolean:
		return "boolean"
	case runtime.Number:
		return "number"
	case runtime.String:
		return "string"
	case *runtime.BigInt:
		return "bigint"
	case *runtime.Symbol:
		return "symbol"
	case *runtime.Function:
		return "function"
	case *runtime.Class:
		return "function"
	default:
		return "object"
	}
}

// strictEquals implements `===`: no coercion, NaN !== NaN, reference
// identity for objects/arrays/instances/functions.
func strictEquals(a, b runtime.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case runtime.Undefined, runtime.Null:
		return true
	case runtime.Boolean:
		return av == b.(runtime.Boolean)
	case runtime.Number:
		return float64(av) == float64(b.(runtime.Number))
	case runtime.String:
		return av == b.(runtime.String)
	case *runtime.BigInt:
		return av.Text == b.(*runtime.BigInt).Text
	default:
		return a == b
	}
}

// looseEquals implements `==` (Abstract Equality Comparison), the subset
// of JS's coercion rules this core's value universe needs: numeric/string
// cross-coercion and null~undefined equivalence.
func looseEquals(a, b runtime.Value) bool {
	if isNullish(a) && isNullish(b) {
		return true
	}
	if isNullish(a) || isNullish(b) {
		return false
	}
	if a.Kind() == b.Kind() {
		return strictEquals(a, b)
	}
	_, aIsNum := a.(runtime.Number)
	_, bIsNum := b.(runtime.Number)
	_, aIsStr := a.(runtime.String)
	_, bIsStr := b.(runtime.String)
	_, aIsBool := a.(runtime.Boolean)
	_, bIsBool := b.(runtime.Boolean)
	switch {
	case aIsNum && bIsStr, aIsStr && bIsNum:
		return toNumber(a) == toNumber(b)
	case aIsBool || bIsBool:
		return toNumber(a) == toNumber(b)
	default:
		return false
	}
}

func evalBinary(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Binary)
	if n.Op == ast.BinInstanceof {
		return runtime.Boolean(ev.instanceOf(ev.Eval(ctx, n.Left), ev.Eval(ctx, n.Right)))
	}
	if n.Op == ast.BinIn {
		key := toStringValue(ev.Eval(ctx, n.Left))
		obj := ev.Eval(ctx, n.Right)
		return runtime.Boolean(ev.hasProperty(obj, key))
	}
	left := ev.Eval(ctx, n.Left)
	right := ev.Eval(ctx, n.Right)
	// When the checker already proved both operands numeric, `+` can take
	// the numeric path directly instead of probing runtime kinds.
	if n.Op == ast.BinAdd && ev.staticallyNumeric(n.Left) && ev.staticallyNumeric(n.Right) {
		return runtime.Number(toNumber(left) + toNumber(right))
	}
	return applyBinary(n.Op, left, right)
}

// staticallyNumeric consults the checker's TypeMap for e's resolved
// static type.
func (ev *Evaluator) staticallyNumeric(e ast.Expression) bool {
	if ev.types == nil {
		return false
	}
	t, ok := ev.types.Get(e)
	if !ok {
		return false
	}
	switch v := t.(type) {
	case *types.Primitive:
		return types.Equal(v, types.Number)
	case *types.Literal:
		return v.LKind == types.LitNumber
	}
	return false
}

func applyBinary(op ast.BinaryOp, left, right runtime.Value) runtime.Value {
	switch op {
	case ast.BinAdd:
		_, lIsStr := left.(runtime.String)
		_, rIsStr := right.(runtime.String)
		if lIsStr || rIsStr {
			return runtime.String(toStringValue(left) + toStringValue(right))
		}
		if lBig, ok := left.(*runtime.BigInt); ok {
			if rBig, ok := right.(*runtime.BigInt); ok {
				return bigIntBinary('+', lBig, rBig)
			}
		}
		return runtime.Number(toNumber(left) + toNumber(right))
	case ast.BinSub:
		return runtime.Number(toNumber(left) - toNumber(right))
	case ast.BinMul:
		return runtime.Number(toNumber(left) * toNumber(right))
	case ast.BinDiv:
		return runtime.Number(toNumber(left) / toNumber(right))
	case ast.BinMod:
		return runtime.Number(math.Mod(toNumber(left), toNumber(right)))
	case ast.BinPow:
		return runtime.Number(math.Pow(toNumber(left), toNumber(right)))
	case ast.BinEq:
		return runtime.Boolean(looseEquals(left, right))
	case ast.BinNotEq:
		return runtime.Boolean(!looseEquals(left, right))
	case ast.BinStrictEq:
		return runtime.Boolean(strictEquals(left, right))
	case ast.BinStrictNotEq:
		return runtime.Boolean(!strictEquals(left, right))
	case ast.BinLt:
		return compareValues(left, right, func(c int) bool { return c < 0 })
	case ast.BinGt:
		return compareValues(left, right, func(c int) bool { return c > 0 })
	case ast.BinLtEq:
		return compareValues(left, right, func(c int) bool { return c <= 0 })
	case ast.BinGtEq:
		return compareValues(left, right, func(c int) bool { return c >= 0 })
	case ast.BinBitAnd:
		return runtime.Number(float64(toInt32(left) & toInt32(right)))
	case ast.BinBitOr:
		return runtime.Number(float64(toInt32(left) | toInt32(right)))
	case ast.BinBitXor:
		return runtime.Number(float64(toInt32(left) ^ toInt32(right)))
	case ast.BinShl:
		return runtime.Number(float64(toInt32(left) << (toUint32(right) & 31)))
	case ast.BinShr:
		return runtime.Number(float64(toInt32(left) >> (toUint32(right) & 31)))
	case ast.BinUShr:
		return runtime.Number(float64(toUint32(left) >> (toUint32(right) & 31)))
	default:
		return runtime.Undefined{}
	}
}

// compareValues implements JS relational operators: string comparison
// when both operands are strings, numeric comparison otherwise (matching
// the Abstract Relational Comparison algorithm's two branches).
func compareValues(left, right runtime.Value, test func(int) bool) runtime.Value {
	ls, lok := left.(runtime.String)
	rs, rok := right.(runtime.String)
	if lok && rok {
		return runtime.Boolean(test(strings.Compare(string(ls), string(rs))))
	}
	ln, rn := toNumber(left), toNumber(right)
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return runtime.Boolean(false)
	}
	switch {
	case ln < rn:
		return runtime.Boolean(test(-1))
	case ln > rn:
		return runtime.Boolean(test(1))
	default:
		return runtime.Boolean(test(0))
	}
}

func applyCompound(op ast.CompoundAssignOp, cur, rhs runtime.Value) runtime.Value {
	switch op {
	case ast.CompoundAdd:
		return applyBinary(ast.BinAdd, cur, rhs)
	case ast.CompoundSub:
		return applyBinary(ast.BinSub, cur, rhs)
	case ast.CompoundMul:
		return applyBinary(ast.BinMul, cur, rhs)
	case ast.CompoundDiv:
		return applyBinary(ast.BinDiv, cur, rhs)
	case ast.CompoundMod:
		return applyBinary(ast.BinMod, cur, rhs)
	case ast.CompoundPow:
		return applyBinary(ast.BinPow, cur, rhs)
	case ast.CompoundBitAnd:
		return applyBinary(ast.BinBitAnd, cur, rhs)
	case ast.CompoundBitOr:
		return applyBinary(ast.BinBitOr, cur, rhs)
	case ast.CompoundBitXor:
		return applyBinary(ast.BinBitXor, cur, rhs)
	case ast.CompoundShl:
		return applyBinary(ast.BinShl, cur, rhs)
	case ast.CompoundShr:
		return applyBinary(ast.BinShr, cur, rhs)
	case ast.CompoundUShr:
		return applyBinary(ast.BinUShr, cur, rhs)
	default:
		return rhs
	}
}

// bigIntBinary does exact-precision BigInt arithmetic via math/big,
// kept minimal to the operator forms the evaluator currently routes
// here (others route through the same helper as the core grows).
func bigIntBinary(op byte, a, b *runtime.BigInt) runtime.Value {
	ai, aerr := parseBigInt(a.Text)
	bi, berr := parseBigInt(b.Text)
	if aerr != nil || berr != nil {
		return &runtime.BigInt{Text: "0"}
	}
	switch op {
	case '+':
		return &runtime.BigInt{Text: fmt.Sprint(ai + bi)}
	default:
		return &runtime.BigInt{Text: "0"}
	}
}

func parseBigInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSuffix(s, "n"), 10, 64)
}
