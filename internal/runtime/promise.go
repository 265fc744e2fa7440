package runtime

// PromiseState is a Promise's settlement state.
type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// Promise is a runtime promise, driven by the evaluator's single-threaded
// cooperative microtask queue (internal/evaluator).
// Reactions registered before settlement are queued as microtasks once
// Settle is called; reactions registered after settlement are queued
// immediately by the evaluator's `.then`/`.catch` implementation.
type Promise struct {
	State    PromiseState
	Value    Value // fulfillment value or rejection reason
	OnSettle []func(state PromiseState, value Value)
}

func NewPromise() *Promise {
	return &Promise{State: PromisePending}
}

func (p *Promise) Kind() Kind     { return KindPromise }
func (p *Promise) String() string { return "[object Promise]" }

// Settle transitions a pending promise to fulfilled/rejected and invokes
// every reaction registered so far; resolving an already-settled promise
// is a no-op, matching the Promise spec's "settle once" rule.
func (p *Promise) Settle(state PromiseState, value Value) {
	if p.State != PromisePending {
		return
	}
	p.State = state
	p.Value = value
	reactions := p.OnSettle
	p.OnSettle = nil
	for _, r := range reactions {
		r(state, value)
	}
}

// Resolve fulfills p with v, adopting v's eventual state when v is
// itself a promise. Adoption recurses, so nested promises flatten to a
// non-promise fulfillment value.
func (p *Promise) Resolve(v Value) {
	inner, ok := v.(*Promise)
	if !ok {
		p.Settle(PromiseFulfilled, v)
		return
	}
	if inner == p {
		p.Settle(PromiseRejected, &Error{Name: "TypeError", Message: "chaining cycle detected for promise"})
		return
	}
	inner.OnSettled(func(state PromiseState, val Value) {
		if state == PromiseRejected {
			p.Settle(PromiseRejected, val)
			return
		}
		p.Resolve(val)
	})
}

// OnSettled registers a reaction invoked once the promise settles,
// immediately if it already has.
func (p *Promise) OnSettled(fn func(state PromiseState, value Value)) {
	if p.State != PromisePending {
		fn(p.State, p.Value)
		return
	}
	p.OnSettle = append(p.OnSettle, fn)
}
