package lower

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/infer"
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/traits"
	"github.com/jsa-lang/jsac/internal/types"
)

// loopCtx is the (exit_block, continue_block) pair break/continue resolve
// against (spec §4.H: "while sets continue = cond-block, for sets continue
// = update-block").
type loopCtx struct {
	exitBlock     BasicBlock
	continueBlock BasicBlock
}

// Lowerer drives IR emission for one module against an already-typed AST
// and the specialization store built up in mod.TypeCtx (spec §4.H). It
// re-enters the scopes inference attached to each Block by node identity
// rather than building its own (spec §4.H "scopes from inference are
// reused").
type Lowerer struct {
	b      Builder
	sink   *diag.Sink
	traits *traits.Registry

	mod     *loader.Module
	ctx     *types.Context
	scopeOf map[ast.Node]*symbols.Scope

	structTypes map[string]IRType
	funcValues  map[string]Value
	strType     IRType

	entryBlock BasicBlock
	currentFn  Value
	loopStack  []loopCtx
}

// New creates a Lowerer for one module. reg must be the same trait
// registry used during inference, with intrinsic codegen wired in via
// WireIntrinsics beforehand (done once per compilation, not per module).
func New(b Builder, sink *diag.Sink, reg *traits.Registry) *Lowerer {
	return &Lowerer{
		b:           b,
		sink:        sink,
		traits:      reg,
		structTypes: make(map[string]IRType),
		funcValues:  make(map[string]Value),
	}
}

// LowerModule pre-declares every struct and specialization prototype, then
// lowers every non-extern specialization's body (spec §4.H). Callers must
// check sink.HasErrors() on the Result returned by inference before ever
// calling this — lowering is gated on error-free inference (spec §5, §7).
func (l *Lowerer) LowerModule(mod *loader.Module, result *infer.Result) {
	l.mod = mod
	l.ctx = mod.TypeCtx
	l.scopeOf = result.ScopeOf

	l.declareStructs()
	l.declarePrototypes()

	for _, ft := range l.ctx.AllFunctions() {
		for _, spec := range types.AllSpecializations(ft) {
			if spec.IsExtern() {
				continue
			}
			l.lowerSpecialization(ft, spec)
		}
	}
}

// lowerSpecialization implements the function state machine from spec
// §4.H: EnterEntry -> LowerParams -> LowerBody -> ensure terminator ->
// ExitEntry.
func (l *Lowerer) lowerSpecialization(ft *types.TypeInfo, spec *types.Specialization) {
	fn, ok := l.funcValues[spec.MangledName]
	if !ok {
		l.sink.Addf(diag.SeverityError, diag.E901, "lower", "no prototype declared for "+spec.MangledName)
		return
	}
	fnDecl, _ := ft.FuncBodyRef.(*ast.FuncDecl)
	body, _ := spec.Body.(*ast.Block)
	if fnDecl == nil || body == nil {
		return
	}

	l.currentFn = fn
	entry := l.b.AppendBlock(fn, "entry")
	l.entryBlock = entry
	l.b.SetInsertPoint(entry)

	scope, ok := l.scopeOf[body]
	if !ok {
		l.sink.Addf(diag.SeverityError, diag.E901, "lower", "no scope recorded for specialization "+spec.MangledName)
		return
	}
	l.lowerParams(fnDecl, spec, fn, scope)

	l.lowerBlock(body, scope)

	if !l.b.HasTerminator(l.b.InsertBlock()) {
		if spec.ReturnType == nil || spec.ReturnType.IsVoid() || spec.ReturnType.IsUnknown() {
			l.b.CreateRetVoid()
		} else {
			l.b.CreateRet(l.b.ConstNull(l.valueType(spec.ReturnType)))
		}
	}
}

// lowerParams binds each formal parameter to an entry-block alloca holding
// its value (spec §4.H). Every parameter gets the same treatment regardless
// of kind: the slot's pointee is the parameter's value representation
// (valueType — a plain pointer for Ref and for any Object/Enum/Str, since
// those are never passed by aggregate value), so a later reference to the
// parameter is always exactly one CreateLoad away, the same as a local
// variable's own storage.
func (l *Lowerer) lowerParams(fnDecl *ast.FuncDecl, spec *types.Specialization, fn Value, scope *symbols.Scope) {
	for i, p := range fnDecl.Params {
		if i >= len(spec.ParamTypes) {
			break
		}
		pt := spec.ParamTypes[i]
		entry, found := scope.LookupLocal(p.Name)
		if !found {
			continue
		}
		paramVal := l.b.Param(fn, i)
		slot := l.entryAlloca(l.valueType(pt), p.Name)
		l.b.CreateStore(paramVal, slot)
		entry.IRValue = slot
	}
}

// entryAlloca hoists a stack allocation to the function's entry block,
// saving and restoring the caller's insertion point (spec §4.H "all stack
// allocations hoist to the function entry block").
func (l *Lowerer) entryAlloca(t IRType, name string) Value {
	cur := l.b.InsertBlock()
	l.b.SetInsertPoint(l.entryBlock)
	v := l.b.CreateAlloca(t, name)
	l.b.SetInsertPoint(cur)
	return v
}

func (l *Lowerer) pushLoop(exit, cont BasicBlock) {
	l.loopStack = append(l.loopStack, loopCtx{exitBlock: exit, continueBlock: cont})
}

func (l *Lowerer) popLoop() {
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
}

func (l *Lowerer) currentLoop() (loopCtx, bool) {
	if len(l.loopStack) == 0 {
		return loopCtx{}, false
	}
	return l.loopStack[len(l.loopStack)-1], true
}
