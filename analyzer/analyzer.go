// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package analyzer implements scope and capture analysis (spec §4.7)
// over a goja *ast.Program: hoisting, identifier resolution, mutation
// and temporal-dead-zone tracking, and the transitive closure of
// per-function capture sets that the compiler needs to emit `bind`
// instructions.
package analyzer

import (
	mapset "github.com/deckarep/golang-set"
	"github.com/dop251/goja/ast"

	"github.com/siliconjungle/ValueScript/internal/diag"
)

// NameID identifies one binding (a var/let/const/function/class
// declaration, or a parameter) for the lifetime of an analysis.
type NameID int

// BindingKind distinguishes the declaration forms hoisting must treat
// differently (var/function hoist to the function scope; let/const/
// class are block-scoped, and let/const carry a TDZ).
type BindingKind int

const (
	KindVar BindingKind = iota
	KindLet
	KindConst
	KindFunction
	KindClass
	KindParameter
)

// Name is one resolved binding.
type Name struct {
	ID       NameID
	Original string
	Kind     BindingKind

	// OwnerFunc is the FuncInfo whose activation record this binding
	// lives in (its own scope if it's a function/parameter scope, or
	// the nearest enclosing function scope for a block-scoped name).
	OwnerFunc *FuncInfo

	DeclPos int // hoisting/declaration position, for TDZ
	TDZEnd  int // position after which references are safe (0 for var/function/param)

	Mutations []int // positions of assignment/update/submov writes

	// Func links a KindFunction Name to the FuncInfo it denotes, so
	// closeCaptures can follow "captures g, g is a function" to g's own
	// capture set. Nil for every other kind.
	Func *FuncInfo
}

// FuncInfo is one function (or the top-level Program, treated as the
// outermost function) scope's analysis record.
type FuncInfo struct {
	Node   ast.Node // *ast.FunctionLiteral or *ast.Program
	Parent *FuncInfo

	// Captures is the set of NameIDs declared in an ancestor function
	// but referenced from within this function (or a function nested
	// inside it, after the transitive closure pass below).
	Captures mapset.Set

	IsGenerator bool
}

// Result is the output of Analyze: every resolved Name, the per-
// identifier-node resolution, and per-function capture sets (already
// transitively closed).
type Result struct {
	Names     map[NameID]*Name
	RefTarget map[ast.Expression]NameID // *ast.Identifier -> resolved Name
	FuncOf    map[ast.Node]*FuncInfo    // *ast.FunctionLiteral/*ast.Program -> its FuncInfo
	Diags     *diag.Bag

	// captureOrder preserves first-captured insertion order per
	// FuncInfo; Captures alone (a mapset.Set) doesn't guarantee
	// iteration order, but the compiler's bind-array construction must
	// be deterministic and agree with the callee's own capture-
	// parameter allocation order.
	captureOrder map[*FuncInfo][]NameID
}

// CapturesOf returns the (already transitively closed) ordered list of
// captured Names for a function node, in first-captured order — the
// order the compiler uses when building the `bind` instruction's
// captured-value array, which must match the order the callee's
// register allocator assigned to its bind parameters.
func (r *Result) CapturesOf(fn ast.Node) []*Name {
	fi, ok := r.FuncOf[fn]
	if !ok {
		return nil
	}
	order := r.captureOrder[fi]
	out := make([]*Name, 0, len(order))
	for _, id := range order {
		out = append(out, r.Names[id])
	}
	return out
}

// scope is a lexical scope during the resolve pass: block scopes
// chain to their function's scope, which chains to the enclosing
// function's scope.
type scope struct {
	parent *scope
	fn     *FuncInfo
	names  map[string]NameID
}

func newScope(parent *scope, fn *FuncInfo) *scope {
	return &scope{parent: parent, fn: fn, names: make(map[string]NameID)}
}

func (s *scope) declare(name string, id NameID) { s.names[name] = id }

func (s *scope) lookup(name string) (NameID, *scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.names[name]; ok {
			return id, cur, true
		}
	}
	return 0, nil, false
}

// FuncInfo gains a private captureOrder slice (insertion order) that
// the exported Captures set alone can't preserve.
type funcInfoOrder struct {
	captureOrder []NameID
	seen         map[NameID]bool
}

// analyzer carries the mutable state of one Analyze call.
type analyzer struct {
	nextID    NameID
	names     map[NameID]*Name
	refTarget map[ast.Expression]NameID
	funcOf    map[ast.Node]*FuncInfo
	diags     *diag.Bag
	orders    map[*FuncInfo]*funcInfoOrder
}

// Analyze runs the three passes of spec §4.7 over a parsed program.
func Analyze(prog *ast.Program) *Result {
	a := &analyzer{
		names:     make(map[NameID]*Name),
		refTarget: make(map[ast.Expression]NameID),
		funcOf:    make(map[ast.Node]*FuncInfo),
		diags:     &diag.Bag{},
		orders:    make(map[*FuncInfo]*funcInfoOrder),
	}

	root := &FuncInfo{Node: prog, Captures: mapset.NewSet()}
	a.funcOf[prog] = root
	a.orders[root] = &funcInfoOrder{seen: make(map[NameID]bool)}

	rootScope := newScope(nil, root)
	a.hoistBlock(prog.Body, rootScope, KindVar)
	a.resolveBlock(prog.Body, rootScope)

	a.closeCaptures()

	captureOrder := make(map[*FuncInfo][]NameID, len(a.orders))
	for fi, order := range a.orders {
		captureOrder[fi] = order.captureOrder
	}

	return &Result{Names: a.names, RefTarget: a.refTarget, FuncOf: a.funcOf, Diags: a.diags, captureOrder: captureOrder}
}

func (a *analyzer) newName(original string, kind BindingKind, owner *FuncInfo, pos int) *Name {
	a.nextID++
	n := &Name{ID: a.nextID, Original: original, Kind: kind, OwnerFunc: owner, DeclPos: pos}
	if kind == KindLet || kind == KindConst {
		n.TDZEnd = pos
	}
	a.names[n.ID] = n
	return n
}

// hoistBlock is pass 1: collect var/function declarations up to the
// nearest function scope, and let/const/class at this block scope.
// varKind lets the caller force KindVar for the program/function
// top-level body's own var statements (which is always the case; the
// parameter distinguishes nothing here but keeps the signature
// explicit about intent).
func (a *analyzer) hoistBlock(body []ast.Statement, sc *scope, _ BindingKind) {
	for _, stmt := range body {
		a.hoistStmt(stmt, sc)
	}
}

func (a *analyzer) hoistStmt(stmt ast.Statement, sc *scope) {
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		for _, b := range s.List {
			for _, id := range bindingLeaves(b.Target) {
				a.hoistBindingTarget(id.Name, KindVar, sc, int(id.Idx))
			}
		}
	case *ast.LexicalDeclaration:
		kind := KindLet
		if s.Token.String() == "const" {
			kind = KindConst
		}
		for _, b := range s.List {
			for _, id := range bindingLeaves(b.Target) {
				a.hoistBindingTarget(id.Name, kind, sc, int(id.Idx))
			}
		}
	case *ast.FunctionDeclaration:
		if s.Function != nil && s.Function.Name != nil {
			a.declareIn(sc, s.Function.Name.Name, KindFunction, 0)
		}
	case *ast.ClassDeclaration:
		if s.Class != nil && s.Class.Name != nil {
			a.declareIn(sc, s.Class.Name.Name, KindClass, int(s.Class.Idx0()))
		}
	case *ast.BlockStatement:
		// var/function declared in a nested block still hoist to this
		// function scope; descend without opening a new scope record
		// for the hoist pass (the resolve pass opens the real block
		// scope for let/const).
		a.hoistBlock(s.List, sc, KindVar)
	case *ast.IfStatement:
		a.hoistStmt(s.Consequent, sc)
		if s.Alternate != nil {
			a.hoistStmt(s.Alternate, sc)
		}
	case *ast.ForStatement:
		if init, ok := s.Initializer.(*ast.ForLoopVarInitializer); ok {
			for _, b := range init.List() {
				for _, id := range bindingLeaves(b.Target) {
					a.hoistBindingTarget(id.Name, KindVar, sc, int(id.Idx))
				}
			}
		}
		a.hoistStmt(s.Body, sc)
	case *ast.ForInStatement:
		a.hoistForInto(s.Into, sc)
		a.hoistStmt(s.Body, sc)
	case *ast.ForOfStatement:
		a.hoistForInto(s.Into, sc)
		a.hoistStmt(s.Body, sc)
	case *ast.WhileStatement:
		a.hoistStmt(s.Body, sc)
	case *ast.DoWhileStatement:
		a.hoistStmt(s.Body, sc)
	case *ast.TryStatement:
		if s.Body != nil {
			a.hoistBlock(s.Body.List, sc, KindVar)
		}
		if s.Catch != nil && s.Catch.Body != nil {
			a.hoistBlock(s.Catch.Body.List, sc, KindVar)
		}
		if s.Finally != nil {
			a.hoistBlock(s.Finally.List, sc, KindVar)
		}
	case *ast.LabelledStatement:
		a.hoistStmt(s.Statement, sc)
	}
}

func (a *analyzer) hoistBindingTarget(name string, kind BindingKind, sc *scope, pos int) {
	if name == "" {
		return
	}
	a.declareIn(sc, name, kind, pos)
}

// hoistForInto declares a for-in/for-of loop's own `const`/`let`/`var`
// target (as opposed to a plain assignable expression target, which
// declares nothing), mirroring the ForStatement case just above: the
// loop variable hoists to the owning function scope like every other
// binding this analyzer tracks.
func (a *analyzer) hoistForInto(into ast.ForInto, sc *scope) {
	v, ok := into.(*ast.ForIntoVar)
	if !ok {
		return
	}
	for _, id := range bindingLeaves(v.Binding) {
		a.hoistBindingTarget(id.Name, KindVar, sc, int(id.Idx))
	}
}

func (a *analyzer) declareIn(sc *scope, name string, kind BindingKind, pos int) {
	// var/function hoist through block scopes to the owning function's
	// scope; let/const/class stay at the block scope they were found
	// in (the scope passed in by the caller, which for the hoist pass
	// is always the function-level scope since hoistBlock never opens
	// a child scope of its own).
	owner := sc.fn
	n := a.newName(name, kind, owner, pos)
	sc.declare(name, n.ID)
}

// resolveBlock is pass 2 (combined with pass 3's mutation recording):
// walk statements/expressions, resolving identifiers to their nearest
// enclosing NameID and recording captures across function boundaries.
func (a *analyzer) resolveBlock(body []ast.Statement, sc *scope) {
	for _, stmt := range body {
		a.resolveStmt(stmt, sc)
	}
}

func (a *analyzer) resolveStmt(stmt ast.Statement, sc *scope) {
	switch s := stmt.(type) {
	case nil:
		return
	case *ast.ExpressionStatement:
		a.resolveExpr(s.Expression, sc)
	case *ast.VariableStatement:
		for _, b := range s.List {
			a.resolveBindingInit(b, sc)
		}
	case *ast.LexicalDeclaration:
		for _, b := range s.List {
			a.resolveBindingInit(b, sc)
			// A let/const's TDZ ends once its initializer has been
			// resolved; later statements in the same scope see it live.
			// A destructuring declaration has one leaf per bound name,
			// each ending its own TDZ at its own position.
			for _, leaf := range bindingLeaves(b.Target) {
				if id, _, ok := sc.lookup(leaf.Name); ok {
					if n := a.names[id]; n != nil {
						n.TDZEnd = int(leaf.Idx) + 1
					}
				}
			}
		}
	case *ast.FunctionDeclaration:
		if s.Function != nil {
			a.resolveFunction(s.Function, sc)
			if s.Function.Name != nil {
				if id, _, ok := sc.lookup(s.Function.Name.Name); ok {
					if n := a.names[id]; n != nil {
						n.Func = a.funcOf[s.Function]
					}
				}
			}
		}
	case *ast.ClassDeclaration:
		a.resolveClass(s.Class, sc)
	case *ast.BlockStatement:
		inner := newScope(sc, sc.fn)
		a.hoistLexicalOnly(s.List, inner)
		a.resolveBlock(s.List, inner)
	case *ast.IfStatement:
		a.resolveExpr(s.Test, sc)
		a.resolveStmt(s.Consequent, sc)
		a.resolveStmt(s.Alternate, sc)
	case *ast.WhileStatement:
		a.resolveExpr(s.Test, sc)
		a.resolveStmt(s.Body, sc)
	case *ast.DoWhileStatement:
		a.resolveStmt(s.Body, sc)
		a.resolveExpr(s.Test, sc)
	case *ast.ForStatement:
		inner := newScope(sc, sc.fn)
		if init, ok := s.Initializer.(*ast.ForLoopVarInitializer); ok {
			for _, b := range init.List() {
				a.resolveBindingInit(b, inner)
			}
		} else if init, ok := s.Initializer.(*ast.ForLoopExpressionInitializer); ok {
			a.resolveExpr(init.Expression, inner)
		}
		a.resolveExpr(s.Test, inner)
		a.resolveStmt(s.Body, inner)
		a.resolveExpr(s.Update, inner)
	case *ast.ForInStatement:
		inner := newScope(sc, sc.fn)
		a.resolveExpr(s.Source, inner)
		a.resolveForInto(s.Into, inner)
		a.resolveStmt(s.Body, inner)
	case *ast.ForOfStatement:
		inner := newScope(sc, sc.fn)
		a.resolveExpr(s.Source, inner)
		a.resolveForInto(s.Into, inner)
		a.resolveStmt(s.Body, inner)
	case *ast.ReturnStatement:
		a.resolveExpr(s.Argument, sc)
	case *ast.ThrowStatement:
		a.resolveExpr(s.Argument, sc)
	case *ast.TryStatement:
		if s.Body != nil {
			inner := newScope(sc, sc.fn)
			a.hoistLexicalOnly(s.Body.List, inner)
			a.resolveBlock(s.Body.List, inner)
		}
		if s.Catch != nil {
			catchScope := newScope(sc, sc.fn)
			if s.Catch.Parameter != nil {
				if id, ok := s.Catch.Parameter.(*ast.Identifier); ok {
					n := a.newName(id.Name, KindLet, sc.fn, int(id.Idx))
					n.TDZEnd = 0 // a catch parameter is bound on entry, no TDZ
					catchScope.declare(id.Name, n.ID)
				}
			}
			if s.Catch.Body != nil {
				a.hoistLexicalOnly(s.Catch.Body.List, catchScope)
				a.resolveBlock(s.Catch.Body.List, catchScope)
			}
		}
		if s.Finally != nil {
			inner := newScope(sc, sc.fn)
			a.hoistLexicalOnly(s.Finally.List, inner)
			a.resolveBlock(s.Finally.List, inner)
		}
	case *ast.BranchStatement:
		// break/continue: no identifier to resolve (labelled forms are
		// unimplemented per spec §4.8, diagnosed by the compiler since
		// the analyzer has no loop-label stack of its own).
	case *ast.LabelledStatement:
		a.resolveStmt(s.Statement, sc)
	case *ast.SwitchStatement:
		a.resolveExpr(s.Discriminant, sc)
		for _, c := range s.Body {
			a.resolveExpr(c.Test, sc)
			inner := newScope(sc, sc.fn)
			a.hoistLexicalOnly(c.Consequent, inner)
			a.resolveBlock(c.Consequent, inner)
		}
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		// nothing to resolve
	}
}

// hoistLexicalOnly declares let/const/class bindings that
// live directly in a block scope (as opposed to var, already hoisted
// to the owning function scope by hoistBlock).
func (a *analyzer) hoistLexicalOnly(body []ast.Statement, sc *scope) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.LexicalDeclaration:
			kind := KindLet
			if s.Token.String() == "const" {
				kind = KindConst
			}
			for _, b := range s.List {
				for _, id := range bindingLeaves(b.Target) {
					a.declareIn(sc, id.Name, kind, int(id.Idx))
				}
			}
		case *ast.ClassDeclaration:
			if s.Class != nil && s.Class.Name != nil {
				a.declareIn(sc, s.Class.Name.Name, KindClass, int(s.Class.Idx0()))
			}
		}
	}
}

func (a *analyzer) resolveBindingInit(b *ast.Binding, sc *scope) {
	if b == nil {
		return
	}
	if b.Initializer != nil {
		a.resolveExpr(b.Initializer, sc)
	}
	// Resolve the binding's own leaf identifiers too (a plain name or,
	// for a destructuring target, every leaf the pattern assigns): each
	// leaf identifier node is also the one the compiler later looks up
	// via resolveRef at the declaration site, so it needs a RefTarget
	// entry exactly like a read would, not just the name hoisted.
	for _, id := range bindingLeaves(b.Target) {
		a.resolveIdentifier(id, sc)
	}
}

// resolveForInto resolves a for-in/for-of loop's `Into` clause: a
// declaring target's leaf identifiers (as bindings, already hoisted by
// hoistForInto) or a plain assignable expression's identifiers (as
// ordinary reads/targets, the same as any other assignment left-hand
// side).
func (a *analyzer) resolveForInto(into ast.ForInto, sc *scope) {
	switch t := into.(type) {
	case *ast.ForIntoVar:
		for _, id := range bindingLeaves(t.Binding) {
			a.resolveIdentifier(id, sc)
		}
	case *ast.ForIntoExpression:
		a.resolveExpr(t.Expression, sc)
	}
}

func (a *analyzer) resolveFunction(fn *ast.FunctionLiteral, sc *scope) {
	if fn.Name != nil {
		// The function's own name binds in the *enclosing* scope for a
		// declaration (already hoisted); a named function expression
		// additionally binds its own name inside its own body, handled
		// below via fnScope.declare.
	}

	fi := &FuncInfo{Node: fn, Parent: sc.fn, Captures: mapset.NewSet(), IsGenerator: fn.IsGenerator}
	a.funcOf[fn] = fi
	a.orders[fi] = &funcInfoOrder{seen: make(map[NameID]bool)}

	fnScope := newScope(sc, fi)
	if fn.Name != nil {
		n := a.newName(fn.Name.Name, KindFunction, fi, int(fn.Name.Idx))
		n.TDZEnd = 0
		n.Func = fi
		fnScope.declare(fn.Name.Name, n.ID)
	}
	if fn.ParameterList != nil {
		for _, p := range fn.ParameterList.List {
			name := bindingName(p)
			if name == "" {
				continue
			}
			n := a.newName(name, KindParameter, fi, int(fn.Function))
			n.TDZEnd = 0
			fnScope.declare(name, n.ID)
			if p.Initializer != nil {
				a.resolveExpr(p.Initializer, fnScope)
			}
		}
	}

	if fn.Body != nil {
		a.hoistBlock(fn.Body.List, fnScope, KindVar)
		a.hoistLexicalOnly(fn.Body.List, fnScope)
		a.resolveBlock(fn.Body.List, fnScope)
	}
}

func (a *analyzer) resolveClass(cls *ast.ClassLiteral, sc *scope) {
	if cls == nil {
		return
	}
	if cls.SuperClass != nil {
		a.resolveExpr(cls.SuperClass, sc)
	}
	for _, el := range cls.Body {
		if el == nil {
			continue
		}
		if m, ok := el.(*ast.MethodDefinition); ok && m.Body != nil {
			a.resolveFunction(m.Body, sc)
		}
	}
}

// resolveExpr walks an expression, resolving Identifier references
// and, for assignment forms, recording mutation sites (pass 3).
func (a *analyzer) resolveExpr(expr ast.Expression, sc *scope) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.Identifier:
		a.resolveIdentifier(e, sc)
	case *ast.BinaryExpression:
		a.resolveExpr(e.Left, sc)
		a.resolveExpr(e.Right, sc)
	case *ast.UnaryExpression:
		a.resolveExpr(e.Operand, sc)
	case *ast.UpdateExpression:
		a.resolveExpr(e.Operand, sc)
		a.recordMutation(e.Operand, sc, int(e.Idx))
	case *ast.AssignExpression:
		a.resolveExpr(e.Right, sc)
		a.resolveExpr(e.Left, sc)
		a.recordMutation(e.Left, sc, int(e.Left.Idx0()))
	case *ast.ConditionalExpression:
		a.resolveExpr(e.Test, sc)
		a.resolveExpr(e.Consequent, sc)
		a.resolveExpr(e.Alternate, sc)
	case *ast.CallExpression:
		a.resolveExpr(e.Callee, sc)
		for _, arg := range e.ArgumentList {
			a.resolveExpr(arg, sc)
		}
	case *ast.NewExpression:
		a.resolveExpr(e.Callee, sc)
		for _, arg := range e.ArgumentList {
			a.resolveExpr(arg, sc)
		}
	case *ast.DotExpression:
		a.resolveExpr(e.Left, sc)
	case *ast.BracketExpression:
		a.resolveExpr(e.Left, sc)
		a.resolveExpr(e.Member, sc)
	case *ast.SequenceExpression:
		for _, se := range e.Sequence {
			a.resolveExpr(se, sc)
		}
	case *ast.ArrayLiteral:
		for _, v := range e.Value {
			a.resolveExpr(v, sc)
		}
	case *ast.ObjectLiteral:
		for _, p := range e.Value {
			a.resolveProperty(p, sc)
		}
	case *ast.FunctionLiteral:
		a.resolveFunction(e, sc)
	case *ast.TemplateLiteral:
		for _, se := range e.Expressions {
			a.resolveExpr(se, sc)
		}
	case *ast.YieldExpression:
		a.resolveExpr(e.Argument, sc)
	case *ast.ThisExpression, *ast.BooleanLiteral, *ast.NumberLiteral,
		*ast.StringLiteral, *ast.NullLiteral, *ast.RegExpLiteral:
		// no identifiers inside a leaf literal
	}
}

func (a *analyzer) resolveProperty(p ast.Property, sc *scope) {
	switch pr := p.(type) {
	case *ast.PropertyKeyed:
		if pr.Computed {
			a.resolveExpr(pr.Key, sc)
		}
		a.resolveExpr(pr.Value, sc)
	case *ast.PropertyShort:
		a.resolveIdentifier(&pr.Name, sc)
	}
}

func (a *analyzer) resolveIdentifier(id *ast.Identifier, sc *scope) {
	target, declScope, ok := sc.lookup(id.Name)
	if !ok {
		// Unresolved: a global/builtin reference. Nothing to capture or
		// flag; globals aren't modeled by this analyzer (spec scope
		// doesn't include a global object).
		return
	}
	a.refTarget[id] = target

	n := a.names[target]
	if n == nil {
		return
	}

	// TDZ check: only meaningful when referenced before DeclPos/TDZEnd
	// in a scope that doesn't cross the owning function's boundary via
	// a parameter (spec §4.7's "TDZ special case").
	if n.Kind != KindParameter && n.TDZEnd != 0 && int(id.Idx) < n.TDZEnd {
		a.diags.Error(diag.Span{Start: int(id.Idx)}, "%q used before its declaration", id.Name)
	}

	// Capture recording: walk from sc.fn up to declScope's owning
	// function, marking every intermediate function as capturing this
	// name.
	for fi := sc.fn; fi != nil && fi != declScope.fn; fi = fi.Parent {
		order := a.orders[fi]
		if order != nil && !order.seen[target] {
			order.seen[target] = true
			order.captureOrder = append(order.captureOrder, target)
		}
		fi.Captures.Add(target)
	}
}

func (a *analyzer) recordMutation(target ast.Expression, sc *scope, pos int) {
	id, ok := target.(*ast.Identifier)
	if !ok {
		// A member-expression or destructuring target mutates through
		// submov, not a Name directly; nothing to record here.
		return
	}
	nameID, _, ok := sc.lookup(id.Name)
	if !ok {
		return
	}
	n := a.names[nameID]
	if n == nil {
		return
	}
	if n.Kind == KindConst {
		a.diags.Error(diag.Span{Start: pos}, "assignment to constant %q", id.Name)
	}
	n.Mutations = append(n.Mutations, pos)
}

// closeCaptures computes the fixed point of spec §4.7's "capture-
// transitive closure": if f captures g and g is itself a function
// name, f also captures everything g's FuncInfo captures (since g will
// be instantiated via `bind` at f's use-site, anything free inside g
// must also be free — and so captured — inside f).
func (a *analyzer) closeCaptures() {
	changed := true
	for changed {
		changed = false
		for _, fi := range a.funcOf {
			for _, capturedID := range a.orderSnapshot(fi) {
				capturedName := a.names[capturedID]
				if capturedName == nil || capturedName.Func == nil || capturedName.Func == fi {
					continue
				}
				for _, transitiveID := range a.orderSnapshot(capturedName.Func) {
					order := a.orders[fi]
					if order != nil && !order.seen[transitiveID] {
						order.seen[transitiveID] = true
						order.captureOrder = append(order.captureOrder, transitiveID)
						fi.Captures.Add(transitiveID)
						changed = true
					}
				}
			}
		}
	}
}

func (a *analyzer) orderSnapshot(fi *FuncInfo) []NameID {
	order := a.orders[fi]
	if order == nil {
		return nil
	}
	out := make([]NameID, len(order.captureOrder))
	copy(out, order.captureOrder)
	return out
}

// bindingName extracts the plain identifier name from a parameter
// binding's target, returning "" for a destructuring pattern (function
// parameter destructuring isn't bound by this analyzer; the compiler
// falls back to an anonymous unbound register for those, see
// names.go's paramName/paramNameID).
func bindingName(b *ast.Binding) string {
	if b == nil {
		return ""
	}
	if id, ok := b.Target.(*ast.Identifier); ok {
		return id.Name
	}
	return ""
}

// bindingLeaves walks a declaration target down to every identifier it
// binds: a plain identifier yields itself; an array/object destructuring
// pattern (§4.8 destructuring) yields one leaf per element, recursing
// into nested patterns and unwrapping `= default` elements (goja
// represents a pattern default as an AssignExpression whose Left is the
// real target, the same node shape `compiler/assign.go`'s
// assignPatternElement already expects). A nil/elided array slot or any
// other node shape contributes no leaves. Takes an untyped target
// because callers hand it both ast.BindingTarget values (a Binding's or
// ForIntoVar's own target field) and plain ast.Expression values (a
// pattern's nested elements) — a type switch works against either.
func bindingLeaves(target interface{}) []*ast.Identifier {
	switch t := target.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		return []*ast.Identifier{t}
	case *ast.AssignExpression:
		return bindingLeaves(t.Left)
	case *ast.ArrayLiteral:
		var out []*ast.Identifier
		for _, el := range t.Value {
			out = append(out, bindingLeaves(el)...)
		}
		return out
	case *ast.ObjectLiteral:
		var out []*ast.Identifier
		for _, p := range t.Value {
			switch pr := p.(type) {
			case *ast.PropertyKeyed:
				out = append(out, bindingLeaves(pr.Value)...)
			case *ast.PropertyShort:
				out = append(out, &pr.Name)
			}
		}
		return out
	default:
		return nil
	}
}
