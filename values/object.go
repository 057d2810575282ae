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

package values

import "strconv"

// VsObject is the shared container backing the Object variant:
// insertion-ordered string-keyed properties, a separate symbol-keyed
// map, and an optional prototype for chained lookup (spec §3, §4.1).
type VsObject struct {
	Keys       []string
	StringMap  map[string]Value
	SymbolMap  map[Symbol]Value
	Prototype  Value
	frozen     bool
	refs       int32
}

// NewObject builds a freshly-owned (refcount 1) object handle.
func NewObject() *VsObject {
	return &VsObject{
		StringMap: map[string]Value{},
		SymbolMap: map[Symbol]Value{},
		Prototype: Undefined(),
		refs:      1,
	}
}

func (o *VsObject) clone() *VsObject {
	dup := &VsObject{
		Keys:      append([]string(nil), o.Keys...),
		StringMap: make(map[string]Value, len(o.StringMap)),
		SymbolMap: make(map[Symbol]Value, len(o.SymbolMap)),
		Prototype: o.Prototype,
		frozen:    o.frozen,
		refs:      1,
	}
	for k, v := range o.StringMap {
		dup.StringMap[k] = v
	}
	for k, v := range o.SymbolMap {
		dup.SymbolMap[k] = v
	}
	return dup
}

// Get implements `sub` read semantics: string_map first, then the
// prototype chain; symbol keys look up symbol_map only.
func (o *VsObject) Get(key Value) Value {
	if key.Kind() == KindSymbol {
		if v, ok := o.SymbolMap[key.symVal]; ok {
			return v.AsRead()
		}
		return Undefined()
	}
	k := propKey(key)
	for cur := o; cur != nil; {
		if v, ok := cur.StringMap[k]; ok {
			return v.AsRead()
		}
		proto := cur.Prototype
		if proto.Kind() != KindObject {
			break
		}
		cur = proto.obj
	}
	return Undefined()
}

// Set implements `submov` write semantics: own-property insertion,
// preserving first-insertion order. Set does not check the frozen
// flag, and neither does operations.SubMov: a frozen object is
// written like any other.
func (o *VsObject) Set(key, value Value) {
	if key.Kind() == KindSymbol {
		if _, ok := o.SymbolMap[key.symVal]; !ok {
			o.SymbolMap[key.symVal] = value
			return
		}
		o.SymbolMap[key.symVal] = value
		return
	}
	k := propKey(key)
	if _, ok := o.StringMap[k]; !ok {
		o.Keys = append(o.Keys, k)
	}
	o.StringMap[k] = value
}

func (o *VsObject) Has(key Value) bool {
	if key.Kind() == KindSymbol {
		_, ok := o.SymbolMap[key.symVal]
		return ok
	}
	k := propKey(key)
	for cur := o; cur != nil; {
		if _, ok := cur.StringMap[k]; ok {
			return true
		}
		proto := cur.Prototype
		if proto.Kind() != KindObject {
			break
		}
		cur = proto.obj
	}
	return false
}

func propKey(key Value) string {
	switch key.Kind() {
	case KindString:
		return key.strVal
	case KindNumber:
		return formatNumberKey(key.numVal)
	default:
		return key.strVal
	}
}

func formatNumberKey(n float64) string {
	if i := int64(n); float64(i) == n {
		return strconv.FormatInt(i, 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
