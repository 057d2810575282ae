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

package operations

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/siliconjungle/ValueScript/values"
)

// VsRegExp backs a supplemented RegExp builtin (SPEC_FULL.md §4):
// spec.md's subset is a TypeScript subset of the source language, and
// the original implementation's builtin surface includes RegExp
// literals. regexp2 is used instead of stdlib regexp because it
// supports backreferences and lookaround the way JS regular
// expressions do; RE2 (stdlib) cannot express those.
type VsRegExp struct {
	Source string
	Flags  string
	re     *regexp2.Regexp
}

func NewRegExp(source, flags string) (*VsRegExp, error) {
	opts := regexp2.RE2
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(flags, "s") {
		opts |= regexp2.Singleline
	}
	if strings.Contains(flags, "m") {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, throwType("Invalid regular expression: " + err.Error())
	}
	return &VsRegExp{Source: source, Flags: flags, re: re}, nil
}

func (r *VsRegExp) TypeOf() string { return "object" }
func (r *VsRegExp) Codify() string { return "/" + r.Source + "/" + r.Flags }

// Test implements RegExp.prototype.test.
func (r *VsRegExp) Test(s string) (bool, error) {
	m, err := r.re.FindStringMatch(s)
	if err != nil {
		return false, throwType(err.Error())
	}
	return m != nil, nil
}

// Match implements String.prototype.match for a non-global RegExp,
// returning the match array or Undefined if no match.
func (r *VsRegExp) Match(s string) (values.Value, error) {
	m, err := r.re.FindStringMatch(s)
	if err != nil {
		return values.Value{}, throwType(err.Error())
	}
	if m == nil {
		return values.Undefined(), nil
	}
	groups := m.Groups()
	elems := make([]values.Value, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			elems[i] = values.Undefined()
			continue
		}
		elems[i] = values.String(g.String())
	}
	return values.Array(values.NewArray(elems)), nil
}

// Replace implements String.prototype.replace for a string
// replacement (function replacers are handled at the compiler/VM
// call boundary, not here).
func (r *VsRegExp) Replace(s, replacement string) (string, error) {
	out, err := r.re.Replace(s, replacement, -1, -1)
	if err != nil {
		return "", throwType(err.Error())
	}
	return out, nil
}
