// Package cbuffer reconstructs constant-buffer layouts from compiler
// disassembly listings and renders them as C++ struct definitions with the
// padding HLSL's packing rules require.
package cbuffer

import (
	"strings"
	"unicode"
)

// SlotWords is the number of 4-byte words in one 16-byte packing register.
const SlotWords = 4

// Type is a member type the generator knows how to map.
type Type struct {
	HLSL  string // Type token as it appears in the disassembly
	Name  string // Rendered C++ type name
	Words int    // Size in 4-byte words
}

var knownTypes = map[string]Type{
	"float":    {HLSL: "float", Name: "float", Words: 1},
	"float2":   {HLSL: "float2", Name: "vec2", Words: 2},
	"float3":   {HLSL: "float3", Name: "vec3", Words: 3},
	"float4":   {HLSL: "float4", Name: "vec4", Words: 4},
	"float4x4": {HLSL: "float4x4", Name: "Matrix", Words: 16},
	"matrix":   {HLSL: "matrix", Name: "Matrix", Words: 16},
}

// LookupType maps an HLSL type token to its Type.
func LookupType(hlsl string) (Type, bool) {
	t, ok := knownTypes[hlsl]
	return t, ok
}

// Member is one variable declared in a constant buffer.
type Member struct {
	Name    string
	Type    Type
	Comment string // Trailing comment from the disassembly, including "//"
	Unused  bool   // The compiler marked the variable [unused]
}

// Buffer is a reconstructed constant buffer in declaration order.
type Buffer struct {
	Name        string
	Members     []Member
	UnusedCount int // Lines in the buffer carrying the [unused] marker
}

// Dropped reports whether the buffer is left out of generated code: it has
// no members, or every member is unused.
func (b Buffer) Dropped() bool {
	for _, m := range b.Members {
		if !m.Unused {
			return false
		}
	}
	return true
}

// set appends m, or replaces an earlier member of the same name in place.
func (b *Buffer) set(m Member) {
	for i := range b.Members {
		if b.Members[i].Name == m.Name {
			b.Members[i] = m
			return
		}
	}
	b.Members = append(b.Members, m)
}

// SignatureElement is one row of an input signature block.
type SignatureElement struct {
	Name     string
	Index    string
	Mask     string
	Register string
	SysValue string
	Format   string
	Used     string // Empty when the compiler omits the column
}

// Prefix returns the buffer-name prefix for a shader root: each word
// title-cased and dots removed, so "post.fx" becomes "PostFx".
func Prefix(root string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range root {
		switch {
		case unicode.IsLetter(r) && prevLetter:
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return strings.ReplaceAll(b.String(), ".", "")
}
