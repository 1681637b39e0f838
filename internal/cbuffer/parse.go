package cbuffer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	commentMarker   = "//"
	cbufferKeyword  = "cbuffer "
	inputSigHeading = "Input signature:"
	unusedMarker    = "[unused]"

	// inputSigHeaderLines is the fixed-format header (blank, column titles,
	// dashes) that follows the input signature heading.
	inputSigHeaderLines = 3
)

// Reflection is everything recovered from one disassembly listing.
type Reflection struct {
	Buffers []Buffer
	Inputs  []SignatureElement
	Skipped []string // Buffer lines not recognized as members
}

type parseMode int

const (
	modeIdle parseMode = iota
	modeInputSig
	modeCBuffer
)

// parser is the line-classifying state machine behind Parse.
type parser struct {
	prefix string
	mode   parseMode
	skip   int
	depth  int // Brace depth inside the current cbuffer
	cur    Buffer
	out    Reflection
}

// ParseFile parses the disassembly listing at path. root is the shader's
// base name, used to prefix buffer names.
func ParseFile(path, root string) (*Reflection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cbuffer: open disassembly: %w", err)
	}
	defer f.Close()

	refl, err := Parse(f, root)
	if err != nil {
		return nil, fmt.Errorf("cbuffer: read %s: %w", path, err)
	}
	return refl, nil
}

// Parse reads a disassembly listing and reconstructs its constant buffers
// and input signature. Only comment lines are inspected. Unrecognized lines
// are skipped, never treated as errors.
func Parse(r io.Reader, root string) (*Reflection, error) {
	p := &parser{prefix: Prefix(root)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &p.out, nil
}

func (p *parser) line(raw string) {
	if p.skip > 0 {
		p.skip--
		return
	}

	rest, ok := strings.CutPrefix(strings.TrimLeft(raw, " \t"), commentMarker)
	if !ok {
		return
	}
	text := strings.TrimSpace(rest)

	switch p.mode {
	case modeIdle:
		p.idle(text)
	case modeInputSig:
		p.inputSig(text)
	case modeCBuffer:
		p.cbuffer(text)
	}
}

func (p *parser) idle(text string) {
	switch {
	case strings.HasPrefix(text, cbufferKeyword):
		fields := strings.Fields(text[len(cbufferKeyword):])
		if len(fields) == 0 {
			return
		}
		p.cur = Buffer{Name: p.prefix + strings.ReplaceAll(fields[0], ".", "")}
		p.depth = 0
		p.mode = modeCBuffer
	case strings.HasPrefix(text, inputSigHeading):
		p.skip = inputSigHeaderLines
		p.mode = modeInputSig
	}
}

func (p *parser) inputSig(text string) {
	if text == "" {
		p.mode = modeIdle
		return
	}

	f := strings.Fields(text)
	if len(f) != 6 && len(f) != 7 {
		return
	}
	el := SignatureElement{
		Name:     f[0],
		Index:    f[1],
		Mask:     f[2],
		Register: f[3],
		SysValue: f[4],
		Format:   f[5],
	}
	if len(f) == 7 {
		el.Used = f[6]
	}
	p.out.Inputs = append(p.out.Inputs, el)
}

func (p *parser) cbuffer(text string) {
	switch {
	case text == "{":
		p.depth++
		return
	case text == "}" && p.depth <= 1:
		p.out.Buffers = append(p.out.Buffers, p.cur)
		p.cur = Buffer{}
		p.mode = modeIdle
		return
	case strings.HasPrefix(text, "}"):
		// Closes a nested struct, e.g. "} lights[4]; // Offset: ...".
		p.depth--
	}

	decl, comment, _ := strings.Cut(text, ";")
	comment = strings.TrimSpace(comment)
	unused := strings.Contains(comment, unusedMarker)
	if unused {
		p.cur.UnusedCount++
	}

	if p.depth > 1 || strings.HasPrefix(text, "}") {
		p.skipLine(text)
		return
	}

	typ, name, _ := strings.Cut(decl, " ")
	name = strings.TrimSpace(name)
	if typ == "" || name == "" {
		p.skipLine(text)
		return
	}
	t, ok := LookupType(typ)
	if !ok {
		p.skipLine(text)
		return
	}

	p.cur.set(Member{Name: name, Type: t, Comment: comment, Unused: unused})
}

func (p *parser) skipLine(text string) {
	if text == "" {
		return
	}
	p.out.Skipped = append(p.out.Skipped, text)
}
