package hostcodec

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/textcodec"
)

// Param is a named operation parameter.
type Param struct {
	Name string
	Type wit.Type
}

// Signature describes one operation in WIT terms.
type Signature struct {
	Op      string
	Doc     string
	Params  []Param
	Results []wit.Type
}

// String renders the signature as a WIT function declaration.
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Op)
	b.WriteString(": func(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(TypeString(p.Type))
	}
	b.WriteByte(')')
	if len(s.Results) == 1 {
		b.WriteString(" -> ")
		b.WriteString(TypeString(s.Results[0]))
	}
	return b.String()
}

func listOf(t wit.Type) wit.Type {
	return &wit.TypeDef{Kind: &wit.List{Type: t}}
}

// Describe returns the signatures of the operations a Host serves, sorted
// by name. UTF-16 text travels as list<u16>.
func Describe() []Signature {
	text := listOf(wit.U16{})
	bytes := listOf(wit.U8{})

	return []Signature{
		{
			Op:      textcodec.OpDecode,
			Doc:     "Decode UTF-8 to UTF-16, replacing ill-formed input with U+FFFD.",
			Params:  []Param{{"bytes", bytes}},
			Results: []wit.Type{text},
		},
		{
			Op:     textcodec.OpDecoderClose,
			Doc:    "Release a streaming decoder.",
			Params: []Param{{"handle", wit.U32{}}},
		},
		{
			Op:      textcodec.OpDecoderDecode,
			Doc:     "Feed a chunk to a streaming decoder.",
			Params:  []Param{{"handle", wit.U32{}}, {"end-of-stream", wit.Bool{}}, {"chunk", bytes}},
			Results: []wit.Type{text},
		},
		{
			Op:      textcodec.OpDecoderOpen,
			Doc:     "Start a streaming decoder.",
			Results: []wit.Type{wit.U32{}},
		},
		{
			Op:      textcodec.OpEncode,
			Doc:     "Encode UTF-16 to UTF-8, replacing unpaired surrogates with U+FFFD.",
			Params:  []Param{{"text", text}},
			Results: []wit.Type{bytes},
		},
	}
}

// TypeString renders the WIT types used by Describe.
func TypeString(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.U32:
		return "u32"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if l, ok := v.Kind.(*wit.List); ok {
			return "list<" + TypeString(l.Type) + ">"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}
