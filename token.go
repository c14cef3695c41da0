package templatepro

import "fmt"

// Kind classifies a single token in the compiled vector.
type Kind int

const (
	KindContent Kind = iota
	KindFor
	KindEndFor
	KindIfThen
	KindBoolExpression
	KindElse
	KindEndIf
	KindContinue
	KindBlock
	KindEndBlock
	KindLiteralString
	KindValue
	KindFilterName
	KindFilterParameter
	KindLineBreak
	KindSystemVersion
	KindExit
	KindEOF
	KindInfo
)

var kindNames = [...]string{
	KindContent:         "Content",
	KindFor:             "For",
	KindEndFor:          "EndFor",
	KindIfThen:          "IfThen",
	KindBoolExpression:  "BoolExpression",
	KindElse:            "Else",
	KindEndIf:           "EndIf",
	KindContinue:        "Continue",
	KindBlock:           "Block",
	KindEndBlock:        "EndBlock",
	KindLiteralString:   "LiteralString",
	KindValue:           "Value",
	KindFilterName:      "FilterName",
	KindFilterParameter: "FilterParameter",
	KindLineBreak:       "LineBreak",
	KindSystemVersion:   "SystemVersion",
	KindExit:            "Exit",
	KindEOF:             "EOF",
	KindInfo:            "Info",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Parameter type codes carried in FilterParameter.Ref2.
const (
	ParamInteger  = 0
	ParamFloat    = 1
	ParamString   = 2
	ParamVariable = 3
)

// Info marker payloads delimiting the layout section of an extends chain.
const (
	infoBeginOfLayout = "begin_of_layout"
	infoEndOfLayout   = "end_of_layout"
)

// Token is the unit of the compiled vector. Value1/Value2 and Ref1/Ref2 are
// interpreted per kind; -1 marks an unused ref.
type Token struct {
	Kind   Kind
	Value1 string
	Value2 string
	Ref1   int
	Ref2   int
}

func newToken(k Kind, v1, v2 string) Token {
	return Token{
		Kind:   k,
		Value1: v1,
		Value2: v2,
		Ref1:   -1,
		Ref2:   -1,
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q, %q, %d, %d)", t.Kind, t.Value1, t.Value2, t.Ref1, t.Ref2)
}
