package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

// TokenType identifies a lexical token class.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals and identifiers
	TokenIdent
	TokenInt
	TokenFloat
	TokenString

	// Keywords
	TokenLet
	TokenAssign // the 'assign' rebinding keyword
	TokenIf
	TokenElse
	TokenWhile
	TokenFor
	TokenTo
	TokenStep
	TokenBreak
	TokenContinue
	TokenFunc
	TokenReturn
	TokenPrint
	TokenTrue
	TokenFalse
	TokenNone
	TokenAnd
	TokenOr
	TokenNot

	// Operators and punctuation
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent // '%' or the 'rem' keyword
	TokenPower   // '**'
	TokenEquals  // '=' (initialization only)
	TokenEqEq
	TokenNotEq
	TokenLess
	TokenLessEq
	TokenGreater
	TokenGreaterEq
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenIllegal:   "ILLEGAL",
	TokenIdent:     "IDENT",
	TokenInt:       "INT",
	TokenFloat:     "FLOAT",
	TokenString:    "STRING",
	TokenLet:       "let",
	TokenAssign:    "assign",
	TokenIf:        "if",
	TokenElse:      "else",
	TokenWhile:     "while",
	TokenFor:       "for",
	TokenTo:        "to",
	TokenStep:      "step",
	TokenBreak:     "break",
	TokenContinue:  "continue",
	TokenFunc:      "func",
	TokenReturn:    "return",
	TokenPrint:     "print",
	TokenTrue:      "true",
	TokenFalse:     "false",
	TokenNone:      "none",
	TokenAnd:       "and",
	TokenOr:        "or",
	TokenNot:       "not",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenPercent:   "%",
	TokenPower:     "**",
	TokenEquals:    "=",
	TokenEqEq:      "==",
	TokenNotEq:     "!=",
	TokenLess:      "<",
	TokenLessEq:    "<=",
	TokenGreater:   ">",
	TokenGreaterEq: ">=",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenComma:     ",",
	TokenColon:     ":",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

var keywords = map[string]TokenType{
	"let":      TokenLet,
	"assign":   TokenAssign,
	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"for":      TokenFor,
	"to":       TokenTo,
	"step":     TokenStep,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"func":     TokenFunc,
	"return":   TokenReturn,
	"print":    TokenPrint,
	"true":     TokenTrue,
	"false":    TokenFalse,
	"none":     TokenNone,
	"and":      TokenAnd,
	"or":       TokenOr,
	"not":      TokenNot,
	"rem":      TokenPercent,
}

// Position is a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Token is one lexical token with its literal text and position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
