package formula

// TokenKind classifies a scanned token.
type TokenKind string

const (
	TokenLParen  TokenKind = "LPAREN"
	TokenRParen  TokenKind = "RPAREN"
	TokenAnd     TokenKind = "AND"
	TokenOr      TokenKind = "OR"
	TokenNot     TokenKind = "NOT"
	TokenLiteral TokenKind = "LITERAL"
)

// Token is one scanned element of a formula: its kind, the raw text it was
// scanned from, and its byte offset in the input.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z')
}
