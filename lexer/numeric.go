package lexer

import "strconv"

func parseInt(lexeme string) (int, error) {
	v, err := strconv.ParseInt(lexeme, 10, 64)
	return int(v), err
}

func parseFloat(lexeme string) (float64, error) {
	return strconv.ParseFloat(lexeme, 64)
}
