package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Table generation accepts three shapes of input: an explicit list of
// table numbers, a bare count (new tables continue from the highest
// existing numeric suffix), or a textual expression.  Expressions:
//
//	"5"        -> count of 5 sequential tables
//	"T3"       -> the single table T3
//	"T1-T5"    -> inclusive range T1..T5
//	"T1,T3,T5" -> explicit list
//
// Anything else, including an inverted range, is ErrInvalidSpec.

// GenerateSpec carries one of the three request shapes.  Exactly one
// of Tables, Count or Expr should be set; they are considered in that
// order.
type GenerateSpec struct {
	Tables []string
	Count  int
	Expr   string
}

// parseTableNo validates the "T<digits>" format and returns the
// numeric suffix.
func parseTableNo(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != 'T' && s[0] != 't') {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSpec, s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSpec, s)
	}
	return n, nil
}

// parseExpr expands a textual expression into table numbers.  A bare
// integer is returned as a pending count (numbers are assigned later
// against the current maximum); every other shape is resolved here.
func parseExpr(expr string) (tableNos []string, count int, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, 0, ErrInvalidSpec
	}

	// Bare integer: a count continuing from the current maximum.
	if n, convErr := strconv.Atoi(expr); convErr == nil {
		if n < 1 {
			return nil, 0, fmt.Errorf("%w: count must be positive", ErrInvalidSpec)
		}
		return nil, n, nil
	}

	// Explicit list: "T1,T3,T5".
	if strings.Contains(expr, ",") {
		parts := strings.Split(expr, ",")
		nos := make([]string, 0, len(parts))
		for _, p := range parts {
			n, err := parseTableNo(p)
			if err != nil {
				return nil, 0, err
			}
			nos = append(nos, fmt.Sprintf("T%d", n))
		}
		return nos, 0, nil
	}

	// Inclusive range: "T1-T5".
	if strings.Contains(expr, "-") {
		parts := strings.SplitN(expr, "-", 2)
		start, err := parseTableNo(parts[0])
		if err != nil {
			return nil, 0, err
		}
		end, err := parseTableNo(parts[1])
		if err != nil {
			return nil, 0, err
		}
		if start > end {
			return nil, 0, fmt.Errorf("%w: inverted range %q", ErrInvalidSpec, expr)
		}
		nos := make([]string, 0, end-start+1)
		for i := start; i <= end; i++ {
			nos = append(nos, fmt.Sprintf("T%d", i))
		}
		return nos, 0, nil
	}

	// Single table: "T3".
	n, err := parseTableNo(expr)
	if err != nil {
		return nil, 0, err
	}
	return []string{fmt.Sprintf("T%d", n)}, 0, nil
}

// resolveSpec turns a GenerateSpec into the concrete table numbers to
// create.  nextFrom supplies the highest existing numeric suffix when
// a count needs sequential numbers.
func resolveSpec(spec GenerateSpec, nextFrom func() (int, error)) ([]string, error) {
	switch {
	case len(spec.Tables) > 0:
		nos := make([]string, 0, len(spec.Tables))
		for _, t := range spec.Tables {
			n, err := parseTableNo(t)
			if err != nil {
				return nil, err
			}
			nos = append(nos, fmt.Sprintf("T%d", n))
		}
		return nos, nil
	case spec.Count > 0:
		return sequentialTableNos(spec.Count, nextFrom)
	case spec.Expr != "":
		nos, count, err := parseExpr(spec.Expr)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return sequentialTableNos(count, nextFrom)
		}
		return nos, nil
	default:
		return nil, ErrInvalidSpec
	}
}

func sequentialTableNos(count int, nextFrom func() (int, error)) ([]string, error) {
	max, err := nextFrom()
	if err != nil {
		return nil, err
	}
	nos := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		nos = append(nos, fmt.Sprintf("T%d", max+i))
	}
	return nos, nil
}
