// Package dice parses and rolls tabletop dice expressions such as "1d10",
// "2d6+1" or "4d6kh3-2". Expressions are parsed once and rolled many times.
package dice

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Result is the outcome of one roll of an expression
type Result struct {
	Total     int    // Final computed value
	Rolls     []int  // Every die rolled, in roll order
	Breakdown string // Human-readable breakdown, e.g. "[3, 5] + 1"
}

// keep modifiers applied to a dice term
const (
	keepAll     = ""
	keepHighest = "kh"
	keepLowest  = "kl"
	dropHighest = "dh"
	dropLowest  = "dl"
)

// term is one signed operand of an expression: either a constant or NdS.
type term struct {
	sign     int
	constant int
	count    int
	sides    int
	keep     string
	keepN    int
}

// Expr is a parsed dice expression.
type Expr struct {
	source string
	terms  []term
}

// Limits on a single dice term
const (
	MaxDice  = 1000
	MaxSides = 1000000
)

// diceRegex matches dice notation like "3d6", "d20", "4d6kh3", "2d8dl1"
var diceRegex = regexp.MustCompile(`^(\d*)d(\d+)(?:(kh|k|kl|dh|dl)(\d+))?$`)

// Parse parses an expression made of dice terms and integer constants joined
// by + and -.
func Parse(expression string) (*Expr, error) {
	src := strings.ToLower(strings.ReplaceAll(expression, " ", ""))
	if src == "" {
		return nil, fmt.Errorf("empty dice expression")
	}

	e := &Expr{source: expression}
	sign := 1
	start := 0
	for i := 0; i <= len(src); i++ {
		if i < len(src) && src[i] != '+' && src[i] != '-' {
			continue
		}
		if i == 0 && src[i] == '-' {
			sign = -1
			start = 1
			continue
		}
		t, err := parseTerm(src[start:i])
		if err != nil {
			return nil, fmt.Errorf("dice expression %q: %w", expression, err)
		}
		t.sign = sign
		e.terms = append(e.terms, t)
		if i < len(src) {
			sign = 1
			if src[i] == '-' {
				sign = -1
			}
		}
		start = i + 1
	}
	return e, nil
}

// MustParse is like Parse but panics on error. For literals only.
func MustParse(expression string) *Expr {
	e, err := Parse(expression)
	if err != nil {
		panic(err)
	}
	return e
}

func parseTerm(s string) (term, error) {
	if s == "" {
		return term{}, fmt.Errorf("missing operand")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return term{constant: n}, nil
	}

	m := diceRegex.FindStringSubmatch(s)
	if m == nil {
		return term{}, fmt.Errorf("invalid term %q", s)
	}
	count := 1
	if m[1] != "" {
		var err error
		if count, err = strconv.Atoi(m[1]); err != nil {
			return term{}, fmt.Errorf("invalid dice count in %q: %w", s, err)
		}
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return term{}, fmt.Errorf("invalid dice sides in %q: %w", s, err)
	}
	if count <= 0 || sides <= 0 {
		return term{}, fmt.Errorf("invalid dice specification %q", s)
	}
	if count > MaxDice || sides > MaxSides {
		return term{}, fmt.Errorf("%q exceeds %dd%d", s, MaxDice, MaxSides)
	}

	t := term{count: count, sides: sides}
	if m[3] != "" {
		t.keep = m[3]
		if t.keep == "k" {
			t.keep = keepHighest
		}
		if t.keepN, err = strconv.Atoi(m[4]); err != nil {
			return term{}, fmt.Errorf("invalid keep count in %q: %w", s, err)
		}
		if t.keepN <= 0 || t.keepN > count {
			return term{}, fmt.Errorf("%s%d out of range for %d dice", t.keep, t.keepN, count)
		}
	}
	return t, nil
}

// String returns the expression as written.
func (e *Expr) String() string {
	return e.source
}

// Min returns the smallest total the expression can produce.
func (e *Expr) Min() int {
	total := 0
	for _, t := range e.terms {
		lo, hi := t.bounds()
		if t.sign < 0 {
			total -= hi
		} else {
			total += lo
		}
	}
	return total
}

// Max returns the largest total the expression can produce.
func (e *Expr) Max() int {
	total := 0
	for _, t := range e.terms {
		lo, hi := t.bounds()
		if t.sign < 0 {
			total -= lo
		} else {
			total += hi
		}
	}
	return total
}

func (t term) bounds() (int, int) {
	if t.sides == 0 {
		return t.constant, t.constant
	}
	n := t.kept(t.count)
	return n, n * t.sides
}

// kept returns how many of n dice count toward the total.
func (t term) kept(n int) int {
	switch t.keep {
	case keepHighest, keepLowest:
		return t.keepN
	case dropHighest, dropLowest:
		return n - t.keepN
	default:
		return n
	}
}

// Roll evaluates the expression with rng.
func (e *Expr) Roll(rng *rand.Rand) Result {
	var res Result
	parts := make([]string, 0, len(e.terms))
	for i, t := range e.terms {
		value, rolls, breakdown := t.roll(rng)
		res.Total += t.sign * value
		res.Rolls = append(res.Rolls, rolls...)

		switch {
		case i == 0 && t.sign < 0:
			parts = append(parts, "-"+breakdown)
		case i == 0:
			parts = append(parts, breakdown)
		case t.sign < 0:
			parts = append(parts, "- "+breakdown)
		default:
			parts = append(parts, "+ "+breakdown)
		}
	}
	res.Breakdown = strings.Join(parts, " ")
	return res
}

func (t term) roll(rng *rand.Rand) (int, []int, string) {
	if t.sides == 0 {
		return t.constant, nil, strconv.Itoa(t.constant)
	}

	rolls := make([]int, t.count)
	for i := range rolls {
		rolls[i] = rng.Intn(t.sides) + 1
	}

	kept := rolls
	breakdown := fmt.Sprintf("[%s]", joinInts(rolls, ", "))
	if t.keep != keepAll {
		sorted := append([]int(nil), rolls...)
		sort.Ints(sorted)
		switch t.keep {
		case keepHighest:
			kept = sorted[len(sorted)-t.keepN:]
		case keepLowest:
			kept = sorted[:t.keepN]
		case dropHighest:
			kept = sorted[:len(sorted)-t.keepN]
		case dropLowest:
			kept = sorted[t.keepN:]
		}
		breakdown = fmt.Sprintf("[%s] %s%d → [%s]", joinInts(rolls, ", "), t.keep, t.keepN, joinInts(kept, ", "))
	}

	total := 0
	for _, r := range kept {
		total += r
	}
	return total, rolls, breakdown
}

// Roller rolls expressions against a shared random source
type Roller struct {
	rng *rand.Rand
}

// NewRoller creates a new Roller with the given random source
func NewRoller(rng *rand.Rand) *Roller {
	return &Roller{rng: rng}
}

// RollExpr evaluates an already parsed expression.
func (r *Roller) RollExpr(e *Expr) Result {
	return e.Roll(r.rng)
}

// joinInts joins a slice of ints with a separator
func joinInts(nums []int, sep string) string {
	strs := make([]string, len(nums))
	for i, n := range nums {
		strs[i] = strconv.Itoa(n)
	}
	return strings.Join(strs, sep)
}
