// Package trace replays scripted allocation workloads against an allocator.
//
// A script has one operation per line:
//
//	# comment
//	alloc <name> <count>   reserve count elements under name
//	free <name>            release the block held by name
//	check <name>           verify the block still holds the bytes written at alloc
//
// Blank lines and text after '#' are ignored.
package trace

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrSyntax indicates a malformed script line.
var ErrSyntax = errors.New("trace: syntax error")

// Kind is the type of a script operation.
type Kind uint8

const (
	KindAlloc Kind = iota + 1
	KindFree
	KindCheck
)

// String returns the script keyword for k.
func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "alloc"
	case KindFree:
		return "free"
	case KindCheck:
		return "check"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Op is one parsed script operation.
type Op struct {
	Kind  Kind
	Name  string
	Count int // alloc only
	Line  int
}

// Parse reads a script. It stops at the first malformed line.
func Parse(r io.Reader) ([]Op, error) {
	var ops []Op
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		op, err := parseFields(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		op.Line = line
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "trace: read")
	}
	return ops, nil
}

func parseFields(fields []string) (Op, error) {
	switch strings.ToLower(fields[0]) {
	case "alloc":
		if len(fields) != 3 {
			return Op{}, errors.Wrap(ErrSyntax, "want: alloc <name> <count>")
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil || n <= 0 {
			return Op{}, errors.Wrapf(ErrSyntax, "count %q must be a positive integer", fields[2])
		}
		return Op{Kind: KindAlloc, Name: fields[1], Count: n}, nil
	case "free":
		if len(fields) != 2 {
			return Op{}, errors.Wrap(ErrSyntax, "want: free <name>")
		}
		return Op{Kind: KindFree, Name: fields[1]}, nil
	case "check":
		if len(fields) != 2 {
			return Op{}, errors.Wrap(ErrSyntax, "want: check <name>")
		}
		return Op{Kind: KindCheck, Name: fields[1]}, nil
	default:
		return Op{}, errors.Wrapf(ErrSyntax, "unknown operation %q", fields[0])
	}
}
