// Package converter переводит текстовое описание сети в граф решателя и обратно
package converter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"preflow/pkg/apperror"
	"preflow/services/solver-svc/internal/graph"
)

const (
	// MaxNodes ограничивает n из заголовка, узлы выделяются до чтения рёбер
	MaxNodes = 1 << 24

	// maxEdgeHint - предел предварительной ёмкости списка рёбер, дальше растёт append
	maxEdgeHint = 1 << 16
)

// Input - разобранное описание сети
//
// Формат: заголовок "n m" или "n m C P", затем m троек "u v c".
// Тройки могут занимать любое число строк, всё после m-й тройки игнорируется.
type Input struct {
	Nodes int
	Edges []graph.EdgeSpec

	// C и P - необязательные поля заголовка, решателем не используются
	C, P     int64
	HasExtra bool
}

// FlowEdge - ребро с ненулевым потоком, ориентированное по направлению потока
type FlowEdge struct {
	Index       int
	From, To    int
	Flow        int64
	Capacity    int64
	Utilization float64
}

type tokenReader struct {
	sc     *bufio.Scanner
	line   int
	fields []string
}

func newTokenReader(r io.Reader) *tokenReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &tokenReader{sc: sc}
}

// nextLine возвращает поля следующей непустой строки
func (tr *tokenReader) nextLine() ([]string, error) {
	for tr.sc.Scan() {
		tr.line++
		if fields := strings.Fields(tr.sc.Text()); len(fields) > 0 {
			return fields, nil
		}
	}
	if err := tr.sc.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParse, "failed to read input")
	}
	return nil, io.EOF
}

// next возвращает следующее число, переходя на новые строки при необходимости
func (tr *tokenReader) next(what string) (int64, error) {
	for len(tr.fields) == 0 {
		fields, err := tr.nextLine()
		if err == io.EOF {
			return 0, apperror.New(apperror.CodeParse,
				fmt.Sprintf("unexpected end of input, expected %s", what)).
				WithField(fmt.Sprintf("line %d", tr.line))
		}
		if err != nil {
			return 0, err
		}
		tr.fields = fields
	}

	raw := tr.fields[0]
	tr.fields = tr.fields[1:]

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeParse,
			fmt.Sprintf("invalid %s %q", what, raw)).
			WithField(fmt.Sprintf("line %d", tr.line))
	}
	return v, nil
}

// Parse читает описание сети
func Parse(r io.Reader) (*Input, error) {
	tr := newTokenReader(r)

	header, err := tr.nextLine()
	if err == io.EOF {
		return nil, apperror.New(apperror.CodeParse, "input is empty")
	}
	if err != nil {
		return nil, err
	}
	if len(header) != 2 && len(header) != 4 {
		return nil, apperror.Newf(apperror.CodeParse,
			"header must be \"n m\" or \"n m C P\", got %d fields", len(header)).
			WithField(fmt.Sprintf("line %d", tr.line))
	}

	values := make([]int64, len(header))
	for i, raw := range header {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeParse,
				fmt.Sprintf("invalid header value %q", raw)).
				WithField(fmt.Sprintf("line %d", tr.line))
		}
		values[i] = v
	}

	n, m := values[0], values[1]
	if n < 0 || m < 0 {
		return nil, apperror.Newf(apperror.CodeParse, "negative counts in header: n=%d m=%d", n, m).
			WithField(fmt.Sprintf("line %d", tr.line))
	}
	if n > MaxNodes {
		return nil, apperror.Newf(apperror.CodeParse, "node count %d exceeds limit %d", n, MaxNodes).
			WithField(fmt.Sprintf("line %d", tr.line))
	}

	in := &Input{
		Nodes: int(n),
		Edges: make([]graph.EdgeSpec, 0, min(m, maxEdgeHint)),
	}
	if len(values) == 4 {
		in.C, in.P, in.HasExtra = values[2], values[3], true
	}

	for i := int64(0); i < m; i++ {
		u, err := tr.next(fmt.Sprintf("edge %d source", i))
		if err != nil {
			return nil, err
		}
		v, err := tr.next(fmt.Sprintf("edge %d target", i))
		if err != nil {
			return nil, err
		}
		c, err := tr.next(fmt.Sprintf("edge %d capacity", i))
		if err != nil {
			return nil, err
		}
		in.Edges = append(in.Edges, graph.EdgeSpec{
			U:        int(u),
			V:        int(v),
			Capacity: c,
		})
	}

	return in, nil
}

// ParseFile читает описание сети из файла, "-" или пустая строка означают stdin
func ParseFile(path string) (*Input, error) {
	if path == "" || path == "-" {
		return Parse(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParse, "failed to open input").WithField(path)
	}
	defer f.Close()

	return Parse(bufio.NewReader(f))
}

// ToGraph строит граф решателя
func (in *Input) ToGraph(workers int, opts ...graph.Option) (*graph.Graph, error) {
	return graph.New(in.Nodes, in.Edges, workers, opts...)
}

// Format записывает сеть в том же текстовом формате
func Format(w io.Writer, in *Input) error {
	bw := bufio.NewWriter(w)

	if in.HasExtra {
		fmt.Fprintf(bw, "%d %d %d %d\n", in.Nodes, len(in.Edges), in.C, in.P)
	} else {
		fmt.Fprintf(bw, "%d %d\n", in.Nodes, len(in.Edges))
	}
	for _, e := range in.Edges {
		fmt.Fprintf(bw, "%d %d %d\n", e.U, e.V, e.Capacity)
	}

	return bw.Flush()
}

// ToFlowEdges возвращает рёбра с ненулевым потоком в порядке ввода
func ToFlowEdges(g *graph.Graph) []FlowEdge {
	result := make([]FlowEdge, 0, len(g.Edges))

	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Flow == 0 {
			continue
		}

		fe := FlowEdge{
			Index:    e.Index,
			From:     e.U.Index,
			To:       e.V.Index,
			Flow:     e.Flow,
			Capacity: e.Capacity,
		}
		if e.Flow < 0 {
			fe.From, fe.To, fe.Flow = e.V.Index, e.U.Index, -e.Flow
		}
		if e.Capacity > 0 {
			fe.Utilization = float64(fe.Flow) / float64(e.Capacity)
		}

		result = append(result, fe)
	}

	return result
}
