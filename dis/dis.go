// Package dis renders recorded bytecode as a readable instruction listing,
// for debugging recorders and translators.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/wander-lang/wander/bytecode"
	"github.com/wander-lang/wander/internal/table"
)

var (
	headerStyle    = color.New(color.FgCyan, color.Bold)
	operationStyle = color.New(color.FgGreen)
)

// Row is one instruction of a disassembled recording.
type Row struct {
	Offset    int
	Section   string
	Operation string
	Arguments string
}

// Disassemble flattens a recording into rows, source instructions first.
// Nested bytecode arguments appear in their compact bracketed form.
func Disassemble(bc *bytecode.Bytecode) ([]Row, error) {
	if bc == nil {
		return nil, fmt.Errorf("cannot disassemble nil bytecode")
	}
	rows := make([]Row, 0, bc.SourceCount()+bc.StepCount())
	for i := 0; i < bc.SourceCount(); i++ {
		rows = append(rows, newRow(i, "source", bc.SourceAt(i)))
	}
	for i := 0; i < bc.StepCount(); i++ {
		rows = append(rows, newRow(i, "step", bc.StepAt(i)))
	}
	return rows, nil
}

// Fprint disassembles and prints in one call.
func Fprint(w io.Writer, bc *bytecode.Bytecode) error {
	rows, err := Disassemble(bc)
	if err != nil {
		return err
	}
	Print(rows, w)
	return nil
}

// Print writes rows as an aligned table. Styling follows the color
// package's global enablement, so redirected output stays plain.
func Print(rows []Row, w io.Writer) {
	tbl := table.NewTable(w)
	tbl.WithHeader([]string{
		headerStyle.Sprint("OFFSET"),
		headerStyle.Sprint("SECTION"),
		headerStyle.Sprint("OPERATION"),
		headerStyle.Sprint("ARGUMENTS"),
	})
	tbl.WithHeaderAlignment([]table.Alignment{
		table.AlignCenter, table.AlignCenter, table.AlignCenter, table.AlignCenter,
	})
	tbl.WithColumnAlignment([]table.Alignment{
		table.AlignRight, table.AlignLeft, table.AlignLeft, table.AlignLeft,
	})
	for _, r := range rows {
		cells := r.cells()
		cells[2] = operationStyle.Sprint(cells[2])
		tbl.Append(cells)
	}
	tbl.Render()
}

func (r Row) cells() []string {
	return []string{strconv.Itoa(r.Offset), r.Section, r.Operation, r.Arguments}
}

func newRow(offset int, section string, in bytecode.Instruction) Row {
	return Row{
		Offset:    offset,
		Section:   section,
		Operation: in.Operation(),
		Arguments: formatArgs(in),
	}
}

func formatArgs(in bytecode.Instruction) string {
	if in.ArgCount() == 0 {
		return ""
	}
	parts := make([]string, in.ArgCount())
	for i := 0; i < in.ArgCount(); i++ {
		parts[i] = formatArg(in.ArgAt(i))
	}
	return strings.Join(parts, ", ")
}

func formatArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case bytecode.Binding:
		return v.String()
	case *bytecode.Bytecode:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

