package load

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/nao1215/datapull/internal/model"
)

// parquetBatch is the number of rows read per ReadRows call.
const parquetBatch = 256

// decodeParquet reads every row of a Parquet file. Each leaf column becomes
// a frame column named by its dotted path. A column below a repeated field
// always yields a []any cell, empty when the row has no elements.
func decodeParquet(content []byte) (*model.Frame, error) {
	f, err := parquet.OpenFile(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	schema := f.Schema()
	paths := schema.Columns()
	if len(paths) == 0 {
		return nil, ErrNoColumns
	}
	columns := make([]string, len(paths))
	leaves := make([]parquetLeaf, len(paths))
	for i, p := range paths {
		columns[i] = strings.Join(p, ".")
		leaves[i] = leafOf(schema, p)
	}

	reader := parquet.NewReader(f)
	defer reader.Close()

	frame := model.NewFrame(columns)
	buf := make([]parquet.Row, parquetBatch)
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			if err := frame.AppendRow(parquetRow(row, leaves)); err != nil {
				return nil, err
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return frame, nil
}

// parquetLeaf describes how the values of one leaf column map to a cell.
type parquetLeaf struct {
	// repeated is set when any field on the path is repeated.
	repeated bool

	// elementLevel is the definition level at which the innermost repeated
	// field holds an element. Lower levels mark a null or empty list.
	elementLevel int
}

func leafOf(schema *parquet.Schema, path []string) parquetLeaf {
	var (
		leaf  parquetLeaf
		node  parquet.Node = schema
		level int
	)
	for _, name := range path {
		node = fieldByName(node, name)
		if node == nil {
			break
		}
		if node.Optional() || node.Repeated() {
			level++
		}
		if node.Repeated() {
			leaf.repeated = true
			leaf.elementLevel = level
		}
	}
	return leaf
}

func fieldByName(node parquet.Node, name string) parquet.Node {
	for _, f := range node.Fields() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func parquetRow(row parquet.Row, leaves []parquetLeaf) []any {
	cells := make([]any, len(leaves))
	lists := make([][]any, len(leaves))
	for i, leaf := range leaves {
		if leaf.repeated {
			lists[i] = []any{}
		}
	}

	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(leaves) {
			continue
		}
		if !leaves[col].repeated {
			cells[col] = parquetCell(v)
			continue
		}
		if v.DefinitionLevel() < leaves[col].elementLevel {
			continue
		}
		lists[col] = append(lists[col], parquetCell(v))
	}

	for i, leaf := range leaves {
		if leaf.repeated {
			cells[i] = lists[i]
		}
	}
	return cells
}

func parquetCell(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
