package binpack

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/importer"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
)

// FileGenerator replays an instance read from a CSV, Excel or DXF file. The file
// is parsed once, at construction; Generate ignores its key.
type FileGenerator struct {
	path      string
	container model.Container
	maxNumEMS int
	items     []model.Item
}

// FileOption configures a FileGenerator.
type FileOption func(*FileGenerator)

// WithContainer overrides the default 20ft container.
func WithContainer(c model.Container) FileOption {
	return func(g *FileGenerator) { g.container = c }
}

// NewCSVGenerator parses the CSV instance at path.
func NewCSVGenerator(path string, maxNumEMS int, opts ...FileOption) (*FileGenerator, error) {
	return newFileGenerator(path, importer.ImportCSV(path), maxNumEMS, opts)
}

// NewExcelGenerator parses the first sheet of the Excel instance at path.
func NewExcelGenerator(path string, maxNumEMS int, opts ...FileOption) (*FileGenerator, error) {
	return newFileGenerator(path, importer.ImportExcel(path), maxNumEMS, opts)
}

// NewDXFGenerator parses a wireframe written by SaveInstanceDXF. The
// container drawn in the file is used unless WithContainer overrides it.
func NewDXFGenerator(path string, maxNumEMS int, opts ...FileOption) (*FileGenerator, error) {
	return newFileGenerator(path, importer.ImportDXF(path), maxNumEMS, opts)
}

// NewFileGenerator picks the reader from the file extension.
func NewFileGenerator(path string, maxNumEMS int, opts ...FileOption) (*FileGenerator, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return NewExcelGenerator(path, maxNumEMS, opts...)
	case ".dxf":
		return NewDXFGenerator(path, maxNumEMS, opts...)
	default:
		return NewCSVGenerator(path, maxNumEMS, opts...)
	}
}

func newFileGenerator(path string, result importer.ImportResult, maxNumEMS int, opts []FileOption) (*FileGenerator, error) {
	g := &FileGenerator{path: path, container: TwentyFootContainer, maxNumEMS: maxNumEMS}
	if result.Container != nil {
		g.container = *result.Container
	}
	for _, opt := range opts {
		opt(g)
	}

	if maxNumEMS < 1 {
		return nil, fmt.Errorf("max_num_ems must be at least 1, got %d: %w", maxNumEMS, env.ErrInvalidConfig)
	}
	if g.container.IsDegenerate() {
		return nil, fmt.Errorf("container %v is degenerate: %w", g.container, env.ErrInvalidConfig)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", path, env.ErrMalformedInstance, err)
	}

	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("read %s: no items: %w", path, env.ErrMalformedInstance)
	}

	// Quantities are only expanded once the rows are known to fit.
	var total float64
	cv := model.Volume(g.container)
	for _, row := range result.Rows {
		total += row.Item().Volume() * float64(row.Quantity)
		if !(total <= cv) {
			return nil, fmt.Errorf("read %s: item volume exceeds container volume %g at %q: %w", path, cv, row.Name, env.ErrInvalidConfig)
		}
	}
	g.items = result.Items()
	return g, nil
}

func (g *FileGenerator) MaxNumItems() int           { return len(g.items) }
func (g *FileGenerator) MaxNumEMS() int             { return g.maxNumEMS }
func (g *FileGenerator) Container() model.Container { return g.container }

// Path returns the file the instance was read from.
func (g *FileGenerator) Path() string { return g.path }

func (g *FileGenerator) Generate(rng.Key) State {
	mask := make([]bool, len(g.items))
	for i := range mask {
		mask[i] = true
	}
	return NewState(g.container, g.items, mask, g.maxNumEMS)
}

// MaskedItems returns the masked-in items of s in slot order.
func MaskedItems(s State) []model.Item {
	var items []model.Item
	for j, in := range s.ItemsMask {
		if in {
			items = append(items, s.Items[j])
		}
	}
	return items
}

// SaveInstanceCSV writes the masked-in items of s as a CSV instance.
func SaveInstanceCSV(path string, s State) error {
	return importer.ExportCSV(path, MaskedItems(s))
}

// SaveInstanceExcel writes the masked-in items of s as an Excel instance.
func SaveInstanceExcel(path string, s State) error {
	return importer.ExportExcel(path, MaskedItems(s))
}

// SaveInstanceDXF writes the container and the masked-in items of s as a
// DXF wireframe, each item at its placed location or, if unplaced, at the
// container origin.
func SaveInstanceDXF(path string, s State) error {
	var boxes []importer.LabeledBox
	for j, in := range s.ItemsMask {
		if in {
			boxes = append(boxes, importer.LabeledBox{
				Label: fmt.Sprintf("shape_%d", j+1),
				Box:   s.Items[j].BoxAt(s.ItemsLocation[j]),
			})
		}
	}
	return importer.ExportDXF(path, s.Container, boxes)
}

// SaveInstance picks the writer from the file extension, like
// NewFileGenerator picks the reader.
func SaveInstance(path string, s State) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return SaveInstanceExcel(path, s)
	case ".dxf":
		return SaveInstanceDXF(path, s)
	default:
		return SaveInstanceCSV(path, s)
	}
}
