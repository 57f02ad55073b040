package report

import (
	"fmt"
	"io"

	"github.com/dkoosis/scame/pkg/language"
)

// PlaceholderMime is the icon of a file row whose type is not known.
const PlaceholderMime = "gnome-mime-text"

// Row is one entry of a tree model. File rows carry a mime type in Icon
// and no message; finding rows carry the severity.
type Row struct {
	FileName string
	Icon     string
	Line     int
	Message  string
	BaseDir  string
}

// Iter is an opaque handle to a row of a TreeModel.
type Iter struct {
	id int
}

// TreeModel is the hierarchical store of a user interface. The reporter
// never creates one; the host hands it in.
type TreeModel interface {
	// Append adds row under parent (nil for a top level row) and returns
	// the handle of the new row.
	Append(parent *Iter, row Row) *Iter
}

// TreeSink appends findings to a two-level TreeModel: one root row per
// file, created on the file's first finding, and one child per finding.
type TreeSink struct {
	model TreeModel
	roots map[fileKey]*Iter
}

// NewTreeSink returns a sink appending to model.
func NewTreeSink(model TreeModel) *TreeSink {
	return &TreeSink{model: model, roots: make(map[fileKey]*Iter)}
}

// Accept appends f under its file row.
func (t *TreeSink) Accept(f Finding) {
	key := fileKey{baseDir: f.BaseDir, fileName: f.FileName}
	parent, ok := t.roots[key]
	if !ok {
		parent = t.model.Append(nil, Row{
			FileName: f.FileName,
			Icon:     rootIcon(f.FileName),
			BaseDir:  f.BaseDir,
		})
		t.roots[key] = parent
	}
	t.model.Append(parent, Row{
		FileName: f.FileName,
		Icon:     string(f.Severity),
		Line:     f.Line,
		Message:  f.Message,
		BaseDir:  f.BaseDir,
	})
}

func rootIcon(fileName string) string {
	if mime := language.MimeType(fileName); mime != "" {
		return mime
	}
	return PlaceholderMime
}

// TreeNode is a row of the in-memory Tree.
type TreeNode struct {
	Row      Row
	Children []*TreeNode
}

// Tree is an in-memory TreeModel.
type Tree struct {
	Roots []*TreeNode
	nodes []*TreeNode
}

// NewTree returns an empty Tree.
func NewTree() *Tree {
	return &Tree{}
}

// Append implements TreeModel.
func (t *Tree) Append(parent *Iter, row Row) *Iter {
	node := &TreeNode{Row: row}
	if parent == nil || parent.id < 0 || parent.id >= len(t.nodes) {
		t.Roots = append(t.Roots, node)
	} else {
		p := t.nodes[parent.id]
		p.Children = append(p.Children, node)
	}
	t.nodes = append(t.nodes, node)
	return &Iter{id: len(t.nodes) - 1}
}

// WriteText prints the tree as an indented outline: one line per file row
// followed by its finding rows.
func (t *Tree) WriteText(w io.Writer) error {
	for _, root := range t.Roots {
		if _, err := fmt.Fprintf(w, "%s [%s]\n", displayPath(root.Row.BaseDir, root.Row.FileName), root.Row.Icon); err != nil {
			return err
		}
		for _, child := range root.Children {
			if _, err := fmt.Fprintf(w, "  %d: %s: %s\n", child.Row.Line, child.Row.Icon, child.Row.Message); err != nil {
				return err
			}
		}
	}
	return nil
}
