package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of the tree. Trivia leaves are omitted
// unless withTrivia is set.
func Dump(w io.Writer, n *Node, withTrivia bool) error {
	return dump(w, n, 0, withTrivia)
}

func dump(w io.Writer, n *Node, depth int, withTrivia bool) error {
	if n.IsTrivia() && !withTrivia {
		return nil
	}
	indent := strings.Repeat("  ", depth)
	var err error
	if n.Kind == Leaf {
		_, err = fmt.Fprintf(w, "%s%s %d-%d %q\n", indent, n.Tok.Type, n.Pos, n.End, n.Tok.Raw)
	} else {
		label := n.Kind.String()
		if name, ok := n.Name(); ok {
			label += " " + name
		}
		_, err = fmt.Fprintf(w, "%s%s %d-%d\n", indent, label, n.Pos, n.End)
	}
	if err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := dump(w, c, depth+1, withTrivia); err != nil {
			return err
		}
	}
	return nil
}

// jsonNode is the serialized form of a Node.
type jsonNode struct {
	Kind     Kind        `json:"kind"`
	Name     string      `json:"name,omitempty"`
	Token    string      `json:"token,omitempty"`
	Text     string      `json:"text,omitempty"`
	Pos      int         `json:"pos"`
	End      int         `json:"end"`
	Children []*jsonNode `json:"children,omitempty"`
}

func toJSON(n *Node, withTrivia bool) *jsonNode {
	j := &jsonNode{Kind: n.Kind, Pos: n.Pos, End: n.End}
	if n.Kind == Leaf {
		j.Token = n.Tok.Type.String()
		j.Text = string(n.Tok.Raw)
		return j
	}
	j.Name, _ = n.Name()
	for _, c := range n.Children {
		if c.IsTrivia() && !withTrivia {
			continue
		}
		j.Children = append(j.Children, toJSON(c, withTrivia))
	}
	return j
}

// MarshalJSON encodes the subtree rooted at n, trivia included.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(n, true))
}

// EncodeJSON writes the tree as indented JSON.
func EncodeJSON(w io.Writer, n *Node, withTrivia bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(n, withTrivia))
}
