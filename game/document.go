package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidDocument = errors.New("game: invalid document")

// Rat is a rational number that decodes from YAML or JSON numbers and from
// strings such as "1/3" or "0.25".
type Rat struct {
	big.Rat
}

func NewRat(a, b int64) Rat {
	var r Rat
	r.SetFrac64(a, b)
	return r
}

func (r *Rat) parse(text string) error {
	text = strings.TrimSpace(text)
	if _, ok := r.SetString(text); !ok {
		return fmt.Errorf("cannot parse %q as a rational number: %w", text, ErrInvalidDocument)
	}
	return nil
}

func (r *Rat) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number: %w", node.Line, ErrInvalidDocument)
	}
	return r.parse(node.Value)
}

func (r *Rat) UnmarshalJSON(data []byte) error {
	return r.parse(strings.Trim(string(data), `"`))
}

func (r Rat) MarshalYAML() (any, error) {
	return r.RatString(), nil
}

func (r Rat) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.RatString())
}

func (r *Rat) value() *big.Rat {
	return new(big.Rat).Set(&r.Rat)
}

// Document is the file representation of a two-player game, either a payoff
// table per player or a game tree.
type Document struct {
	Title     string    `yaml:"title,omitempty" json:"title,omitempty"`
	Strategic [][][]Rat `yaml:"strategic,omitempty" json:"strategic,omitempty"`
	Tree      *TreeDoc  `yaml:"tree,omitempty" json:"tree,omitempty"`
}

type TreeDoc struct {
	Players  int          `yaml:"players" json:"players"`
	Infosets []InfosetDoc `yaml:"infosets" json:"infosets"`
	Root     NodeDoc      `yaml:"root" json:"root"`
}

type InfosetDoc struct {
	Name    string `yaml:"name" json:"name"`
	Player  int    `yaml:"player" json:"player"`
	Actions int    `yaml:"actions" json:"actions"`
}

// NodeDoc is a decision node (Infoset set), a chance node (Chance set) or a
// terminal node (Payoffs set, or nothing for a zero outcome).
type NodeDoc struct {
	Infoset  string    `yaml:"infoset,omitempty" json:"infoset,omitempty"`
	Chance   []Rat     `yaml:"chance,omitempty" json:"chance,omitempty"`
	Payoffs  []Rat     `yaml:"payoffs,omitempty" json:"payoffs,omitempty"`
	Children []NodeDoc `yaml:"children,omitempty" json:"children,omitempty"`
}

func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode yaml game: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode json game: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads a game file; ".json" files are decoded as JSON, anything else as YAML.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

func (d *Document) IsStrategic() bool {
	return d.Tree == nil
}

func (d *Document) validate() error {
	if (d.Strategic == nil) == (d.Tree == nil) {
		return fmt.Errorf("exactly one of strategic or tree must be given: %w", ErrInvalidDocument)
	}
	return nil
}

// StrategicGame builds the payoff table; Strategic[p][i][j] is the payoff of
// player p+1 when the row player picks i and the column player j.
func (d *Document) StrategicGame() (*Table, error) {
	if len(d.Strategic) != 2 || len(d.Strategic[0]) == 0 || len(d.Strategic[0][0]) == 0 {
		return nil, fmt.Errorf("strategic games need two non-empty payoff matrices: %w", ErrInvalidDocument)
	}
	rows, cols := len(d.Strategic[0]), len(d.Strategic[0][0])
	t := NewTable(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			payoffs := make([]*big.Rat, 2)
			for p := 0; p < 2; p++ {
				if len(d.Strategic[p]) != rows || len(d.Strategic[p][i]) != cols {
					return nil, fmt.Errorf("payoff matrix of player %d is not %dx%d: %w", p+1, rows, cols, ErrInvalidDocument)
				}
				payoffs[p] = d.Strategic[p][i][j].value()
			}
			if err := t.SetPayoffs([]int{i, j}, payoffs...); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// ExtensiveGame builds the game tree.
func (d *Document) ExtensiveGame() (*Tree, error) {
	if d.Tree == nil {
		return nil, fmt.Errorf("document has no tree: %w", ErrInvalidDocument)
	}
	if d.Tree.Players < 1 {
		return nil, fmt.Errorf("tree needs at least one player: %w", ErrInvalidDocument)
	}
	t := NewTree(d.Tree.Players)
	ids := make(map[string]InfosetID, len(d.Tree.Infosets))
	for _, h := range d.Tree.Infosets {
		if _, dup := ids[h.Name]; dup {
			return nil, fmt.Errorf("duplicate information set %q: %w", h.Name, ErrInvalidDocument)
		}
		id, err := t.NewInfoset(h.Player, h.Actions)
		if err != nil {
			return nil, fmt.Errorf("information set %q: %w", h.Name, err)
		}
		ids[h.Name] = id
	}
	if err := d.Tree.Root.build(t, t.Root(), ids); err != nil {
		return nil, err
	}
	return t, nil
}

func (nd *NodeDoc) build(t *Tree, n NodeID, ids map[string]InfosetID) error {
	var children []NodeID
	var err error
	switch {
	case nd.Infoset != "":
		h, ok := ids[nd.Infoset]
		if !ok {
			return fmt.Errorf("unknown information set %q: %w", nd.Infoset, ErrInvalidDocument)
		}
		children, err = t.Decide(n, h)
	case len(nd.Chance) > 0:
		probs := make([]*big.Rat, len(nd.Chance))
		for i := range nd.Chance {
			probs[i] = nd.Chance[i].value()
		}
		children, err = t.Chance(n, probs...)
	default:
		if len(nd.Children) > 0 {
			return fmt.Errorf("terminal node with children: %w", ErrInvalidDocument)
		}
		if len(nd.Payoffs) == 0 {
			return nil
		}
		payoffs := make([]*big.Rat, len(nd.Payoffs))
		for i := range nd.Payoffs {
			payoffs[i] = nd.Payoffs[i].value()
		}
		return t.SetPayoffs(n, payoffs...)
	}
	if err != nil {
		return err
	}
	if len(children) != len(nd.Children) {
		return fmt.Errorf("node has %d children, expected %d: %w", len(nd.Children), len(children), ErrInvalidDocument)
	}
	for i := range nd.Children {
		if err := nd.Children[i].build(t, children[i], ids); err != nil {
			return err
		}
	}
	return nil
}
