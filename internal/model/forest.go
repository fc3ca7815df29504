package model

import (
	"fmt"
)

const TypeForest = "forest"

// ForestSpec is a decision tree ensemble that predicts by majority vote.
type ForestSpec struct {
	Trees []Tree `json:"trees" yaml:"trees"`
}

// Tree nodes are stored flat; node 0 is the root and children always come
// after their parent.
type Tree struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Node either splits on Feature (x <= Threshold goes Left) or, when Leaf is
// set, votes for Class.
type Node struct {
	Feature   int     `json:"feature,omitempty" yaml:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Left      int     `json:"left,omitempty" yaml:"left,omitempty"`
	Right     int     `json:"right,omitempty" yaml:"right,omitempty"`
	Leaf      bool    `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Class     int     `json:"class,omitempty" yaml:"class,omitempty"`
}

type forest struct {
	*header
	trees []Tree
}

func buildForest(h *header, a *Artifact) (Classifier, error) {
	if a.Forest == nil || len(a.Forest.Trees) == 0 {
		return nil, fmt.Errorf("%w: forest artifact has no trees", ErrLoad)
	}

	for t, tree := range a.Forest.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("%w: tree %d has no nodes", ErrLoad, t)
		}
		for n, node := range tree.Nodes {
			if err := checkNode(h, node, n, len(tree.Nodes)); err != nil {
				return nil, fmt.Errorf("%w: tree %d node %d: %v", ErrLoad, t, n, err)
			}
		}
	}

	return &forest{header: h, trees: a.Forest.Trees}, nil
}

func checkNode(h *header, node Node, idx, size int) error {
	if node.Leaf {
		if !h.hasClass(Label(node.Class)) {
			return fmt.Errorf("leaf class %d is not a model class", node.Class)
		}
		return nil
	}
	if node.Feature < 0 || node.Feature >= len(h.features) {
		return fmt.Errorf("feature index %d out of range", node.Feature)
	}
	for _, child := range []int{node.Left, node.Right} {
		if child <= idx || child >= size {
			return fmt.Errorf("child %d must follow the node and be below %d", child, size)
		}
	}
	return nil
}

func (f *forest) Predict(rows [][]float64) ([]Label, error) {
	if err := f.checkWidth(rows); err != nil {
		return nil, err
	}

	labels := make([]Label, 0, len(rows))
	for _, row := range rows {
		votes := make(map[Label]int, len(f.classes))
		for _, tree := range f.trees {
			votes[tree.classify(row)]++
		}
		labels = append(labels, majority(f.classes, votes))
	}
	return labels, nil
}

func (t Tree) classify(row []float64) Label {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return Label(node.Class)
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// majority picks the most voted class; ties go to the lowest label.
func majority(classes []Label, votes map[Label]int) Label {
	best := Label(-1)
	for _, c := range classes {
		if best < 0 || votes[c] > votes[best] || (votes[c] == votes[best] && c < best) {
			best = c
		}
	}
	return best
}
