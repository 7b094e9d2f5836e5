package engine

import (
	"sort"
	"strings"
)

// Node — узел графа зависимостей.
type Node struct {
	// ID — идентификатор узла (номер задачи или ID job).
	ID string

	// InDegree — количество входящих рёбер (зависимостей).
	InDegree int

	// DependsOn — узлы, от которых зависит этот узел.
	DependsOn []*Node

	// Dependents — узлы, которые зависят от этого узла.
	Dependents []*Node
}

// Graph — граф зависимостей. Узлы помнят порядок добавления,
// поэтому топологический порядок детерминирован.
type Graph struct {
	Nodes map[string]*Node

	// Order — топологически отсортированный список узлов (после Sort).
	Order []*Node

	added []*Node
}

// NewGraph создаёт пустой граф.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode добавляет узел; повторное добавление возвращает существующий.
func (g *Graph) AddNode(id string) *Node {
	if node, ok := g.Nodes[id]; ok {
		return node
	}
	node := &Node{ID: id}
	g.Nodes[id] = node
	g.added = append(g.added, node)
	return node
}

// AddEdge добавляет ребро from → to (to зависит от from).
// Дубликаты игнорируются, чтобы не считать InDegree дважды.
func (g *Graph) AddEdge(from, to string) {
	f := g.AddNode(from)
	t := g.AddNode(to)
	for _, dep := range t.DependsOn {
		if dep.ID == f.ID {
			return
		}
	}
	f.Dependents = append(f.Dependents, t)
	t.DependsOn = append(t.DependsOn, f)
	t.InDegree++
}

// Roots возвращает узлы без зависимостей в порядке добавления.
func (g *Graph) Roots() []*Node {
	roots := make([]*Node, 0)
	for _, node := range g.added {
		if node.InDegree == 0 {
			roots = append(roots, node)
		}
	}
	return roots
}

// Sort выполняет топологическую сортировку (алгоритм Кана) и заполняет Order.
// Возвращает ErrCyclicDependency вместе с узлами, попавшими в цикл.
func (g *Graph) Sort() ([]*Node, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for id, node := range g.Nodes {
		inDegree[id] = node.InDegree
	}

	queue := g.Roots()
	order := make([]*Node, 0, len(g.Nodes))

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range node.Dependents {
			inDegree[dependent.ID]--
			if inDegree[dependent.ID] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, NewValidationError("", "dependencies",
			"cyclic dependency between "+strings.Join(g.unsorted(inDegree), ", "), ErrCyclicDependency)
	}

	g.Order = order
	return order, nil
}

// Size возвращает количество узлов.
func (g *Graph) Size() int {
	return len(g.Nodes)
}

func (g *Graph) unsorted(inDegree map[string]int) []string {
	ids := make([]string, 0)
	for id, d := range inDegree {
		if d > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
