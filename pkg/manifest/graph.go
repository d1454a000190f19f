package manifest

import "github.com/adityaaj2003/tunegan/pkg/dag"

// ProjectRoot is the synthetic root node ID used for the manifest's own
// project in dependency graphs.
const ProjectRoot = "__project__"

// Graph builds a shallow dependency graph: a synthetic project root with
// one edge per requirement. Requirements manifests list direct
// dependencies only, so no transitive structure is available.
//
// If rootName is non-empty, it replaces the synthetic root ID. Pinned
// versions and extras are attached as node metadata.
func (m *Manifest) Graph(rootName string) *dag.DAG {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: ProjectRoot, Meta: dag.Metadata{"virtual": true}})

	seen := make(map[string]bool)
	for _, req := range m.Requirements() {
		if seen[req.Normalized] {
			continue
		}
		seen[req.Normalized] = true

		meta := dag.Metadata{}
		if len(req.Specifiers) > 0 {
			meta["constraint"] = specifierString(req.Specifiers)
		}
		if len(req.Extras) > 0 {
			meta["extras"] = req.Extras
		}
		_ = g.AddNode(dag.Node{ID: req.Normalized, Meta: meta})
		_ = g.AddEdge(dag.Edge{From: ProjectRoot, To: req.Normalized})
	}

	if rootName != "" {
		_ = g.RenameNode(ProjectRoot, rootName)
	}
	return g
}

func specifierString(specs []Specifier) string {
	s := ""
	for i, spec := range specs {
		if i > 0 {
			s += ","
		}
		s += spec.String()
	}
	return s
}
