package engine

import "github.com/jottty/jottty/internal/datom"

// group is the ordered list of datoms targeting one entity.
type group struct {
	id     string
	datoms []datom.Datom
}

// groupByEntity partitions datoms by entity id. Groups are returned in order
// of first appearance and each group preserves input order.
func groupByEntity(datoms []datom.Datom) []group {
	index := make(map[string]int)
	var groups []group
	for _, d := range datoms {
		i, ok := index[d.E]
		if !ok {
			i = len(groups)
			index[d.E] = i
			groups = append(groups, group{id: d.E})
		}
		groups[i].datoms = append(groups[i].datoms, d)
	}
	return groups
}
