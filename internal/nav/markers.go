package nav

import (
	"fmt"
	"strconv"
	"strings"
)

// MarkerTable maps fiducial marker identities to route waypoint names.
type MarkerTable map[int]string

// ParseMarkerTable parses "id:name,id:name" configuration.
func ParseMarkerTable(spec string) (MarkerTable, error) {
	table := make(MarkerTable)

	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		idStr, name, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("invalid marker table entry %q, want id:name", pair)
		}

		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			return nil, fmt.Errorf("invalid marker id in %q: %w", pair, err)
		}

		table[id] = strings.TrimSpace(name)
	}

	return table, nil
}

// Name returns the waypoint name for a marker, or its numeric identity when
// the marker is not part of the route.
func (t MarkerTable) Name(id int) string {
	if name, ok := t[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}
