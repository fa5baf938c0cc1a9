package reconcile

import "sort"

// SnapshotDelta compares two full snapshots of one scope.
type SnapshotDelta struct {
	New     []string `json:"new"`
	Updated []string `json:"updated"`
	Closed  []string `json:"closed"`
	// Inconclusive is set when the current snapshot is empty. Nothing is reported closed then.
	Inconclusive bool `json:"inconclusive"`
}

// Diff compares prev and curr by external id and fingerprint.
// It is informational only and never mutates the catalog.
func Diff(prev, curr []NormalizedJob) SnapshotDelta {
	var delta SnapshotDelta

	before := indexByID(prev)
	after := indexByID(curr)

	for id, h := range after {
		old, ok := before[id]
		switch {
		case !ok:
			delta.New = append(delta.New, id)
		case old != h:
			delta.Updated = append(delta.Updated, id)
		}
	}

	if len(after) == 0 {
		delta.Inconclusive = true
	} else {
		for id := range before {
			if _, ok := after[id]; !ok {
				delta.Closed = append(delta.Closed, id)
			}
		}
	}

	sort.Strings(delta.New)
	sort.Strings(delta.Updated)
	sort.Strings(delta.Closed)
	return delta
}

func indexByID(jobs []NormalizedJob) map[string]Hash {
	out := make(map[string]Hash, len(jobs))
	for _, j := range jobs {
		if j.ExternalID == "" {
			continue
		}
		if _, dup := out[j.ExternalID]; dup {
			continue
		}
		out[j.ExternalID] = Fingerprint(j)
	}
	return out
}
