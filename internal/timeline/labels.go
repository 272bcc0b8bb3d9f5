package timeline

import "fmt"

// Label is a host scene marker derived from the frame markers.
type Label struct {
	Name  string  `json:"name"`
	Frame float64 `json:"frame"`
}

// Labels returns the scene markers a host displays for this timeline: each
// marker at its position ("<name> 1") and at the half period ("<name> 2"),
// plus a closing label for the first marker at the end of the animation.
func (t *Timeline) Labels() []Label {
	half := t.HalfPeriod()
	labels := make([]Label, 0, len(t.Markers)*2+1)
	for i, m := range t.Markers {
		labels = append(labels,
			Label{Name: fmt.Sprintf("%s 1", m.Name), Frame: m.Frame},
			Label{Name: fmt.Sprintf("%s 2", m.Name), Frame: m.Frame + half},
		)
		if i == 0 {
			labels = append(labels, Label{Name: fmt.Sprintf("%s 1", m.Name), Frame: float64(t.Length)})
		}
	}
	return labels
}
