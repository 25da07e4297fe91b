package handler

import "accsetup/internal/setup"

func setupWithWing(v float64) setup.Setup {
	st := setup.Setup{Summary: "wing"}
	st.Aero.RearWing = v
	return st
}

func changesFor(paths ...string) []setup.Change {
	out := make([]setup.Change, 0, len(paths))
	for _, p := range paths {
		out = append(out, setup.Change{Path: p})
	}
	return out
}
