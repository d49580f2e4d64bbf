package catalog

import "github.com/meline-schndr/pizzaline/internal/station"

// defaultStations is the built-in fallback layout (§6), used only when the
// authoritative store's Production table is unreachable at Bootstrap and
// the operator has opted into the fallback.
func defaultStations() []*station.Station {
	return []*station.Station{
		station.New(1, 30, true, "", "Veggie,Chevre"),
		station.New(2, 25, true, "", ""),
		station.New(3, 18, true, "G", "Chevre,4_Fromages"),
		station.New(4, 20, true, "M", ""),
		station.New(5, 27, false, "M", ""),
		station.New(6, 15, true, "", ""),
	}
}
