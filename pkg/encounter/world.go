package encounter

import "math"

// Location is the minimal world data the scheduler needs: a type for the
// arrival tables and coordinates plus terrain for route danger.
type Location struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Terrain string  `json:"terrain"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// dangerousTerrains adds a flat bonus to route danger.
var dangerousTerrains = map[string]bool{
	"mountains": true,
	"swamp":     true,
	"badlands":  true,
}

// Distance beyond which the distance contribution to danger saturates.
const dangerDistanceScale = 100.0

// RouteDanger derives a danger score in [0,1] for the route between two
// locations: a clamped distance contribution plus a flat bonus when either
// endpoint sits in dangerous terrain.
func RouteDanger(from, to Location) float64 {
	dist := math.Hypot(to.X-from.X, to.Y-from.Y)

	danger := dist / dangerDistanceScale
	if danger > 0.6 {
		danger = 0.6
	}

	if dangerousTerrains[from.Terrain] || dangerousTerrains[to.Terrain] {
		danger += 0.3
	}

	if danger > 1 {
		danger = 1
	}
	return danger
}

// DefaultWorld is a small gazetteer of trade-route locations used by the
// service processes and the console client. Hosts embedding the engine
// supply their own locations.
func DefaultWorld() map[string]Location {
	locations := []Location{
		{ID: "riverstead", Name: "Riverstead", Type: "town", Terrain: "plains", X: 0, Y: 0},
		{ID: "thornmoor", Name: "Thornmoor", Type: "village", Terrain: "forest", X: 25, Y: 15},
		{ID: "goldspire", Name: "Goldspire", Type: "city", Terrain: "plains", X: 80, Y: -10},
		{ID: "crowhollow", Name: "Crowhollow", Type: "outpost", Terrain: "badlands", X: 60, Y: 70},
		{ID: "eldergate", Name: "Eldergate", Type: "ruin", Terrain: "swamp", X: -40, Y: 55},
		{ID: "highpass", Name: "Highpass", Type: "outpost", Terrain: "mountains", X: 120, Y: 40},
	}

	world := make(map[string]Location, len(locations))
	for _, loc := range locations {
		world[loc.ID] = loc
	}
	return world
}
