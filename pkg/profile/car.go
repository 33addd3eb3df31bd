package profile

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// carSpeedKPH gives a default speed per highway class, used to turn a
// segment's distance into a travel-time weight. Unlisted classes fall back
// to carDefaultSpeedKPH.
var carSpeedKPH = map[string]float32{
	"motorway":       100,
	"motorway_link":  60,
	"trunk":          80,
	"trunk_link":     50,
	"primary":        65,
	"primary_link":   40,
	"secondary":      55,
	"secondary_link": 35,
	"tertiary":       45,
	"tertiary_link":  30,
	"unclassified":   40,
	"residential":    30,
	"living_street":  15,
	"service":        20,
}

const carDefaultSpeedKPH = 30

// CarProfile is a driving cost model: Factor weighs distance by travel time
// instead of raw meters, and direction follows oneway/highway semantics.
type CarProfile struct{}

// Name identifies this profile.
func (CarProfile) Name() string { return "car" }

// Factor converts a highway class into a seconds-per-meter multiplier, and
// resolves the edge's allowed direction from its oneway and junction tags.
// Edges with a highway class the car profile does not recognize, that are
// inside an area, or that are access-restricted are not traversable.
func (CarProfile) Factor(attrs AttributeSet) (float32, Direction) {
	hw := attrs["highway"]
	if !carHighways[hw] {
		return 0, DirNone
	}
	if attrs["area"] == "yes" {
		return 0, DirNone
	}
	access := attrs["access"]
	if access == "no" || access == "private" {
		return 0, DirNone
	}
	if attrs["motor_vehicle"] == "no" {
		return 0, DirNone
	}

	speed := carSpeedKPH[hw]
	if speed == 0 {
		speed = carDefaultSpeedKPH
	}
	// Seconds per meter, so Factor(attrs) * distanceMeters yields a travel
	// time in seconds — the quantity CH contraction and Dijkstra minimize.
	secondsPerMeter := 3.6 / speed

	return secondsPerMeter, carDirection(attrs)
}

// CanStop allows starting or ending a route on any car-accessible edge
// except motorways, where stopping or making a U-turn is unrealistic.
func (CarProfile) CanStop(attrs AttributeSet) bool {
	hw := attrs["highway"]
	return hw != "motorway" && hw != "motorway_link"
}

// carDirection resolves (forward, backward) travel into a Direction from
// highway type and oneway tags, the same precedence order the original OSM
// importer applied to raw way tags.
func carDirection(attrs AttributeSet) Direction {
	forward, backward := true, true

	hw := attrs["highway"]
	if hw == "motorway" || hw == "motorway_link" || attrs["junction"] == "roundabout" {
		backward = false
	}

	switch attrs["oneway"] {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		// Time-dependent direction — not representable here, so treat as
		// closed rather than guessing a direction.
		forward, backward = false, false
	}

	switch {
	case forward && backward:
		return DirBoth
	case forward:
		return DirForward
	case backward:
		return DirBackward
	default:
		return DirNone
	}
}
