package setup

// Setup is one complete car setup as returned by the model.
// Values are taken verbatim from the reply; nothing is range checked.
type Setup struct {
	Summary         string          `json:"summary"`
	Tyres           Tyres           `json:"tyres"`
	Electronics     Electronics     `json:"electronics"`
	FuelAndStrategy FuelAndStrategy `json:"fuelAndStrategy"`
	MechanicalGrip  MechanicalGrip  `json:"mechanicalGrip"`
	Dampers         Dampers         `json:"dampers"`
	Aero            Aero            `json:"aero"`
}

// Axle holds a front/rear pair.
type Axle struct {
	Front float64 `json:"front"`
	Rear  float64 `json:"rear"`
}

type Tyres struct {
	TyreCompound  string        `json:"tyreCompound"`
	TyrePressures TyrePressures `json:"tyrePressures"`
	Alignment     Alignment     `json:"alignment"`
}

type TyrePressures struct {
	FrontLeft  float64 `json:"frontLeft"`
	FrontRight float64 `json:"frontRight"`
	RearLeft   float64 `json:"rearLeft"`
	RearRight  float64 `json:"rearRight"`
}

type Alignment struct {
	Camber Axle    `json:"camber"`
	Toe    Axle    `json:"toe"`
	Caster float64 `json:"caster"`
}

type Electronics struct {
	TractionControl1 float64 `json:"tractionControl1"`
	TractionControl2 float64 `json:"tractionControl2"`
	ABS              float64 `json:"abs"`
	ECUMap           string  `json:"ecuMap"`
}

type FuelAndStrategy struct {
	Fuel             float64 `json:"fuel"`
	PitStopTyreSet   float64 `json:"pitStopTyreSet"`
	PitStopFuelToAdd float64 `json:"pitStopFuelToAdd"`
}

type MechanicalGrip struct {
	AntirollBar         Axle    `json:"antirollBar"`
	PreloadDifferential float64 `json:"preloadDifferential"`
	WheelRate           Axle    `json:"wheelRate"`
	BumpstopRate        Axle    `json:"bumpstopRate"`
	BumpstopRange       Axle    `json:"bumpstopRange"`
}

type Dampers struct {
	Bump    Axle `json:"bump"`
	Rebound Axle `json:"rebound"`
}

type Aero struct {
	RideHeight Axle    `json:"rideHeight"`
	RearWing   float64 `json:"rearWing"`
	Splitter   float64 `json:"splitter"`
	BrakeDucts float64 `json:"brakeDucts"`
}
