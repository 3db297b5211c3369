package sensor

// Kind identifies one of the fixed measurement channels a multisensor
// device exposes.
type Kind string

const (
	Temperature   Kind = "Temperature"
	Humidity      Kind = "Humidity"
	CO2           Kind = "CO2"
	IAQ           Kind = "IAQ"
	UVIndex       Kind = "UV Index"
	NoiseLevel    Kind = "Microphone Noise Level"
	Pressure      Kind = "Pressure"
	Light         Kind = "Light"
	GasResistance Kind = "Gas Resistance"
	Occupancy     Kind = "Occupancy"
)

// Kinds lists every kind in dashboard display order.
var Kinds = []Kind{
	Occupancy,
	Humidity,
	Temperature,
	CO2,
	IAQ,
	UVIndex,
	NoiseLevel,
	Pressure,
	Light,
	GasResistance,
}

// ParseKind resolves a kind from its display name.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

func (k Kind) String() string { return string(k) }
