package sensor

// The building deploys one multisensor device per tracked space. Device
// IDs, room names and volumes (floor area times a 3.2 m ceiling) come from
// the building's floor plan; hallway-like spaces carry no usable volume.

// Device ties a multisensor device to the space it observes.
type Device struct {
	ID     string
	Room   string
	Volume float64
}

// Devices returns every known device in floor-plan order.
func Devices() []Device {
	return []Device{
		{ID: "multisensor_115", Room: "Conference-Space", Volume: 21.06 * 3.2},
		{ID: "multisensor_108", Room: "zwischen Conference-Space und Robot-Space", Volume: 14.04 * 3.2},
		{ID: "multisensor_107", Room: "Robot-Space", Volume: 30.03 * 3.2},
		{ID: "multisensor_114", Room: "Empfang", Volume: 31.27 * 3.2},
		{ID: "multisensor_110", Room: "zwischen Empfang und Focus-Space", Volume: 13.26 * 3.2},
		{ID: "multisensor_109", Room: "Focus-Space", Volume: 50.7 * 3.2},
		{ID: "multisensor_104", Room: "Experience-Hub", Volume: 88.27 * 3.2},
		{ID: "multisensor_106", Room: "Design-Thinking-Space", Volume: 43.86 * 3.2},
		{ID: "multisensor_111", Room: "Co-Working-Space (Left in Picture)", Volume: 48 * 3.2},
		{ID: "multisensor_103", Room: "Co-Working-Space (Right in Picture)", Volume: 46.35 * 3.2},
		{ID: "multisensor_113", Room: "Social Lounge", Volume: 34.74 * 3.2},
		{ID: "multisensor_112", Room: "Hallway", Volume: 0},
		{ID: "multisensor_105", Room: "3D Printing-Space", Volume: 0},
	}
}

var units = map[Kind]string{
	Humidity:      "%",
	Temperature:   "°C",
	CO2:           "ppm",
	IAQ:           "IAQ",
	UVIndex:       "UVI",
	NoiseLevel:    "Volume",
	Pressure:      "hPa",
	Light:         "lx",
	GasResistance: "Ω",
	Occupancy:     "People",
}

// entitySuffixes are the per-kind entity-ID suffixes used by the
// historical database (entity_id = "<device>_<suffix>").
var entitySuffixes = map[Kind]string{
	Humidity:      "_humidity",
	Temperature:   "_temperature",
	CO2:           "_scd30_co2",
	IAQ:           "_bme680_iaq",
	UVIndex:       "_ltr390_uv_index",
	NoiseLevel:    "_microphone_noise_level",
	Pressure:      "_bme680_pressure",
	Light:         "_ltr390_light",
	GasResistance: "_bme680_gas_resistance",
	Occupancy:     "_people",
}

// liveSuffixes are the entity-ID suffixes the live state API reports.
// The live firmware exposes a few channels under hardware-specific names
// that differ from the historical-database suffixes.
var liveSuffixes = map[string]Kind{
	"_bme680_humidity":        Humidity,
	"_bme680_temperature":     Temperature,
	"_scd30_co2":              CO2,
	"_bme680_iaq":             IAQ,
	"_ltr390_uv_index":        UVIndex,
	"_microphone_noise_level": NoiseLevel,
	"_bme680_pressure":        Pressure,
	"_ltr390_light":           Light,
	"_bme680_gas_resistance":  GasResistance,
}

// UnitOf returns the display unit for a kind.
func UnitOf(k Kind) string { return units[k] }

// EntitySuffix returns the historical-database suffix for a kind.
func EntitySuffix(k Kind) string { return entitySuffixes[k] }

// KindForLiveSuffix resolves the kind a live entity-ID suffix refers to.
func KindForLiveSuffix(suffix string) (Kind, bool) {
	k, ok := liveSuffixes[suffix]
	return k, ok
}

// LiveSuffixes returns every suffix the live source may report, for entity
// filtering.
func LiveSuffixes() []string {
	out := make([]string, 0, len(liveSuffixes))
	for s := range liveSuffixes {
		out = append(out, s)
	}
	return out
}

// NewRoom initializes a room with one empty channel per kind.
func NewRoom(d Device) *Room {
	room := &Room{
		ID:       d.ID,
		Name:     d.Room,
		Volume:   d.Volume,
		Channels: make(map[Kind]*Channel, len(Kinds)),
	}
	for _, k := range Kinds {
		room.Channels[k] = &Channel{Kind: k, Unit: units[k]}
	}
	return room
}

// NewRooms builds the startup room set, one room per catalog device.
func NewRooms() map[string]*Room {
	devices := Devices()
	rooms := make(map[string]*Room, len(devices))
	for _, d := range devices {
		rooms[d.ID] = NewRoom(d)
	}
	return rooms
}
