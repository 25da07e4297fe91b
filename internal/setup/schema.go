package setup

import genai "google.golang.org/genai"

// Schema returns the structured-output schema handed to the provider.
// It must list exactly the fields of Setup; schema_test.go enforces that.
func Schema() *genai.Schema {
	return object(
		prop("summary", str("A brief summary and explanation of the setup choices.")),
		prop("tyres", object(
			prop("tyreCompound", str("Dry or Wet")),
			prop("tyrePressures", object(
				prop("frontLeft", num("")),
				prop("frontRight", num("")),
				prop("rearLeft", num("")),
				prop("rearRight", num("")),
			)),
			prop("alignment", object(
				prop("camber", axle()),
				prop("toe", axle()),
				prop("caster", num("")),
			)),
		)),
		prop("electronics", object(
			prop("tractionControl1", num("")),
			prop("tractionControl2", num("")),
			prop("abs", num("")),
			prop("ecuMap", str("e.g., '1 (Fastest)', '2 (Race)'")),
		)),
		prop("fuelAndStrategy", object(
			prop("fuel", num("Fuel for a typical race length, e.g., 20 minutes.")),
			prop("pitStopTyreSet", num("")),
			prop("pitStopFuelToAdd", num("")),
		)),
		prop("mechanicalGrip", object(
			prop("antirollBar", axle()),
			prop("preloadDifferential", num("")),
			prop("wheelRate", axle()),
			prop("bumpstopRate", axle()),
			prop("bumpstopRange", axle()),
		)),
		prop("dampers", object(
			prop("bump", axle()),
			prop("rebound", axle()),
		)),
		prop("aero", object(
			prop("rideHeight", axle()),
			prop("rearWing", num("")),
			prop("splitter", num("")),
			prop("brakeDucts", num("")),
		)),
	)
}

type property struct {
	name   string
	schema *genai.Schema
}

func prop(name string, s *genai.Schema) property { return property{name: name, schema: s} }

// object builds an object schema; every property is required and ordered
// as declared.
func object(props ...property) *genai.Schema {
	s := &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       make(map[string]*genai.Schema, len(props)),
		Required:         make([]string, 0, len(props)),
		PropertyOrdering: make([]string, 0, len(props)),
	}
	for _, p := range props {
		s.Properties[p.name] = p.schema
		s.Required = append(s.Required, p.name)
		s.PropertyOrdering = append(s.PropertyOrdering, p.name)
	}
	return s
}

func axle() *genai.Schema {
	return object(prop("front", num("")), prop("rear", num("")))
}

func num(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: desc}
}

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}
