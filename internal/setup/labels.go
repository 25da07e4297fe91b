package setup

import "strings"

type label struct {
	hu, en string
	unit   string
}

var sectionLabels = map[string]label{
	"summary":         {hu: "Összefoglaló", en: "Summary"},
	"tyres":           {hu: "Gumiabroncsok", en: "Tyres"},
	"electronics":     {hu: "Elektronika", en: "Electronics"},
	"fuelAndStrategy": {hu: "Üzemanyag & Stratégia", en: "Fuel & Strategy"},
	"mechanicalGrip":  {hu: "Mechanikai Tapadás", en: "Mechanical Grip"},
	"dampers":         {hu: "Lengéscsillapítók", en: "Dampers"},
	"aero":            {hu: "Aerodinamika", en: "Aero"},
}

var fieldLabels = map[string]label{
	"summary":                              {hu: "Összefoglaló", en: "Summary"},
	"tyres.tyreCompound":                   {hu: "Keverék", en: "Compound"},
	"tyres.tyrePressures.frontLeft":        {hu: "Nyomás bal első", en: "Pressure front left", unit: "psi"},
	"tyres.tyrePressures.frontRight":       {hu: "Nyomás jobb első", en: "Pressure front right", unit: "psi"},
	"tyres.tyrePressures.rearLeft":         {hu: "Nyomás bal hátsó", en: "Pressure rear left", unit: "psi"},
	"tyres.tyrePressures.rearRight":        {hu: "Nyomás jobb hátsó", en: "Pressure rear right", unit: "psi"},
	"tyres.alignment.camber.front":         {hu: "Kerékdőlés első", en: "Camber front", unit: "°"},
	"tyres.alignment.camber.rear":          {hu: "Kerékdőlés hátsó", en: "Camber rear", unit: "°"},
	"tyres.alignment.toe.front":            {hu: "Összetartás első", en: "Toe front", unit: "°"},
	"tyres.alignment.toe.rear":             {hu: "Összetartás hátsó", en: "Toe rear", unit: "°"},
	"tyres.alignment.caster":               {hu: "Első caster", en: "Caster", unit: "°"},
	"electronics.tractionControl1":         {hu: "Kipörgésgátló 1", en: "Traction control 1"},
	"electronics.tractionControl2":         {hu: "Kipörgésgátló 2", en: "Traction control 2"},
	"electronics.abs":                      {hu: "ABS", en: "ABS"},
	"electronics.ecuMap":                   {hu: "ECU térkép", en: "ECU map"},
	"fuelAndStrategy.fuel":                 {hu: "Üzemanyag", en: "Fuel", unit: "L"},
	"fuelAndStrategy.pitStopTyreSet":       {hu: "Boxkiállás gumi szett", en: "Pit stop tyre set"},
	"fuelAndStrategy.pitStopFuelToAdd":     {hu: "Boxkiállás üzemanyag", en: "Pit stop fuel to add", unit: "L"},
	"mechanicalGrip.antirollBar.front":     {hu: "Stabilizátor első", en: "Anti-roll bar front"},
	"mechanicalGrip.antirollBar.rear":      {hu: "Stabilizátor hátsó", en: "Anti-roll bar rear"},
	"mechanicalGrip.preloadDifferential":   {hu: "Differenciálmű előfeszítés", en: "Differential preload", unit: "Nm"},
	"mechanicalGrip.wheelRate.front":       {hu: "Rugómerevség első", en: "Wheel rate front", unit: "N/mm"},
	"mechanicalGrip.wheelRate.rear":        {hu: "Rugómerevség hátsó", en: "Wheel rate rear", unit: "N/mm"},
	"mechanicalGrip.bumpstopRate.front":    {hu: "Ütközőgumi merevség első", en: "Bump stop rate front", unit: "N"},
	"mechanicalGrip.bumpstopRate.rear":     {hu: "Ütközőgumi merevség hátsó", en: "Bump stop rate rear", unit: "N"},
	"mechanicalGrip.bumpstopRange.front":   {hu: "Ütközőgumi tartomány első", en: "Bump stop range front"},
	"mechanicalGrip.bumpstopRange.rear":    {hu: "Ütközőgumi tartomány hátsó", en: "Bump stop range rear"},
	"dampers.bump.front":                   {hu: "Bump első", en: "Bump front"},
	"dampers.bump.rear":                    {hu: "Bump hátsó", en: "Bump rear"},
	"dampers.rebound.front":                {hu: "Rebound első", en: "Rebound front"},
	"dampers.rebound.rear":                 {hu: "Rebound hátsó", en: "Rebound rear"},
	"aero.rideHeight.front":                {hu: "Hasmagasság első", en: "Ride height front", unit: "mm"},
	"aero.rideHeight.rear":                 {hu: "Hasmagasság hátsó", en: "Ride height rear", unit: "mm"},
	"aero.rearWing":                        {hu: "Hátsó szárny", en: "Rear wing"},
	"aero.splitter":                        {hu: "Splitter", en: "Splitter"},
	"aero.brakeDucts":                      {hu: "Fékcsatornák", en: "Brake ducts"},
}

// SectionLabel returns the display name of a top-level section.
func SectionLabel(name, lang string) string {
	return pick(sectionLabels, name, lang)
}

// FieldLabel returns the display name of a leaf path, falling back to the
// path itself.
func FieldLabel(path, lang string) string {
	return pick(fieldLabels, path, lang)
}

// Unit returns the display unit of a leaf path, or "".
func Unit(path string) string {
	return fieldLabels[path].unit
}

func pick(m map[string]label, key, lang string) string {
	l, ok := m[key]
	if !ok {
		return key
	}
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return l.en
	}
	return l.hu
}
