// Package teams carries the static 2024/25 constructor table: official
// team names, livery colors and driver codes. Used to validate team
// allowlist entries and to color feed output; a team missing from the
// table is still accepted on the wire.
package teams

import (
	"sort"
	"strings"
)

// Team is one constructor entry.
type Team struct {
	ID      string
	Name    string
	Color   string
	Accent  string
	Drivers []string
}

var table = map[string]Team{
	"Red Bull Racing": {ID: "redbull", Name: "Red Bull Racing", Color: "#3671C6", Accent: "#FFC906", Drivers: []string{"VER", "PER"}},
	"Ferrari":         {ID: "ferrari", Name: "Ferrari", Color: "#E8002D", Accent: "#FFF000", Drivers: []string{"LEC", "SAI"}},
	"Mercedes":        {ID: "mercedes", Name: "Mercedes", Color: "#27F4D2", Accent: "#000000", Drivers: []string{"HAM", "RUS"}},
	"McLaren":         {ID: "mclaren", Name: "McLaren", Color: "#FF8000", Accent: "#47C7FC", Drivers: []string{"NOR", "PIA"}},
	"Aston Martin":    {ID: "astonmartin", Name: "Aston Martin", Color: "#229971", Accent: "#C1FD35", Drivers: []string{"ALO", "STR"}},
	"Alpine":          {ID: "alpine", Name: "Alpine", Color: "#FF87BC", Accent: "#2293D1", Drivers: []string{"GAS", "OCO"}},
	"Williams":        {ID: "williams", Name: "Williams", Color: "#64C4FF", Accent: "#041E42", Drivers: []string{"ALB", "SAR"}},
	"RB":              {ID: "rb", Name: "RB", Color: "#6692FF", Accent: "#FFFFFF", Drivers: []string{"TSU", "RIC"}},
	"Sauber":          {ID: "sauber", Name: "Sauber", Color: "#52E252", Accent: "#000000", Drivers: []string{"BOT", "ZHO"}},
	"Haas":            {ID: "haas", Name: "Haas F1 Team", Color: "#B6BABD", Accent: "#DC0000", Drivers: []string{"MAG", "HUL"}},
}

// Names returns the known team names, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a team by name, case-insensitively.
func Lookup(name string) (Team, bool) {
	for key, team := range table {
		if strings.EqualFold(key, name) {
			return team, true
		}
	}
	return Team{}, false
}

// IsKnown reports whether a name matches a team in the table.
func IsKnown(name string) bool {
	_, ok := Lookup(name)
	return ok
}
