package openf1

import "fmt"

// Roster is a read-only driver lookup table, replaced wholesale when the
// roster is refetched on session change. A missing entry never fails the
// pipeline; callers get a numeric fallback label instead.
type Roster map[int]Driver

// NewRoster builds a roster from driver records.
func NewRoster(drivers []Driver) Roster {
	r := make(Roster, len(drivers))
	for _, d := range drivers {
		r[d.DriverNumber] = d
	}
	return r
}

// Code returns the driver's display acronym, or "Driver <n>" when the
// driver is not in the roster or has no acronym.
func (r Roster) Code(driverNumber int) string {
	if d, ok := r[driverNumber]; ok && d.NameAcronym != "" {
		return d.NameAcronym
	}
	return fmt.Sprintf("Driver %d", driverNumber)
}

// Team returns the driver's team name, or "" when unknown.
func (r Roster) Team(driverNumber int) string {
	return r[driverNumber].TeamName
}
