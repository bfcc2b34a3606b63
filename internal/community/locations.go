package community

import (
	"fmt"
	"strings"

	"github.com/kurihiro0119/community-console/internal/domain"
)

// Area is a selectable rectangle of a location map, in percent of the map
type Area struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Location is a map with its fixed areas
type Location struct {
	Name  string `json:"name"`
	Areas []Area `json:"areas"`
}

// Locations is the catalog of places a community can be created in
var Locations = []Location{
	{
		Name: "Shah Alam-Ara Damansare",
		Areas: []Area{
			{Name: "Area A", X: 5, Y: 5, Width: 45, Height: 45},
			{Name: "Area B", X: 55, Y: 5, Width: 40, Height: 45},
			{Name: "Area C", X: 5, Y: 55, Width: 45, Height: 40},
			{Name: "Area D", X: 55, Y: 55, Width: 40, Height: 40},
		},
	},
	{
		Name: "Shah Alam-Elmina",
		Areas: []Area{
			{Name: "Area A", X: 10, Y: 10, Width: 35, Height: 35},
			{Name: "Area B", X: 50, Y: 10, Width: 45, Height: 35},
			{Name: "Area C", X: 10, Y: 50, Width: 35, Height: 45},
			{Name: "Area D", X: 50, Y: 50, Width: 45, Height: 45},
		},
	},
	{
		Name: "KL-Bukit Jalil",
		Areas: []Area{
			{Name: "Area A", X: 5, Y: 5, Width: 55, Height: 55},
			{Name: "Area B", X: 65, Y: 5, Width: 30, Height: 30},
			{Name: "Area C", X: 5, Y: 65, Width: 55, Height: 30},
			{Name: "Area D", X: 65, Y: 40, Width: 30, Height: 55},
		},
	},
	{
		Name: "KL Sri Petaling",
		Areas: []Area{
			{Name: "Area A", X: 5, Y: 5, Width: 50, Height: 50},
			{Name: "Area B", X: 60, Y: 5, Width: 35, Height: 45},
			{Name: "Area C", X: 5, Y: 60, Width: 45, Height: 35},
			{Name: "Area D", X: 55, Y: 55, Width: 40, Height: 40},
		},
	},
}

// FindLocation looks a location up by name
func FindLocation(name string) (Location, bool) {
	for _, l := range Locations {
		if l.Name == name {
			return l, true
		}
	}
	return Location{}, false
}

const areaPrefix = "Area "

// Area looks an area of the location up by name. The bare letter ("B") is accepted for "Area B".
func (l Location) Area(name string) (Area, bool) {
	name = strings.TrimSpace(name)
	for _, a := range l.Areas {
		if a.Name == name || a.Name == areaPrefix+strings.ToUpper(name) {
			return a, true
		}
	}
	return Area{}, false
}

// Overlaps reports whether the area intersects r. Touching edges do not overlap.
func (a Area) Overlaps(r domain.ExistedRange) bool {
	return a.X < r.StartX+r.Width &&
		a.X+a.Width > r.StartX &&
		a.Y < r.StartY+r.Height &&
		a.Y+a.Height > r.StartY
}

// Available reports whether the area overlaps none of the taken ranges
func (a Area) Available(taken []domain.ExistedRange) bool {
	for _, r := range taken {
		if a.Overlaps(r) {
			return false
		}
	}
	return true
}

const nameSeparator = " - "

// ComposeName builds the stored community name from its base, location and area
func ComposeName(base, location, area string) string {
	return fmt.Sprintf("%s%s%s (%s)", base, nameSeparator, location, area)
}

// BaseName strips a composed suffix from name
func BaseName(name string) string {
	base, _, _ := strings.Cut(name, nameSeparator)
	return base
}
