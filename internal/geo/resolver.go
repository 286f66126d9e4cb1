package geo

import (
	"strings"

	"astro-forecast-bot/internal/types"
)

// DefaultLocation is returned for any place name not present in the lookup
// table. Using the capital keeps chart calculation going for unknown places;
// callers must treat a default hit as lower confidence, not as an error.
var DefaultLocation = types.Location{
	Name:      "Москва",
	Latitude:  55.7558,
	Longitude: 37.6176,
}

// cities maps lowercased place names to coordinates. Seeded with the major
// registration cities; extend as needed.
var cities = map[string]types.Location{
	"москва":           {Name: "Москва", Latitude: 55.7558, Longitude: 37.6176},
	"санкт-петербург":  {Name: "Санкт-Петербург", Latitude: 59.9311, Longitude: 30.3609},
	"спб":              {Name: "Санкт-Петербург", Latitude: 59.9311, Longitude: 30.3609},
	"екатеринбург":     {Name: "Екатеринбург", Latitude: 56.8431, Longitude: 60.6454},
	"новосибирск":      {Name: "Новосибирск", Latitude: 55.0084, Longitude: 82.9357},
	"нижний новгород":  {Name: "Нижний Новгород", Latitude: 56.2965, Longitude: 43.9361},
	"казань":           {Name: "Казань", Latitude: 55.8304, Longitude: 49.0661},
	"челябинск":        {Name: "Челябинск", Latitude: 55.1644, Longitude: 61.4368},
	"омск":             {Name: "Омск", Latitude: 54.9885, Longitude: 73.3242},
	"самара":           {Name: "Самара", Latitude: 53.2001, Longitude: 50.1500},
	"ростов-на-дону":   {Name: "Ростов-на-Дону", Latitude: 47.2357, Longitude: 39.7015},
}

// Resolve maps a free-text place name to coordinates. It never fails: names
// missing from the table resolve to DefaultLocation.
func Resolve(place string) types.Location {
	key := strings.ToLower(strings.TrimSpace(place))
	if loc, ok := cities[key]; ok {
		return loc
	}
	return DefaultLocation
}
