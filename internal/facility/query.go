// Package facility finds healthcare facilities near a point using an
// Overpass map-data interpreter.
package facility

import (
	"fmt"
	"math"
	"strings"

	"github.com/smarthealth/internal/domain"
)

// selector is one tag filter applied to nodes, ways and relations.
type selector string

var typeSelectors = map[domain.FacilityType][]selector{
	domain.FacilityHospital:     {`["amenity"="hospital"]`, `["healthcare"="hospital"]`},
	domain.FacilityClinic:       {`["amenity"="clinic"]`, `["healthcare"="clinic"]`},
	domain.FacilityPharmacy:     {`["amenity"="pharmacy"]`},
	domain.FacilityDental:       {`["healthcare"="dentist"]`},
	domain.FacilityOptical:      {`["healthcare"="optometrist"]`},
	domain.FacilityLaboratory:   {`["healthcare"="laboratory"]`},
	domain.FacilityMentalHealth: {`["healthcare"="psychiatrist"]`},
	domain.FacilityUrgentCare:   {`["healthcare"="urgent_care"]`},
}

// allOrder fixes the order of the combined query.
var allOrder = []domain.FacilityType{
	domain.FacilityHospital,
	domain.FacilityClinic,
	domain.FacilityPharmacy,
	domain.FacilityDental,
	domain.FacilityOptical,
	domain.FacilityLaboratory,
	domain.FacilityMentalHealth,
	domain.FacilityUrgentCare,
}

var genericSelectors = []selector{
	`["healthcare"]`,
	`["amenity"~"^(hospital|clinic|pharmacy|doctors)$"]`,
}

// ParseType maps a query value to a facility type. Unknown values yield false.
func ParseType(s string) (domain.FacilityType, bool) {
	t := domain.FacilityType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" || t == domain.FacilityAll {
		return domain.FacilityAll, true
	}
	_, ok := typeSelectors[t]
	return t, ok
}

// BuildQuery renders the Overpass QL query for a search.
func BuildQuery(q domain.FacilityQuery) string {
	var sels []selector
	if q.Type == domain.FacilityAll || q.Type == "" {
		for _, t := range allOrder {
			sels = append(sels, typeSelectors[t]...)
		}
		sels = append(sels, genericSelectors...)
	} else if s, ok := typeSelectors[q.Type]; ok {
		sels = s
	} else {
		sels = typeSelectors[domain.FacilityHospital]
	}

	around := fmt.Sprintf("(around:%d,%s,%s)",
		int(math.Round(q.RadiusKm*1000)), formatCoord(q.Center.Lat), formatCoord(q.Center.Lng))

	var b strings.Builder
	b.WriteString("[out:json][timeout:30];\n(\n")
	for _, s := range sels {
		for _, elem := range []string{"node", "way", "relation"} {
			b.WriteString("  ")
			b.WriteString(elem)
			b.WriteString(string(s))
			b.WriteString(around)
			b.WriteString(";\n")
		}
	}
	b.WriteString(");\nout center;")
	return b.String()
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// TypeFromTags classifies an element by its tags. Anything unrecognised is a clinic.
func TypeFromTags(tags map[string]string) domain.FacilityType {
	amenity, healthcare := tags["amenity"], tags["healthcare"]
	switch {
	case amenity == "hospital" || healthcare == "hospital":
		return domain.FacilityHospital
	case amenity == "clinic" || healthcare == "clinic":
		return domain.FacilityClinic
	case amenity == "pharmacy":
		return domain.FacilityPharmacy
	case healthcare == "dentist":
		return domain.FacilityDental
	case healthcare == "optometrist":
		return domain.FacilityOptical
	case healthcare == "laboratory":
		return domain.FacilityLaboratory
	case healthcare == "psychiatrist":
		return domain.FacilityMentalHealth
	case healthcare == "urgent_care":
		return domain.FacilityUrgentCare
	default:
		return domain.FacilityClinic
	}
}

var categories = map[domain.FacilityType]string{
	domain.FacilityHospital:     "Hospital",
	domain.FacilityClinic:       "Medical Clinic",
	domain.FacilityPharmacy:     "Pharmacy",
	domain.FacilityDental:       "Dental Clinic",
	domain.FacilityOptical:      "Optical Center",
	domain.FacilityLaboratory:   "Medical Laboratory",
	domain.FacilityMentalHealth: "Mental Health Center",
	domain.FacilityUrgentCare:   "Urgent Care",
}

// Category returns the display label for a facility type.
func Category(t domain.FacilityType) string {
	if c, ok := categories[t]; ok {
		return c
	}
	return "Healthcare Facility"
}

const earthRadiusKm = 6371

// Distance returns the great-circle distance in kilometres.
func Distance(a, b domain.Coordinates) float64 {
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLng := (b.Lng - a.Lng) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
