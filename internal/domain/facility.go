package domain

// FacilityType is a healthcare facility category used for map queries.
type FacilityType string

const (
	FacilityAll          FacilityType = "all"
	FacilityHospital     FacilityType = "hospital"
	FacilityClinic       FacilityType = "clinic"
	FacilityPharmacy     FacilityType = "pharmacy"
	FacilityDental       FacilityType = "dental"
	FacilityOptical      FacilityType = "optical"
	FacilityLaboratory   FacilityType = "laboratory"
	FacilityMentalHealth FacilityType = "mental_health"
	FacilityUrgentCare   FacilityType = "urgent_care"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Facility is a healthcare facility found near a point.
type Facility struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Phone       string       `json:"phone,omitempty"`
	Website     string       `json:"website,omitempty"`
	Distance    float64      `json:"distance"`
	Emergency   bool         `json:"emergency"`
	Coordinates Coordinates  `json:"coordinates"`
	Hours       string       `json:"hours,omitempty"`
	Services    []string     `json:"services"`
	Type        FacilityType `json:"type"`
	Category    string       `json:"category"`
}

// FacilityQuery describes a facility search.
type FacilityQuery struct {
	Center        Coordinates
	RadiusKm      float64
	Type          FacilityType
	EmergencyOnly bool
}

// FacilityResponse is returned by the facility endpoint.
type FacilityResponse struct {
	Success    bool       `json:"success"`
	Facilities []Facility `json:"facilities"`
	Count      int        `json:"count"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
}
