package facility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MsgNoneFound is returned with an empty result.
const MsgNoneFound = "No healthcare facilities found in your area. Try increasing the search radius or changing the facility type."

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// element is one Overpass result element.
type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *point            `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []element `json:"elements"`
	Remark   string    `json:"remark,omitempty"`
}

// Finder queries the map-data interpreter. Outbound requests share one
// token bucket.
type Finder struct {
	baseURL    string
	timeout    time.Duration
	maxRadius  float64
	defRadius  float64
	limiter    *rate.Limiter
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewFinder creates a facility finder.
func NewFinder(cfg *config.FacilityConfig, m *metrics.Metrics, logger *zap.Logger) *Finder {
	return &Finder{
		baseURL:    cfg.BaseURL,
		timeout:    cfg.Timeout,
		maxRadius:  cfg.MaxRadiusKm,
		defRadius:  cfg.DefaultRadiusKm,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		httpClient: &http.Client{},
		metrics:    m,
		logger:     logger.Named("facility_finder"),
	}
}

// Normalize fills the default radius and caps it at the maximum.
func (f *Finder) Normalize(q domain.FacilityQuery) domain.FacilityQuery {
	if q.RadiusKm <= 0 {
		q.RadiusKm = f.defRadius
	}
	if f.maxRadius > 0 && q.RadiusKm > f.maxRadius {
		q.RadiusKm = f.maxRadius
	}
	if q.Type == "" {
		q.Type = domain.FacilityAll
	}
	return q
}

// Find runs the search and returns facilities within the radius, nearest first.
func (f *Finder) Find(ctx context.Context, q domain.FacilityQuery) (*domain.FacilityResponse, error) {
	q = f.Normalize(q)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapError("rate_limit_wait", fmt.Errorf("%w: %v", domain.ErrFacilityLookup, err), domain.KindTimeout)
	}

	start := time.Now()
	elements, err := f.fetch(ctx, BuildQuery(q))
	f.metrics.ObserveCall(metrics.TargetFacility, string(q.Type), metrics.Outcome(err, domain.IsTimeout(err)), time.Since(start))
	if err != nil {
		f.logger.Warn("facility lookup failed", zap.String("type", string(q.Type)), zap.Error(err))
		return nil, err
	}

	facilities := collect(elements, q)

	f.logger.Debug("facility lookup completed",
		zap.String("type", string(q.Type)),
		zap.Float64("radius_km", q.RadiusKm),
		zap.Int("elements", len(elements)),
		zap.Int("facilities", len(facilities)),
	)

	resp := &domain.FacilityResponse{Success: true, Facilities: facilities, Count: len(facilities)}
	if len(facilities) == 0 {
		resp.Message = MsgNoneFound
	}
	return resp, nil
}

func (f *Finder) fetch(ctx context.Context, query string) ([]element, error) {
	endpoint := f.baseURL + "?data=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.WrapError("create_request", err, domain.KindInternal)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.WrapError("facility_timeout", fmt.Errorf("%w: deadline exceeded", domain.ErrFacilityLookup), domain.KindTimeout)
		}
		return nil, domain.WrapError("http_request", fmt.Errorf("%w: %v", domain.ErrFacilityLookup, err), domain.KindDependency)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError("read_response", fmt.Errorf("%w: %v", domain.ErrFacilityLookup, err), domain.KindDependency)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.WrapError("facility_status",
			fmt.Errorf("%w: status %d", domain.ErrFacilityLookup, resp.StatusCode), domain.KindDependency)
	}

	var out overpassResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, domain.WrapError("parse_response",
			fmt.Errorf("%w: %v", domain.ErrFacilityLookup, err), domain.KindDependency)
	}
	return out.Elements, nil
}

// collect converts elements into facilities: elements without coordinates
// or beyond the radius are dropped, duplicates removed, and the rest sorted
// by distance. A specific type or the emergency flag filters further.
func collect(elements []element, q domain.FacilityQuery) []domain.Facility {
	seen := make(map[string]bool, len(elements))
	out := make([]domain.Facility, 0, len(elements))

	for _, el := range elements {
		coords, ok := el.coordinates()
		if !ok {
			continue
		}

		key := el.Type + "/" + strconv.FormatInt(el.ID, 10)
		if seen[key] {
			continue
		}
		seen[key] = true

		distance := Distance(q.Center, coords)
		if distance > q.RadiusKm {
			continue
		}

		fac := toFacility(el, coords, distance)
		if q.Type != domain.FacilityAll && q.Type != "" && fac.Type != q.Type {
			continue
		}
		if q.EmergencyOnly && !fac.Emergency {
			continue
		}
		out = append(out, fac)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

func (el element) coordinates() (domain.Coordinates, bool) {
	if el.Type == "node" && el.Lat != nil && el.Lon != nil {
		return domain.Coordinates{Lat: *el.Lat, Lng: *el.Lon}, true
	}
	if el.Center != nil {
		return domain.Coordinates{Lat: el.Center.Lat, Lng: el.Center.Lon}, true
	}
	return domain.Coordinates{}, false
}

func toFacility(el element, coords domain.Coordinates, distance float64) domain.Facility {
	tags := el.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	t := TypeFromTags(tags)
	fac := domain.Facility{
		ID:          strconv.FormatInt(el.ID, 10),
		Name:        firstNonEmpty(tags["name"], tags["name:en"], "Unknown Facility"),
		Address:     address(tags),
		Phone:       firstNonEmpty(tags["phone"], tags["contact:phone"]),
		Website:     tags["website"],
		Distance:    math.Round(distance*10) / 10,
		Coordinates: coords,
		Hours:       tags["opening_hours"],
		Services:    []string{},
		Type:        t,
		Category:    Category(t),
	}

	speciality := tags["healthcare:speciality"]
	fac.Emergency = tags["emergency"] == "yes" || strings.Contains(speciality, "emergency")
	if speciality != "" {
		fac.Services = strings.Split(speciality, ";")
	}
	return fac
}

func address(tags map[string]string) string {
	street := tags["addr:street"]
	if street == "" {
		return "Address not available"
	}
	return fmt.Sprintf("%s %s, %s", tags["addr:housenumber"], street, tags["addr:city"])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
