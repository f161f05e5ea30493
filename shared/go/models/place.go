package models

// ImageRef points at a catalog image served from the images directory.
type ImageRef struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Place is a read-only catalog entry that any user may add to a collection.
type Place struct {
	ID       string   `json:"id" validate:"required,max=128"`
	Title    string   `json:"title" validate:"required,max=256"`
	Image    ImageRef `json:"image"`
	City     string   `json:"city,omitempty"`
	Category string   `json:"category,omitempty"`
	Lat      *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lon      *float64 `json:"lon,omitempty" validate:"omitempty,longitude"`
}

// HasLocation reports whether both coordinates are known.
func (p Place) HasLocation() bool {
	return p.Lat != nil && p.Lon != nil
}

// Clone returns a copy that shares no pointers with p.
func (p Place) Clone() Place {
	out := p
	if p.Lat != nil {
		lat := *p.Lat
		out.Lat = &lat
	}
	if p.Lon != nil {
		lon := *p.Lon
		out.Lon = &lon
	}
	return out
}

// CatalogEntry is a Place decorated for catalog browsing.
type CatalogEntry struct {
	Place
	DistanceKm *float64 `json:"distanceKm,omitempty"`
	IsNearest  bool     `json:"isNearest,omitempty"`
}

// CatalogQuery narrows and orders a catalog listing.
type CatalogQuery struct {
	Category string
	Search   string // case-insensitive substring of the title
	Near     *Coordinates
}

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}
