package models

// VehicleImage is one entry of a catalog vehicle's ordered image list.
type VehicleImage struct {
	URLFull      string `json:"url_full"`
	URLThumbnail string `json:"url_thumbnail"`
}

// VehicleCatalogEntry is read-only reference data fetched from the remote
// vehicle catalog. Never mutated locally.
type VehicleCatalogEntry struct {
	Make          string         `json:"make"`
	Model         string         `json:"model"`
	Trim          string         `json:"trim"`
	SeatsMin      int64          `json:"seats_min"`
	ElectricRange int64          `json:"electric_range"`
	TotalRange    int64          `json:"total_range"`
	Images        []VehicleImage `json:"images"`
	Handle        string         `json:"handle"`
}
