package model

// Company is a derived aggregate — it is computed from question rows on
// every request and never stored. Name carries the first-seen original
// casing of the company; ResourcesCount is the number of questions filed
// under that company (grouped case-insensitively). Logo is a best-effort
// external image reference derived from the lower-cased name.
type Company struct {
	Name           string `json:"name"`
	ResourcesCount int    `json:"resourcesCount"`
	Logo           string `json:"logo"`
}
