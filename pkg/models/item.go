package models

import "encoding/json"

// Materials lists the accepted material values, in form order.
var Materials = []string{"Timber", "Steel", "Glass", "Plaster", "Brick", "Concrete", "Polymers", "Other"}

// Units lists the accepted amount units.
var Units = []string{"piece", "m", "m^2", "m^3", "kg"}

// ModelScales lists the accepted 3D model scales.
var ModelScales = []string{"mm", "cm", "m"}

// Provenance describes where a component came from (source) or where it ends
// up (origin). All fields are optional free-form input.
type Provenance struct {
	Name      string  `json:"name,omitempty"`
	Year      int     `json:"year,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Country   string  `json:"country,omitempty"`
	State     string  `json:"state,omitempty"`
	City      string  `json:"city,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// Item is one submitted component record as persisted in the document store.
// The uid is globally unique; re-submitting with the same uid replaces the
// record entirely (last write wins, including owner).
type Item struct {
	UID          string      `json:"uid,omitempty"`
	Owner        string      `json:"owner,omitempty"`
	SpecID       string      `json:"spec_id"`
	Name         string      `json:"name"`
	Material     string      `json:"material"`
	Amount       float64     `json:"amount"`
	Unit         string      `json:"unit"`
	Notes        string      `json:"notes"`
	ModelScale   string      `json:"model_scale"`
	Images       []string    `json:"images"`
	Model        []string    `json:"3d_model"`
	ImageKeys    []string    `json:"image_keys,omitempty"`
	ModelKeys    []string    `json:"model_keys,omitempty"`
	OriginalHash []any       `json:"original_hash,omitempty"`
	ContentHash  []any       `json:"content_hash,omitempty"`
	Time         string      `json:"time,omitempty"`
	Source       *Provenance `json:"source,omitempty"`
	Origin       *Provenance `json:"origin,omitempty"`
}

// Doc converts the item into a generic document map for the document store.
func (i *Item) Doc() (map[string]any, error) {
	raw, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ItemFromDoc converts a stored document map back into an Item.
func ItemFromDoc(doc map[string]any) (*Item, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	item := &Item{}
	if err := json.Unmarshal(raw, item); err != nil {
		return nil, err
	}
	return item, nil
}
