package models

// RoomType is static catalog data loaded from the rooms file at startup.
// It is never mutated at runtime.
type RoomType struct {
	ID        int64    `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Price     float64  `yaml:"price" json:"price"`
	Capacity  int      `yaml:"capacity" json:"capacity"`
	Amenities []string `yaml:"amenities" json:"amenities"`
	SortOrder int64    `yaml:"sort_order" json:"sort_order"`
}
