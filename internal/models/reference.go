package models

import "time"

// District groups schools and scopes tenant stores.
type District struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      *string   `db:"code" json:"code,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// School is reference data copied into tenant stores at provisioning time.
type School struct {
	ID         string    `db:"id" json:"id"`
	DistrictID *string   `db:"district_id" json:"district_id,omitempty"`
	Name       string    `db:"name" json:"name"`
	Level      *string   `db:"level" json:"level,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Skill tags volunteers with areas of expertise.
type Skill struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CareerType categorises sessions and volunteer backgrounds.
type CareerType struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Pagination carries standard list metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
