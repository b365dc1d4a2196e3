package models

import "time"

// Tenant is an isolated district data store. The slug is immutable after
// creation; deactivation is soft and physical deletion is a separate operation.
type Tenant struct {
	ID            string     `db:"id" json:"id"`
	Slug          string     `db:"slug" json:"slug"`
	Name          string     `db:"name" json:"name"`
	SchemaName    string     `db:"schema_name" json:"schema_name"`
	Active        bool       `db:"active" json:"active"`
	Features      []byte     `db:"features" json:"features,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
}

// TenantUser is an admin account scoped to a single tenant store.
type TenantUser struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"full_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProvisionResult summarises a tenant provisioning run, including row counts
// copied from the main store for verification.
type ProvisionResult struct {
	Tenant       Tenant         `json:"tenant"`
	Created      bool           `json:"created"`
	CopiedCounts map[string]int `json:"copied_counts,omitempty"`
}
