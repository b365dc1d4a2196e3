package repository

// SchemaDDL is the canonical store schema. Tenant provisioning applies it
// verbatim inside the tenant's dedicated schema so every district store shares
// the main store's shape without sharing rows. The tenants and tenant_users
// tables live in the main store only.
const SchemaDDL = `
CREATE TABLE IF NOT EXISTS districts (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	code TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS schools (
	id UUID PRIMARY KEY,
	district_id UUID REFERENCES districts(id),
	name TEXT NOT NULL,
	level TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS skills (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS career_types (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS organizations (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	org_type TEXT,
	website TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS volunteers (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	secondary_email TEXT,
	phone TEXT,
	street TEXT,
	city TEXT,
	state TEXT,
	postal_code TEXT,
	gender TEXT,
	race_ethnicity TEXT,
	title TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS volunteers_email_idx ON volunteers (LOWER(email)) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS volunteer_organizations (
	volunteer_id UUID NOT NULL REFERENCES volunteers(id),
	organization_id UUID NOT NULL REFERENCES organizations(id),
	PRIMARY KEY (volunteer_id, organization_id)
);

CREATE TABLE IF NOT EXISTS volunteer_skills (
	volunteer_id UUID NOT NULL REFERENCES volunteers(id),
	skill_id UUID NOT NULL REFERENCES skills(id),
	PRIMARY KEY (volunteer_id, skill_id)
);

CREATE TABLE IF NOT EXISTS teachers (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	secondary_email TEXT,
	phone TEXT,
	street TEXT,
	city TEXT,
	state TEXT,
	postal_code TEXT,
	gender TEXT,
	race_ethnicity TEXT,
	school_id UUID REFERENCES schools(id),
	roster_name TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	roster_removed BOOLEAN NOT NULL DEFAULT FALSE,
	exclude_from_reports BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS teachers_email_idx ON teachers (LOWER(email)) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS students (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	secondary_email TEXT,
	phone TEXT,
	street TEXT,
	city TEXT,
	state TEXT,
	postal_code TEXT,
	gender TEXT,
	race_ethnicity TEXT,
	school_id UUID REFERENCES schools(id),
	grade_level TEXT,
	class_name TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	format TEXT NOT NULL DEFAULT 'in_person',
	start_date TIMESTAMPTZ,
	end_date TIMESTAMPTZ,
	location TEXT,
	status TEXT,
	public_visible BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS event_districts (
	event_id UUID NOT NULL REFERENCES events(id),
	district_id UUID NOT NULL REFERENCES districts(id),
	PRIMARY KEY (event_id, district_id)
);

CREATE TABLE IF NOT EXISTS event_participations (
	id UUID PRIMARY KEY,
	event_id UUID NOT NULL REFERENCES events(id),
	volunteer_id UUID NOT NULL REFERENCES volunteers(id),
	status TEXT NOT NULL,
	participant_type TEXT NOT NULL DEFAULT 'Volunteer',
	credited_hours DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (event_id, volunteer_id)
);

CREATE TABLE IF NOT EXISTS event_teachers (
	id UUID PRIMARY KEY,
	event_id UUID NOT NULL REFERENCES events(id),
	teacher_id UUID NOT NULL REFERENCES teachers(id),
	status TEXT NOT NULL,
	attendance_confirmed_at TIMESTAMPTZ,
	credited_hours DOUBLE PRECISION,
	is_presenter BOOLEAN NOT NULL DEFAULT FALSE,
	cancellation_reason TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (event_id, teacher_id)
);

CREATE TABLE IF NOT EXISTS event_student_participations (
	id UUID PRIMARY KEY,
	event_id UUID NOT NULL REFERENCES events(id),
	student_id UUID NOT NULL REFERENCES students(id),
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (event_id, student_id)
);

CREATE TABLE IF NOT EXISTS external_ids (
	id UUID PRIMARY KEY,
	source TEXT NOT NULL,
	source_key TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, source_key, entity_type)
);

CREATE TABLE IF NOT EXISTS teacher_progress (
	id UUID PRIMARY KEY,
	teacher_id UUID NOT NULL REFERENCES teachers(id),
	academic_year TEXT NOT NULL,
	roster_name TEXT NOT NULL DEFAULT '',
	school_name TEXT,
	target_sessions INT NOT NULL DEFAULT 1,
	archived BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (teacher_id, academic_year)
);

CREATE TABLE IF NOT EXISTS import_batches (
	id UUID PRIMARY KEY,
	entity_type TEXT NOT NULL,
	source TEXT NOT NULL,
	tenant_slug TEXT,
	status TEXT NOT NULL,
	failure_reason TEXT,
	rows_processed INT NOT NULL DEFAULT 0,
	rows_created INT NOT NULL DEFAULT 0,
	rows_updated INT NOT NULL DEFAULT 0,
	rows_skipped INT NOT NULL DEFAULT 0,
	rows_unmatched INT NOT NULL DEFAULT 0,
	rows_invalid INT NOT NULL DEFAULT 0,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS import_row_errors (
	id UUID PRIMARY KEY,
	batch_id UUID NOT NULL REFERENCES import_batches(id),
	row_number INT NOT NULL,
	column_name TEXT,
	code TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS review_queue (
	id UUID PRIMARY KEY,
	batch_id UUID,
	entity_type TEXT NOT NULL,
	source TEXT NOT NULL,
	reason TEXT NOT NULL,
	row_snapshot JSONB,
	candidate_ids JSONB,
	status TEXT NOT NULL DEFAULT 'pending',
	resolved_by TEXT,
	linked_entity_id UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	resolved_at TIMESTAMPTZ
);
`

// MainOnlyDDL covers tables that exist exclusively in the main store.
const MainOnlyDDL = `
CREATE TABLE IF NOT EXISTS tenants (
	id UUID PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	schema_name TEXT NOT NULL UNIQUE,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	features JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deactivated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS tenant_users (
	id UUID PRIMARY KEY,
	tenant_id UUID NOT NULL REFERENCES tenants(id),
	email TEXT NOT NULL,
	full_name TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'admin',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (tenant_id, email)
);
`

// ReferenceTables are snapshot-copied into a tenant store at provisioning time.
var ReferenceTables = []string{"districts", "schools", "skills", "career_types"}
