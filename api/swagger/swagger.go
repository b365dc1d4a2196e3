package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Volunteer Hub API",
        "description": "Multi-source reconciliation and import engine for classroom volunteering",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Imports", "description": "Batch file imports and source sync"},
        {"name": "Review", "description": "Manual review queue for unmatched and ambiguous rows"},
        {"name": "Progress", "description": "Derived teacher progress"},
        {"name": "Volunteers", "description": "Volunteers with derived locality"},
        {"name": "Tenants", "description": "District store provisioning"}
    ],
    "paths": {
        "/imports/pathful": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import a Pathful session export file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Batch already running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "File rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/roster": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import a teacher roster file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "apply_removals", "in": "query", "type": "boolean"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Batch already running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "File rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/salesforce/events": {
            "post": {
                "tags": ["Imports"],
                "summary": "Sync event records from the CRM export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/SalesforceEventRecord"}}},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/salesforce/volunteers": {
            "post": {
                "tags": ["Imports"],
                "summary": "Sync volunteer records from the CRM export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/SalesforceVolunteerRecord"}}},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/salesforce/organizations": {
            "post": {
                "tags": ["Imports"],
                "summary": "Sync organization records from the CRM export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/SalesforceOrganizationRecord"}}},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/batches": {
            "get": {
                "tags": ["Imports"],
                "summary": "List import batches",
                "parameters": [
                    {"name": "source", "in": "query", "type": "string"},
                    {"name": "entity_type", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/batches/{id}": {
            "get": {
                "tags": ["Imports"],
                "summary": "Get an import batch report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/batches/{id}/errors": {
            "get": {
                "tags": ["Imports"],
                "summary": "List row errors for a batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/batches/{id}/errors/export": {
            "get": {
                "tags": ["Imports"],
                "summary": "Download row errors as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV attachment"}
                }
            }
        },
        "/review": {
            "get": {
                "tags": ["Review"],
                "summary": "List review queue items",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "entity_type", "in": "query", "type": "string"},
                    {"name": "reason", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/review/{id}": {
            "get": {
                "tags": ["Review"],
                "summary": "Get a review item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/review/{id}/resolve": {
            "post": {
                "tags": ["Review"],
                "summary": "Resolve a review item against an existing entity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveReviewRequest"}},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/review/{id}/dismiss": {
            "post": {
                "tags": ["Review"],
                "summary": "Dismiss a review item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/DismissReviewRequest"}},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/teachers": {
            "get": {
                "tags": ["Progress"],
                "summary": "List derived teacher progress for an academic year",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/teachers/{id}": {
            "get": {
                "tags": ["Progress"],
                "summary": "Get derived progress for one teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/reset": {
            "post": {
                "tags": ["Progress"],
                "summary": "Archive a finished academic year",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResetProgressRequest"}},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/volunteers": {
            "get": {
                "tags": ["Volunteers"],
                "summary": "List volunteers with derived locality",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/volunteers/{id}": {
            "get": {
                "tags": ["Volunteers"],
                "summary": "Get a volunteer with derived locality",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-Tenant", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tenants": {
            "get": {
                "tags": ["Tenants"],
                "summary": "List district stores",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Tenants"],
                "summary": "Provision a district store",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProvisionTenantRequest"}}
                ],
                "responses": {
                    "200": {"description": "Already provisioned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tenants/{slug}": {
            "delete": {
                "tags": ["Tenants"],
                "summary": "Deactivate a district store",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "ImportBatch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "entity_type": {"type": "string"},
                "filename": {"type": "string"},
                "status": {"type": "string"},
                "failure_reason": {"type": "string"},
                "rows_processed": {"type": "integer"},
                "rows_created": {"type": "integer"},
                "rows_updated": {"type": "integer"},
                "rows_skipped": {"type": "integer"},
                "rows_unmatched": {"type": "integer"},
                "rows_invalid": {"type": "integer"},
                "started_at": {"type": "string"},
                "completed_at": {"type": "string"}
            }
        },
        "ImportRowError": {
            "type": "object",
            "properties": {
                "batch_id": {"type": "string"},
                "row_number": {"type": "integer"},
                "column_name": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ReviewItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "batch_id": {"type": "string"},
                "source": {"type": "string"},
                "entity_type": {"type": "string"},
                "reason": {"type": "string"},
                "status": {"type": "string"},
                "row_snapshot": {"type": "object"},
                "candidates": {"type": "array", "items": {"type": "object"}},
                "resolved_by": {"type": "string"},
                "resolved_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "TeacherProgressView": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "academic_year": {"type": "string"},
                "target_sessions": {"type": "integer"},
                "completed_sessions": {"type": "integer"},
                "upcoming_sessions": {"type": "integer"},
                "status": {"type": "string"}
            }
        },
        "VolunteerView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "local_status": {"type": "string"},
                "organization_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SalesforceEventRecord": {
            "type": "object",
            "properties": {
                "external_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "location": {"type": "string"},
                "status": {"type": "string"},
                "public_visible": {"type": "boolean"},
                "district_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["external_id"]
        },
        "SalesforceVolunteerRecord": {
            "type": "object",
            "properties": {
                "external_id": {"type": "string"},
                "email": {"type": "string"},
                "secondary_email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "phone": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "organizations": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["external_id"]
        },
        "SalesforceOrganizationRecord": {
            "type": "object",
            "properties": {
                "external_id": {"type": "string"},
                "name": {"type": "string"},
                "org_type": {"type": "string"},
                "website": {"type": "string"}
            },
            "required": ["external_id", "name"]
        },
        "ResolveReviewRequest": {
            "type": "object",
            "properties": {
                "entity_id": {"type": "string"},
                "resolved_by": {"type": "string"},
                "source_key": {"type": "string"}
            },
            "required": ["entity_id"]
        },
        "DismissReviewRequest": {
            "type": "object",
            "properties": {
                "dismissed_by": {"type": "string"}
            }
        },
        "ResetProgressRequest": {
            "type": "object",
            "properties": {
                "academic_year": {"type": "string"}
            },
            "required": ["academic_year"]
        },
        "ProvisionTenantRequest": {
            "type": "object",
            "properties": {
                "slug": {"type": "string"},
                "name": {"type": "string"},
                "admin_email": {"type": "string"},
                "admin_name": {"type": "string"},
                "admin_password": {"type": "string"}
            },
            "required": ["slug", "name", "admin_email", "admin_password"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
