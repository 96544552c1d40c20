// Package docs holds the Swagger description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service information",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {"type": "string"}
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/dto.HealthResponse"}
                    }
                }
            }
        },
        "/api/v1/claims/process": {
            "post": {
                "description": "Upload the claim documents (bill, discharge summary, ID card) as PDFs. Each file is read, classified and extracted, then the bundle is validated and a decision is returned.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["claims"],
                "summary": "Process a medical insurance claim",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Claim documents (PDF, repeat the field for each file)",
                        "name": "files",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/dto.ProcessClaimResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.DocumentFailure": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "file_name": {"type": "string"},
                "stage": {"type": "string", "enum": ["text_extraction", "classification", "extraction"]}
            }
        },
        "dto.DocumentResponse": {
            "type": "object",
            "properties": {
                "content": {"type": "object"},
                "file_name": {"type": "string"},
                "type": {"type": "string", "enum": ["bill", "discharge_summary", "id_card"]}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "service": {"type": "string"},
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "dto.ProcessClaimResponse": {
            "type": "object",
            "properties": {
                "claim_decision": {"$ref": "#/definitions/models.ClaimDecision"},
                "claim_id": {"type": "string"},
                "documents": {"type": "array", "items": {"$ref": "#/definitions/dto.DocumentResponse"}},
                "processing_metadata": {"$ref": "#/definitions/dto.ProcessingMetadata"},
                "validation": {"$ref": "#/definitions/models.ValidationResult"}
            }
        },
        "dto.ProcessingMetadata": {
            "type": "object",
            "properties": {
                "document_types_found": {"type": "array", "items": {"type": "string"}},
                "failed_documents": {"type": "array", "items": {"$ref": "#/definitions/dto.DocumentFailure"}},
                "processing_time_ms": {"type": "integer"},
                "total_files_processed": {"type": "integer"},
                "validation_status": {"type": "string", "enum": ["passed", "issues_found"]}
            }
        },
        "models.ClaimDecision": {
            "type": "object",
            "properties": {
                "confidence_score": {"type": "number"},
                "reason": {"type": "string"},
                "status": {"type": "string", "enum": ["approved", "rejected", "pending_review"]}
            }
        },
        "models.Discrepancy": {
            "type": "object",
            "properties": {
                "documents_involved": {"type": "array", "items": {"type": "string"}},
                "field": {"type": "string"},
                "rule_violated": {"type": "string"},
                "values_observed": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.ValidationResult": {
            "type": "object",
            "properties": {
                "discrepancies": {"type": "array", "items": {"$ref": "#/definitions/models.Discrepancy"}},
                "missing_documents": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SuperClaims API",
	Description:      "Medical insurance claim processing: document reading, cross-document validation and claim decisions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
