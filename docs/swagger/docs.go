// Package swagger registers the relay's OpenAPI document with swag so
// gin-swagger can serve it at /swagger/doc.json.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/proposals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "List proposals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "Create proposal",
                "parameters": [
                    {"description": "proposal and signing key", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.CreateProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.TxResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/proposals/count": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "Count proposals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.CountResponse"}}
                }
            }
        },
        "/proposals/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "Get proposal",
                "parameters": [
                    {"type": "integer", "description": "proposal index", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ProposalRecord"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/proposals/{id}/voters/{address}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "Has address voted",
                "parameters": [
                    {"type": "integer", "description": "proposal index", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "voter address", "name": "address", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.HasVotedResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/proposals/{id}/execute": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "Execute proposal",
                "parameters": [
                    {"type": "integer", "description": "proposal index", "name": "id", "in": "path", "required": true},
                    {"description": "signing key", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.SignerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.TxResponse"}}
                }
            }
        },
        "/proposals/{id}/delete": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "Delete proposal",
                "parameters": [
                    {"type": "integer", "description": "proposal index", "name": "id", "in": "path", "required": true},
                    {"description": "signing key", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.SignerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.TxResponse"}}
                }
            }
        },
        "/vote": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Proposals"],
                "summary": "Vote",
                "parameters": [
                    {"description": "proposal and signing key", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.TxResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "model.ProposalRecord": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "vote_count": {"type": "integer"},
                "executed": {"type": "boolean"}
            }
        },
        "request.CreateProposalRequest": {
            "type": "object",
            "required": ["title", "description", "private_key"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "private_key": {"type": "string"}
            }
        },
        "request.VoteRequest": {
            "type": "object",
            "required": ["proposal_id", "private_key"],
            "properties": {
                "proposal_id": {"type": "integer", "minimum": 0},
                "private_key": {"type": "string"}
            }
        },
        "request.SignerRequest": {
            "type": "object",
            "required": ["private_key"],
            "properties": {
                "private_key": {"type": "string"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "msg": {"type": "string"},
                "data": {}
            }
        },
        "response.TxResponse": {
            "type": "object",
            "properties": {
                "transaction_hash": {"type": "string", "example": "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"}
            }
        },
        "response.CountResponse": {
            "type": "object",
            "properties": {"count": {"type": "integer"}}
        },
        "response.HasVotedResponse": {
            "type": "object",
            "properties": {"has_voted": {"type": "boolean"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "DAO Voting Relay API",
	Description:      "Stateless relay that signs and submits VotingDAO transactions and reads proposal state.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
