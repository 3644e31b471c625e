// Package personnel holds the swagger document served at /swagger/. It is
// generated from the annotations in internal/personnel/http:
//
//	swag init -g internal/personnel/http/router.go -o api/personnel --outputTypes go
package personnel

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "AussieBroadWAN Team",
			"url": "https://github.com/aussiebroadwan/pnpstation"
		},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/v1/auth/login": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Log in",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/pnpsdk.SessionResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.LoginRequest"
						}
					}
				]
			}
		},
		"/v1/auth/otp/verify": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Verify login code",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/pnpsdk.SessionResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.VerifyOTPRequest"
						}
					}
				]
			}
		},
		"/v1/auth/otp/resend": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Resend login code",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/pnpsdk.SessionResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/auth/logout": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Log out",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "No Content"
					}
				}
			}
		},
		"/v1/auth/session": {
			"get": {
				"tags": [
					"Auth"
				],
				"summary": "Current session",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/pnpsdk.SessionResponse"
						}
					}
				}
			}
		},
		"/v1/auth/register": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Register as an applicant",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/pnpsdk.UserResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.RegisterRequest"
						}
					}
				]
			}
		},
		"/v1/admin/users": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "List users",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "string",
						"description": "admin, employee or applicant",
						"name": "role",
						"in": "query"
					}
				]
			},
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Create user",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/pnpsdk.UserResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.CreateUserRequest"
						}
					}
				]
			}
		},
		"/v1/admin/users/{id}": {
			"patch": {
				"tags": [
					"Admin"
				],
				"summary": "Update user",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/pnpsdk.UserResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.UpdateUserRequest"
						}
					}
				]
			},
			"delete": {
				"tags": [
					"Admin"
				],
				"summary": "Delete user",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/admin/profile": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Admin profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.AdminProfile"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"Admin"
				],
				"summary": "Save admin profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.AdminProfile"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.AdminProfileRequest"
						}
					}
				]
			}
		},
		"/v1/admin/applicants": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "List applicants",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Pending, Approved or Rejected",
						"name": "status",
						"in": "query"
					}
				]
			}
		},
		"/v1/admin/applicants/{id}": {
			"patch": {
				"tags": [
					"Admin"
				],
				"summary": "Decide an application",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.ApplicantProfile"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.ApplicationStatusRequest"
						}
					}
				]
			}
		},
		"/v1/admin/leaves": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "All leave applications",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Pending, Approved or Rejected",
						"name": "status",
						"in": "query"
					}
				]
			}
		},
		"/v1/admin/leaves/{id}/review": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Review a leave application",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.LeaveApplication"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.LeaveReviewRequest"
						}
					}
				]
			}
		},
		"/v1/admin/deployments": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "List deployments",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Only this employee",
						"name": "employee_id",
						"in": "query"
					}
				]
			},
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Deploy an employee",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.Deployment"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.DeploymentRequest"
						}
					}
				]
			}
		},
		"/v1/admin/deployments/{id}": {
			"patch": {
				"tags": [
					"Admin"
				],
				"summary": "Update a deployment",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.Deployment"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.UpdateDeploymentRequest"
						}
					}
				]
			}
		},
		"/v1/employee/profile": {
			"get": {
				"tags": [
					"Employee"
				],
				"summary": "Employee profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EmployeeProfile"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"Employee"
				],
				"summary": "Save employee profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.EmployeeProfile"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.EmployeeProfileRequest"
						}
					}
				]
			}
		},
		"/v1/employee/records": {
			"get": {
				"tags": [
					"Employee"
				],
				"summary": "Employee records",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/employee/education": {
			"post": {
				"tags": [
					"Employee"
				],
				"summary": "Add education",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.Education"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.EducationRequest"
						}
					}
				]
			}
		},
		"/v1/employee/education/{id}": {
			"delete": {
				"tags": [
					"Employee"
				],
				"summary": "Delete education",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/employee/leaves": {
			"get": {
				"tags": [
					"Employee"
				],
				"summary": "My leave applications",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					}
				]
			},
			"post": {
				"tags": [
					"Employee"
				],
				"summary": "Apply for leave",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.LeaveApplication"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.LeaveRequest"
						}
					}
				]
			}
		},
		"/v1/employee/leaves/{id}": {
			"get": {
				"tags": [
					"Employee"
				],
				"summary": "Get one of my leave applications",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.LeaveApplication"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"put": {
				"tags": [
					"Employee"
				],
				"summary": "Edit a pending leave application",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.LeaveApplication"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.LeaveRequest"
						}
					}
				]
			},
			"delete": {
				"tags": [
					"Employee"
				],
				"summary": "Withdraw a pending leave application",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/applicant/profile": {
			"get": {
				"tags": [
					"Applicant"
				],
				"summary": "Applicant profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.ApplicantProfile"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"Applicant"
				],
				"summary": "Save applicant profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.ApplicantProfile"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/pnpsdk.ApplicantProfileRequest"
						}
					}
				]
			}
		},
		"/v1/notifications": {
			"get": {
				"tags": [
					"Notifications"
				],
				"summary": "My notifications",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query"
					}
				]
			}
		},
		"/v1/notifications/{id}/read": {
			"post": {
				"tags": [
					"Notifications"
				],
				"summary": "Mark a notification read",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/notifications/read-all": {
			"post": {
				"tags": [
					"Notifications"
				],
				"summary": "Mark every notification read",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/pnpsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/livez": {
			"get": {
				"tags": [
					"Health"
				],
				"summary": "Liveness probe",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/pnpsdk.HealthResponse"
						}
					}
				}
			}
		},
		"/readyz": {
			"get": {
				"tags": [
					"Health"
				],
				"summary": "Readiness probe",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/pnpsdk.HealthResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/pnpsdk.HealthResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"pnpsdk.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"error_description": {
					"type": "string"
				}
			}
		},
		"pnpsdk.HealthResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"uptime": {
					"type": "string"
				},
				"version": {
					"type": "string"
				},
				"checks": {
					"$ref": "#/definitions/pnpsdk.HealthChecks"
				}
			}
		},
		"pnpsdk.HealthChecks": {
			"type": "object",
			"properties": {
				"database": {
					"type": "string"
				},
				"sessions": {
					"type": "string"
				}
			}
		},
		"pnpsdk.LoginRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"username",
				"password"
			]
		},
		"pnpsdk.VerifyOTPRequest": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				}
			},
			"required": [
				"code"
			]
		},
		"pnpsdk.RegisterRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"confirm_password": {
					"type": "string"
				}
			},
			"required": [
				"username",
				"email",
				"password",
				"confirm_password"
			]
		},
		"pnpsdk.SessionResponse": {
			"type": "object",
			"properties": {
				"state": {
					"type": "string",
					"enum": [
						"anonymous",
						"otp_required",
						"authenticated"
					]
				},
				"user_id": {
					"type": "integer"
				},
				"username": {
					"type": "string"
				},
				"role": {
					"type": "string"
				}
			}
		},
		"pnpsdk.UserResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"username": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"role": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"two_factor_enabled": {
					"type": "boolean"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"pnpsdk.CreateUserRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"role": {
					"type": "string",
					"enum": [
						"admin",
						"employee",
						"applicant"
					]
				},
				"status": {
					"type": "string",
					"enum": [
						"active",
						"inactive",
						"suspended"
					]
				},
				"two_factor_enabled": {
					"type": "boolean"
				}
			},
			"required": [
				"username",
				"email",
				"password",
				"role"
			]
		},
		"pnpsdk.UpdateUserRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"active",
						"inactive",
						"suspended"
					]
				},
				"role": {
					"type": "string",
					"enum": [
						"admin",
						"employee",
						"applicant"
					]
				},
				"two_factor_enabled": {
					"type": "boolean"
				}
			}
		},
		"pnpsdk.EmployeeProfileRequest": {
			"type": "object",
			"properties": {
				"first_name": {
					"type": "string"
				},
				"middle_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"suffix": {
					"type": "string"
				},
				"rank": {
					"type": "string"
				},
				"unit": {
					"type": "string"
				},
				"station": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"home_address": {
					"type": "string"
				},
				"gender": {
					"type": "string"
				},
				"date_of_birth": {
					"type": "string"
				},
				"place_of_birth": {
					"type": "string"
				},
				"religion": {
					"type": "string"
				},
				"emergency_contact_name": {
					"type": "string"
				},
				"emergency_relationship": {
					"type": "string"
				},
				"emergency_contact_number": {
					"type": "string"
				},
				"profile_picture": {
					"type": "string"
				}
			},
			"required": [
				"first_name",
				"last_name"
			]
		},
		"pnpsdk.ApplicantProfileRequest": {
			"type": "object",
			"properties": {
				"first_name": {
					"type": "string"
				},
				"middle_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"address": {
					"type": "string"
				}
			},
			"required": [
				"first_name",
				"last_name"
			]
		},
		"pnpsdk.AdminProfileRequest": {
			"type": "object",
			"properties": {
				"first_name": {
					"type": "string"
				},
				"middle_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"profile_picture": {
					"type": "string"
				}
			},
			"required": [
				"first_name",
				"last_name"
			]
		},
		"pnpsdk.ApplicationStatusRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"Pending",
						"Approved",
						"Rejected"
					]
				}
			},
			"required": [
				"status"
			]
		},
		"pnpsdk.EducationRequest": {
			"type": "object",
			"properties": {
				"level": {
					"type": "string"
				},
				"school_name": {
					"type": "string"
				},
				"year_graduated": {
					"type": "integer"
				}
			},
			"required": [
				"level",
				"school_name"
			]
		},
		"pnpsdk.LeaveRequest": {
			"type": "object",
			"properties": {
				"leave_type": {
					"type": "string",
					"enum": [
						"Sick Leave",
						"Vacation Leave",
						"Emergency Leave",
						"Maternity Leave",
						"Paternity Leave"
					]
				},
				"start_date": {
					"type": "string"
				},
				"end_date": {
					"type": "string"
				},
				"days_count": {
					"type": "integer"
				},
				"reason": {
					"type": "string"
				}
			},
			"required": [
				"leave_type",
				"start_date",
				"end_date",
				"days_count",
				"reason"
			]
		},
		"pnpsdk.LeaveReviewRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"Approved",
						"Rejected"
					]
				},
				"remarks": {
					"type": "string"
				}
			},
			"required": [
				"status"
			]
		},
		"pnpsdk.DeploymentRequest": {
			"type": "object",
			"properties": {
				"employee_id": {
					"type": "integer"
				},
				"station": {
					"type": "string"
				},
				"unit": {
					"type": "string"
				},
				"position": {
					"type": "string"
				},
				"start_date": {
					"type": "string"
				},
				"end_date": {
					"type": "string"
				},
				"status": {
					"type": "string",
					"enum": [
						"Active",
						"Completed",
						"Cancelled"
					]
				},
				"remarks": {
					"type": "string"
				}
			},
			"required": [
				"employee_id",
				"station",
				"start_date"
			]
		},
		"pnpsdk.UpdateDeploymentRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"Active",
						"Completed",
						"Cancelled"
					]
				},
				"end_date": {
					"type": "string"
				},
				"remarks": {
					"type": "string"
				}
			}
		},
		"domain.EmployeeProfile": {
			"type": "object",
			"properties": {
				"user_id": {
					"type": "integer"
				},
				"first_name": {
					"type": "string"
				},
				"middle_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"suffix": {
					"type": "string"
				},
				"rank": {
					"type": "string"
				},
				"unit": {
					"type": "string"
				},
				"station": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"home_address": {
					"type": "string"
				},
				"gender": {
					"type": "string"
				},
				"date_of_birth": {
					"type": "string"
				},
				"place_of_birth": {
					"type": "string"
				},
				"religion": {
					"type": "string"
				},
				"emergency_contact_name": {
					"type": "string"
				},
				"emergency_relationship": {
					"type": "string"
				},
				"emergency_contact_number": {
					"type": "string"
				},
				"profile_picture": {
					"type": "string"
				}
			}
		},
		"domain.ApplicantProfile": {
			"type": "object",
			"properties": {
				"user_id": {
					"type": "integer"
				},
				"first_name": {
					"type": "string"
				},
				"middle_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"profile_picture": {
					"type": "string"
				},
				"application_status": {
					"type": "string"
				},
				"applied_at": {
					"type": "string"
				}
			}
		},
		"domain.AdminProfile": {
			"type": "object",
			"properties": {
				"user_id": {
					"type": "integer"
				},
				"first_name": {
					"type": "string"
				},
				"middle_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"profile_picture": {
					"type": "string"
				}
			}
		},
		"domain.Education": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"user_id": {
					"type": "integer"
				},
				"level": {
					"type": "string"
				},
				"school_name": {
					"type": "string"
				},
				"year_graduated": {
					"type": "integer"
				}
			}
		},
		"domain.LeaveApplication": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"employee_id": {
					"type": "integer"
				},
				"leave_type": {
					"type": "string"
				},
				"start_date": {
					"type": "string"
				},
				"end_date": {
					"type": "string"
				},
				"days_count": {
					"type": "integer"
				},
				"reason": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"remarks": {
					"type": "string"
				},
				"applied_at": {
					"type": "string"
				},
				"reviewed_at": {
					"type": "string"
				}
			}
		},
		"domain.Deployment": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"employee_id": {
					"type": "integer"
				},
				"station": {
					"type": "string"
				},
				"unit": {
					"type": "string"
				},
				"position": {
					"type": "string"
				},
				"start_date": {
					"type": "string"
				},
				"end_date": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"remarks": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "PNP San Juan Personnel API",
	Description:      "Personnel records, leave and deployments for the PNP San Juan station.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
