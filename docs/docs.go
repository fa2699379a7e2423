// Package docs 注册 filevault 的 OpenAPI 文档，供 gin-swagger 在调试模式下展示.
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
    "securityDefinitions": {
        "Token": {"type": "apiKey", "name": "X-Token", "in": "header"},
        "Basic": {"type": "basic"}
    },
    "paths": {
        "/status": {"get": {"tags": ["系统"], "summary": "服务状态", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}}},
        "/stats": {"get": {"tags": ["系统"], "summary": "数量统计", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatsResponse"}}}}},
        "/users": {"post": {"tags": ["用户"], "summary": "注册用户",
            "parameters": [{"in": "body", "name": "user", "required": true, "schema": {"$ref": "#/definitions/types.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/types.UserResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/users/me": {"get": {"tags": ["用户"], "summary": "当前用户", "security": [{"Token": []}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.UserResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/connect": {"get": {"tags": ["用户"], "summary": "登录", "security": [{"Basic": []}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TokenResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/disconnect": {"get": {"tags": ["用户"], "summary": "登出", "security": [{"Token": []}],
            "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/files": {
            "get": {"tags": ["文件"], "summary": "文件列表", "security": [{"Token": []}],
                "parameters": [{"in": "query", "name": "parentId", "type": "string"}, {"in": "query", "name": "page", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.FileResponse"}}}}},
            "post": {"tags": ["文件"], "summary": "上传文件", "security": [{"Token": []}],
                "parameters": [{"in": "body", "name": "file", "required": true, "schema": {"$ref": "#/definitions/types.UploadFileRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/types.FileResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}
        },
        "/files/{id}": {"get": {"tags": ["文件"], "summary": "文件详情", "security": [{"Token": []}],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.FileResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/files/{id}/publish": {"put": {"tags": ["文件"], "summary": "公开文件", "security": [{"Token": []}],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.FileResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/files/{id}/unpublish": {"put": {"tags": ["文件"], "summary": "取消公开", "security": [{"Token": []}],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.FileResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
        "/files/{id}/data": {"get": {"tags": ["文件"], "summary": "读取内容", "produces": ["application/octet-stream"],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}, {"in": "query", "name": "size", "type": "integer"}],
            "responses": {"200": {"description": "OK", "schema": {"type": "file"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}}
    },
    "definitions": {
        "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "types.StatusResponse": {"type": "object", "properties": {"redis": {"type": "boolean"}, "db": {"type": "boolean"}}},
        "types.StatsResponse": {"type": "object", "properties": {"users": {"type": "integer"}, "files": {"type": "integer"}}},
        "types.RegisterRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "types.UserResponse": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}}},
        "types.TokenResponse": {"type": "object", "properties": {"token": {"type": "string"}}},
        "types.UploadFileRequest": {"type": "object", "properties": {"name": {"type": "string"}, "type": {"type": "string", "enum": ["folder", "file", "image"]}, "parentId": {"type": "string"}, "isPublic": {"type": "boolean"}, "data": {"type": "string", "format": "byte"}}},
        "types.FileResponse": {"type": "object", "properties": {"id": {"type": "string"}, "userId": {"type": "string"}, "name": {"type": "string"}, "type": {"type": "string"}, "isPublic": {"type": "boolean"}, "parentId": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "filevault API",
	Description:      "多租户文件存储服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
