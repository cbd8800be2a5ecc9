// Package docs holds the OpenAPI document served under /swagger/.
// Regenerate with `swag init -g cmd/api/main.go`.
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
        "/healthz": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/api/stores": {
            "get": {
                "produces": ["application/json"],
                "summary": "List stores",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Store"}}}
                }
            }
        },
        "/api/stores/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get store",
                "parameters": [{"type": "string", "description": "Store ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Store"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/api/stores/{id}/products": {
            "get": {
                "produces": ["application/json"],
                "summary": "List store products",
                "parameters": [{"type": "string", "description": "Store ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Product"}}}
                }
            }
        },
        "/api/products": {
            "get": {
                "produces": ["application/json"],
                "summary": "List products",
                "parameters": [
                    {"type": "string", "description": "Only products of this store", "name": "storeId", "in": "query"},
                    {"type": "string", "description": "Case-insensitive match on name, description or category", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Product"}}}
                }
            }
        },
        "/api/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get product",
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/api/orders": {
            "get": {
                "produces": ["application/json"],
                "summary": "List orders",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Create order",
                "parameters": [
                    {"type": "string", "description": "Replays the first response for a repeated key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Order", "name": "order", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.NewOrder"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/api/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get order",
                "parameters": [{"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/api/orders/{id}/status": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Update order status",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.statusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/api/cart": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get cart",
                "parameters": [{"type": "string", "description": "Session ID", "name": "sessionId", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/storage.CartEntry"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Add to cart",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "query"},
                    {"description": "Product and quantity", "name": "item", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.addCartRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/cart.Item"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            },
            "delete": {
                "summary": "Clear cart",
                "parameters": [{"type": "string", "description": "Session ID", "name": "sessionId", "in": "query"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/api/cart/{id}": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Update cart item",
                "parameters": [
                    {"type": "string", "description": "Cart item ID", "name": "id", "in": "path", "required": true},
                    {"description": "New quantity", "name": "quantity", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.quantityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/cart.Item"}},
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            },
            "delete": {
                "summary": "Remove cart item",
                "parameters": [{"type": "string", "description": "Cart item ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/api/checkout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Checkout",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "query"},
                    {"type": "string", "description": "Replays the first response for a repeated key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Delivery address", "name": "checkout", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.checkoutRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        }
    },
    "definitions": {
        "cart.Item": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "productId": {"type": "string"},
                "quantity": {"type": "integer"},
                "sessionId": {"type": "string"}
            }
        },
        "catalog.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "storeId": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "image": {"type": "string"},
                "price": {"type": "string", "example": "4.49"},
                "category": {"type": "string"},
                "inStock": {"type": "boolean"}
            }
        },
        "catalog.Store": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "image": {"type": "string"},
                "rating": {"type": "string", "example": "4.8"},
                "deliveryTime": {"type": "string"},
                "deliveryFee": {"type": "string", "example": "3.99"},
                "freeDeliveryMinimum": {"type": "string", "example": "35.00"},
                "isOpen": {"type": "boolean"},
                "category": {"type": "string"}
            }
        },
        "main.addCartRequest": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "main.checkoutRequest": {
            "type": "object",
            "properties": {"deliveryAddress": {"type": "string"}}
        },
        "main.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "main.quantityRequest": {
            "type": "object",
            "properties": {"quantity": {"type": "integer"}}
        },
        "main.statusRequest": {
            "type": "object",
            "properties": {"status": {"type": "string"}}
        },
        "order.Line": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "price": {"type": "string", "example": "2.99"}
            }
        },
        "order.NewOrder": {
            "type": "object",
            "properties": {
                "storeId": {"type": "string"},
                "storeName": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.Line"}},
                "total": {"type": "string", "example": "11.97"},
                "status": {"type": "string"},
                "deliveryAddress": {"type": "string"}
            }
        },
        "order.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "storeId": {"type": "string"},
                "storeName": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.Line"}},
                "total": {"type": "string", "example": "11.97"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "preparing", "in_transit", "delivered", "cancelled"]},
                "deliveryAddress": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "storage.CartEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "productId": {"type": "string"},
                "quantity": {"type": "integer"},
                "sessionId": {"type": "string"},
                "product": {"$ref": "#/definitions/catalog.Product"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8443",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "QuickCart API",
	Description:      "Store catalog, session carts and orders for grocery delivery",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
