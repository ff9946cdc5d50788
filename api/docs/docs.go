// Package docs serves the API documentation: a hand-maintained OpenAPI
// document and an interactive viewer page.
package docs

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.yaml
var openapiSpec []byte

//go:embed swagger.html
var swaggerPage []byte

// Schema serves the OpenAPI document.
func Schema(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openapiSpec)
}

// Docs serves the interactive documentation page.
func Docs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", swaggerPage)
}
