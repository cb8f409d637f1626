package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every endpoint answers with a {success, message?, data?} envelope. The
// helpers below keep the shape consistent across handlers.

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// respondLookupError maps repository errors: a missing row becomes a 404
// with the given message, anything else a generic 500.
func respondLookupError(c *gin.Context, err error, notFoundMessage string) {
	if errors.Is(err, sql.ErrNoRows) {
		respondError(c, http.StatusNotFound, notFoundMessage)
		return
	}
	respondError(c, http.StatusInternalServerError, "Something went wrong")
}
