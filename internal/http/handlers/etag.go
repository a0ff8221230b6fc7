package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload as JSON with a strong ETag over its
// encoding, answering 304 when the client already holds the same bytes.
// Course detail pages are the main user.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	body, err := json.Marshal(payload)

	if err != nil {
		// fall back to a plain response rather than failing the request
		ctx.JSON(status, payload)
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`

	ctx.Header("ETag", etag)

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

// etagMatches checks an If-None-Match header (possibly a comma list or
// "*") against the current tag. Weak validators compare by value.
func etagMatches(header, current string) bool {
	header = strings.TrimSpace(header)

	if header == "" || current == "" {
		return false
	}

	if header == "*" {
		return true
	}

	want := stripWeakPrefix(current)

	for _, candidate := range strings.Split(header, ",") {
		if stripWeakPrefix(candidate) == want {
			return true
		}
	}

	return false
}

func stripWeakPrefix(tag string) string {
	tag = strings.TrimSpace(tag)

	if strings.HasPrefix(tag, "W/") {
		tag = strings.TrimSpace(tag[2:])
	}

	return tag
}
