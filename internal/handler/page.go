package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Script placeholders in the page shell that receive the scan payloads.
const (
	metaPlaceholder  = `<script id="meta-json" type="application/json"></script>`
	filesPlaceholder = `<script id="files-json" type="application/json"></script>`
)

// GetIndex serves the page shell with the metadata and file-list JSON
// documents embedded. The shell itself is fixed; the only server-side
// templating is these two blob substitutions.
func (a *API) GetIndex(shell []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := a.scan()
		if err != nil {
			c.String(http.StatusInternalServerError, "scan failed: %v", err)
			return
		}
		metaJSON, err := safeJSON(res.Meta())
		if err != nil {
			c.String(http.StatusInternalServerError, "encode failed: %v", err)
			return
		}

		filesJSON := []byte("[]")
		if res.Files != nil {
			filesJSON, err = safeJSON(res.Files)
			if err != nil {
				c.String(http.StatusInternalServerError, "encode failed: %v", err)
				return
			}
		}

		page := bytes.Replace(shell, []byte(metaPlaceholder),
			[]byte(`<script id="meta-json" type="application/json">`+string(metaJSON)+`</script>`), 1)
		page = bytes.Replace(page, []byte(filesPlaceholder),
			[]byte(`<script id="files-json" type="application/json">`+string(filesJSON)+`</script>`), 1)

		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}
}

// safeJSON marshals a value for embedding inside a <script> block. "</" is
// escaped so file contents can never close the script element early.
func safeJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.ReplaceAll(data, []byte("</"), []byte(`<\/`)), nil
}
