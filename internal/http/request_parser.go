package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"finbook/internal/core"
)

// maxBodyBytes bounds request bodies; every API payload is tiny.
const maxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid request body")

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createExpenseRequest struct {
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Amount      *core.Money `json:"amount"`
}

// decodeJSON reads and decodes a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBadBody
		}
		return fmt.Errorf("%w: %w", errBadBody, err)
	}
	return nil
}
