package web

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
)

// Validator defines behavior a request model can implement to validate
// itself after decoding.
type Validator interface {
	Validate() error
}

// Decode reads the body of an HTTP request looking for a JSON document. The
// body is decoded into the provided value and validated when the value knows
// how.
func Decode(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("decode: reading body: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("decode: empty body")
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: unmarshal: %w", err)
	}

	if validator, ok := v.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}

	return nil
}
