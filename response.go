package taskmaster

import (
	"encoding/json"
	"io"
)

// Empty represents a void request or response.
// Use this for operations that don't return meaningful data.
//
// Example:
//
//	func DeleteTask(ctx context.Context, req *DeleteTaskRequest) (taskmaster.Empty, error) {
//	    return nil, store.Delete(ctx, req.ID)
//	}
type Empty *struct{}

// encodeResponse writes a successful response body.
func encodeResponse(w io.Writer, result any) error {
	return json.NewEncoder(w).Encode(result)
}
