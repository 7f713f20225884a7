package export

import (
	"encoding/json"
	"fmt"
)

func unmarshalContent(blob []byte, v interface{}) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty content blob")
	}
	if err := json.Unmarshal(blob, v); err != nil {
		return fmt.Errorf("unmarshal content blob: %w", err)
	}
	return nil
}
