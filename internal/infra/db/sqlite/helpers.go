package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/kmclabs/medassist/internal/domain/analysis"
)

func resultJSON(r *analysis.Result) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b), nil
}
