package engine

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/shaiso/Conveyor/internal/domain"
)

// PlanDigest вычисляет BLAKE3-отпечаток содержимого plan.
// plan_id не участвует, поэтому одинаковые plan дают одинаковый отпечаток.
func PlanDigest(plan *domain.Plan) (string, error) {
	canonical := *plan
	canonical.PlanID = ""

	// encoding/json сортирует ключи map, порядок полей структуры фиксирован.
	data, err := json.Marshal(&canonical)
	if err != nil {
		return "", fmt.Errorf("canonicalize plan: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(data); err != nil {
		return "", fmt.Errorf("hash plan: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
