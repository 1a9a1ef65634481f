package store

import (
	"encoding/json"
	"fmt"
)

// marshalAddresses converts the reserved related-address list to JSON TEXT.
// A nil list is stored as "[]", never NULL.
func marshalAddresses(addrs []int64) (string, error) {
	if len(addrs) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(addrs)
	if err != nil {
		return "", fmt.Errorf("marshal addresses: %w", err)
	}
	return string(data), nil
}

// unmarshalAddresses parses the addresses column. NULL and "" read as empty.
func unmarshalAddresses(data string) ([]int64, error) {
	if data == "" || data == "[]" {
		return []int64{}, nil
	}
	var addrs []int64
	if err := json.Unmarshal([]byte(data), &addrs); err != nil {
		return nil, fmt.Errorf("unmarshal addresses: %w", err)
	}
	return addrs, nil
}
