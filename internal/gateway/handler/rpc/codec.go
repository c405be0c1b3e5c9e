package rpc

import (
	"encoding/json"
	"fmt"
)

// jsonCodec lets connect handlers exchange plain Go structs as JSON, no
// generated message types involved. Registered under the standard "json"
// name so Connect-protocol clients sending application/json just work.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return fmt.Errorf("unmarshal request: %w", err)
	}
	return nil
}
