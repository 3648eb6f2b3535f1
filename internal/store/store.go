package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/joestump/blockprompt/internal/block"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when an entity fails validation before a write.
	ErrInvalid = errors.New("invalid")
)

func encodeBlocks(blocks []block.Instance) (string, error) {
	if blocks == nil {
		blocks = []block.Instance{}
	}
	b, err := json.Marshal(blocks)
	if err != nil {
		return "", fmt.Errorf("encode blocks: %w", err)
	}
	return string(b), nil
}

func decodeBlocks(raw string) ([]block.Instance, error) {
	var blocks []block.Instance
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	return blocks, nil
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(name) > 255 {
		return "", fmt.Errorf("%w: name must be at most 255 characters", ErrInvalid)
	}
	return name, nil
}
