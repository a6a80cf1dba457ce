package blocks

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// KeySource mints the _key values of one conversion run.
// Keys only need to be unique within a single run.
type KeySource interface {
	NextKey() string
}

type randomKeys struct{}

// RandomKeys returns a KeySource backed by UUID v4
func RandomKeys() KeySource {
	return randomKeys{}
}

func (randomKeys) NextKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SequentialKeys mints prefix0, prefix1, ... and is meant for deterministic output
type SequentialKeys struct {
	prefix string
	next   int
}

// NewSequentialKeys creates a counter-based KeySource
func NewSequentialKeys(prefix string) *SequentialKeys {
	return &SequentialKeys{prefix: prefix}
}

func (s *SequentialKeys) NextKey() string {
	key := s.prefix + strconv.Itoa(s.next)
	s.next++
	return key
}
