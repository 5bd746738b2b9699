package models

import (
	"encoding/json"
	"fmt"
)

// Container names the sequence holding an item: either one tier or the pool.
// The zero value is the pool.
type Container struct {
	tier   TierID
	inTier bool
}

// InTier returns the container for the tier with the given id
func InTier(id TierID) Container {
	return Container{tier: id, inTier: true}
}

// InPool returns the pool container
func InPool() Container {
	return Container{}
}

// Tier returns the tier id and true when c refers to a tier
func (c Container) Tier() (TierID, bool) {
	return c.tier, c.inTier
}

// IsPool reports whether c is the pool
func (c Container) IsPool() bool {
	return !c.inTier
}

func (c Container) String() string {
	if c.inTier {
		return fmt.Sprintf("tier %d", c.tier)
	}
	return "pool"
}

// MarshalJSON encodes the pool as null and a tier as its id
func (c Container) MarshalJSON() ([]byte, error) {
	if !c.inTier {
		return []byte("null"), nil
	}
	return json.Marshal(c.tier)
}

// UnmarshalJSON accepts null (pool) or a tier id
func (c *Container) UnmarshalJSON(data []byte) error {
	var id *TierID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id == nil {
		*c = InPool()
	} else {
		*c = InTier(*id)
	}
	return nil
}
