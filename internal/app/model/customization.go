package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type ScoopSize string
type Container string

const (
	SizeSmall  ScoopSize = "small"
	SizeMedium ScoopSize = "medium"
	SizeLarge  ScoopSize = "large"

	ContainerCone Container = "cone"
	ContainerCup  Container = "cup"
)

// Customization describes how a single cart or order line is prepared.
// It is a value object: two customizations with the same size, container,
// topping set and notes are the same line, regardless of topping order.
type Customization struct {
	Size       ScoopSize `json:"size"`
	Container  Container `json:"container"`
	ToppingIDs []uint    `json:"topping_ids"`
	Notes      string    `json:"notes"`
}

// Normalize sorts topping ids and trims notes so that equal customizations
// serialize identically.
func (c Customization) Normalize() Customization {
	ids := make([]uint, len(c.ToppingIDs))
	copy(ids, c.ToppingIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return Customization{
		Size:       c.Size,
		Container:  c.Container,
		ToppingIDs: ids,
		Notes:      strings.TrimSpace(c.Notes),
	}
}

// ItemKey derives the stable cart-line identity for a product plus its
// customization. Lines with the same key merge instead of splitting.
func (c Customization) ItemKey(productID uint) string {
	n := c.Normalize()
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s|%s", productID, n.Size, n.Container, EncodeToppingIDs(n.ToppingIDs), n.Notes)
	return hex.EncodeToString(h.Sum(nil))
}

// EncodeToppingIDs renders topping ids as a comma separated string for storage.
func EncodeToppingIDs(ids []uint) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// DecodeToppingIDs parses the stored comma separated form back into ids.
// Malformed entries are skipped.
func DecodeToppingIDs(s string) []uint {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(v))
	}
	return ids
}
