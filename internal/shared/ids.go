package shared

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Entity id prefixes carried over from the legacy data set.
const (
	PrefixVehicle   = "VH"
	PrefixCustomer  = "CUS"
	PrefixService   = "SRV"
	PrefixOrder     = "ORD"
	PrefixPayment   = "PAY"
	PrefixPromotion = "PROMO"
	PrefixStocktake = "INV"
)

// NewID returns a collision-resistant id with the given entity prefix.
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}

// NewUnitIdentifiers generates count unique unit identifiers (VINs) for a
// vehicle. Format: vehicle id, base36 intake timestamp, sequence index and a
// random suffix. Uniqueness is the only contract callers may rely on.
func NewUnitIdentifiers(vehicleID string, count int, at time.Time) []string {
	if count <= 0 {
		return nil
	}
	stamp := strconv.FormatInt(at.UnixMilli(), 36)
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, fmt.Sprintf("%s-%s-%d-%s", vehicleID, stamp, i, uuid.NewString()[:8]))
	}
	return ids
}
