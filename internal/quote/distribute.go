package quote

// SpreadQuantity apportions totalQty items across volumeCount parcels as
// evenly as possible, assigning the remainder to the earliest parcels. The
// output always sums to totalQty and no two entries differ by more than one.
//
// volumeCount must be positive; callers guard against responses with no
// volumes before distributing.
func SpreadQuantity(totalQty, volumeCount int) []int {
	base := totalQty / volumeCount
	remainder := totalQty % volumeCount

	spread := make([]int, volumeCount)
	for i := range spread {
		spread[i] = base
		if remainder > 0 {
			spread[i] = base + 1
			remainder--
		}
	}
	return spread
}
