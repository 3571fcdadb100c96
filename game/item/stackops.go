package item

// Merge moves as much of incoming into target as target's max stack size allows.
// It returns false without touching either stack when the items differ.
func Merge(target, incoming *Stack) bool {
	if !target.SameItem(incoming) {
		return false
	}

	total := target.qty + incoming.qty
	limit := target.def.MaxStackSize
	if total <= limit {
		target.SetQuantity(total)
		incoming.SetQuantity(0)
		return true
	}
	target.SetQuantity(limit)
	incoming.SetQuantity(total - limit)
	return true
}

// Split halves original and returns the split-off part. Odd quantities leave the
// larger half in original (5 -> 3 kept, 2 returned). Stacks of one or fewer
// units cannot be split.
func Split(original *Stack) (*Stack, bool) {
	if original.qty <= 1 {
		return nil, false
	}
	half := original.qty / 2
	original.SetQuantity(original.qty - half)
	return &Stack{def: original.def, qty: half}, true
}
