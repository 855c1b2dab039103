package magento2

// ResolveOrderKey returns order.order_id_unique from the cached input.
func ResolveOrderKey(input CachedOrderInput) (string, error) {
	order, ok := Document(input).Doc("order")
	if !ok {
		return "", &MissingFieldError{Record: "cached input", Path: "order"}
	}
	id, ok := order.String("order_id_unique")
	if !ok || id == "" {
		return "", &MissingFieldError{Record: "cached input", Path: "order.order_id_unique"}
	}
	return id, nil
}
