package buildctx

// reservationPrefix namespaces uniqueness reservations inside the shared
// cache so they cannot collide with asset registrations.
const reservationPrefix = "unique:"

// Reserve claims (namespace, value) for filePath. The first reservation in a
// build wins; every later attempt fails and returns the path of the file that
// holds the reservation. Reservations are never overwritten.
func (c *Context) Reserve(namespace, value, filePath string) (prevPath string, ok bool) {
	key := reservationPrefix + namespace + ":" + value
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, exists := c.cache[key]; exists {
		prevPath, _ = prev.(string)
		return prevPath, false
	}
	c.cache[key] = filePath
	return "", true
}
