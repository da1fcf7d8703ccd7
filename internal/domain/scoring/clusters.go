package scoring

// Clusters groups related industries. An industry pair in the same cluster
// earns partial industry credit.
type Clusters map[string]string

// DefaultClusters returns the built-in industry clustering.
func DefaultClusters() Clusters {
	groups := map[string][]string{
		"technology": {"saas", "fintech", "edtech", "healthtech", "ai", "cybersecurity", "developer tools"},
		"commerce":   {"ecommerce", "e-commerce", "retail", "fashion", "consumer goods", "food & beverage"},
		"media":      {"media", "entertainment", "gaming", "music", "publishing"},
		"health":     {"healthcare", "wellness", "fitness", "biotech"},
		"places":     {"real estate", "hospitality", "travel", "architecture"},
		"public":     {"nonprofit", "education", "government"},
	}
	c := make(Clusters)
	for cluster, industries := range groups {
		for _, ind := range industries {
			c[ind] = cluster
		}
	}
	return c
}

// Same reports whether two normalized industries share a cluster.
func (c Clusters) Same(a, b string) bool {
	ca, ok := c[a]
	if !ok {
		return false
	}
	cb, ok := c[b]
	return ok && ca == cb
}
