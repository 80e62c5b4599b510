package ratelimit

import "strings"

// unlimitedPaths are never counted, e.g. load balancer probes.
var unlimitedPaths = map[string]bool{"/health": true}

// endpointFor resolves the limit for a request. An exact path wins; otherwise
// the longest configured prefix ending in "/" applies. ok is false when no
// endpoint is configured, and the default limit should be used.
func (c *Config) endpointFor(method, path string) (ec EndpointConfig, ok bool) {
	if unlimitedPaths[path] {
		return EndpointConfig{Path: path, Method: method}, true
	}

	best := -1
	for i, cand := range c.EndpointConfigs {
		if cand.Method != method {
			continue
		}
		if cand.Path == path {
			return cand, true
		}
		if strings.HasSuffix(cand.Path, "/") && strings.HasPrefix(path, cand.Path) &&
			(best < 0 || len(cand.Path) > len(c.EndpointConfigs[best].Path)) {
			best = i
		}
	}
	if best < 0 {
		return EndpointConfig{}, false
	}
	return c.EndpointConfigs[best], true
}
