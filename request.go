package onionfetch

// defaultValidateCache only lets get requests use the cache
func defaultValidateCache(_ string, o *Options) bool {
	return normalizeMethod(o.Method) == "get"
}

// needCache reports whether the request may be served from and stored in the cache
func needCache(c *Context) bool {
	o := c.options()
	if c.Cache == nil || c.noCache || !o.UseCache {
		return false
	}
	validate := o.ValidateCache
	if validate == nil {
		validate = defaultValidateCache
	}
	return validate(c.Req.URL, o)
}

// getCacheKey derives the canonical cache key from url, params and method
func getCacheKey(c *Context) string {
	o := c.options()
	return CacheKey{
		URL:    c.Req.URL,
		Params: o.Params,
		Method: normalizeMethod(o.Method),
	}.String()
}
