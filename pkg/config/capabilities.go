package config

// BuildCapabilities turns the configuration into a W3C capabilities
// payload: browserName plus the vendor options block for the selected
// browser, with any explicitly configured capabilities merged over the
// generated ones last.
func (c *Config) BuildCapabilities() map[string]interface{} {
	caps := map[string]interface{}{}

	switch c.Browser {
	case "firefox":
		caps["browserName"] = "firefox"
		opts := map[string]interface{}{}
		args := append([]string{}, c.Args...)
		if c.Headless {
			args = append(args, "--headless")
		}
		if len(args) > 0 {
			opts["args"] = args
		}
		if c.Binary != "" {
			opts["binary"] = c.Binary
		}
		if len(opts) > 0 {
			caps["moz:firefoxOptions"] = opts
		}
	case "chrome", "":
		if c.Browser != "" {
			caps["browserName"] = "chrome"
		}
		opts := map[string]interface{}{}
		args := append([]string{}, c.Args...)
		if c.Headless {
			// --disable-dev-shm-usage keeps headless Chrome alive in
			// containers with a small /dev/shm.
			args = append(args, "--headless", "--disable-gpu", "--no-sandbox", "--disable-dev-shm-usage")
		}
		if len(args) > 0 {
			opts["args"] = args
		}
		if c.Binary != "" {
			opts["binary"] = c.Binary
		}
		if len(opts) > 0 {
			caps["goog:chromeOptions"] = opts
		}
	default:
		caps["browserName"] = c.Browser
	}

	for k, v := range c.Capabilities {
		caps[k] = v
	}
	return caps
}
