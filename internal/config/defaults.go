package config

func applyDefaults(cfg *Config) {
	if cfg.Globals.Layout == "" {
		cfg.Globals.Layout = DefaultLayout
	}
	if cfg.Globals.Timezone == "" {
		cfg.Globals.Timezone = DefaultTimezone
	}
	if _, ok := cfg.Site["base_url"]; !ok {
		cfg.Site["base_url"] = DefaultBaseURL
	}
	if _, ok := cfg.Site["static_url"]; !ok {
		cfg.Site["static_url"] = DefaultStaticURL
	}
	if cfg.Serve.Port <= 0 {
		cfg.Serve.Port = DefaultPort
	}
	for _, mc := range []*ModeConfig{&cfg.Build, &cfg.Serve} {
		if mc.Notify.NATSURL != "" && mc.Notify.Subject == "" {
			mc.Notify.Subject = "pagesmith.builds"
		}
	}
}
